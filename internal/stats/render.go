package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/rentstat/internal/model"
)

const dateLayout = "2006-01-02"

// DailyCSVHeader lists the stable output column names of the daily summary.
var DailyCSVHeader = []string{"date", "casual", "registered", "total"}

// RenderOptions controls the optional parts of RenderReport.
type RenderOptions struct {
	Plots      bool
	Width      int
	PlotHeight int
	Color      bool
}

// RenderReport prints every section of the report.
func RenderReport(w io.Writer, report Report, opts RenderOptions) error {
	if err := RenderSummary(w, report); err != nil {
		return err
	}
	if len(report.Daily) == 0 {
		return RenderCorrelations(w, report.Correlations)
	}
	if opts.Plots {
		if _, err := fmt.Fprintln(w, RenderDailyChart(report.Daily, opts.Width, opts.PlotHeight)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	if err := RenderDaily(w, report.Daily); err != nil {
		return err
	}
	if err := RenderCategories(w, report.Categories); err != nil {
		return err
	}
	if err := RenderDuration(w, report.Duration); err != nil {
		return err
	}
	if err := RenderCorrelations(w, report.Correlations); err != nil {
		return err
	}
	if !opts.Plots {
		return nil
	}
	for _, res := range report.Correlations {
		if res.Err != nil {
			continue
		}
		if err := PlotScatterWithColor(w, ScatterTitle(res.Pairs), res.Pairs, res.Correlation, opts.Width, opts.PlotHeight, opts.Color); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints the range, metric totals, and casual/registered split.
func RenderSummary(w io.Writer, report Report) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Range: %s\n", formatRange(report.Start, report.End)); err != nil {
		return err
	}
	if len(report.Daily) == 0 {
		_, err := fmt.Fprintln(w, "No rentals found in range.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Days: %d  Records: %d of %d\n", len(report.Daily), len(report.Records), report.DatasetRows); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total rentals: %d\n", report.Totals.Total); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Registered rentals: %d (%.1f%%)\n", report.Split.Registered, report.Split.RegisteredPct); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Casual rentals: %d (%.1f%%)\n", report.Split.Casual, report.Split.CasualPct); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDaily prints the daily summary table.
func RenderDaily(w io.Writer, days []model.DailyTotal) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "No daily totals found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Daily Usage"); err != nil {
		return err
	}
	tbl := newTextTable("Date", "Casual", "Registered", "Total").alignRight(1, 2, 3)
	for _, d := range days {
		tbl.addRow(
			d.Date.Format(dateLayout),
			strconv.FormatInt(d.Casual, 10),
			strconv.FormatInt(d.Registered, 10),
			strconv.FormatInt(d.Total, 10),
		)
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCategories prints the holiday by weekday matrix. Absent cells are
// shown as "-".
func RenderCategories(w io.Writer, m *CategoryMatrix) error {
	if m.Len() == 0 {
		_, err := fmt.Fprintln(w, "No holiday/weekday rentals found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Rentals by Holiday and Weekday"); err != nil {
		return err
	}
	weekdays := m.Weekdays()
	headers := []string{""}
	for _, d := range weekdays {
		headers = append(headers, model.WeekdayName(d))
	}
	tbl := newTextTable(headers...)
	for i := range weekdays {
		tbl.alignRight(i + 1)
	}
	for _, holiday := range []bool{false, true} {
		row := []string{HolidayLabel(holiday)}
		for _, d := range weekdays {
			if v, ok := m.Get(holiday, d); ok {
				row = append(row, strconv.FormatInt(v, 10))
			} else {
				row = append(row, "-")
			}
		}
		tbl.addRow(row...)
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDuration prints the mean hour value per weekday, holiday, and
// working-day partition.
func RenderDuration(w io.Writer, cells []model.DurationCell) error {
	if len(cells) == 0 {
		_, err := fmt.Fprintln(w, "No duration profile found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Average Rental Hour by Weekday, Holiday, and Working Day"); err != nil {
		return err
	}
	tbl := newTextTable("Weekday", "Holiday", "Working Day", "Mean hr", "Records").alignRight(3, 4)
	for _, c := range cells {
		tbl.addRow(
			model.WeekdayName(c.Key.Weekday),
			yesNo(c.Key.Holiday),
			yesNo(c.Key.WorkingDay),
			fmt.Sprintf("%.1f", c.Mean),
			strconv.Itoa(c.Count),
		)
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCorrelations prints the correlation statistics as percentages.
func RenderCorrelations(w io.Writer, results []CorrelationResult) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Correlation with Total Rentals"); err != nil {
		return err
	}
	tbl := newTextTable("Series", "Correlation", "Points").alignRight(1, 2)
	for _, res := range results {
		tbl.addRow(res.Pairs.Label(), FormatCorrelation(res), strconv.Itoa(len(res.Pairs.X)))
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// FormatCorrelation renders a correlation result as a two-decimal
// percentage, or the reason it could not be computed.
func FormatCorrelation(res CorrelationResult) string {
	switch {
	case res.Err == nil:
		return fmt.Sprintf("%.2f%%", res.Correlation.Percent)
	case errors.Is(res.Err, ErrInsufficientData):
		return "insufficient data"
	case errors.Is(res.Err, ErrZeroVariance):
		return "zero variance"
	case errors.Is(res.Err, ErrNonFinite):
		return "non-finite values"
	default:
		return "n/a"
	}
}

// WriteDailyCSV writes the daily summary as CSV with the stable column names.
func WriteDailyCSV(w io.Writer, days []model.DailyTotal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DailyCSVHeader); err != nil {
		return err
	}
	for _, d := range days {
		record := []string{
			d.Date.Format(dateLayout),
			strconv.FormatInt(d.Casual, 10),
			strconv.FormatInt(d.Registered, 10),
			strconv.FormatInt(d.Total, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// HolidayLabel names a holiday flag value.
func HolidayLabel(holiday bool) string {
	if holiday {
		return "Holiday"
	}
	return "Not holiday"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatRange(start, end time.Time) string {
	if start.IsZero() && end.IsZero() {
		return "empty dataset"
	}
	return fmt.Sprintf("%s to %s", start.Format(dateLayout), end.Format(dateLayout))
}
