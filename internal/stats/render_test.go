package stats

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/verte-zerg/rentstat/internal/model"
)

func TestRenderReport(t *testing.T) {
	report, err := BuildReport(context.Background(), correlationRecords(), model.DateRange{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, report, RenderOptions{Plots: true, Width: 40, PlotHeight: 5}); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Range: 2021-01-01 to 2021-01-01",
		"Total rentals: 615",
		"Daily Usage",
		"Rentals by Holiday and Weekday",
		"Average Rental Hour by Weekday, Holiday, and Working Day",
		"Correlation with Total Rentals",
		"hourly temperature",
		"Rentals vs daily humidity (%)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, Report{}, RenderOptions{}); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if !strings.Contains(buf.String(), "No rentals found in range.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderReportEmptyRangeListsCorrelations(t *testing.T) {
	records := []model.Record{rec("2021-01-01", 0, 1, 1), rec("2021-01-02", 0, 2, 2)}
	report, err := BuildReport(context.Background(), records, model.DateRange{Start: dayPtr("2021-01-02"), End: dayPtr("2021-01-01")})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, report, RenderOptions{Plots: true}); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No rentals found in range.") || !strings.Contains(out, "Correlation with Total Rentals") {
		t.Fatalf("expected empty summary and correlation table:\n%s", out)
	}
	if got := strings.Count(out, "insufficient data"); got != 4 {
		t.Fatalf("expected 4 insufficient data rows, got %d:\n%s", got, out)
	}
	if strings.Contains(out, "Daily Usage") {
		t.Fatalf("expected no daily table:\n%s", out)
	}
}

func TestRenderCategoriesAbsentCells(t *testing.T) {
	records := []model.Record{withFlags(rec("2021-01-04", 0, 1, 2), false, 1, true)}
	var buf bytes.Buffer
	if err := RenderCategories(&buf, AggregateCategories(records, model.Hourly)); err != nil {
		t.Fatalf("render categories: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title, header, and two rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[2], "Not holiday") || !strings.HasSuffix(lines[2], "3") {
		t.Fatalf("unexpected non-holiday row: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Holiday") || !strings.HasSuffix(lines[3], "-") {
		t.Fatalf("expected absent holiday cell, got %q", lines[3])
	}
}

func TestFormatCorrelation(t *testing.T) {
	tests := []struct {
		res  CorrelationResult
		want string
	}{
		{CorrelationResult{Correlation: Correlation{Percent: 38.95}}, "38.95%"},
		{CorrelationResult{Correlation: Correlation{Percent: -5}}, "-5.00%"},
		{CorrelationResult{Err: ErrInsufficientData}, "insufficient data"},
		{CorrelationResult{Err: fmt.Errorf("correlate: %w", ErrZeroVariance)}, "zero variance"},
		{CorrelationResult{Err: fmt.Errorf("correlate: %w", ErrNonFinite)}, "non-finite values"},
	}
	for _, tt := range tests {
		if got := FormatCorrelation(tt.res); got != tt.want {
			t.Fatalf("FormatCorrelation() = %q, want %q", got, tt.want)
		}
	}
}

func TestWriteDailyCSV(t *testing.T) {
	var buf bytes.Buffer
	days := []model.DailyTotal{{Date: day("2021-01-01"), Casual: 3, Registered: 14, Total: 17}}
	if err := WriteDailyCSV(&buf, days); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	want := "date,casual,registered,total\n2021-01-01,3,14,17\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestRenderDailyChart(t *testing.T) {
	if got := RenderDailyChart(nil, 40, 5); got != "No data available" {
		t.Fatalf("unexpected empty chart: %q", got)
	}
	days := []model.DailyTotal{{Date: day("2021-01-01"), Casual: 1, Registered: 2, Total: 3}}
	if got := RenderDailyChart(days, 40, 5); !strings.Contains(got, chartCaption) {
		t.Fatalf("expected caption in chart:\n%s", got)
	}
}
