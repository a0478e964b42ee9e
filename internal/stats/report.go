// Package stats contains the rental aggregations, correlation statistics,
// and their text rendering.
package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/rentstat/internal/model"
)

// Report contains precomputed data for one rendering pass.
type Report struct {
	// Start and End are the effective bounds after open bounds were resolved
	// against the dataset. Both are zero when the dataset is empty.
	Start        time.Time
	End          time.Time
	DatasetRows  int
	Records      []model.Record
	Daily        []model.DailyTotal
	Totals       model.DailyTotal
	Split        model.Split
	Categories   *CategoryMatrix
	Duration     []model.DurationCell
	Correlations []CorrelationResult
}

// BuildReport filters records to rng and derives every aggregate from the
// filtered set. The dashboard and the text report both render its result.
func BuildReport(ctx context.Context, records []model.Record, rng model.DateRange) (Report, error) {
	report := Report{DatasetRows: len(records)}
	if minDay, maxDay, ok := DateBounds(records); ok {
		report.Start, report.End = minDay, maxDay
	}
	if rng.Start != nil {
		report.Start = Day(*rng.Start)
	}
	if rng.End != nil {
		report.End = Day(*rng.End)
	}

	report.Records = FilterRange(records, rng)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report.Daily = AggregateDaily(report.Records, model.Hourly)
	report.Totals = SumDaily(report.Daily)
	report.Split = SplitDaily(report.Daily)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report.Categories = AggregateCategories(report.Records, model.Hourly)
	report.Duration = AggregateDuration(report.Records, model.Hourly)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report.Correlations = CorrelateAll(report.Records)
	return report, nil
}
