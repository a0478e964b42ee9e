package stats

import (
	"time"

	"github.com/verte-zerg/rentstat/internal/model"
)

// FilterRange returns the records whose date falls inside rng, inclusive on
// both ends at day granularity. A nil bound extends to the dataset minimum or
// maximum. A start after the end yields an empty result.
func FilterRange(records []model.Record, rng model.DateRange) []model.Record {
	out := make([]model.Record, 0, len(records))
	var start, end time.Time
	hasStart := rng.Start != nil
	hasEnd := rng.End != nil
	if hasStart {
		start = Day(*rng.Start)
	}
	if hasEnd {
		end = Day(*rng.End)
	}
	if hasStart && hasEnd && start.After(end) {
		return out
	}
	for _, r := range records {
		d := Day(r.Date)
		if hasStart && d.Before(start) {
			continue
		}
		if hasEnd && d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DateBounds returns the earliest and latest calendar day in records.
func DateBounds(records []model.Record) (minDay, maxDay time.Time, ok bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	minDay = Day(records[0].Date)
	maxDay = minDay
	for _, r := range records[1:] {
		d := Day(r.Date)
		if d.Before(minDay) {
			minDay = d
		}
		if d.After(maxDay) {
			maxDay = d
		}
	}
	return minDay, maxDay, true
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
