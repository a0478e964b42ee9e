package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/rentstat/internal/model"
)

func TestFilterRangeInclusiveBounds(t *testing.T) {
	records := []model.Record{
		rec("2021-01-01", 0, 1, 1),
		rec("2021-01-02", 0, 1, 1),
		rec("2021-01-03", 0, 1, 1),
		rec("2021-01-04", 0, 1, 1),
		rec("2021-01-05", 0, 1, 1),
	}
	got := FilterRange(records, model.DateRange{Start: dayPtr("2021-01-02"), End: dayPtr("2021-01-04")})
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if !got[0].Date.Equal(day("2021-01-02")) || !got[2].Date.Equal(day("2021-01-04")) {
		t.Fatalf("unexpected boundary records: %v .. %v", got[0].Date, got[2].Date)
	}
}

func TestFilterRangeEndDayTimestamps(t *testing.T) {
	r := rec("2021-01-04", 23, 1, 1)
	r.Date = r.Date.Add(23*time.Hour + 30*time.Minute)
	end := day("2021-01-04").Add(time.Hour)

	got := FilterRange([]model.Record{r}, model.DateRange{End: &end})
	if len(got) != 1 {
		t.Fatalf("expected timestamp within end day to match, got %d records", len(got))
	}
}

func TestFilterRangeOpenBounds(t *testing.T) {
	records := []model.Record{rec("2021-01-01", 0, 1, 1), rec("2021-03-01", 0, 1, 1)}

	if got := FilterRange(records, model.DateRange{}); len(got) != 2 {
		t.Fatalf("expected all records for open range, got %d", len(got))
	}
	if got := FilterRange(records, model.DateRange{Start: dayPtr("2021-02-01")}); len(got) != 1 {
		t.Fatalf("expected 1 record with open end, got %d", len(got))
	}
	if got := FilterRange(records, model.DateRange{End: dayPtr("2021-02-01")}); len(got) != 1 {
		t.Fatalf("expected 1 record with open start, got %d", len(got))
	}
}

func TestFilterRangeStartAfterEnd(t *testing.T) {
	records := []model.Record{rec("2021-01-01", 0, 1, 1)}
	got := FilterRange(records, model.DateRange{Start: dayPtr("2021-01-02"), End: dayPtr("2021-01-01")})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestFilterRangePreservesInvariant(t *testing.T) {
	records := []model.Record{rec("2021-01-01", 0, 3, 4), rec("2021-01-02", 5, 10, 20)}
	for _, r := range FilterRange(records, model.DateRange{}) {
		if r.Hourly.Casual+r.Hourly.Registered != r.Hourly.Total {
			t.Fatalf("hourly invariant broken: %+v", r.Hourly)
		}
		if r.Daily.Casual+r.Daily.Registered != r.Daily.Total {
			t.Fatalf("daily invariant broken: %+v", r.Daily)
		}
	}
}

func TestFilterRangeDoesNotModifyInput(t *testing.T) {
	records := []model.Record{rec("2021-01-01", 0, 1, 1), rec("2021-01-02", 0, 1, 1)}
	got := FilterRange(records, model.DateRange{Start: dayPtr("2021-01-02")})
	got[0].Hour = 99
	if records[1].Hour == 99 {
		t.Fatalf("filter result aliases the input slice")
	}
}

func TestDateBounds(t *testing.T) {
	if _, _, ok := DateBounds(nil); ok {
		t.Fatalf("expected no bounds for empty input")
	}
	records := []model.Record{rec("2021-02-01", 0, 1, 1), rec("2021-01-01", 0, 1, 1), rec("2021-03-01", 0, 1, 1)}
	minDay, maxDay, ok := DateBounds(records)
	if !ok || !minDay.Equal(day("2021-01-01")) || !maxDay.Equal(day("2021-03-01")) {
		t.Fatalf("unexpected bounds: %v %v %v", minDay, maxDay, ok)
	}
}
