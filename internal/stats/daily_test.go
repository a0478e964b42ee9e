package stats

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/rentstat/internal/model"
)

func TestAggregateDailyExample(t *testing.T) {
	records := []model.Record{
		rec("2021-01-01", 0, 4, 6),
		rec("2021-01-02", 1, 3, 4),
		rec("2021-01-01", 1, 2, 3),
		rec("2021-01-01", 2, 1, 1),
	}
	got := AggregateDaily(records, model.Hourly)
	want := []model.DailyTotal{
		{Date: day("2021-01-01"), Casual: 7, Registered: 10, Total: 17},
		{Date: day("2021-01-02"), Casual: 3, Registered: 4, Total: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected daily summary:\n got %+v\nwant %+v", got, want)
	}
}

func TestAggregateDailyEmpty(t *testing.T) {
	got := AggregateDaily(nil, model.Hourly)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil summary, got %v", got)
	}
}

func TestAggregateDailyOmitsGaps(t *testing.T) {
	records := []model.Record{rec("2021-01-01", 0, 1, 1), rec("2021-01-05", 0, 1, 1)}
	if got := AggregateDaily(records, model.Hourly); len(got) != 2 {
		t.Fatalf("expected missing days to be omitted, got %d rows", len(got))
	}
}

func TestAggregateDailyIdempotent(t *testing.T) {
	records := []model.Record{rec("2021-01-02", 0, 1, 2), rec("2021-01-01", 0, 3, 4), rec("2021-01-02", 3, 5, 6)}
	first := AggregateDaily(records, model.Hourly)
	second := AggregateDaily(records, model.Hourly)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output, got %+v and %+v", first, second)
	}
}

func TestAggregateDailyCompleteness(t *testing.T) {
	records := []model.Record{
		rec("2021-01-01", 0, 10, 20),
		rec("2021-01-01", 1, 11, 21),
		rec("2021-01-03", 0, 12, 22),
		rec("2021-01-04", 0, 13, 23),
	}
	var want int64
	for _, r := range records {
		want += r.Hourly.Total
	}
	if got := SumDaily(AggregateDaily(records, model.Hourly)).Total; got != want {
		t.Fatalf("daily roll-up lost counts: got %d want %d", got, want)
	}
}

func TestAggregateDailyUsesSelectedContext(t *testing.T) {
	r := rec("2021-01-01", 0, 1, 1)
	r.Daily = model.Context{Casual: 100, Registered: 200, Total: 300}
	got := AggregateDaily([]model.Record{r}, model.Daily)
	if got[0].Total != 300 {
		t.Fatalf("expected daily context total 300, got %d", got[0].Total)
	}
}

func TestSplitDaily(t *testing.T) {
	split := SplitDaily([]model.DailyTotal{{Casual: 25, Registered: 50, Total: 75}, {Casual: 0, Registered: 25, Total: 25}})
	if split.Casual != 25 || split.Registered != 75 {
		t.Fatalf("unexpected split counts: %+v", split)
	}
	if split.CasualPct != 25 || split.RegisteredPct != 75 {
		t.Fatalf("unexpected split shares: %+v", split)
	}
	if empty := SplitDaily(nil); empty.CasualPct != 0 || empty.RegisteredPct != 0 {
		t.Fatalf("expected zero shares for empty summary, got %+v", empty)
	}
}
