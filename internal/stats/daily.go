package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/rentstat/internal/model"
)

// AggregateDaily sums casual, registered, and total counts of the selected
// context per calendar day. Days without records are omitted and the result
// is sorted by date.
func AggregateDaily(records []model.Record, g model.Granularity) []model.DailyTotal {
	byDay := make(map[time.Time]*model.DailyTotal)
	for _, r := range records {
		d := Day(r.Date)
		agg, ok := byDay[d]
		if !ok {
			agg = &model.DailyTotal{Date: d}
			byDay[d] = agg
		}
		c := r.Context(g)
		agg.Casual += c.Casual
		agg.Registered += c.Registered
		agg.Total += c.Total
	}
	out := make([]model.DailyTotal, 0, len(byDay))
	for _, agg := range byDay {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SumDaily totals a daily summary. The returned Date is zero.
func SumDaily(days []model.DailyTotal) model.DailyTotal {
	var sum model.DailyTotal
	for _, d := range days {
		sum.Casual += d.Casual
		sum.Registered += d.Registered
		sum.Total += d.Total
	}
	return sum
}

// SplitDaily computes the casual and registered shares of a daily summary.
func SplitDaily(days []model.DailyTotal) model.Split {
	sum := SumDaily(days)
	split := model.Split{Casual: sum.Casual, Registered: sum.Registered}
	den := float64(sum.Casual + sum.Registered)
	if den > 0 {
		split.CasualPct = float64(sum.Casual) / den * 100
		split.RegisteredPct = float64(sum.Registered) / den * 100
	}
	return split
}
