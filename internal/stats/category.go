package stats

import (
	"sort"

	"github.com/verte-zerg/rentstat/internal/model"
)

// CategoryMatrix is a sparse holiday by weekday table of total rentals.
// Combinations without records have no cell.
type CategoryMatrix struct {
	cells map[model.CategoryKey]int64
}

// AggregateCategories sums the total count of the selected context per
// (holiday, weekday) pair.
func AggregateCategories(records []model.Record, g model.Granularity) *CategoryMatrix {
	m := &CategoryMatrix{cells: make(map[model.CategoryKey]int64)}
	for _, r := range records {
		c := r.Context(g)
		m.cells[model.CategoryKey{Holiday: c.Holiday, Weekday: c.Weekday}] += c.Total
	}
	return m
}

// Get returns the cell for the pair and whether it is present.
func (m *CategoryMatrix) Get(holiday bool, weekday int) (int64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m.cells[model.CategoryKey{Holiday: holiday, Weekday: weekday}]
	return v, ok
}

// Len returns the number of present cells.
func (m *CategoryMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.cells)
}

// Keys returns the present keys, non-holiday first, then by native weekday.
func (m *CategoryMatrix) Keys() []model.CategoryKey {
	if m == nil {
		return nil
	}
	keys := make([]model.CategoryKey, 0, len(m.cells))
	for k := range m.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Holiday != keys[j].Holiday {
			return !keys[i].Holiday
		}
		return keys[i].Weekday < keys[j].Weekday
	})
	return keys
}

// Weekdays returns the distinct weekdays present in the matrix, ascending.
func (m *CategoryMatrix) Weekdays() []int {
	seen := map[int]struct{}{}
	for _, k := range m.Keys() {
		seen[k.Weekday] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// AggregateDuration averages the raw hour field per (weekday, holiday,
// working day) partition of the selected context. Partitions without
// records are absent.
func AggregateDuration(records []model.Record, g model.Granularity) []model.DurationCell {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[model.DurationKey]*acc)
	for _, r := range records {
		c := r.Context(g)
		key := model.DurationKey{Weekday: c.Weekday, Holiday: c.Holiday, WorkingDay: c.WorkingDay}
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
		}
		a.sum += float64(r.Hour)
		a.count++
	}
	out := make([]model.DurationCell, 0, len(groups))
	for key, a := range groups {
		out = append(out, model.DurationCell{
			Key:   key,
			Mean:  a.sum / float64(a.count),
			Count: a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].Key, out[j].Key
		if ki.Weekday != kj.Weekday {
			return ki.Weekday < kj.Weekday
		}
		if ki.Holiday != kj.Holiday {
			return !ki.Holiday
		}
		return !ki.WorkingDay && kj.WorkingDay
	})
	return out
}
