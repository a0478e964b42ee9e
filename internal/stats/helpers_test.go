package stats

import (
	"time"

	"github.com/verte-zerg/rentstat/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// rec builds a record whose hourly and daily contexts share flags and counts.
func rec(date string, hour int, casual, registered int64) model.Record {
	d := day(date)
	ctx := model.Context{
		Weekday:    int(d.Weekday()),
		WorkingDay: d.Weekday() != time.Saturday && d.Weekday() != time.Sunday,
		ATemp:      0.3,
		Humidity:   0.5,
		Casual:     casual,
		Registered: registered,
		Total:      casual + registered,
	}
	return model.Record{Date: d, Hour: hour, Hourly: ctx, Daily: ctx}
}
