// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Granularity selects one of the two parallel contexts carried by a record.
type Granularity int

const (
	// Hourly selects the per-hour context.
	Hourly Granularity = iota
	// Daily selects the per-day context.
	Daily
)

// String returns the lowercase granularity name.
func (g Granularity) String() string {
	switch g {
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Covariate is a normalized climate measure that can be correlated with rentals.
type Covariate int

const (
	// ATemp is the perceived temperature.
	ATemp Covariate = iota
	// Humidity is the relative humidity.
	Humidity
)

// Stored covariates are normalized to [0,1]. These restore real-world units.
const (
	// ATempScale maps normalized perceived temperature to degrees Celsius (0..50).
	ATempScale = 50.0
	// HumidityScale maps the humidity fraction to percent.
	HumidityScale = 100.0
)

// Scale returns the multiplier restoring the covariate's real-world unit.
func (c Covariate) Scale() float64 {
	if c == Humidity {
		return HumidityScale
	}
	return ATempScale
}

// String returns the covariate name.
func (c Covariate) String() string {
	switch c {
	case ATemp:
		return "temperature"
	case Humidity:
		return "humidity"
	default:
		return fmt.Sprintf("covariate(%d)", int(c))
	}
}

// Unit returns the display unit of the rescaled covariate.
func (c Covariate) Unit() string {
	if c == Humidity {
		return "%"
	}
	return "°C"
}

// Context holds the calendar flags, climate covariates, and rental counts
// observed at one granularity.
type Context struct {
	Holiday    bool
	Weekday    int
	WorkingDay bool
	ATemp      float64
	Humidity   float64
	Casual     int64
	Registered int64
	Total      int64
}

// Covariate returns the normalized value of c.
func (c Context) Covariate(cov Covariate) float64 {
	if cov == Humidity {
		return c.Humidity
	}
	return c.ATemp
}

// Record is one row of the rental dataset.
type Record struct {
	// Date is the calendar day at midnight UTC.
	Date time.Time
	// Hour is the source "hr" field. The duration profile averages the raw
	// value without assigning it a unit.
	Hour   int
	Hourly Context
	Daily  Context
}

// Context returns the context for the given granularity.
func (r Record) Context(g Granularity) Context {
	if g == Daily {
		return r.Daily
	}
	return r.Hourly
}

// DateRange is an inclusive calendar-day interval. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// DailyTotal is one row of the daily summary.
type DailyTotal struct {
	Date       time.Time `json:"date"`
	Casual     int64     `json:"casual"`
	Registered int64     `json:"registered"`
	Total      int64     `json:"total"`
}

// Split is the share of casual and registered rentals.
type Split struct {
	Casual        int64
	Registered    int64
	CasualPct     float64
	RegisteredPct float64
}

// CategoryKey identifies one cell of the holiday by weekday matrix.
type CategoryKey struct {
	Holiday bool
	Weekday int
}

// DurationKey identifies one partition of the duration profile.
type DurationKey struct {
	Weekday    int
	Holiday    bool
	WorkingDay bool
}

// DurationCell is the mean duration value of one partition.
type DurationCell struct {
	Key   DurationKey
	Mean  float64
	Count int
}

// WeekdayNames uses the dataset's native encoding, 0=Sunday.
var WeekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayName returns the name for a native weekday index.
func WeekdayName(weekday int) string {
	if weekday >= 0 && weekday < len(WeekdayNames) {
		return WeekdayNames[weekday]
	}
	return fmt.Sprintf("day %d", weekday)
}

// ReportConfig defines the data source and filters for a report.
type ReportConfig struct {
	Source     string
	Range      DateRange
	PlotHeight int
	Color      bool
	Watch      bool
}
