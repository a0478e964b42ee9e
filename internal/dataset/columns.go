package dataset

import (
	"fmt"
	"strings"
)

// Source column names. The "_x" suffix marks the hourly context and "_y"
// the daily context; nothing outside this package depends on the suffixes.
const (
	columnDate = "dteday"
	columnHour = "hr"

	suffixHourly = "_x"
	suffixDaily  = "_y"
)

var contextFields = []string{
	"holiday",
	"weekday",
	"workingday",
	"atemp",
	"hum",
	"casual",
	"registered",
	"cnt",
}

// contextColumns holds the header positions of one context's fields.
type contextColumns struct {
	holiday    int
	weekday    int
	workingDay int
	atemp      int
	humidity   int
	casual     int
	registered int
	total      int
}

type columnIndex struct {
	date   int
	hour   int
	hourly contextColumns
	daily  contextColumns
	names  []string
}

func newColumnIndex(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	names := make([]string, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		names[i] = name
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		idx, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return idx
	}
	context := func(suffix string) contextColumns {
		return contextColumns{
			holiday:    lookup("holiday" + suffix),
			weekday:    lookup("weekday" + suffix),
			workingDay: lookup("workingday" + suffix),
			atemp:      lookup("atemp" + suffix),
			humidity:   lookup("hum" + suffix),
			casual:     lookup("casual" + suffix),
			registered: lookup("registered" + suffix),
			total:      lookup("cnt" + suffix),
		}
	}

	idx := columnIndex{
		date:   lookup(columnDate),
		hour:   lookup(columnHour),
		hourly: context(suffixHourly),
		daily:  context(suffixDaily),
		names:  names,
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) name(i int) string {
	if i >= 0 && i < len(c.names) {
		return c.names[i]
	}
	return ""
}

// RequiredColumns lists every header name the loader needs.
func RequiredColumns() []string {
	out := []string{columnDate, columnHour}
	for _, suffix := range []string{suffixHourly, suffixDaily} {
		for _, f := range contextFields {
			out = append(out, f+suffix)
		}
	}
	return out
}
