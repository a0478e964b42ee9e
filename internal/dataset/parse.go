package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/rentstat/internal/model"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

var (
	errNegative   = errors.New("negative value")
	errNotFinite  = errors.New("value is not finite")
	errOutOfRange = errors.New("value out of range")
	errInvariant  = errors.New("total does not equal casual + registered")
)

// ParseCSV reads a comma-separated dataset with a header row.
func ParseCSV(r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := newColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowError{Line: perr.StartLine, Err: err}
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(cols, row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sortByDate(records)
	return records, nil
}

// ParseRows parses an in-memory table whose first row is the header.
func ParseRows(rows [][]string) ([]model.Record, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	cols, err := newColumnIndex(rows[0])
	if err != nil {
		return nil, err
	}
	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(cols, row, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sortByDate(records)
	return records, nil
}

func parseRow(cols columnIndex, row []string, line int) (model.Record, error) {
	p := rowParser{cols: cols, row: row, line: line}
	rec := model.Record{
		Date:   p.date(cols.date),
		Hour:   int(p.integer(cols.hour)),
		Hourly: p.context(cols.hourly),
		Daily:  p.context(cols.daily),
	}
	if p.err != nil {
		return model.Record{}, p.err
	}
	if rec.Hourly.Casual+rec.Hourly.Registered != rec.Hourly.Total {
		return model.Record{}, &RowError{Line: line, Column: cols.name(cols.hourly.total), Err: errInvariant}
	}
	if rec.Daily.Casual+rec.Daily.Registered != rec.Daily.Total {
		return model.Record{}, &RowError{Line: line, Column: cols.name(cols.daily.total), Err: errInvariant}
	}
	return rec, nil
}

// rowParser keeps the first field error of a row.
type rowParser struct {
	cols columnIndex
	row  []string
	line int
	err  error
}

func (p *rowParser) field(i int) (string, bool) {
	if p.err != nil {
		return "", false
	}
	if i >= len(p.row) {
		p.fail(i, errors.New("field is missing"))
		return "", false
	}
	return strings.TrimSpace(p.row[i]), true
}

func (p *rowParser) fail(i int, err error) {
	if p.err == nil {
		p.err = &RowError{Line: p.line, Column: p.cols.name(i), Err: err}
	}
}

func (p *rowParser) context(c contextColumns) model.Context {
	return model.Context{
		Holiday:    p.flag(c.holiday),
		Weekday:    p.weekday(c.weekday),
		WorkingDay: p.flag(c.workingDay),
		ATemp:      p.unit(c.atemp),
		Humidity:   p.unit(c.humidity),
		Casual:     p.integer(c.casual),
		Registered: p.integer(c.registered),
		Total:      p.integer(c.total),
	}
}

func (p *rowParser) date(i int) time.Time {
	s, ok := p.field(i)
	if !ok {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
	}
	p.fail(i, fmt.Errorf("invalid date %q", s))
	return time.Time{}
}

// integer parses a non-negative whole number. Integral floats such as
// "12.0" are accepted since spreadsheet exports often write them.
func (p *rowParser) integer(i int) int64 {
	s, ok := p.field(i)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			p.fail(i, fmt.Errorf("invalid integer %q", s))
			return 0
		}
		if math.Abs(f) >= math.MaxInt64 {
			p.fail(i, fmt.Errorf("integer %q: %w", s, errOutOfRange))
			return 0
		}
		v = int64(f)
	}
	if v < 0 {
		p.fail(i, errNegative)
		return 0
	}
	return v
}

func (p *rowParser) real(i int) float64 {
	s, ok := p.field(i)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(i, fmt.Errorf("invalid number %q", s))
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(i, errNotFinite)
		return 0
	}
	return v
}

func (p *rowParser) weekday(i int) int {
	v := p.integer(i)
	if v > 6 {
		p.fail(i, fmt.Errorf("weekday %d: %w", v, errOutOfRange))
		return 0
	}
	return int(v)
}

// unit parses a normalized measurement in [0, 1].
func (p *rowParser) unit(i int) float64 {
	v := p.real(i)
	if v < 0 || v > 1 {
		p.fail(i, fmt.Errorf("%v not in [0, 1]: %w", v, errOutOfRange))
		return 0
	}
	return v
}

func (p *rowParser) flag(i int) bool {
	s, ok := p.field(i)
	if !ok {
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && (f == 0 || f == 1) {
		return f == 1
	}
	p.fail(i, fmt.Errorf("invalid flag %q", s))
	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func sortByDate(records []model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}
