package stats

import (
	"fmt"
	"math"

	"github.com/verte-zerg/rentstat/internal/model"
)

// Pairs holds a rescaled covariate series and its paired rental totals.
// The same X values back both the coefficient and the scatter plot.
type Pairs struct {
	Covariate   model.Covariate
	Granularity model.Granularity
	X           []float64
	Y           []float64
}

// Label returns a human readable name such as "hourly temperature".
func (p Pairs) Label() string {
	return fmt.Sprintf("%s %s", p.Granularity, p.Covariate)
}

// Correlation is the linear relationship between a covariate and rentals.
type Correlation struct {
	// Coefficient is the Pearson coefficient in [-1, 1].
	Coefficient float64
	// Percent is Coefficient*100 rounded to two decimals.
	Percent float64
	// Slope and Intercept describe the least-squares line over the rescaled X.
	Slope     float64
	Intercept float64
	N         int
}

// CorrelationResult is one entry of CorrelateAll.
type CorrelationResult struct {
	Pairs       Pairs
	Correlation Correlation
	Err         error
}

// Rescale builds the covariate series of the selected context multiplied by
// the covariate's scale, paired with the context's total count.
func Rescale(records []model.Record, c model.Covariate, g model.Granularity) Pairs {
	scale := c.Scale()
	p := Pairs{
		Covariate:   c,
		Granularity: g,
		X:           make([]float64, len(records)),
		Y:           make([]float64, len(records)),
	}
	for i, r := range records {
		ctx := r.Context(g)
		p.X[i] = ctx.Covariate(c) * scale
		p.Y[i] = float64(ctx.Total)
	}
	return p
}

// Correlate computes the Pearson coefficient and regression line of p.
func Correlate(p Pairs) (Correlation, error) {
	m, err := moments(p.X, p.Y)
	if err != nil {
		return Correlation{}, fmt.Errorf("correlate %s: %w", p.Label(), err)
	}
	coef := m.coefficient()
	// The regression line is computed on the normalized series and mapped
	// back to the original units.
	slope := m.sxy / m.sxx * (m.scaleY / m.scaleX)
	intercept := m.meanY*m.scaleY - slope*m.meanX*m.scaleX
	if !isFinite(slope) || !isFinite(intercept) {
		return Correlation{}, fmt.Errorf("correlate %s: regression line: %w", p.Label(), ErrNonFinite)
	}
	return Correlation{
		Coefficient: coef,
		Percent:     math.Round(coef*100*100) / 100,
		Slope:       slope,
		Intercept:   intercept,
		N:           len(p.X),
	}, nil
}

// Pearson returns the Pearson correlation coefficient of x and y using
// population moments.
func Pearson(x, y []float64) (float64, error) {
	m, err := moments(x, y)
	if err != nil {
		return 0, err
	}
	return m.coefficient(), nil
}

// CorrelateAll correlates temperature and humidity with rentals for both
// granularities. A degenerate pair carries its error without affecting the others.
func CorrelateAll(records []model.Record) []CorrelationResult {
	order := []struct {
		c model.Covariate
		g model.Granularity
	}{
		{model.ATemp, model.Hourly},
		{model.ATemp, model.Daily},
		{model.Humidity, model.Hourly},
		{model.Humidity, model.Daily},
	}
	out := make([]CorrelationResult, 0, len(order))
	for _, o := range order {
		p := Rescale(records, o.c, o.g)
		corr, err := Correlate(p)
		out = append(out, CorrelationResult{Pairs: p, Correlation: corr, Err: err})
	}
	return out
}

// pairMoments holds the moments of x/scaleX and y/scaleY. Dividing by the
// largest magnitude keeps every intermediate within [-1, 1] so sums of
// squares cannot overflow.
type pairMoments struct {
	scaleX, scaleY float64
	meanX, meanY   float64
	sxx, syy, sxy  float64
}

func (m pairMoments) coefficient() float64 {
	coef := m.sxy / (math.Sqrt(m.sxx) * math.Sqrt(m.syy))
	return math.Max(-1, math.Min(1, coef))
}

func moments(x, y []float64) (pairMoments, error) {
	if len(x) != len(y) {
		return pairMoments{}, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return pairMoments{}, ErrInsufficientData
	}
	scaleX, okX := maxAbs(x)
	scaleY, okY := maxAbs(y)
	if !okX || !okY {
		return pairMoments{}, ErrNonFinite
	}
	if isConstant(x) || isConstant(y) {
		return pairMoments{}, ErrZeroVariance
	}

	m := pairMoments{scaleX: scaleX, scaleY: scaleY}
	for i := 0; i < n; i++ {
		m.meanX += x[i] / scaleX
		m.meanY += y[i] / scaleY
	}
	m.meanX /= float64(n)
	m.meanY /= float64(n)
	for i := 0; i < n; i++ {
		dx := x[i]/scaleX - m.meanX
		dy := y[i]/scaleY - m.meanY
		m.sxx += dx * dx
		m.syy += dy * dy
		m.sxy += dx * dy
	}
	m.sxx /= float64(n)
	m.syy /= float64(n)
	m.sxy /= float64(n)
	if m.sxx <= 0 || m.syy <= 0 {
		return pairMoments{}, ErrZeroVariance
	}
	return m, nil
}

// maxAbs returns the largest magnitude in values, or false when a value is
// NaN or infinite.
func maxAbs(values []float64) (float64, bool) {
	var out float64
	for _, v := range values {
		if !isFinite(v) {
			return 0, false
		}
		if a := math.Abs(v); a > out {
			out = a
		}
	}
	return out, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// isConstant reports whether every value equals the first. Floating-point
// means of a constant series can leave tiny non-zero deviations, so the
// check is done on the raw values.
func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
