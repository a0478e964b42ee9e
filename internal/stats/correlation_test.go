package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/rentstat/internal/model"
)

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"perfect negative", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1},
		{"uncorrelated", []float64{1, 2, 3, 4}, []float64{1, 3, 3, 1}, 0},
		{"partial", []float64{1, 2, 3, 4, 5}, []float64{2, 4, 5, 4, 5}, 0.7745966692414834},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pearson(tt.x, tt.y)
			if err != nil {
				t.Fatalf("Pearson failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearsonErrors(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want error
	}{
		{"empty", nil, nil, ErrInsufficientData},
		{"single point", []float64{1}, []float64{2}, ErrInsufficientData},
		{"length mismatch", []float64{1, 2}, []float64{1}, ErrLengthMismatch},
		{"constant covariate", []float64{0.2, 0.2, 0.2}, []float64{1, 5, 9}, ErrZeroVariance},
		{"constant counts", []float64{0.1, 0.2, 0.3}, []float64{4, 4, 4}, ErrZeroVariance},
		{"nan covariate", []float64{0.1, math.NaN(), 0.3}, []float64{1, 2, 3}, ErrNonFinite},
		{"infinite counts", []float64{0.1, 0.2, 0.3}, []float64{1, math.Inf(1), 3}, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pearson(tt.x, tt.y)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if math.IsNaN(got) {
				t.Fatalf("expected no NaN on error")
			}
		})
	}
}

func TestCorrelateScaleInvariance(t *testing.T) {
	records := correlationRecords()
	for _, c := range []model.Covariate{model.ATemp, model.Humidity} {
		for _, g := range []model.Granularity{model.Hourly, model.Daily} {
			p := Rescale(records, c, g)
			base, err := Correlate(p)
			if err != nil {
				t.Fatalf("Correlate %s failed: %v", p.Label(), err)
			}
			for _, k := range []float64{0.01, 3, 1000} {
				scaled := Pairs{Covariate: c, Granularity: g, X: make([]float64, len(p.X)), Y: p.Y}
				for i, x := range p.X {
					scaled.X[i] = x * k
				}
				got, err := Correlate(scaled)
				if err != nil {
					t.Fatalf("Correlate scaled failed: %v", err)
				}
				if math.Abs(got.Coefficient-base.Coefficient) > 1e-9 {
					t.Fatalf("%s: k=%v changed coefficient %v -> %v", p.Label(), k, base.Coefficient, got.Coefficient)
				}
			}
		}
	}
}

func TestPearsonExtremeMagnitudes(t *testing.T) {
	x := []float64{10, 20, 30, 25}
	y := []float64{40, 85, 160, 120}
	base, err := Pearson(x, y)
	if err != nil {
		t.Fatalf("Pearson failed: %v", err)
	}
	for _, k := range []float64{1e-300, 1e-150, 1e150, 1e160, 1e200, 1e300} {
		scaled := make([]float64, len(x))
		for i, v := range x {
			scaled[i] = v * k
		}
		got, err := Pearson(scaled, y)
		if err != nil {
			t.Fatalf("k=%g: Pearson failed: %v", k, err)
		}
		if math.IsNaN(got) || math.Abs(got-base) > 1e-9 {
			t.Fatalf("k=%g: got %v, want %v", k, got, base)
		}
	}

	got, err := Pearson([]float64{1e308, 1e308, -1e308}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Pearson failed near float limits: %v", err)
	}
	if math.IsNaN(got) || math.Abs(got-(-math.Sqrt(3)/2)) > 1e-9 {
		t.Fatalf("unexpected coefficient near float limits: %v", got)
	}
}

func TestCorrelateExtremeMagnitudes(t *testing.T) {
	p := Pairs{X: []float64{1e200, 2e200, 3e200, 4e200, 5e200}, Y: []float64{2, 4, 5, 4, 5}}
	corr, err := Correlate(p)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if corr.Percent != 77.46 {
		t.Fatalf("expected 77.46%%, got %v", corr.Percent)
	}
	if math.Abs(corr.Slope/0.6e-200-1) > 1e-9 || math.Abs(corr.Intercept-2.2) > 1e-9 {
		t.Fatalf("unexpected regression line: slope=%v intercept=%v", corr.Slope, corr.Intercept)
	}
}

func TestRescaleUsesScaleConstants(t *testing.T) {
	records := correlationRecords()
	temp := Rescale(records, model.ATemp, model.Hourly)
	if math.Abs(temp.X[0]-records[0].Hourly.ATemp*model.ATempScale) > 1e-12 {
		t.Fatalf("expected temperature rescaled by %v, got %v", model.ATempScale, temp.X[0])
	}
	hum := Rescale(records, model.Humidity, model.Daily)
	if math.Abs(hum.X[0]-records[0].Daily.Humidity*model.HumidityScale) > 1e-12 {
		t.Fatalf("expected humidity rescaled by %v, got %v", model.HumidityScale, hum.X[0])
	}
	if hum.Y[0] != float64(records[0].Daily.Total) {
		t.Fatalf("expected daily totals as Y, got %v", hum.Y[0])
	}
}

func TestCorrelatePercentAndRegression(t *testing.T) {
	p := Pairs{X: []float64{1, 2, 3, 4, 5}, Y: []float64{2, 4, 5, 4, 5}}
	corr, err := Correlate(p)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if corr.Percent != 77.46 {
		t.Fatalf("expected 77.46%%, got %v", corr.Percent)
	}
	if math.Abs(corr.Slope-0.6) > 1e-9 || math.Abs(corr.Intercept-2.2) > 1e-9 {
		t.Fatalf("unexpected regression line: slope=%v intercept=%v", corr.Slope, corr.Intercept)
	}
	if corr.N != 5 {
		t.Fatalf("expected N=5, got %d", corr.N)
	}
}

func TestCorrelateAll(t *testing.T) {
	results := CorrelateAll(correlationRecords())
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	labels := []string{"hourly temperature", "daily temperature", "hourly humidity", "daily humidity"}
	for i, res := range results {
		if res.Pairs.Label() != labels[i] {
			t.Fatalf("unexpected label at %d: %s", i, res.Pairs.Label())
		}
		if res.Err != nil {
			t.Fatalf("%s: unexpected error %v", labels[i], res.Err)
		}
		if res.Correlation.Percent < -100 || res.Correlation.Percent > 100 {
			t.Fatalf("%s: percent out of range: %v", labels[i], res.Correlation.Percent)
		}
	}
}

func TestCorrelateAllEmpty(t *testing.T) {
	for _, res := range CorrelateAll(nil) {
		if !errors.Is(res.Err, ErrInsufficientData) {
			t.Fatalf("%s: expected insufficient data, got %v", res.Pairs.Label(), res.Err)
		}
	}
}

func TestCorrelateAllDegenerateIsolated(t *testing.T) {
	records := correlationRecords()
	for i := range records {
		records[i].Daily.Humidity = 0.2
	}
	results := CorrelateAll(records)
	if !errors.Is(results[3].Err, ErrZeroVariance) {
		t.Fatalf("expected zero variance for daily humidity, got %v", results[3].Err)
	}
	for _, res := range results[:3] {
		if res.Err != nil {
			t.Fatalf("%s: expected other pairs to succeed, got %v", res.Pairs.Label(), res.Err)
		}
	}
}

func correlationRecords() []model.Record {
	atemps := []float64{0.2, 0.35, 0.5, 0.42, 0.61}
	hums := []float64{0.81, 0.64, 0.4, 0.55, 0.3}
	totals := []int64{40, 85, 160, 120, 210}
	records := make([]model.Record, len(atemps))
	for i := range atemps {
		r := rec("2021-01-01", i, totals[i]/4, totals[i]-totals[i]/4)
		r.Hourly.ATemp = atemps[i]
		r.Hourly.Humidity = hums[i]
		r.Daily.ATemp = atemps[len(atemps)-1-i]
		r.Daily.Humidity = hums[len(hums)-1-i]
		r.Daily.Total = totals[i] * 10
		records[i] = r
	}
	return records
}
