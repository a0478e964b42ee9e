package stats

import (
	"github.com/guptarohit/asciigraph"

	"github.com/verte-zerg/rentstat/internal/model"
)

const (
	minChartWidth  = 20
	minChartHeight = 3
	chartCaption   = "Daily rentals: total (blue), registered (green), casual (red)"
)

// DailySeries splits a daily summary into total, registered, and casual series.
func DailySeries(days []model.DailyTotal) (total, registered, casual []float64) {
	total = make([]float64, len(days))
	registered = make([]float64, len(days))
	casual = make([]float64, len(days))
	for i, d := range days {
		total[i] = float64(d.Total)
		registered[i] = float64(d.Registered)
		casual[i] = float64(d.Casual)
	}
	return total, registered, casual
}

// RenderDailyChart draws the three daily series as an ASCII line chart.
func RenderDailyChart(days []model.DailyTotal, width, height int) string {
	if len(days) == 0 {
		return "No data available"
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minChartWidth {
		width = minChartWidth
	}
	if height < minChartHeight {
		height = defaultPlotHeight
	}

	total, registered, casual := DailySeries(days)
	if len(days) == 1 {
		// asciigraph needs two points to draw a segment.
		total = append(total, total[0])
		registered = append(registered, registered[0])
		casual = append(casual, casual[0])
	}

	return asciigraph.PlotMany([][]float64{total, registered, casual},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(chartCaption),
		asciigraph.SeriesColors(
			asciigraph.Blue,
			asciigraph.Green,
			asciigraph.Red,
		),
	)
}
