package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	axisLabelWidth      = 6
)

const (
	layerPoints = iota
	layerTrend
)

var trendStyle = lineStyle{name: "dashed", period: 6, on: 3}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "red", code: "\x1b[31m"},
}

// ScatterTitle builds the plot title for a correlation series.
func ScatterTitle(p Pairs) string {
	return fmt.Sprintf("Rentals vs %s (%s)", p.Label(), p.Covariate.Unit())
}

// PlotScatter renders the rescaled covariate against rentals as a braille
// scatter plot with the regression line overlaid.
func PlotScatter(w io.Writer, title string, p Pairs, corr Correlation, width, height int) error {
	return plotScatter(w, title, p, corr, width, height, false)
}

// PlotScatterWithColor renders a scatter plot with optional forced color output.
func PlotScatterWithColor(w io.Writer, title string, p Pairs, corr Correlation, width, height int, forceColor bool) error {
	return plotScatter(w, title, p, corr, width, height, forceColor)
}

func plotScatter(w io.Writer, title string, p Pairs, corr Correlation, width, height int, forceColor bool) error {
	n := len(p.X)
	if len(p.Y) < n {
		n = len(p.Y)
	}
	if n == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	minX, maxX := seriesMinMax(p.X[:n])
	minY, maxY := seriesMinMax(p.Y[:n])
	if math.Abs(maxX-minX) < 1e-9 {
		minX--
		maxX++
	}
	if math.Abs(maxY-minY) < 1e-9 {
		minY--
		maxY++
	}

	dotsX := width * 2
	dotsY := height * 4
	layers := [][][]uint8{makeCells(height, width), makeCells(height, width)}
	for i := 0; i < n; i++ {
		px := valueToCol(p.X[i], minX, maxX, dotsX)
		py := valueToRow(p.Y[i], minY, maxY, dotsY)
		setBrailleDot(layers[layerPoints], px, py)
	}
	if corr.N > 0 {
		x0 := valueToCol(minX, minX, maxX, dotsX)
		x1 := valueToCol(maxX, minX, maxX, dotsX)
		y0 := valueToRow(corr.Intercept+corr.Slope*minX, minY, maxY, dotsY)
		y1 := valueToRow(corr.Intercept+corr.Slope*maxX, minY, maxY, dotsY)
		drawLine(x0, y0, x1, y1, func(dx, dy int) {
			if trendStyle.shouldPlot(dx) {
				setBrailleDot(layers[layerTrend], dx, dy)
			}
		})
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := makeAxisLabels(height, minY, maxY)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, axisLabels[y], axisSeparator))
		for x := 0; x < width; x++ {
			mask, layer := composeCell(layers, x, y)
			ch := brailleFromMask(mask)
			if useColor && layer >= 0 {
				row.WriteString(colorPalette[layer%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderXAxis(minX, maxX, width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderScatterLegend(corr, useColor)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := axisLabelWidth + runewidth.StringWidth(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, minVal, maxVal float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = formatAxisValue(maxVal)
	if height > 2 {
		labels[height/2] = formatAxisValue((minVal + maxVal) / 2)
	}
	if height > 1 {
		labels[height-1] = formatAxisValue(minVal)
	}
	return labels
}

func formatAxisValue(v float64) string {
	if math.Abs(v) >= 1e5 {
		return fmt.Sprintf("%.0e", v)
	}
	return fmt.Sprintf("%.0f", v)
}

func renderXAxis(minX, maxX float64, width int) string {
	left := fmt.Sprintf("%.1f", minX)
	right := fmt.Sprintf("%.1f", maxX)
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	prefix := strings.Repeat(" ", axisLabelWidth+runewidth.StringWidth(axisSeparator))
	return prefix + left + strings.Repeat(" ", gap) + right
}

func renderScatterLegend(corr Correlation, useColor bool) string {
	points := fmt.Sprintf("%c rentals", brailleFromMask(0x01))
	trend := fmt.Sprintf("%c regression (%s)", brailleFromMask(0x09), trendStyle.name)
	if useColor {
		points = colorPalette[layerPoints].code + points + colorReset
		trend = colorPalette[layerTrend].code + trend + colorReset
	}
	return fmt.Sprintf("Legend: %s  %s  r=%.2f%%", points, trend, corr.Percent)
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the layers of one cell. The returned index is the
// topmost layer with a dot, used for coloring.
func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	layerIdx := -1
	for i, cells := range layers {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		layerIdx = i
		mask |= cellMask
	}
	return mask, layerIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func seriesMinMax(values []float64) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.IsInf(minVal, 1) {
		minVal = 0
	}
	if math.IsInf(maxVal, -1) {
		maxVal = 0
	}
	return minVal, maxVal
}

func valueToCol(v, minVal, maxVal float64, width int) int {
	if width <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	col := int(math.Round(pos * float64(width-1)))
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return col
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// brailleDotMask maps a dot inside a 2x4 braille cell to its bit.
func brailleDotMask(x, y int) uint8 {
	if x == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[y]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
