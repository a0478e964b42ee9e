package statsui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/rentstat/internal/model"
	"github.com/verte-zerg/rentstat/internal/stats"
)

const (
	labelColumnWidth = 12
	dayColumnWidth   = 10
)

// buildCategoryTableData lays out the holiday by weekday matrix with
// weekdays as columns. Absent cells are shown as "-".
func buildCategoryTableData(m *stats.CategoryMatrix) ([]table.Column, []table.Row) {
	weekdays := m.Weekdays()
	columns := make([]table.Column, 0, len(weekdays)+1)
	columns = append(columns, table.Column{Title: "", Width: labelColumnWidth})
	for _, d := range weekdays {
		columns = append(columns, table.Column{Title: model.WeekdayName(d), Width: dayColumnWidth})
	}
	if m.Len() == 0 {
		return columns, []table.Row{}
	}
	rows := make([]table.Row, 0, 2)
	for _, holiday := range []bool{false, true} {
		row := table.Row{stats.HolidayLabel(holiday)}
		for _, d := range weekdays {
			if v, ok := m.Get(holiday, d); ok {
				row = append(row, strconv.FormatInt(v, 10))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}
	return columns, rows
}

func buildCategoryTable(m *stats.CategoryMatrix, width, height int) table.Model {
	cols, rows := buildCategoryTableData(m)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(categoryTableStyles())
	return t
}

func applyCategoryTable(m *Model, matrix *stats.CategoryMatrix, width, height int, force bool) {
	cols, rows := buildCategoryTableData(matrix)
	viewportHeight := maxInt(1, height-1)
	if !force &&
		m.tableLayout.width == width &&
		m.tableLayout.height == viewportHeight &&
		m.tableLayout.rowCount == len(rows) &&
		m.tableLayout.colCount == len(cols) {
		return
	}
	// A row with more cells than columns would index past the header.
	m.catTable.SetRows(nil)
	m.catTable.SetColumns(cols)
	m.catTable.SetRows(rows)
	m.tableLayout.rowCount = len(rows)
	m.tableLayout.colCount = len(cols)
	m.tableLayout.width = 0
	m.setTableSize(width, height)
}

func (m *Model) setTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.catTable.SetWidth(width)
	m.catTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustTableHeight(height)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.catTable.SetHeight(viewportHeight)
	}
}

func (m *Model) adjustTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.catTable.Height()
	viewHeight := lipgloss.Height(m.catTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.catTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.catTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func categoryTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
