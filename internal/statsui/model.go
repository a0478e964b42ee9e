// Package statsui provides the Bubble Tea rental dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/rentstat/internal/logger"
	"github.com/verte-zerg/rentstat/internal/model"
	"github.com/verte-zerg/rentstat/internal/stats"
)

const (
	tabOverview = iota
	tabCategories
	tabDuration
	tabCorrelation
)

const (
	defaultPlotHeight = 10
	dateLayout        = "2006-01-02"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// LoadFunc returns the full dataset. It is called on start and on reload.
type LoadFunc func(ctx context.Context) ([]model.Record, error)

type recordsMsg struct {
	records []model.Record
	err     error
}

type datasetChangedMsg struct{}

// Model implements the Bubble Tea dashboard.
type Model struct {
	load    LoadFunc
	changes <-chan struct{}
	cfg     model.ReportConfig

	records []model.Record
	report  stats.Report
	errMsg  string
	loading bool

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	catTable    table.Model
	tableLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// NewModel constructs a dashboard. changes may be nil when the source is
// not watched.
func NewModel(load LoadFunc, cfg model.ReportConfig, changes <-chan struct{}) *Model {
	if cfg.PlotHeight <= 0 {
		cfg.PlotHeight = defaultPlotHeight
	}
	m := &Model{
		load:    load,
		changes: changes,
		cfg:     cfg,
		tabs:    []string{"Overview", "Categories", "Duration", "Correlation"},
		loading: true,
	}
	m.initInputs()
	m.catTable = buildCategoryTable(nil, 0, 1)
	m.initViewports()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForChange())
}

func (m *Model) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		records, err := load(context.Background())
		return recordsMsg{records: records, err: err}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return datasetChangedMsg{}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case recordsMsg:
		m.loading = false
		if msg.err != nil {
			logger.Error("failed to load dataset", "error", msg.err)
			m.errMsg = msg.err.Error()
			m.renderTabContents()
			return m, nil
		}
		m.records = msg.records
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case datasetChangedMsg:
		logger.Info("dataset changed, reloading", "source", m.cfg.Source)
		m.loading = true
		return m, tea.Batch(m.loadCmd(), m.waitForChange())
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.activeTab == tabCategories {
			m.catTable.Focus()
		} else {
			m.catTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "g", "home":
			if m.activeTab == tabCategories {
				m.catTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabCategories {
				m.catTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabCategories {
				var cmd tea.Cmd
				m.catTable, cmd = m.catTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Start (YYYY-MM-DD): "),
		newFilterInput("End (YYYY-MM-DD): "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "dataset bound"
	input.CharLimit = len(dateLayout)
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) < 2 {
		return
	}
	m.filterInputs[0].SetValue(formatBound(m.cfg.Range.Start))
	m.filterInputs[1].SetValue(formatBound(m.cfg.Range.End))
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabCategories {
		m.catTable.Focus()
	} else {
		m.catTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	source := m.cfg.Source
	if source == "" {
		source = "cache"
	}
	rng := "empty dataset"
	if !m.report.Start.IsZero() || !m.report.End.IsZero() {
		rng = fmt.Sprintf("%s to %s", m.report.Start.Format(dateLayout), m.report.End.Format(dateLayout))
	}
	summary := fmt.Sprintf("Source: %s  Range: %s  Records: %d", source, rng, len(m.report.Records))
	if m.loading {
		summary += "  (loading)"
	}
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Range: /  Reload: r  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Date range (enter to apply, esc to cancel, empty = dataset bound)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabCategories && m.errMsg == "" && !m.loading {
		if m.report.Categories.Len() == 0 {
			return fitLines("No rentals found in range.", m.width, height)
		}
		view := tableMutedStyle.Render(m.catTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.records, m.cfg.Range)
	if err != nil {
		m.errMsg = err.Error()
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	applyCategoryTable(m, m.report.Categories, width, bodyHeight, true)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.loading {
		for i := range m.viewports {
			m.viewports[i].SetContent("Loading dataset...")
		}
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load dataset.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width, m.cfg.PlotHeight))
	m.viewports[tabDuration].SetContent(renderDuration(m.report.Duration))
	m.viewports[tabCorrelation].SetContent(renderCorrelation(m.report.Correlations, width, m.cfg.PlotHeight, m.cfg.Color))
}

func renderOverview(report stats.Report, width, plotHeight int) string {
	if len(report.Daily) == 0 {
		return "No rentals found in range."
	}
	cards := renderSummaryCards(report, width)
	chart := stats.RenderDailyChart(report.Daily, stats.PlotWidthFor(width), plotHeight)
	return strings.TrimRight(cards+"\n\n"+chart, "\n")
}

func renderSummaryCards(report stats.Report, width int) string {
	cards := []string{
		metricCard("Total Rentals", strconv.FormatInt(report.Totals.Total, 10)),
		metricCard("Registered", fmt.Sprintf("%d (%.1f%%)", report.Split.Registered, report.Split.RegisteredPct)),
		metricCard("Casual", fmt.Sprintf("%d (%.1f%%)", report.Split.Casual, report.Split.CasualPct)),
		metricCard("Days", strconv.Itoa(len(report.Daily))),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderDuration(cells []model.DurationCell) string {
	var buf bytes.Buffer
	if err := stats.RenderDuration(&buf, cells); err != nil {
		return fmt.Sprintf("Failed to render duration profile: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderCorrelation(results []stats.CorrelationResult, width, plotHeight int, color bool) string {
	if len(results) == 0 {
		return "No rentals found in range."
	}
	cards := make([]string, 0, len(results))
	for _, res := range results {
		cards = append(cards, metricCard(res.Pairs.Label(), stats.FormatCorrelation(res)))
	}
	var header string
	if width < 80 {
		header = strings.Join(cards, "\n")
	} else {
		header = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	var buf bytes.Buffer
	plotWidth := stats.PlotWidthFor(width)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if err := stats.PlotScatterWithColor(&buf, stats.ScatterTitle(res.Pairs), res.Pairs, res.Correlation, plotWidth, plotHeight, color); err != nil {
			return fmt.Sprintf("Failed to render correlation plots: %v", err)
		}
	}
	return strings.TrimRight(header+"\n\n"+buf.String(), "\n")
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	start, err := parseBound(m.filterInputs[0].Value())
	if err != nil {
		return fmt.Errorf("invalid start date (expected YYYY-MM-DD)")
	}
	end, err := parseBound(m.filterInputs[1].Value())
	if err != nil {
		return fmt.Errorf("invalid end date (expected YYYY-MM-DD)")
	}
	m.cfg.Range = model.DateRange{Start: start, End: end}
	return nil
}

func parseBound(input string) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, input)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
