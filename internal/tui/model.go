package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/models"
	"github.com/jwaldner/mtts/internal/table"
)

// ReloadFunc fetches a fresh payload
type ReloadFunc func(ctx context.Context) (*models.Results, error)

// sortKeys maps number keys to sortable columns in display order
var sortKeys = map[string]table.Field{
	"1": table.FieldTicker,
	"2": table.FieldPrice,
	"3": table.FieldRSRating,
	"4": table.FieldVolAvg,
	"5": table.FieldStatus,
	"6": table.FieldMatchCount,
	"7": table.FieldName,
}

type reloadedMsg struct {
	results *models.Results
	err     error
}

// Model is the interactive table browser
type Model struct {
	pipeline *table.Pipeline
	state    table.ViewState
	view     table.View
	meta     table.PresentedMetadata
	reload   ReloadFunc

	cursor    int
	searching bool
	status    string
	err       error
	quitting  bool
}

// New builds a browser over res starting from state. reload may be nil.
func New(res *models.Results, state table.ViewState, reload ReloadFunc) Model {
	m := Model{
		pipeline: table.NewPipeline(res.Data, table.Stages{}),
		state:    state,
		meta:     table.PresentMetadata(res.Metadata),
		reload:   reload,
	}
	m.refresh()
	return m
}

// State returns the current view state
func (m Model) State() table.ViewState { return m.state }

// Current returns the last computed table view
func (m Model) Current() table.View { return m.view }

// Searching reports whether the search box has focus
func (m Model) Searching() bool { return m.searching }

// Err returns the last pipeline or reload error
func (m Model) Err() error { return m.err }

// refresh reruns the pipeline and adopts its clamped page index.
func (m *Model) refresh() {
	v, err := m.pipeline.Run(m.state)
	if err != nil {
		m.err = err
		logger.Warn.Printf("table view failed: %v", err)
		return
	}
	m.err = nil
	m.view = v
	m.state = m.state.Reconcile(v.Page)
	if m.cursor >= len(v.Rows) {
		m.cursor = len(v.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) reloadCmd() tea.Cmd {
	reload := m.reload
	return func() tea.Msg {
		res, err := reload(context.Background())
		return reloadedMsg{results: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateTable(msg)
	case reloadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "reload failed"
			return m, nil
		}
		m.pipeline.Load(msg.results.Data)
		m.meta = table.PresentMetadata(msg.results.Metadata)
		m.status = fmt.Sprintf("reloaded %d rows", len(msg.results.Data))
		m.refresh()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyEsc:
		m.searching = false
		m.state = m.state.WithSearch("")
		m.refresh()
	case tea.KeyBackspace:
		r := []rune(m.state.SearchText)
		if len(r) > 0 {
			m.state = m.state.WithSearch(string(r[:len(r)-1]))
			m.refresh()
		}
	case tea.KeySpace:
		m.state = m.state.WithSearch(m.state.SearchText + " ")
		m.refresh()
	case tea.KeyRunes:
		m.state = m.state.WithSearch(m.state.SearchText + string(msg.Runes))
		m.refresh()
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.status = ""
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, nil
	case "p":
		m.state = m.state.WithPassOnly(!m.state.PassOnly)
	case "s":
		m.state, _ = m.state.WithSortKeys(table.DefaultSortKeys())
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.view.Rows)-1 {
			m.cursor++
		}
		return m, nil
	case "enter", " ":
		if m.cursor < len(m.view.Rows) {
			m.state = m.state.ToggleExpanded(m.view.Rows[m.cursor].ID)
		}
	case "left", "h":
		m.state = m.state.PrevPage()
		m.cursor = 0
	case "right", "l":
		if m.view.Page.CanNext {
			m.state = m.state.NextPage()
			m.cursor = 0
		}
	case "+", "=":
		m.stepPageSize(1)
	case "-":
		m.stepPageSize(-1)
	case "r":
		if m.reload != nil {
			m.status = "reloading..."
			return m, m.reloadCmd()
		}
		return m, nil
	default:
		field, ok := sortKeys[key]
		if !ok {
			return m, nil
		}
		next, err := m.state.ToggleSort(field)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.state = next
	}
	m.refresh()
	return m, nil
}

func (m *Model) stepPageSize(dir int) {
	opts := table.PageSizeOptions
	for i, s := range opts {
		if s != m.state.Page.Size {
			continue
		}
		j := i + dir
		if j < 0 || j >= len(opts) {
			return
		}
		if next, err := m.state.WithPageSize(opts[j]); err == nil {
			m.state = next
			m.cursor = 0
		}
		return
	}
}

func sortMarker(keys []table.SortKey, f table.Field) string {
	for i, k := range keys {
		if k.Field != f {
			continue
		}
		arrow := "↑"
		if k.Desc {
			arrow = "↓"
		}
		if len(keys) > 1 {
			return fmt.Sprintf("%s%d", arrow, i+1)
		}
		return arrow
	}
	return ""
}

var columns = []struct {
	field table.Field
	title string
	width int
	right bool
}{
	{table.FieldTicker, "Stock", 10, false},
	{table.FieldName, "Name", 18, false},
	{table.FieldPrice, "Price", 11, true},
	{table.FieldRSRating, "RS", 5, true},
	{table.FieldVolAvg, "Vol(lots)", 11, true},
	{table.FieldStatus, "Status", 8, false},
	{table.FieldMatchCount, "Match", 7, false},
}

func (m Model) renderHeader() string {
	cells := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		cells = append(cells, cell(c.title+sortMarker(m.state.SortKeys, c.field), c.width, c.right))
	}
	cells = append(cells, "Note")
	return titleStyle.Render(strings.Join(cells, " "))
}

func (m Model) renderRow(r table.PresentedRow) string {
	rs := cell(r.RSRating.Display, 5, true)
	if r.StrongRS {
		rs = strongStyle.Render(rs)
	}
	status := cell(string(r.Status), 8, false)
	if r.Status == models.StatusPass {
		status = passStyle.Render(status)
	} else {
		status = failStyle.Render(status)
	}
	note := r.FailReason
	if r.LiquidityFail {
		note = warnStyle.Render("⚠ " + note)
	}
	marker := "▸"
	if r.Expanded {
		marker = "▾"
	}
	return strings.Join([]string{
		cell(marker+" "+r.Code, 10, false),
		cell(r.Name, 18, false),
		cell(r.Price.Display, 11, true),
		rs,
		cell(r.Volume.Display, 11, true),
		status,
		cell(r.MatchCount, 7, false),
		note,
	}, " ")
}

func renderPanel(r table.PresentedRow) string {
	p := r.Expansion
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", r.Market, dimStyle.Render(r.ChartURL))
	for _, c := range p.Criteria {
		mark := failStyle.Render("✗")
		if c.Passed {
			mark = passStyle.Render("✓")
		}
		fmt.Fprintf(&b, "%s %s\n", mark, c.Label)
	}
	for _, a := range p.Averages {
		fmt.Fprintf(&b, "%-8s %10s  %7s\n", a.Label, a.Average.Display, a.Deviation.Display)
	}
	fmt.Fprintf(&b, "SMA 200 prev %s (%s)\n", p.SMA200Prev.Display, p.Slope)
	fmt.Fprintf(&b, "52W high %s (%s)  low %s (%s)", p.High52W.Display, p.DistHighPct, p.Low52W.Display, p.DistLowPct)
	return panelStyle.Render(b.String())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(headerStyle.Render("Minervini Trend Template"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("updated %s | %s", m.meta.UpdatedAt, m.meta.ConfigSummary)))
	b.WriteString("\n")

	search := m.state.SearchText
	if m.searching {
		search += "█"
	}
	passOnly := "off"
	if m.state.PassOnly {
		passOnly = "on"
	}
	fmt.Fprintf(&b, "search: %s  pass only: %s  passing: %d/%d\n\n", search, passOnly, m.view.PassCount, m.view.Total)

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if len(m.view.Rows) == 0 {
		b.WriteString(dimStyle.Render("No stocks match the current filters."))
		b.WriteString("\n")
	}
	for i, r := range m.view.Rows {
		line := m.renderRow(r)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if r.Expansion != nil {
			b.WriteString(renderPanel(r))
			b.WriteString("\n")
		}
	}

	pg := m.view.Page
	pageCount := pg.PageCount
	if pageCount == 0 {
		pageCount = 1
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Showing %d-%d of %d | Page %d/%d | %d per page",
		pg.FirstRow, pg.LastRow, pg.TotalCount, pg.PageIndex+1, pageCount, pg.PageSize))
	if m.status != "" {
		b.WriteString("  " + dimStyle.Render(m.status))
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(dimStyle.Render("/ search  p pass-only  1-7 sort  s reset sort  enter expand  ←/→ page  +/- size  r reload  q quit"))
	return b.String()
}
