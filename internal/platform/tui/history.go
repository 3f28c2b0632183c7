package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/termpong/internal/storage"
)

// History browser layout constants
const (
	historyRows   = 100 // max rows loaded per tab
	historyChrome = 8   // title, tabs, borders and help
)

// HistoryTab selects the table shown by the history browser.
type HistoryTab int

const (
	TabPoints HistoryTab = iota
	TabConnections
	historyTabCount
)

// String returns the tab title.
func (t HistoryTab) String() string {
	switch t {
	case TabPoints:
		return "Points"
	case TabConnections:
		return "Connections"
	default:
		return "Unknown"
	}
}

// HistorySource is the read side of the history store.
type HistorySource interface {
	RecentPoints(limit int) ([]storage.PointEntry, error)
	RecentConnections(limit int) ([]storage.ConnectionEntry, error)
}

// HistoryModel is the Bubble Tea model for the history browser.
type HistoryModel struct {
	source   HistorySource
	tab      HistoryTab
	table    table.Model
	help     help.Model
	keys     HistoryKeyMap
	rows     []table.Row
	loadErr  error
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a history browser reading from source.
func NewHistoryModel(source HistorySource, width, height int) HistoryModel {
	h := help.New()
	h.Width = width

	m := HistoryModel{
		source: source,
		keys:   DefaultHistoryKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.load()
	return m
}

// Tab returns the active tab.
func (m HistoryModel) Tab() HistoryTab {
	return m.tab
}

// Rows returns the rows of the active tab.
func (m HistoryModel) Rows() []table.Row {
	return m.rows
}

// load fetches the active tab and rebuilds the table.
func (m *HistoryModel) load() {
	m.rows, m.loadErr = nil, nil
	if m.source != nil {
		switch m.tab {
		case TabPoints:
			m.rows, m.loadErr = pointRows(m.source)
		case TabConnections:
			m.rows, m.loadErr = connectionRows(m.source)
		}
	}
	m.table = m.createTable()
	m.table.SetRows(m.rows)
	m.table.GotoTop()
}

func pointRows(src HistorySource) ([]table.Row, error) {
	points, err := src.RecentPoints(historyRows)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(points))
	for i, p := range points {
		rows[i] = table.Row{
			p.CreatedAt.Local().Format("Jan 02 15:04:05"),
			p.Role,
			p.Scorer,
			fmt.Sprintf("%d — %d", p.ScoreA, p.ScoreB),
		}
	}
	return rows, nil
}

func connectionRows(src HistorySource) ([]table.Row, error) {
	conns, err := src.RecentConnections(historyRows)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(conns))
	for i, c := range conns {
		duration := "open"
		if !c.ClosedAt.IsZero() {
			duration = c.Duration().Round(time.Second).String()
		}
		rows[i] = table.Row{
			c.OpenedAt.Local().Format("Jan 02 15:04:05"),
			c.Role,
			duration,
			c.Server,
		}
	}
	return rows, nil
}

// createTable creates a table with the columns of the active tab.
func (m *HistoryModel) createTable() table.Model {
	var columns []table.Column
	switch m.tab {
	case TabConnections:
		serverWidth := max(m.width-4-16-6-10-8, 12)
		columns = []table.Column{
			{Title: "Opened", Width: 16},
			{Title: "Role", Width: 6},
			{Title: "Duration", Width: 10},
			{Title: "Server", Width: serverWidth},
		}
	default:
		columns = []table.Column{
			{Title: "Time", Width: 16},
			{Title: "Role", Width: 6},
			{Title: "Scorer", Width: 8},
			{Title: "Score", Width: 10},
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-historyChrome, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % historyTabCount
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + historyTabCount - 1) % historyTabCount
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.load()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(centerText(titleStyle.Render("MATCH HISTORY"), m.width))
	b.WriteString("\n\n")

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, 0, historyTabCount)
	for t := HistoryTab(0); t < historyTabCount; t++ {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.String()))
		}
	}
	b.WriteString(centerText(strings.Join(tabs, " "), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m HistoryModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		return emptyStyle.Render("Could not load history:\n" + m.loadErr.Error())
	case m.source == nil:
		return emptyStyle.Render("History is disabled.")
	case len(m.rows) == 0 && m.tab == TabPoints:
		return emptyStyle.Render("No points recorded yet.\nPlay a match to fill this in!")
	case len(m.rows) == 0:
		return emptyStyle.Render("No connections recorded yet.")
	}
	return m.table.View()
}

// RunHistory runs the history browser until the user quits.
func RunHistory(source HistorySource, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(source, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
