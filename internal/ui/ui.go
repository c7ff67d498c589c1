package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hlsx/internal/formatter"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/repositories"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HistoryListView ViewState = iota
	DetailView
)

// HistorySource loads recent check runs. Implemented by [repositories.CheckRunRepository].
type HistorySource interface {
	Recent(limit int) ([]*models.CheckRun, error)
}

// HistoryModel browses recorded check runs.
type HistoryModel struct {
	source   HistorySource
	limit    int
	view     ViewState
	width    int
	height   int
	runs     list.Model
	selected *models.CheckRun
	err      error
	help     help.Model
	keys     keyMap
}

// NewHistoryModel creates a HistoryModel showing up to limit runs.
func NewHistoryModel(source HistorySource, limit int) *HistoryModel {
	if limit <= 0 {
		limit = 100
	}
	runs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	runs.Title = "Check History"
	return &HistoryModel{
		source: source,
		limit:  limit,
		view:   HistoryListView,
		runs:   runs,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init loads the history.
func (m *HistoryModel) Init() tea.Cmd {
	return m.loadHistory()
}

// Update handles incoming messages and updates the model state.
func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runs.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case HistoryListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		if msg.kind == MsgHistoryLoaded {
			loaded := msg.data.(historyLoaded)
			m.err = loaded.err
			items := make([]list.Item, len(loaded.runs))
			for i, run := range loaded.runs {
				items[i] = checkRunItem{run: run}
			}
			return m, m.runs.SetItems(items)
		}
	}

	var cmd tea.Cmd
	if m.view == HistoryListView {
		m.runs, cmd = m.runs.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *HistoryModel) View() string {
	if m.err != nil {
		return styles.Error(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

// State returns the current view state.
func (m *HistoryModel) State() ViewState { return m.view }

// Selected returns the run shown in the detail view.
func (m *HistoryModel) Selected() *models.CheckRun { return m.selected }

func (m *HistoryModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.runs.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.runs, cmd = m.runs.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadHistory()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.runs.SelectedItem().(checkRunItem); ok {
			m.selected = item.run
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.runs, cmd = m.runs.Update(msg)
	return m, cmd
}

func (m *HistoryModel) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = HistoryListView
		m.selected = nil
	}
	return m, nil
}

func (m *HistoryModel) loadHistory() tea.Cmd {
	return func() tea.Msg {
		runs, err := m.source.Recent(m.limit)
		return historyLoadedMsg(runs, err)
	}
}

func (m *HistoryModel) renderList() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.runs.View(), helpView)
}

func (m *HistoryModel) renderDetail() string {
	run := m.selected
	if run == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title(run.URL()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Status:  %s\n", styles.Label(run.Severity()))
	fmt.Fprintf(&b, "Kind:    %s\n", run.Kind())
	if run.Profile() != "" {
		fmt.Fprintf(&b, "Profile: %s\n", run.Profile())
	}
	fmt.Fprintf(&b, "Checked: %s\n", formatter.Timestamp(run.CreatedAt()))
	fmt.Fprintf(&b, "Run:     %s\n", run.RunID())
	if run.Message() != "" {
		fmt.Fprintf(&b, "\n%s\n", run.Message())
	}

	findings, err := repositories.DecodeFindings(run)
	switch {
	case err != nil:
		fmt.Fprintf(&b, "\n%s\n", styles.Error(err.Error()))
	case len(findings) > 0:
		b.WriteString("\nFindings:\n")
		for _, f := range findings {
			fmt.Fprintf(&b, "  • %s\n", f.Detail)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
