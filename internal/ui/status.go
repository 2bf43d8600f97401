package ui

import (
	"studio/internal/update"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StateMsg carries a value observed on the update cell.
type StateMsg update.UpdateState

// statesClosedMsg is sent when the state channel closes before a terminal state.
type statesClosedMsg struct{}

// StatusModel is a bubbletea model that shows a spinner while an update check
// runs and the rendered report once it finishes.
type StatusModel struct {
	spinner spinner.Model
	states  <-chan update.UpdateState
	opts    ReportOptions

	state update.UpdateState
	done  bool
}

// NewStatusModel creates a StatusModel reading cell values from states,
// typically the channel returned by Cell.Watch.
func NewStatusModel(states <-chan update.UpdateState, opts ReportOptions) *StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleSpinner

	return &StatusModel{
		spinner: s,
		states:  states,
		opts:    opts,
		state:   update.DefaultUpdateState(),
	}
}

func (m *StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForState())
}

func (m *StatusModel) waitForState() tea.Cmd {
	states := m.states
	return func() tea.Msg {
		if states == nil {
			return statesClosedMsg{}
		}
		st, ok := <-states
		if !ok {
			return statesClosedMsg{}
		}
		return StateMsg(st)
	}
}

func (m *StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = update.UpdateState(msg)
		if m.state.Done() {
			m.done = true
			return m, tea.Quit
		}
		return m, m.waitForState()
	case statesClosedMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *StatusModel) View() string {
	if !m.state.Done() {
		if m.done {
			return ""
		}
		return m.spinner.View() + " " + styleChecking.Render(MessageChecking) + "\n"
	}
	return RenderReport(m.state, m.opts) + "\n"
}

// State returns the last state the model received.
func (m *StatusModel) State() update.UpdateState {
	return m.state
}

// Done reports whether the model has finished.
func (m *StatusModel) Done() bool {
	return m.done
}
