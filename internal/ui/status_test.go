package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "studio/internal/errors"
	"studio/internal/store"
	"studio/internal/update"

	tea "github.com/charmbracelet/bubbletea"
)

type stubFetcher struct {
	result update.UpdateCheckResult
	err    error
}

func (f stubFetcher) Check(ctx context.Context) update.Outcome {
	return update.OutcomeOf(f.result, f.err)
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestStatusModelInit(t *testing.T) {
	m := NewStatusModel(make(chan update.UpdateState), ReportOptions{})
	if m.Init() == nil {
		t.Fatal("Init should start the spinner and wait for states")
	}
	if m.Done() {
		t.Fatal("new model should not be done")
	}
	if !strings.Contains(m.View(), MessageChecking) {
		t.Fatalf("View() = %q, want checking message", m.View())
	}
}

func TestStatusModelKeepsWaitingUntilTerminal(t *testing.T) {
	m := NewStatusModel(make(chan update.UpdateState), ReportOptions{})

	_, cmd := m.Update(StateMsg(update.DefaultUpdateState()))
	if cmd == nil {
		t.Fatal("non-terminal state should schedule another read")
	}
	if m.Done() {
		t.Fatal("model should not be done after a reset state")
	}
}

func TestStatusModelQuitsOnTerminalState(t *testing.T) {
	m := NewStatusModel(make(chan update.UpdateState), ReportOptions{CurrentVersion: "1.2.3", Plain: true})

	r := update.UpdateCheckResult{HasUpdate: true, LatestVersion: "999.6.0", Link: "https://x"}
	_, cmd := m.Update(StateMsg(update.UpdateState{Result: &r}))

	if !isQuit(cmd) {
		t.Fatal("terminal state should quit the program")
	}
	if !m.Done() {
		t.Fatal("model should be done")
	}
	if m.State().Result == nil || m.State().Result.LatestVersion != "999.6.0" {
		t.Fatalf("State() = %+v", m.State())
	}
	if !strings.Contains(m.View(), "Update available: 999.6.0") {
		t.Fatalf("View() = %q, want report", m.View())
	}
}

func TestStatusModelQuitsOnErrorState(t *testing.T) {
	m := NewStatusModel(make(chan update.UpdateState), ReportOptions{Plain: true})

	e := apperrors.New(apperrors.CodeUpdateData, "Failed to fetch update data", nil)
	_, cmd := m.Update(StateMsg(update.UpdateState{Err: &e}))

	if !isQuit(cmd) {
		t.Fatal("error state should quit the program")
	}
	if !strings.Contains(m.View(), "Failed to fetch update data") {
		t.Fatalf("View() = %q", m.View())
	}
}

func TestStatusModelClosedChannel(t *testing.T) {
	ch := make(chan update.UpdateState)
	close(ch)
	m := NewStatusModel(ch, ReportOptions{})

	msg := m.waitForState()()
	if _, ok := msg.(statesClosedMsg); !ok {
		t.Fatalf("msg = %T, want statesClosedMsg", msg)
	}
	_, cmd := m.Update(msg)
	if !isQuit(cmd) {
		t.Fatal("closed channel should quit the program")
	}
	if m.View() != "" {
		t.Fatalf("View() = %q, want empty after abort", m.View())
	}
}

func TestStatusModelQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	} {
		m := NewStatusModel(make(chan update.UpdateState), ReportOptions{})
		_, cmd := m.Update(key)
		if !isQuit(cmd) {
			t.Errorf("key %q should quit", key.String())
		}
	}

	m := NewStatusModel(make(chan update.UpdateState), ReportOptions{})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}); cmd != nil {
		t.Error("other keys should be ignored")
	}
}

func TestStatusModelFollowsCell(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cell := store.NewCell(update.DefaultUpdateState())
	s := update.NewStore(stubFetcher{result: update.UpdateCheckResult{LatestVersion: "0.0.1", Link: "https://x"}}, cell)
	m := NewStatusModel(cell.Watch(ctx), ReportOptions{CurrentVersion: "1.2.3", Plain: true})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Refresh(ctx)
	}()

	var seen int
	deadline := time.After(5 * time.Second)
	for !m.Done() {
		msgCh := make(chan tea.Msg, 1)
		go func() { msgCh <- m.waitForState()() }()
		select {
		case msg := <-msgCh:
			seen++
			m.Update(msg)
		case <-deadline:
			t.Fatal("timed out waiting for terminal state")
		}
	}
	<-done

	if seen != 3 {
		t.Errorf("model saw %d states, want initial, reset, terminal", seen)
	}
	if !strings.Contains(m.View(), MessageUpToDate) {
		t.Errorf("View() = %q, want up-to-date report", m.View())
	}
}
