package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/erddap-tools/erdgen/internal/event"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func TestViewShowsProgress(t *testing.T) {
	m := NewModel(5)
	m = update(t, m, jobStartedMsg(event.NewJobStartedEvent("OISST Mean", 0, 1, 5, 1)))
	m = update(t, m, jobStartedMsg(event.NewJobStartedEvent("GODAS salt", 1, 2, 5, 2)))

	view := m.View()
	if !strings.Contains(view, "Started job 2/5 (2 running)") {
		t.Errorf("view missing progress line:\n%s", view)
	}
	if !strings.Contains(view, "GODAS salt") {
		t.Errorf("view missing current job:\n%s", view)
	}
}

func TestExitLinesTrackFailures(t *testing.T) {
	m := NewModel(3)
	m = update(t, m, jobExitedMsg(event.NewJobExitedEvent("a", 0, 0, 1, time.Second)))
	m = update(t, m, jobExitedMsg(event.NewJobExitedEvent("b", 1, 2, 0, time.Second)))

	view := m.View()
	if !strings.Contains(view, "a") || !strings.Contains(view, "b (exit 2)") {
		t.Errorf("view missing exit lines:\n%s", view)
	}
	if m.failed != 1 {
		t.Errorf("failed = %d, want 1", m.failed)
	}
}

func TestRecentLinesBounded(t *testing.T) {
	m := NewModel(20)
	for i := 0; i < maxRecent+4; i++ {
		m = update(t, m, jobExitedMsg(event.NewJobExitedEvent("job", i, 0, 0, time.Second)))
	}
	if len(m.recent) != maxRecent {
		t.Errorf("recent has %d lines, want %d", len(m.recent), maxRecent)
	}
}

func TestRunCompletedQuits(t *testing.T) {
	m := NewModel(4)
	next, cmd := m.Update(runCompletedMsg(event.NewRunCompletedEvent(4, 0, time.Second)))
	m = next.(Model)

	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if !strings.Contains(m.View(), "All done! Generated XML for 4 datasets.") {
		t.Errorf("final view = %q", m.View())
	}
}

func TestRunCompletedMentionsFailures(t *testing.T) {
	m := NewModel(4)
	m = update(t, m, runCompletedMsg(event.NewRunCompletedEvent(4, 2, time.Second)))
	if !strings.Contains(m.View(), "2 failed") {
		t.Errorf("final view = %q", m.View())
	}
}

func TestAbortShowsError(t *testing.T) {
	m := NewModel(4)
	next, cmd := m.Update(abortMsg{err: errTest})
	m = next.(Model)

	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if !strings.Contains(m.View(), "run aborted") {
		t.Errorf("abort view = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxWidth int
		want     string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "..."},
		{"hello", 0, "..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxWidth); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
		}
	}
}

func TestLongNamesTruncatedInView(t *testing.T) {
	long := strings.Repeat("x", 120)
	m := NewModel(1)
	m = update(t, m, jobStartedMsg(event.NewJobStartedEvent(long, 0, 1, 1, 1)))
	if strings.Contains(m.View(), long) {
		t.Error("view should not carry the full 120-column name")
	}
}

var errTest = errTestType{}

type errTestType struct{}

func (errTestType) Error() string { return "boom" }

func TestNewRegistersSubscriptions(t *testing.T) {
	bus := event.NewBus()
	New(bus, 2)
	if got := bus.SubscriptionCount(); got != 3 {
		t.Fatalf("subscriptions after New = %d, want 3", got)
	}
}

// A fast batch can publish every event, including run.completed, before the
// terminal loop starts. The view must still receive its quit message instead
// of spinning forever.
func TestRunSeesEventsPublishedBeforeRun(t *testing.T) {
	bus := event.NewBus()
	app := New(bus, 1,
		tea.WithInput(strings.NewReader("")),
		tea.WithoutRenderer(),
	)

	published := make(chan struct{})
	go func() {
		defer close(published)
		bus.Publish(event.NewJobStartedEvent("OISST Mean", 0, 1, 1, 1))
		bus.Publish(event.NewJobExitedEvent("OISST Mean", 0, 0, 0, time.Second))
		bus.Publish(event.NewRunCompletedEvent(1, 0, time.Second))
	}()

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("progress view never quit after the run completed")
	}
	<-published
}
