// Package tui renders live progress for a generation batch. It subscribes
// to the event bus and feeds runner events into a small Bubble Tea model,
// so the runner itself stays unaware of presentation.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/erddap-tools/erdgen/internal/event"
	"github.com/erddap-tools/erdgen/internal/tui/styles"
)

// maxRecent bounds the scrollback of finished-job lines.
const maxRecent = 5

// maxNameWidth bounds dataset names in the view; manifests routinely carry
// names longer than a terminal row.
const maxNameWidth = 48

// truncate shortens a styled string to maxWidth visual columns, adding "..."
// when cut. ANSI escape sequences are preserved.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// Bus event messages forwarded into the Bubble Tea program.
type (
	jobStartedMsg   event.JobStartedEvent
	jobExitedMsg    event.JobExitedEvent
	runCompletedMsg event.RunCompletedEvent

	// abortMsg shuts the view down when the run fails before completing.
	abortMsg struct{ err error }
)

// Model is the progress view state.
type Model struct {
	spinner  spinner.Model
	total    int
	launched int
	running  int
	failed   int
	current  string
	recent   []string
	done     bool
	aborted  error
}

// NewModel creates a progress model for a batch of the given size.
func NewModel(total int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Primary
	return Model{spinner: s, total: total}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case jobStartedMsg:
		m.launched = msg.Launched
		m.running = msg.Running
		m.current = truncate(msg.Job, maxNameWidth)
		return m, nil

	case jobExitedMsg:
		m.running = msg.Running
		name := truncate(msg.Job, maxNameWidth)
		line := fmt.Sprintf("%s %s", styles.Secondary.Render("done"), name)
		if msg.ExitCode != 0 {
			m.failed++
			line = fmt.Sprintf("%s %s (exit %d)", styles.Error.Render("fail"), name, msg.ExitCode)
		}
		m.recent = append(m.recent, line)
		if len(m.recent) > maxRecent {
			m.recent = m.recent[len(m.recent)-maxRecent:]
		}
		return m, nil

	case runCompletedMsg:
		m.done = true
		m.failed = msg.Failed
		return m, tea.Quit

	case abortMsg:
		m.aborted = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.aborted != nil {
		return styles.Error.Render("run aborted: "+m.aborted.Error()) + "\n"
	}
	if m.done {
		s := styles.Success.Render(fmt.Sprintf("All done! Generated XML for %d datasets.", m.total))
		if m.failed > 0 {
			s += styles.Warning.Render(fmt.Sprintf(" %d failed, see the dataset logs.", m.failed))
		}
		return s + "\n"
	}

	s := styles.Title.Render("erdgen") + "\n"
	for _, line := range m.recent {
		s += "  " + line + "\n"
	}
	s += fmt.Sprintf("%s Started job %d/%d (%d running)",
		m.spinner.View(), m.launched, m.total, m.running)
	if m.current != "" {
		s += styles.Muted.Render("  " + m.current)
	}
	return s + "\n"
}

// App wires an event bus to a running Bubble Tea program.
type App struct {
	bus     *event.Bus
	program *tea.Program
	subs    []string
}

// New creates a progress app for a batch of the given size. Bus
// subscriptions are registered here, not in Run, so the runner may start
// publishing as soon as the app exists without losing events. The bus is
// synchronous and does not replay, and a fast batch can complete before the
// terminal loop is up.
func New(bus *event.Bus, total int, opts ...tea.ProgramOption) *App {
	a := &App{bus: bus}
	a.program = tea.NewProgram(NewModel(total), opts...)
	a.subs = []string{
		bus.Subscribe("job.started", func(e event.Event) {
			a.program.Send(jobStartedMsg(e.(event.JobStartedEvent)))
		}),
		bus.Subscribe("job.exited", func(e event.Event) {
			a.program.Send(jobExitedMsg(e.(event.JobExitedEvent)))
		}),
		bus.Subscribe("run.completed", func(e event.Event) {
			a.program.Send(runCompletedMsg(e.(event.RunCompletedEvent)))
		}),
	}
	return a
}

// Run blocks until the run completes or the view is dismissed. Call from
// the goroutine that owns the terminal while the runner works elsewhere.
// Publishers block on Send until the terminal loop starts receiving.
func (a *App) Run() error {
	defer func() {
		for _, id := range a.subs {
			a.bus.Unsubscribe(id)
		}
	}()

	_, err := a.program.Run()
	return err
}

// Abort dismisses the view after a runner-level failure.
func (a *App) Abort(err error) {
	a.program.Send(abortMsg{err: err})
}
