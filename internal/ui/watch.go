package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"rsbundle/internal/watch"
)

// EventKind tells which part of an Event is set.
type EventKind uint8

const (
	EventState EventKind = iota + 1
	EventStage
	EventRun
)

// Event is what the watch loop tells the dashboard.
type Event struct {
	Kind   EventKind
	State  watch.State  // EventState
	Stage  string       // EventStage: parse, resolve, ...
	Report watch.Report // EventRun
}

// stages in pipeline order; progress is the share of stages started.
var stages = []string{"parse", "resolve", "transform", "render", "minify"}

const maxHistory = 8

type runItem struct {
	seq     int
	status  string
	changes int
	size    int
	elapsed time.Duration
	msg     string
}

type watchModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	state   watch.State
	stage   string
	history []runItem
	width   int
	done    bool
}

type eventMsg Event
type doneMsg struct{}

// NewWatchModel returns a Bubble Tea model that renders a watch session.
// The model quits when events is closed.
func NewWatchModel(title string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &watchModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		width:   80,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
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
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s [%s]", m.title, m.state)
	if m.state == watch.Running && m.stage != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stage)
	}
	switch {
	case m.done:
		header = "stopped: " + header
	case m.state == watch.Running || m.state == watch.Scheduled:
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	default:
		header = "  " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	msgWidth := m.width - 40
	if msgWidth < 20 {
		msgWidth = 20
	}
	for i := len(m.history) - 1; i >= 0; i-- {
		it := m.history[i]
		statusStyled := styleStatus(it.status).Render(fmt.Sprintf("%8s", it.status))
		line := fmt.Sprintf("  #%-3d %s %3d changed %7s %6.1f ms  %s",
			it.seq, statusStyled, it.changes, sizeLabel(it.size), toMillis(it.elapsed), truncate(it.msg, msgWidth))
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	if len(m.history) == 0 {
		b.WriteString("  waiting for changes\n")
	}

	b.WriteString("\n")
	b.WriteString(m.prog.View())
	b.WriteString("\n")
	return b.String()
}

func (m *watchModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *watchModel) applyEvent(ev Event) tea.Cmd {
	switch ev.Kind {
	case EventState:
		m.state = ev.State
		if ev.State == watch.Running {
			m.stage = ""
			return m.prog.SetPercent(0)
		}
	case EventStage:
		m.stage = ev.Stage
		return m.prog.SetPercent(progressFromStage(ev.Stage))
	case EventRun:
		it := runItem{
			seq:     ev.Report.Seq,
			changes: len(ev.Report.Changes),
			size:    len(ev.Report.Output),
			elapsed: ev.Report.Elapsed,
			status:  "ok",
		}
		if ev.Report.Err != nil {
			it.status = "error"
			it.msg = firstLine(ev.Report.Err.Error())
		}
		m.history = append(m.history, it)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		return m.prog.SetPercent(1)
	}
	return nil
}

func progressFromStage(stage string) float64 {
	for i, s := range stages {
		if s == stage {
			return float64(i) / float64(len(stages))
		}
	}
	return 0
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "ok":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func sizeLabel(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	return fmt.Sprintf("%.1fK", float64(n)/1024)
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
