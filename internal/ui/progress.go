// Package ui renders live pipeline progress: a Bubble Tea front-end for
// interactive terminals and a plain line writer for everything else.
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

	"github.com/ahrav/go-langrank/internal/ports"
)

type progressModel struct {
	title      string
	events     <-chan ports.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []sourceItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type sourceItem struct {
	name   string
	status string
	detail string
}

type (
	eventMsg ports.Event
	doneMsg  struct{}
)

// NewProgressModel returns a Bubble Tea model that renders one status line
// per source plus an overall progress bar. The model quits when events
// closes, so the producer must close the channel once the run finishes.
func NewProgressModel(title string, sources []string, events <-chan ports.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]sourceItem, 0, len(sources))
	index := make(map[string]int, len(sources))
	for i, source := range sources {
		items = append(items, sourceItem{name: source, status: "queued"})
		index[source] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(ports.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
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
		model, cmd := m.prog.Update(msg)
		m.prog = model.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := item.name
		if item.detail != "" {
			name = fmt.Sprintf("%s (%s)", name, item.detail)
		}
		name = truncate(name, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s", statusStyled, name))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev ports.Event) tea.Cmd {
	if ev.Source == "" {
		if label := runStageLabel(ev); label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.Source]
	if !ok {
		return nil
	}
	m.items[idx].status = sourceStatusLabel(ev.Status)
	m.items[idx].detail = sourceDetail(ev)

	return m.prog.SetPercent(m.completion())
}

// completion averages per-source progress: finished tasks count fully,
// in-flight fetches count half.
func (m *progressModel) completion() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		switch item.status {
		case "done", "error":
			total += 1.0
		case "fetching":
			total += 0.5
		}
	}
	return total / float64(len(m.items))
}

func sourceStatusLabel(status ports.Status) string {
	switch status {
	case ports.StatusQueued:
		return "queued"
	case ports.StatusWorking:
		return "fetching"
	case ports.StatusDone:
		return "done"
	case ports.StatusError:
		return "error"
	default:
		return string(status)
	}
}

func sourceDetail(ev ports.Event) string {
	switch ev.Status {
	case ports.StatusDone:
		return fmt.Sprintf("%d entries, %s", ev.Rows, ev.Elapsed.Round(time.Millisecond))
	case ports.StatusError:
		if ev.Err != nil {
			return ev.Err.Error()
		}
		return ""
	default:
		return ""
	}
}

func runStageLabel(ev ports.Event) string {
	if ev.Status != ports.StatusWorking {
		return ""
	}
	switch ev.Stage {
	case ports.StageAggregate:
		return "aggregating"
	case ports.StageScore:
		return "scoring"
	case ports.StageRank:
		return "ranking"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "fetching":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
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
	return runewidth.Truncate(value, width-3, "...")
}
