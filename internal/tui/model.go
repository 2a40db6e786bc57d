// Package tui is the terminal now-playing view used by `bardctl play --tui`.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"

	"github.com/leandrodaf/autobard/internal/scheduler"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

const (
	seekStep = 0.05
	barWidth = 40
)

// Controller is the part of bard.Player the view drives.
type Controller interface {
	Toggle() error
	Stop() error
	ToggleLoop() bool
	SetLoopA() int
	SetLoopB() int
	ClearLoopAB()
	SeekPercent(percent float64) int
	Snapshot() scheduler.Cursor
	Duration() float64
	Current() *bard.LoadedSong
	NextSong() (*bard.LoadedSong, error)
	PrevSong() (*bard.LoadedSong, error)
}

type eventMsg contracts.Event

type closedMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	barFullStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

// Model renders playback state from the scheduler's events.
type Model struct {
	player Controller
	events <-chan contracts.Event

	cursor    scheduler.Cursor
	elapsed   float64
	total     float64
	countdown int
	message   string
	err       error
	quitting  bool
}

// New builds a view over player that reads events until the channel closes.
func New(player Controller, events <-chan contracts.Event) Model {
	return Model{
		player: player,
		events: events,
		cursor: player.Snapshot(),
		total:  player.Duration(),
	}
}

func listen(events <-chan contracts.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	return listen(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.apply(contracts.Event(msg))
		return m, listen(m.events)

	case closedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.err = m.player.Stop()
		return m, tea.Quit
	case " ", "space":
		m.err = m.player.Toggle()
	case "s":
		m.err = m.player.Stop()
	case "l":
		if m.player.ToggleLoop() {
			m.message = "loop on"
		} else {
			m.message = "loop off"
		}
	case "a":
		m.message = fmt.Sprintf("loop A at note %d", m.player.SetLoopA()+1)
	case "b":
		m.message = fmt.Sprintf("loop B at note %d", m.player.SetLoopB()+1)
	case "c":
		m.player.ClearLoopAB()
		m.message = "A-B loop cleared"
	case "n", "p":
		skip := m.player.NextSong
		if msg.String() == "p" {
			skip = m.player.PrevSong
		}
		ls, err := skip()
		if err != nil {
			m.err = err
			break
		}
		m.message = "loaded " + ls.Name
		m.elapsed = 0
		m.total = m.player.Duration()
	case "left", "right":
		step := seekStep
		if msg.String() == "left" {
			step = -seekStep
		}
		idx := m.player.SeekPercent(m.fraction() + step)
		m.message = fmt.Sprintf("seek to note %d", idx+1)
	}
	m.cursor = m.player.Snapshot()
	return m, nil
}

func (m *Model) apply(ev contracts.Event) {
	switch ev.Kind {
	case contracts.EventState:
		m.cursor = m.player.Snapshot()
		m.cursor.State = ev.State
		if ev.State == contracts.StatePlaying {
			m.total = m.player.Duration()
		}
		if ev.State == contracts.StateReady {
			m.elapsed = 0
		}
	case contracts.EventProgress:
		m.cursor.Current = ev.Current
		m.cursor.Total = ev.Total
	case contracts.EventTime:
		m.elapsed = ev.Elapsed
		m.total = ev.TotalSeconds
	case contracts.EventCountdown:
		m.countdown = ev.Remaining
	}
}

func (m Model) fraction() float64 {
	if m.cursor.Total == 0 {
		return 0
	}
	return float64(m.cursor.Current) / float64(m.cursor.Total)
}

func clock(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	name := "no song"
	if ls := m.player.Current(); ls != nil {
		name = ls.Name
	}
	b.WriteString(titleStyle.Render(name))
	if m.total > 0 {
		length := durafmt.Parse(time.Duration(m.total * float64(time.Second))).LimitFirstN(2)
		b.WriteString(dimStyle.Render("  " + length.String()))
	}
	b.WriteString("\n\n")

	state := m.cursor.State.String()
	if m.countdown > 0 && m.cursor.State == contracts.StatePlaying && m.cursor.Current == 0 {
		state = fmt.Sprintf("STARTING IN %d", m.countdown)
	}
	b.WriteString(stateStyle.Render(state))
	if m.cursor.Loop {
		b.WriteString(dimStyle.Render("  [loop]"))
	}
	if m.cursor.LoopA >= 0 || m.cursor.LoopB >= 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  [A %d  B %d]", m.cursor.LoopA+1, m.cursor.LoopB+1)))
	}
	b.WriteString("\n")

	filled := int(m.fraction() * barWidth)
	b.WriteString(barFullStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(dimStyle.Render(strings.Repeat("░", barWidth-filled)))
	b.WriteString(fmt.Sprintf("  %d/%d  %s / %s\n", m.cursor.Current, m.cursor.Total, clock(m.elapsed), clock(m.total)))

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	} else if m.message != "" {
		b.WriteString(dimStyle.Render(m.message) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("space:play/pause  s:stop  l:loop  a/b:loop points  c:clear  ←/→:seek  n/p:next/prev  q:quit"))
	return b.String()
}
