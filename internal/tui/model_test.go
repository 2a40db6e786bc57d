package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leandrodaf/autobard/internal/scheduler"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	calls     []string
	cursor    scheduler.Cursor
	toggleErr error
	loop      bool
	seekedTo  float64
	queue     []string
	index     int
}

func (f *fakePlayer) Toggle() error { f.calls = append(f.calls, "toggle"); return f.toggleErr }
func (f *fakePlayer) Stop() error { f.calls = append(f.calls, "stop"); return nil }
func (f *fakePlayer) ToggleLoop() bool { f.loop = !f.loop; return f.loop }
func (f *fakePlayer) SetLoopA() int { f.calls = append(f.calls, "a"); return f.cursor.Current }
func (f *fakePlayer) SetLoopB() int { f.calls = append(f.calls, "b"); return f.cursor.Current }
func (f *fakePlayer) ClearLoopAB() { f.calls = append(f.calls, "clear") }
func (f *fakePlayer) Snapshot() scheduler.Cursor { return f.cursor }
func (f *fakePlayer) Duration() float64 { return 125 }
func (f *fakePlayer) Current() *bard.LoadedSong {
	return &bard.LoadedSong{Name: "Lullaby"}
}

func (f *fakePlayer) NextSong() (*bard.LoadedSong, error) { return f.skip(1) }
func (f *fakePlayer) PrevSong() (*bard.LoadedSong, error) { return f.skip(-1) }

func (f *fakePlayer) skip(dir int) (*bard.LoadedSong, error) {
	i := f.index + dir
	if i < 0 || i >= len(f.queue) {
		return nil, bard.ErrPlaylistEnd
	}
	f.index = i
	f.calls = append(f.calls, f.queue[i])
	return &bard.LoadedSong{Name: f.queue[i]}, nil
}

func (f *fakePlayer) SeekPercent(p float64) int {
	f.seekedTo = p
	f.cursor.Current = int(p * float64(f.cursor.Total))
	return f.cursor.Current
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestKeysDriveThePlayer(t *testing.T) {
	fp := &fakePlayer{cursor: scheduler.Cursor{Total: 100, Current: 50, LoopA: -1, LoopB: -1}}
	m := New(fp, make(chan contracts.Event))

	m, _ = update(t, m, runes(" "))
	m, _ = update(t, m, runes("a"))
	assert.Equal(t, "loop A at note 51", m.message)
	m, _ = update(t, m, runes("b"))
	m, _ = update(t, m, runes("c"))
	m, _ = update(t, m, runes("s"))
	assert.Equal(t, []string{"toggle", "a", "b", "clear", "stop"}, fp.calls)

	m, _ = update(t, m, runes("l"))
	assert.Equal(t, "loop on", m.message)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.InDelta(t, 0.55, fp.seekedTo, 1e-9)
	assert.Equal(t, 55, m.cursor.Current)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.InDelta(t, 0.5, fp.seekedTo, 1e-9)

	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "stop", fp.calls[len(fp.calls)-1])
}

func TestToggleErrorIsShown(t *testing.T) {
	fp := &fakePlayer{toggleErr: errors.New("no song loaded")}
	m := New(fp, make(chan contracts.Event))
	m, _ = update(t, m, runes(" "))
	assert.Contains(t, m.View(), "no song loaded")
}

func TestEventsUpdateView(t *testing.T) {
	fp := &fakePlayer{cursor: scheduler.Cursor{Total: 10, LoopA: -1, LoopB: -1}}
	events := make(chan contracts.Event, 1)
	m := New(fp, events)

	fp.cursor.State = contracts.StatePlaying
	m, cmd := update(t, m, eventMsg{Kind: contracts.EventState, State: contracts.StatePlaying})
	require.NotNil(t, cmd)
	m, _ = update(t, m, eventMsg{Kind: contracts.EventProgress, Current: 4, Total: 10})
	m, _ = update(t, m, eventMsg{Kind: contracts.EventTime, Elapsed: 65, TotalSeconds: 125})

	view := m.View()
	assert.Contains(t, view, "Lullaby")
	assert.Contains(t, view, "PLAYING")
	assert.Contains(t, view, "4/10")
	assert.Contains(t, view, "1:05 / 2:05")

	events <- contracts.Event{Kind: contracts.EventCountdown, Remaining: 2}
	msg := cmd()
	assert.Equal(t, eventMsg{Kind: contracts.EventCountdown, Remaining: 2}, msg)

	close(events)
	assert.Equal(t, closedMsg{}, listen(events)())
	m, cmd = update(t, m, closedMsg{})
	assert.Empty(t, m.View())
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPlaylistKeys(t *testing.T) {
	fp := &fakePlayer{queue: []string{"Lullaby", "Nocturne"}, cursor: scheduler.Cursor{LoopA: -1, LoopB: -1}}
	m := New(fp, make(chan contracts.Event))

	m, _ = update(t, m, runes("p"))
	assert.ErrorIs(t, m.err, bard.ErrPlaylistEnd)

	m, _ = update(t, m, runes("n"))
	assert.NoError(t, m.err)
	assert.Equal(t, "loaded Nocturne", m.message)
	m, _ = update(t, m, runes("n"))
	assert.Contains(t, m.View(), "no more playlist entries")

	m, _ = update(t, m, runes("p"))
	assert.Equal(t, "loaded Lullaby", m.message)
	assert.Equal(t, []string{"Nocturne", "Lullaby"}, fp.calls)
}
