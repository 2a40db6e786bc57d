package bard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leandrodaf/autobard/internal/logger"
	"github.com/leandrodaf/autobard/internal/parser/smffile"
	"github.com/leandrodaf/autobard/internal/sink/sinklog"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onsets(delta float64, pitches ...int) []contracts.NoteEvent {
	out := make([]contracts.NoteEvent, len(pitches))
	for i, p := range pitches {
		out[i] = contracts.Onset(p, 100, delta)
	}
	return out
}

func quickConfig() contracts.PlaybackConfig {
	cfg := contracts.DefaultPlaybackConfig()
	cfg.CountdownSeconds = 0
	cfg.HumanizeMs = 0
	cfg.InputDelayMs = 0
	cfg.MinNoteDelayMs = 1
	cfg.HighPerformance = false
	return cfg
}

func newTestPlayer(t *testing.T) (*Player, *sinklog.Sink) {
	t.Helper()
	nop := logger.NewNopLogger()
	sink := sinklog.NewSink(nop, false)
	p, err := NewPlayer(
		contracts.WithLogger(nop),
		contracts.WithSink(sink),
		contracts.WithPlayback(quickConfig()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, sink
}

func writeSheet(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPrepareShiftsNarrowSongByOctaves(t *testing.T) {
	l := NewLoader(DefaultBaseOctave, logger.NewNopLogger())
	ls := l.Prepare("low", onsets(0.1, 36, 40, 43, 47), true)

	assert.Equal(t, NoWindow, ls.Window)
	assert.Equal(t, 24, ls.Offset)
	assert.Equal(t, 4, ls.Kept)
	assert.Zero(t, ls.Below)
	assert.Zero(t, ls.Above)
	require.Equal(t, 4, ls.Compiled.Len())
	assert.Equal(t, 60, ls.Compiled.Note(0).Pitch)
	assert.Equal(t, "low", ls.Compiled.Name())
}

func TestPrepareNarrowsWideSong(t *testing.T) {
	l := NewLoader(DefaultBaseOctave, logger.NewNopLogger())
	evs := onsets(0.1, 20, 50, 55, 60, 65, 70, 75, 80, 110)

	ls := l.Prepare("wide", evs, true)
	assert.Equal(t, 45, ls.Window)
	assert.Equal(t, 9, ls.Original)
	assert.Equal(t, 7, ls.Kept)
	assert.Equal(t, 0, ls.Offset)
	assert.Equal(t, 91, ls.Report.Span)
	assert.False(t, ls.Report.FitsInInstrument)
	assert.InDelta(t, 0.2, ls.Events[0].DeltaSeconds, 1e-9)

	raw := l.Prepare("wide", evs, false)
	assert.Equal(t, NoWindow, raw.Window)
	assert.Equal(t, 9, raw.Kept)
	assert.Equal(t, 9, raw.Compiled.Len())
	assert.Positive(t, raw.Below+raw.Above)
}

func TestReadFilePicksParser(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(DefaultBaseOctave, logger.NewNopLogger())

	sheet := writeSheet(t, dir, "tune.json", `{"name":"Tune","songNotes":[{"time":0,"key":"1Key0"},{"time":200,"key":"1Key2"}]}`)
	ls, err := l.ReadFile(sheet, smffile.AllTracks)
	require.NoError(t, err)
	assert.Equal(t, SourceSheet, ls.Kind)
	assert.Equal(t, "Tune", ls.Name)
	assert.Len(t, ls.Events, 2)

	mid := filepath.Join(dir, "take.mid")
	require.NoError(t, smffile.WriteFile(mid, "take", onsets(0.25, 60, 62, 64)))
	ls, err = l.ReadFile(mid, smffile.AllTracks)
	require.NoError(t, err)
	assert.Equal(t, SourceMIDI, ls.Kind)
	assert.Equal(t, "take", ls.Name)
	assert.Len(t, ls.Events, 3)
	require.Len(t, ls.Tracks, 1)

	_, err = l.ReadFile(filepath.Join(dir, "notes.pdf"), smffile.AllTracks)
	assert.ErrorIs(t, err, contracts.ErrParse)
}

func TestLoadFailureKeepsPreviousSong(t *testing.T) {
	dir := t.TempDir()
	p, _ := newTestPlayer(t)

	good := writeSheet(t, dir, "good.json", `[{"time":0,"key":"1Key0"},{"time":100,"key":"1Key1"}]`)
	bad := writeSheet(t, dir, "bad.json", `{"songNotes": [`)

	first, err := p.Load(good)
	require.NoError(t, err)

	_, err = p.Load(bad)
	assert.ErrorIs(t, err, contracts.ErrParse)
	assert.Same(t, first, p.Current())
	assert.Equal(t, 2, p.Snapshot().Total)
}

func TestStartWithoutSong(t *testing.T) {
	p, _ := newTestPlayer(t)
	assert.ErrorIs(t, p.Start(), contracts.ErrNoSong)
}

func TestPlayerPlaysLoadedEvents(t *testing.T) {
	p, sink := newTestPlayer(t)
	ch, cancel := p.Subscribe(128)
	defer cancel()

	_, err := p.LoadEvents("scale", onsets(0.002, 60, 62, 64, 65))
	require.NoError(t, err)
	require.NoError(t, p.Start())

	var states []contracts.State
	timeout := time.After(5 * time.Second)
	for len(states) < 3 {
		select {
		case ev := <-ch:
			if ev.Kind == contracts.EventState {
				states = append(states, ev.State)
			}
		case <-timeout:
			t.Fatalf("playback did not finish, states so far %v", states)
		}
	}
	assert.Equal(t, []contracts.State{contracts.StatePlaying, contracts.StateStopped, contracts.StateReady}, states)
	assert.EqualValues(t, 4, sink.Presses())
}

func TestQueueSkipsBrokenEntriesAndAdvances(t *testing.T) {
	dir := t.TempDir()
	p, sink := newTestPlayer(t)

	broken := writeSheet(t, dir, "broken.json", `nope`)
	one := writeSheet(t, dir, "one.json", `[{"time":0,"key":"1Key0"},{"time":5,"key":"1Key1"}]`)
	empty := writeSheet(t, dir, "empty.json", `[]`)
	two := writeSheet(t, dir, "two.json", `[{"time":0,"key":"1Key4"},{"time":5,"key":"1Key5"},{"time":10,"key":"1Key6"}]`)

	ls, err := p.Queue(broken, one, empty, two)
	require.NoError(t, err)
	assert.Equal(t, "one", ls.Name)
	assert.Equal(t, 1, p.Playlist().Index())

	require.NoError(t, p.Start())
	require.Eventually(t, func() bool {
		return sink.Presses() == 5 && p.State() == contracts.StateReady
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, "two", p.Current().Name)
	assert.Equal(t, 3, p.Playlist().Index())
}

func TestQueueWithNothingPlayable(t *testing.T) {
	p, _ := newTestPlayer(t)
	_, err := p.Queue(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, contracts.ErrNoSong)
}

func TestNewSinkSelection(t *testing.T) {
	nop := logger.NewNopLogger()

	dry, err := NewSink(&contracts.PlayerOptions{Logger: nop, SinkKind: contracts.SinkDryRun})
	require.NoError(t, err)
	assert.IsType(t, &sinklog.Sink{}, dry)

	injected := sinklog.NewSink(nop, false)
	got, err := NewSink(&contracts.PlayerOptions{Logger: nop, Sink: injected, SinkKind: contracts.SinkSerial})
	require.NoError(t, err)
	assert.Same(t, injected, got)

	_, err = NewSink(&contracts.PlayerOptions{Logger: nop, SinkKind: contracts.SinkSerial})
	assert.Error(t, err)

	_, err = NewSink(&contracts.PlayerOptions{Logger: nop, SinkKind: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)
	assert.Equal(t, contracts.SinkAuto, opts.SinkKind)
	assert.Equal(t, DefaultBaseOctave, *opts.BaseOctave)
	assert.Equal(t, contracts.DefaultPlaybackConfig(), *opts.Playback)
	assert.Equal(t, "autobard", opts.CoreMIDIConfig.ClientName)
}

func TestBaseOctaveZeroIsHonoured(t *testing.T) {
	nop := logger.NewNopLogger()
	opts, err := applyDefaultOptions(contracts.WithLogger(nop), contracts.WithBaseOctave(0))
	require.NoError(t, err)
	assert.Equal(t, 0, *opts.BaseOctave)

	p, err := NewPlayer(
		contracts.WithLogger(nop),
		contracts.WithSink(sinklog.NewSink(nop, false)),
		contracts.WithBaseOctave(0),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	lo, hi := p.Loader().Converter().Range()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 35, hi)

	_, err = applyDefaultOptions(contracts.WithLogger(nop), contracts.WithBaseOctave(8))
	assert.Error(t, err)
	_, err = applyDefaultOptions(contracts.WithLogger(nop), contracts.WithBaseOctave(-1))
	assert.Error(t, err)
}

func TestSetConfigUpdatesAutoOptimize(t *testing.T) {
	p, _ := newTestPlayer(t)
	cfg := p.Config()
	cfg.AutoOptimize = false
	p.SetConfig(cfg)

	ls, err := p.LoadEvents("wide", onsets(0.1, 20, 50, 110))
	require.NoError(t, err)
	assert.Equal(t, NoWindow, ls.Window)
	assert.Equal(t, 1.5, p.SetSpeed(1.5))
}

func TestPlaylistNavigation(t *testing.T) {
	dir := t.TempDir()
	p, _ := newTestPlayer(t)

	first := writeSheet(t, dir, "first.json", `[{"time":0,"key":"1Key0"},{"time":1000,"key":"1Key1"}]`)
	broken := writeSheet(t, dir, "broken.json", `nope`)
	last := writeSheet(t, dir, "last.json", `[{"time":0,"key":"1Key2"},{"time":1000,"key":"1Key3"},{"time":2000,"key":"1Key4"}]`)

	_, err := p.Queue(first, broken, last)
	require.NoError(t, err)

	_, err = p.PrevSong()
	assert.ErrorIs(t, err, ErrPlaylistEnd)
	assert.Equal(t, "first", p.Current().Name)
	assert.Equal(t, 0, p.Playlist().Index())

	require.NoError(t, p.Start())
	ls, err := p.NextSong()
	require.NoError(t, err)
	assert.Equal(t, "last", ls.Name)
	assert.Equal(t, 2, p.Playlist().Index())
	assert.Equal(t, contracts.StateReady, p.State())
	assert.Equal(t, 3, p.Snapshot().Total)

	_, err = p.NextSong()
	assert.ErrorIs(t, err, ErrPlaylistEnd)
	assert.Equal(t, "last", p.Current().Name)

	ls, err = p.PrevSong()
	require.NoError(t, err)
	assert.Equal(t, "first", ls.Name)
	assert.Equal(t, 0, p.Playlist().Index())

	p.ClearPlaylist()
	assert.Zero(t, p.Playlist().Len())
	assert.Equal(t, -1, p.Playlist().Index())
	assert.Equal(t, "first", p.Current().Name)
	_, err = p.NextSong()
	assert.ErrorIs(t, err, ErrPlaylistEnd)
}

func TestLoadReplacesQueuedPlaylist(t *testing.T) {
	dir := t.TempDir()
	p, sink := newTestPlayer(t)

	one := writeSheet(t, dir, "one.json", `[{"time":0,"key":"1Key0"},{"time":5,"key":"1Key1"}]`)
	two := writeSheet(t, dir, "two.json", `[{"time":0,"key":"1Key4"},{"time":5,"key":"1Key5"}]`)
	solo := writeSheet(t, dir, "solo.json", `[{"time":0,"key":"1Key2"},{"time":5,"key":"1Key3"}]`)

	_, err := p.Queue(one, two)
	require.NoError(t, err)
	_, err = p.Load(solo)
	require.NoError(t, err)
	assert.Zero(t, p.Playlist().Len())

	require.NoError(t, p.Start())
	require.Eventually(t, func() bool {
		return sink.Presses() == 2 && p.State() == contracts.StateReady
	}, 5*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 2, sink.Presses())
	assert.Equal(t, "solo", p.Current().Name)
}
