// Package bard is the public entry point: it loads songs and plays them on the
// game instrument through a key sink.
package bard

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/autobard/internal/events"
	"github.com/leandrodaf/autobard/internal/parser/smffile"
	"github.com/leandrodaf/autobard/internal/scheduler"
	"github.com/leandrodaf/autobard/internal/song"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"go.uber.org/multierr"
)

// ErrPlaylistEnd is returned when there is no playable entry in the
// requested direction.
var ErrPlaylistEnd = errors.New("no more playlist entries")

// Player couples a loader, a playlist and a scheduler around one key sink.
type Player struct {
	logger   contracts.Logger
	sink     contracts.KeySink
	loader   *Loader
	playlist *Playlist
	sched    *scheduler.Scheduler

	// autoOptimize mirrors the scheduler config so the playlist hook, which
	// runs on the playback goroutine, never takes the scheduler lock.
	autoOptimize atomic.Bool

	mu      sync.Mutex
	current *LoadedSong
}

// NewPlayer creates a Player with the specified options.
func NewPlayer(opts ...contracts.Option) (*Player, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	sink, err := NewSink(&options)
	if err != nil {
		return nil, err
	}

	p := &Player{
		logger: options.Logger,
		sink:   sink,
		loader: NewLoader(*options.BaseOctave, options.Logger),
	}
	p.playlist = NewPlaylist(p.loadForPlaylist, options.Logger)
	p.sched = scheduler.New(scheduler.Options{
		Logger:   options.Logger,
		Sink:     sink,
		Bus:      events.NewBus(options.Logger),
		Playback: *options.Playback,
		Next:     p.advance,
	})
	p.autoOptimize.Store(options.Playback.AutoOptimize)
	return p, nil
}

func (p *Player) loadForPlaylist(path string) (*LoadedSong, error) {
	return p.loader.Load(path, smffile.AllTracks, p.autoOptimize.Load())
}

// advance is the scheduler hook that moves to the next entry when a song ends.
func (p *Player) advance() (*song.Compiled, bool) {
	ls, ok := p.playlist.Advance()
	if !ok {
		return nil, false
	}
	p.setCurrent(ls)
	return ls.Compiled, true
}

func (p *Player) setCurrent(ls *LoadedSong) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = ls
}

// Load parses path and makes it the active song, stopping any playback. A
// parse failure leaves the previous song loaded.
func (p *Player) Load(path string) (*LoadedSong, error) {
	return p.LoadTrack(path, smffile.AllTracks)
}

// LoadTrack is Load restricted to one MIDI track. A single song replaces
// any queued playlist.
func (p *Player) LoadTrack(path string, track int) (*LoadedSong, error) {
	ls, err := p.loader.Load(path, track, p.autoOptimize.Load())
	if err != nil {
		p.logger.Error("failed to load song",
			p.logger.Field().String("path", path),
			p.logger.Field().Error("error", err))
		return nil, err
	}
	p.playlist.Clear()
	return ls, p.activate(ls)
}

// LoadEvents makes an in-memory event stream the active song.
func (p *Player) LoadEvents(name string, evs []contracts.NoteEvent) (*LoadedSong, error) {
	ls := p.loader.Prepare(name, evs, p.autoOptimize.Load())
	p.playlist.Clear()
	return ls, p.activate(ls)
}

func (p *Player) activate(ls *LoadedSong) error {
	err := p.sched.SetSong(ls.Compiled)
	p.setCurrent(ls)
	return err
}

// Queue replaces the playlist with paths and loads the first entry that parses.
func (p *Player) Queue(paths ...string) (*LoadedSong, error) {
	p.playlist.Set(paths)
	ls, ok := p.playlist.Advance()
	if !ok {
		return nil, contracts.ErrNoSong
	}
	return ls, p.activate(ls)
}

// NextSong stops playback and loads the next playable playlist entry. The
// active song is kept when there is none.
func (p *Player) NextSong() (*LoadedSong, error) {
	return p.skip(p.playlist.Advance)
}

// PrevSong stops playback and loads the previous playable playlist entry.
func (p *Player) PrevSong() (*LoadedSong, error) {
	return p.skip(p.playlist.Previous)
}

func (p *Player) skip(step func() (*LoadedSong, bool)) (*LoadedSong, error) {
	ls, ok := step()
	if !ok {
		return nil, ErrPlaylistEnd
	}
	if err := p.sched.Stop(); err != nil {
		p.logger.Warn("stop before skipping reported errors", p.logger.Field().Error("error", err))
	}
	p.logger.Info("playlist skipped",
		p.logger.Field().String("song", ls.Name),
		p.logger.Field().Int("index", p.playlist.Index()))
	return ls, p.activate(ls)
}

// ClearPlaylist empties the queue. The active song stays loaded.
func (p *Player) ClearPlaylist() { p.playlist.Clear() }

// Analyze parses and prepares path without touching playback.
func (p *Player) Analyze(path string, track int) (*LoadedSong, error) {
	return p.loader.Load(path, track, p.autoOptimize.Load())
}

// Current returns the active song, or nil.
func (p *Player) Current() *LoadedSong {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Playlist returns the player's queue.
func (p *Player) Playlist() *Playlist { return p.playlist }

// Loader returns the player's loader.
func (p *Player) Loader() *Loader { return p.loader }

// Start plays or resumes the active song.
func (p *Player) Start() error { return p.sched.Start() }

// Pause suspends playback.
func (p *Player) Pause() { p.sched.Pause() }

// Stop ends playback and releases every key.
func (p *Player) Stop() error { return p.sched.Stop() }

// Toggle starts when idle or paused and pauses while playing.
func (p *Player) Toggle() error {
	if p.sched.State() == contracts.StatePlaying {
		p.sched.Pause()
		return nil
	}
	return p.sched.Start()
}

// Seek moves the start position to a note index.
func (p *Player) Seek(index int) int { return p.sched.Seek(index) }

// SeekPercent moves the start position to a fraction of the song.
func (p *Player) SeekPercent(percent float64) int { return p.sched.SeekPercent(percent) }

// SetLoopA marks the A-B loop start at the current note.
func (p *Player) SetLoopA() int { return p.sched.SetLoopA() }

// SetLoopB marks the A-B loop end at the current note.
func (p *Player) SetLoopB() int { return p.sched.SetLoopB() }

// ClearLoopAB removes the A-B loop.
func (p *Player) ClearLoopAB() { p.sched.ClearLoopAB() }

// ToggleLoop flips whole-song looping.
func (p *Player) ToggleLoop() bool { return p.sched.ToggleLoop() }

// State is the cursor state.
func (p *Player) State() contracts.State { return p.sched.State() }

// Snapshot returns the cursor.
func (p *Player) Snapshot() scheduler.Cursor { return p.sched.Snapshot() }

// Duration is the active song's length at the configured speed.
func (p *Player) Duration() float64 { return p.sched.Duration() }

// Config returns the playback configuration for the next session.
func (p *Player) Config() contracts.PlaybackConfig { return p.sched.Config() }

// SetConfig replaces the playback configuration for the next session.
func (p *Player) SetConfig(cfg contracts.PlaybackConfig) {
	p.sched.SetConfig(cfg)
	p.autoOptimize.Store(cfg.AutoOptimize)
}

// SetSpeed changes the speed for the next session and returns the clamped value.
func (p *Player) SetSpeed(speed float64) float64 { return p.sched.SetSpeed(speed) }

// Subscribe returns a buffered channel of playback events and its cancel func.
func (p *Player) Subscribe(buffer int) (<-chan contracts.Event, func()) {
	return p.sched.Bus().Subscribe(buffer)
}

// Handle runs fn for every playback event on its own goroutine.
func (p *Player) Handle(fn func(contracts.Event)) func() {
	return p.sched.Bus().Handle(fn)
}

// Close stops playback and releases the sink.
func (p *Player) Close() error {
	err := p.sched.Stop()
	err = multierr.Append(err, p.sink.Close())
	p.sched.Bus().Close()
	return err
}
