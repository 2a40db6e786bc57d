// Package scheduler drives a compiled song in real time and emits key commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/leandrodaf/autobard/internal/events"
	"github.com/leandrodaf/autobard/internal/mathx"
	"github.com/leandrodaf/autobard/internal/song"
	"github.com/leandrodaf/autobard/internal/timer"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"go.uber.org/multierr"
)

const (
	startJoinTimeout  = 500 * time.Millisecond
	stopJoinTimeout   = time.Second
	pausePollInterval = 50 * time.Millisecond
)

// Timer is the wait primitive used by the playback loop.
type Timer interface {
	Start() error
	Stop() error
	Wait(d time.Duration)
	Reset()
}

// NextSong is asked for the following song when one ends without loop mode.
type NextSong func() (*song.Compiled, bool)

// Options wires a Scheduler to its collaborators.
type Options struct {
	Logger   contracts.Logger
	Sink     contracts.KeySink
	Bus      *events.Bus
	Playback contracts.PlaybackConfig
	NewTimer func(highPerformance bool) Timer
	Jitter   Jitter
	Next     NextSong
}

// Cursor is a point-in-time view of the playback position.
type Cursor struct {
	State   contracts.State `json:"state"`
	Current int             `json:"current"`
	Start   int             `json:"start"`
	Total   int             `json:"total"`
	LoopA   int             `json:"loopA"`
	LoopB   int             `json:"loopB"`
	Loop    bool            `json:"loop"`
	Session string          `json:"session"`
}

// Scheduler owns the playback cursor. Control methods may be called from any
// goroutine; a single worker goroutine plays the active session.
type Scheduler struct {
	logger   contracts.Logger
	sink     contracts.KeySink
	bus      *events.Bus
	newTimer func(bool) Timer
	jitter   Jitter
	next     NextSong

	// mu serializes control operations. The worker never takes it.
	mu     sync.Mutex
	cfg    contracts.PlaybackConfig
	cancel context.CancelFunc
	done   chan struct{}

	song        atomic.Pointer[song.Compiled]
	session     atomic.Pointer[string]
	state       atomic.Int32
	current     atomic.Int64
	start       atomic.Int64
	loopA       atomic.Int64
	loopB       atomic.Int64
	loop        atomic.Bool
	paused      atomic.Bool
	seekPending atomic.Bool
}

// New builds a scheduler in the READY state.
func New(opts Options) *Scheduler {
	s := &Scheduler{
		logger:   opts.Logger,
		sink:     opts.Sink,
		bus:      opts.Bus,
		newTimer: opts.NewTimer,
		jitter:   opts.Jitter,
		next:     opts.Next,
		cfg:      Normalize(opts.Playback),
	}
	if s.bus == nil {
		s.bus = events.NewBus(s.logger)
	}
	if s.newTimer == nil {
		s.newTimer = func(hp bool) Timer { return timer.New(hp) }
	}
	if s.jitter == nil {
		s.jitter = UniformJitter
	}
	s.loop.Store(s.cfg.LoopMode)
	s.loopA.Store(-1)
	s.loopB.Store(-1)
	s.state.Store(int32(contracts.StateReady))
	return s
}

// Bus returns the event bus observers subscribe to.
func (s *Scheduler) Bus() *events.Bus { return s.bus }

// State returns the current cursor state.
func (s *Scheduler) State() contracts.State {
	return contracts.State(s.state.Load())
}

// Song returns the song the next session will play.
func (s *Scheduler) Song() *song.Compiled { return s.song.Load() }

// Total is the note count of the loaded song.
func (s *Scheduler) Total() int {
	if c := s.song.Load(); c != nil {
		return c.Len()
	}
	return 0
}

// Duration is the loaded song's length in seconds at the configured speed.
func (s *Scheduler) Duration() float64 {
	c := s.song.Load()
	if c == nil {
		return 0
	}
	return c.TotalDuration() / s.Config().PlaybackSpeed
}

// Snapshot returns the cursor. Values may be slightly stale while playing.
func (s *Scheduler) Snapshot() Cursor {
	var id string
	if p := s.session.Load(); p != nil {
		id = *p
	}
	return Cursor{
		State:   s.State(),
		Current: int(s.current.Load()),
		Start:   int(s.start.Load()),
		Total:   s.Total(),
		LoopA:   int(s.loopA.Load()),
		LoopB:   int(s.loopB.Load()),
		Loop:    s.loop.Load(),
		Session: id,
	}
}

// Config returns the configuration the next session will use.
func (s *Scheduler) Config() contracts.PlaybackConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetConfig replaces the configuration for the next session. A running session
// keeps the snapshot it started with.
func (s *Scheduler) SetConfig(cfg contracts.PlaybackConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = Normalize(cfg)
	s.loop.Store(s.cfg.LoopMode)
}

// SetSpeed changes the playback speed for the next session.
func (s *Scheduler) SetSpeed(speed float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.PlaybackSpeed = mathx.Clamp(speed, MinSpeed, MaxSpeed)
	return s.cfg.PlaybackSpeed
}

// SetSong stops any active session and loads c for the next one.
func (s *Scheduler) SetSong(c *song.Compiled) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if st := s.State(); st == contracts.StatePlaying || st == contracts.StatePaused {
		err = s.stopLocked()
	}
	s.song.Store(c)
	s.current.Store(0)
	s.start.Store(0)
	s.seekPending.Store(false)
	s.clearLoopAB()
	return err
}

// Start begins playback, or resumes a paused session at its stored index.
// It returns contracts.ErrSessionStillRunning when the previous worker did not
// exit in time; nothing is started in that case.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.song.Load()
	if c == nil || c.Len() == 0 {
		return contracts.ErrNoSong
	}

	switch s.State() {
	case contracts.StatePlaying:
		return nil
	case contracts.StatePaused:
		s.paused.Store(false)
		s.setState(contracts.StatePlaying)
		s.logger.Info("playback resumed", s.logger.Field().Int64("index", s.start.Load()))
		return nil
	}

	if err := s.join(startJoinTimeout); err != nil {
		s.logger.Error("refusing to start a second session", s.logger.Field().Error("error", err))
		return err
	}

	sess := &session{id: uuid.NewString(), cfg: s.cfg}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.session.Store(&sess.id)
	s.paused.Store(false)

	s.setState(contracts.StatePlaying)
	s.logger.Info("playback started",
		s.logger.Field().String("session", sess.id),
		s.logger.Field().String("song", c.Name()),
		s.logger.Field().Int("notes", c.Len()),
		s.logger.Field().Float64("speed", sess.cfg.PlaybackSpeed))

	go s.run(ctx, sess, c, done)
	return nil
}

// Pause suspends a playing session. The next Start resumes at the stored index.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != contracts.StatePlaying {
		return
	}
	s.paused.Store(true)
	s.seekPending.Store(false)
	s.start.Store(s.current.Load())
	s.setState(contracts.StatePaused)
	s.logger.Info("playback paused", s.logger.Field().Int64("index", s.start.Load()))
}

// Stop cancels the session, releases every key before returning and resets
// the cursor. It is valid in any state.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Scheduler) stopLocked() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.paused.Store(false)

	var errs error
	if err := s.sink.ReleaseAll(); err != nil {
		s.logger.Error("release all failed", s.logger.Field().Error("error", err))
		errs = multierr.Append(errs, fmt.Errorf("%w: release all: %v", contracts.ErrSink, err))
	}
	if err := s.join(stopJoinTimeout); err != nil {
		s.logger.Warn("playback worker did not exit in time", s.logger.Field().Error("error", err))
		errs = multierr.Append(errs, err)
	}

	s.current.Store(0)
	s.start.Store(0)
	s.seekPending.Store(false)
	s.setState(contracts.StateStopped)
	s.setState(contracts.StateReady)
	s.logger.Info("playback stopped")
	return errs
}

// join cancels the previous worker and waits up to timeout for it to exit.
func (s *Scheduler) join(timeout time.Duration) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done == nil {
		return nil
	}
	select {
	case <-s.done:
		s.done = nil
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w after %s", contracts.ErrSessionStillRunning, timeout)
	}
}

// Seek moves the start position. A running session only picks it up at its
// next resume or loop entry. It returns the clamped index.
func (s *Scheduler) Seek(index int) int {
	total := s.Total()
	if total == 0 {
		return 0
	}
	idx := mathx.Clamp(index, 0, total-1)
	s.start.Store(int64(idx))
	s.current.Store(int64(idx))
	s.seekPending.Store(true)
	s.publish(contracts.Event{Kind: contracts.EventProgress, Current: idx, Total: total})
	return idx
}

// SeekPercent seeks to a fraction of the song, p clamped into [0, 1].
func (s *Scheduler) SeekPercent(p float64) int {
	return s.Seek(int(float64(s.Total()) * mathx.Clamp(p, 0, 1)))
}

// SetLoopA marks the current index as the A-B loop start.
func (s *Scheduler) SetLoopA() int {
	idx := s.current.Load()
	s.loopA.Store(idx)
	return int(idx)
}

// SetLoopB marks the current index as the A-B loop end.
func (s *Scheduler) SetLoopB() int {
	idx := s.current.Load()
	s.loopB.Store(idx)
	return int(idx)
}

// ClearLoopAB removes both A-B loop points.
func (s *Scheduler) ClearLoopAB() {
	s.clearLoopAB()
}

func (s *Scheduler) clearLoopAB() {
	s.loopA.Store(-1)
	s.loopB.Store(-1)
}

// ToggleLoop flips whole-song looping and returns the new value.
func (s *Scheduler) ToggleLoop() bool {
	for {
		old := s.loop.Load()
		if s.loop.CompareAndSwap(old, !old) {
			s.logger.Info("loop mode changed", s.logger.Field().Bool("loop", !old))
			return !old
		}
	}
}

func (s *Scheduler) setState(st contracts.State) {
	s.state.Store(int32(st))
	s.publish(contracts.Event{Kind: contracts.EventState, State: st})
}

func (s *Scheduler) publish(ev contracts.Event) {
	if ev.Session == "" {
		if p := s.session.Load(); p != nil {
			ev.Session = *p
		}
	}
	s.bus.Publish(ev)
}

// errSinkPanic marks a sink that panicked instead of returning an error.
var errSinkPanic = errors.New("sink panicked")
