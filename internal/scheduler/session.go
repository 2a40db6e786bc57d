package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/autobard/internal/mathx"
	"github.com/leandrodaf/autobard/internal/song"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

// session is the immutable context of one playback run.
type session struct {
	id  string
	cfg contracts.PlaybackConfig
}

func (s *Scheduler) run(ctx context.Context, sess *session, c *song.Compiled, done chan struct{}) {
	defer close(done)

	if sess.cfg.CountdownSeconds > 0 && s.start.Load() == 0 {
		if !s.countdown(ctx, sess.cfg.CountdownSeconds) {
			return
		}
	}

	resume := true
	for {
		if !s.play(ctx, sess, c, resume) {
			return
		}
		resume = false

		if s.loop.Load() {
			s.logger.Info("song finished; looping", s.logger.Field().String("session", sess.id))
			continue
		}
		if s.next != nil {
			if next, ok := s.next(); ok && next != nil && next.Len() > 0 {
				c = next
				s.song.Store(next)
				s.clearLoopAB()
				s.logger.Info("advancing playlist",
					s.logger.Field().String("session", sess.id),
					s.logger.Field().String("song", next.Name()))
				continue
			}
		}
		break
	}

	s.current.Store(0)
	s.start.Store(0)
	if ctx.Err() == nil {
		s.logger.Info("playback finished", s.logger.Field().String("session", sess.id))
		s.setState(contracts.StateStopped)
		s.setState(contracts.StateReady)
	}
}

// countdown publishes one event per second and a final zero. It reports false
// when the session was cancelled meanwhile.
func (s *Scheduler) countdown(ctx context.Context, seconds int) bool {
	for n := seconds; n > 0; n-- {
		s.publish(contracts.Event{Kind: contracts.EventCountdown, Remaining: n})
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}
	s.publish(contracts.Event{Kind: contracts.EventCountdown, Remaining: 0})
	return ctx.Err() == nil
}

// play walks c once. resume selects the stored start index instead of 0; a
// pending seek also applies here. It reports whether the song ran to its end.
func (s *Scheduler) play(ctx context.Context, sess *session, c *song.Compiled, resume bool) bool {
	t := s.newTimer(sess.cfg.HighPerformance)
	if err := t.Start(); err != nil {
		s.logger.Warn("timer resolution hint failed", s.logger.Field().Error("error", err))
	}
	defer func() {
		if err := t.Stop(); err != nil {
			s.logger.Warn("timer resolution restore failed", s.logger.Field().Error("error", err))
		}
	}()

	n := c.Len()
	i := 0
	if s.seekPending.Swap(false) || resume {
		i = int(s.start.Load())
	}
	i = mathx.Clamp(i, 0, n-1)

	total := c.TotalDuration() / sess.cfg.PlaybackSpeed
	first := true

	for i < n {
		if ctx.Err() != nil {
			return false
		}

		if s.paused.Load() {
			i = s.holdWhilePaused(ctx, t, i, n)
			first = true
			continue
		}

		if a, b := s.loopA.Load(), s.loopB.Load(); a >= 0 && b > a && int64(i) >= b {
			i = int(a)
			t.Reset()
			s.logger.Debug("A-B loop jump", s.logger.Field().Int64("to", a))
			continue
		}

		s.current.Store(int64(i))
		if !first {
			t.Wait(Delay(sess.cfg, c.Note(i), c.Density(i), s.jitter))
		}
		if ctx.Err() != nil {
			return false
		}
		if s.paused.Load() {
			continue
		}

		first = false
		step := s.emit(sess, c, i)
		at := c.OnsetTime(i)
		i += step
		if i < n {
			s.current.Store(int64(i))
		}
		s.publish(contracts.Event{Kind: contracts.EventProgress, Current: i, Total: n})
		s.publish(contracts.Event{Kind: contracts.EventTime, Elapsed: at / sess.cfg.PlaybackSpeed, TotalSeconds: total})
	}
	return ctx.Err() == nil
}

// holdWhilePaused polls the pause flag, re-basing the timer each poll so the
// first note after resuming does not catch up. It returns the index to resume
// at: i, or the seek target if one arrived while paused.
func (s *Scheduler) holdWhilePaused(ctx context.Context, t Timer, i, n int) int {
	if !s.seekPending.Load() {
		s.start.Store(int64(i))
		s.current.Store(int64(i))
	}
	for s.paused.Load() {
		select {
		case <-ctx.Done():
			return i
		case <-time.After(pausePollInterval):
		}
		t.Reset()
	}
	if s.seekPending.Swap(false) {
		i = mathx.Clamp(int(s.start.Load()), 0, n-1)
	}
	t.Reset()
	return i
}

// emit sends note i, or the chord starting at i, to the sink and returns how
// many notes were consumed. Sink failures are logged and never stop playback.
func (s *Scheduler) emit(sess *session, c *song.Compiled, i int) int {
	keys := c.ChordKeys(i)
	hold := sess.cfg.HoldDelay()

	err := s.safely(func() error {
		if len(keys) > 1 {
			return s.sink.PressMultiple(keys, hold, sess.cfg.Strum())
		}
		return s.sink.Press(keys[0], hold)
	})
	if err != nil {
		s.logger.Error("key sink failed",
			s.logger.Field().String("session", sess.id),
			s.logger.Field().Int("index", i),
			s.logger.Field().String("key", keys[0].String()),
			s.logger.Field().Error("error", err))
	}
	return len(keys)
}

func (s *Scheduler) safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %w: %v", contracts.ErrSink, errSinkPanic, r)
		}
	}()
	if err = fn(); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrSink, err)
	}
	return nil
}
