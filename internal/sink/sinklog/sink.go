// Package sinklog is a dry-run key sink that logs instead of pressing keys.
package sinklog

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/autobard/sdk/contracts"
)

// Sink logs every command at debug level and counts them.
type Sink struct {
	logger   contracts.Logger
	presses  atomic.Int64
	releases atomic.Int64
	realtime bool
}

// NewSink returns a dry-run sink. When realtime is true it sleeps holdDelay
// like a real sink, so a dry run keeps the song's tempo.
func NewSink(logger contracts.Logger, realtime bool) *Sink {
	return &Sink{logger: logger, realtime: realtime}
}

// Press logs the key.
func (s *Sink) Press(key contracts.KeyCommand, holdDelay time.Duration) error {
	s.presses.Add(1)
	s.logger.Debug("press", s.logger.Field().String("key", key.String()))
	if s.realtime {
		time.Sleep(holdDelay)
	}
	return nil
}

// PressMultiple logs the chord.
func (s *Sink) PressMultiple(keys []contracts.KeyCommand, holdDelay, strum time.Duration) error {
	s.presses.Add(int64(len(keys)))
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	s.logger.Debug("chord",
		s.logger.Field().String("keys", strings.Join(names, " ")),
		s.logger.Field().Duration("strum", strum))
	if s.realtime {
		time.Sleep(holdDelay + strum*time.Duration(max(len(keys)-1, 0)))
	}
	return nil
}

// ReleaseAll logs the panic release.
func (s *Sink) ReleaseAll() error {
	s.releases.Add(1)
	s.logger.Debug("release all")
	return nil
}

// Close is a no-op.
func (s *Sink) Close() error { return nil }

// Presses is the number of keys pressed so far.
func (s *Sink) Presses() int64 { return s.presses.Load() }

// Releases is the number of ReleaseAll calls so far.
func (s *Sink) Releases() int64 { return s.releases.Load() }
