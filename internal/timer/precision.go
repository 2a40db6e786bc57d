// Package timer provides the drift-free wait used by the playback loop.
package timer

import (
	"runtime"
	"time"
)

const (
	// spinThreshold is the remaining time below which the timer only spins.
	spinThreshold = 2 * time.Millisecond
	// spinMargin is left for the spin phase after a coarse sleep.
	spinMargin = 1500 * time.Microsecond
)

// Resolution toggles the OS timer resolution while a timer is active.
type Resolution interface {
	Begin() error
	End() error
}

// Precision waits against an absolute, accumulating deadline: each Wait
// advances the deadline by the requested duration, so time lost in one note
// is recovered in the next.
//
// A Precision is owned by a single playback worker and is not safe for
// concurrent use.
type Precision struct {
	res    Resolution
	spin   bool
	active bool

	deadline time.Time
	now      func() time.Time
	sleep    func(time.Duration)
}

// New returns a timer that uses the platform resolution hint. When spin is
// false the timer relies on OS sleeps only and skips the busy-wait phase.
func New(spin bool) *Precision {
	return NewWithResolution(platformResolution(), spin)
}

// NewWithResolution builds a timer around a custom resolution hint.
func NewWithResolution(res Resolution, spin bool) *Precision {
	return &Precision{
		res:   res,
		spin:  spin,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Start re-bases the deadline and raises the OS timer resolution.
func (p *Precision) Start() error {
	p.deadline = p.now()
	if p.active {
		return nil
	}
	p.active = true
	if p.spin {
		return p.res.Begin()
	}
	return nil
}

// Stop restores the OS timer resolution.
func (p *Precision) Stop() error {
	if !p.active {
		return nil
	}
	p.active = false
	if p.spin {
		return p.res.End()
	}
	return nil
}

// Reset re-bases the deadline to now. Used after pauses and loop jumps so the
// next wait does not try to catch up.
func (p *Precision) Reset() {
	p.deadline = p.now()
}

// Wait advances the deadline by d and blocks until it is reached. If the
// deadline already passed it returns immediately.
func (p *Precision) Wait(d time.Duration) {
	p.deadline = p.deadline.Add(d)
	remaining := p.deadline.Sub(p.now())
	if remaining <= 0 {
		return
	}
	p.waitUntil(p.deadline, remaining)
}

func (p *Precision) waitUntil(target time.Time, remaining time.Duration) {
	if !p.spin {
		p.sleep(remaining)
		return
	}
	if remaining > spinThreshold {
		p.sleep(remaining - spinMargin)
	}
	for p.now().Before(target) {
		runtime.Gosched()
	}
}
