package contracts

import "time"

// KeySink injects key commands into the focused game window.
//
// ReleaseAll must be safe to call at any time and from any goroutine, including
// while Press or PressMultiple is running on the playback worker.
type KeySink interface {
	// Press taps a single key and then waits holdDelay before returning.
	Press(key KeyCommand, holdDelay time.Duration) error
	// PressMultiple presses every key of a chord, staggering key-downs by strum.
	PressMultiple(keys []KeyCommand, holdDelay, strum time.Duration) error
	// ReleaseAll sends a key-up for every key the sink knows about.
	ReleaseAll() error
	// Close releases the underlying device or handle.
	Close() error
}
