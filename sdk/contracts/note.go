package contracts

import "fmt"

// NoteEvent is a single timed note produced by a parser or a live capture.
// DeltaSeconds is the time since the previous onset of the same stream.
type NoteEvent struct {
	Pitch        int
	Velocity     int
	DeltaSeconds float64
	IsOnset      bool
}

// Validate checks the ranges accepted by the engine.
func (n NoteEvent) Validate() error {
	if n.Pitch < 0 || n.Pitch > 127 {
		return fmt.Errorf("%w: pitch %d outside 0..127", ErrUnmappablePitch, n.Pitch)
	}
	if n.Velocity < 0 || n.Velocity > 127 {
		return fmt.Errorf("%w: velocity %d outside 0..127", ErrInvalidEvent, n.Velocity)
	}
	if n.DeltaSeconds < 0 {
		return fmt.Errorf("%w: negative delta %.4f", ErrInvalidEvent, n.DeltaSeconds)
	}
	return nil
}

// Onset is a shorthand for building a note-on event.
func Onset(pitch, velocity int, deltaSeconds float64) NoteEvent {
	return NoteEvent{Pitch: pitch, Velocity: velocity, DeltaSeconds: deltaSeconds, IsOnset: true}
}
