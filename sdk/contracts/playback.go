package contracts

import (
	"fmt"
	"time"
)

// State is the playback cursor state.
type State int32

const (
	StateReady State = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StateStopped:
		return "STOPPED"
	}
	return "UNKNOWN"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for st := StateReady; st <= StateStopped; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown playback state %q", text)
}

// PlaybackConfig is the immutable snapshot a session runs with. Changes made while
// a session is running only apply to the next one.
type PlaybackConfig struct {
	PlaybackSpeed    float64 `json:"playbackSpeed"`
	InputDelayMs     int     `json:"inputDelayMs"`
	MinNoteDelayMs   int     `json:"minNoteDelayMs"`
	HumanizeMs       int     `json:"humanizeMs"`
	ChordStrumMs     int     `json:"chordStrumMs"`
	VelocityTiming   bool    `json:"velocityTiming"`
	DynamicTempo     bool    `json:"dynamicTempo"`
	HighPerformance  bool    `json:"highPerformance"`
	LoopMode         bool    `json:"loopMode"`
	CountdownSeconds int     `json:"countdownSeconds"`
	AutoOptimize     bool    `json:"autoOptimize"`
}

// DefaultPlaybackConfig returns the values a fresh install starts with.
func DefaultPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{
		PlaybackSpeed:    1.0,
		InputDelayMs:     50,
		MinNoteDelayMs:   80,
		HumanizeMs:       12,
		ChordStrumMs:     6,
		VelocityTiming:   true,
		DynamicTempo:     true,
		HighPerformance:  true,
		LoopMode:         false,
		CountdownSeconds: 3,
		AutoOptimize:     true,
	}
}

// HoldDelay is the pause the sink takes after each press.
func (c PlaybackConfig) HoldDelay() time.Duration {
	return time.Duration(c.InputDelayMs) * time.Millisecond
}

// Strum is the stagger between chord key-downs.
func (c PlaybackConfig) Strum() time.Duration {
	return time.Duration(c.ChordStrumMs) * time.Millisecond
}

// MinNoteDelay is the floor applied to every computed wait but the first.
func (c PlaybackConfig) MinNoteDelay() time.Duration {
	return time.Duration(c.MinNoteDelayMs) * time.Millisecond
}
