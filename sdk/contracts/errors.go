package contracts

import "errors"

var (
	// ErrParse is returned when a song file cannot be turned into note events.
	ErrParse = errors.New("parse failure")
	// ErrUnmappablePitch marks a pitch that could not be resolved to a key.
	ErrUnmappablePitch = errors.New("unmappable pitch")
	// ErrInvalidEvent marks a note event with out-of-range fields.
	ErrInvalidEvent = errors.New("invalid note event")
	// ErrSink wraps failures reported by a key sink.
	ErrSink = errors.New("key sink failure")
	// ErrNoSong is returned when playback is requested without a loaded song.
	ErrNoSong = errors.New("no song loaded")
	// ErrSessionStillRunning is returned when a previous playback session did not
	// exit within the join timeout and a new one cannot be started.
	ErrSessionStillRunning = errors.New("previous playback session still running")
	// ErrUnavailable is returned by platform fallbacks.
	ErrUnavailable = errors.New("not available on this platform")
)
