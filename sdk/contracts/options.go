package contracts

// SinkKind selects the key injection backend.
type SinkKind string

const (
	// SinkAuto picks the OS backend, SendInput on Windows.
	SinkAuto SinkKind = "auto"
	// SinkSerial writes key frames to a keyboard-emulating microcontroller.
	SinkSerial SinkKind = "serial"
	// SinkDryRun only logs the keys that would be pressed.
	SinkDryRun SinkKind = "dry-run"
)

// SerialConfig configures the serial key sink.
type SerialConfig struct {
	Port     string
	BaudRate int
}

// CoreMIDIConfig holds configuration for live capture on macOS.
type CoreMIDIConfig struct {
	ClientName string
}

// PlayerOptions defines the configuration options for a Player.
type PlayerOptions struct {
	Logger         Logger
	LogLevel       LogLevel
	LogFilePath    string
	Playback       *PlaybackConfig
	Sink           KeySink
	SinkKind       SinkKind
	Serial         *SerialConfig
	CaptureFilter  *CaptureFilter
	CoreMIDIConfig *CoreMIDIConfig
	BaseOctave     *int
}

// Option is a function that modifies PlayerOptions.
type Option func(*PlayerOptions)

// WithLogger sets the logger for the player.
func WithLogger(l Logger) Option {
	return func(opts *PlayerOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *PlayerOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends logs to a file instead of stderr.
func WithLogFile(path string) Option {
	return func(opts *PlayerOptions) {
		opts.LogFilePath = path
	}
}

// WithPlayback sets the configuration used by the first session.
func WithPlayback(cfg PlaybackConfig) Option {
	return func(opts *PlayerOptions) {
		opts.Playback = &cfg
	}
}

// WithSink injects a ready-made key sink, bypassing the OS factory.
func WithSink(sink KeySink) Option {
	return func(opts *PlayerOptions) {
		opts.Sink = sink
	}
}

// WithSinkKind selects which key sink the factory builds.
func WithSinkKind(kind SinkKind) Option {
	return func(opts *PlayerOptions) {
		opts.SinkKind = kind
	}
}

// WithSerial configures and selects the serial key sink.
func WithSerial(cfg SerialConfig) Option {
	return func(opts *PlayerOptions) {
		opts.Serial = &cfg
		opts.SinkKind = SinkSerial
	}
}

// WithCaptureFilter sets the commands forwarded by live capture.
func WithCaptureFilter(filter CaptureFilter) Option {
	return func(opts *PlayerOptions) {
		opts.CaptureFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for live capture.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *PlayerOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithBaseOctave moves the instrument window, 0..7. The default is 4 (pitches 48..83).
func WithBaseOctave(octave int) Option {
	return func(opts *PlayerOptions) {
		opts.BaseOctave = &octave
	}
}
