package bard

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/autobard/internal/capture/capturedarwin"
	"github.com/leandrodaf/autobard/internal/capture/capturewindows"
	"github.com/leandrodaf/autobard/internal/sink/sinklog"
	"github.com/leandrodaf/autobard/internal/sink/sinkserial"
	"github.com/leandrodaf/autobard/internal/sink/sinkwindows"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no native backend.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// sinkInitializers maps OS names to the native key sink.
var sinkInitializers = map[string]func(*contracts.PlayerOptions) (contracts.KeySink, error){
	"windows": sinkwindows.NewSink,
}

// captureInitializers maps OS names to the live MIDI capturer.
var captureInitializers = map[string]func(*contracts.PlayerOptions) (contracts.Capturer, error){
	"darwin":  capturedarwin.NewCapturer,
	"windows": capturewindows.NewCapturer,
}

// NewSink builds the key sink selected by opts. An injected sink wins over
// the kind.
func NewSink(opts *contracts.PlayerOptions) (contracts.KeySink, error) {
	if opts.Sink != nil {
		return opts.Sink, nil
	}
	switch opts.SinkKind {
	case contracts.SinkSerial:
		return sinkserial.NewSink(opts)
	case contracts.SinkDryRun:
		return sinklog.NewSink(opts.Logger, true), nil
	case contracts.SinkAuto, "":
		if initializer, exists := sinkInitializers[runtime.GOOS]; exists {
			return initializer(opts)
		}
		return nil, fmt.Errorf("%w: %s has no key injection backend", ErrUnsupportedOS, runtime.GOOS)
	}
	return nil, fmt.Errorf("unknown sink kind %q", opts.SinkKind)
}

// NewCapturer builds the live MIDI capturer for the current OS.
func NewCapturer(opts ...contracts.Option) (contracts.Capturer, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	if initializer, exists := captureInitializers[runtime.GOOS]; exists {
		return initializer(&options)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
