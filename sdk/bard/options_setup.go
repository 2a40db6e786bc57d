package bard

import (
	"fmt"

	"github.com/leandrodaf/autobard/internal/logger"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

const (
	// DefaultBaseOctave puts the instrument on pitches 48..83.
	DefaultBaseOctave = 4
	// MaxBaseOctave is the highest octave whose three-octave range stays within MIDI.
	MaxBaseOctave = 7
)

// applyDefaultOptions sets default values for PlayerOptions if not explicitly provided.
func applyDefaultOptions(opts ...contracts.Option) (contracts.PlayerOptions, error) {
	options := &contracts.PlayerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.Playback == nil {
		pb := contracts.DefaultPlaybackConfig()
		options.Playback = &pb
	}
	if options.SinkKind == "" {
		options.SinkKind = contracts.SinkAuto
	}
	if options.BaseOctave == nil {
		octave := DefaultBaseOctave
		options.BaseOctave = &octave
	}
	if o := *options.BaseOctave; o < 0 || o > MaxBaseOctave {
		return contracts.PlayerOptions{}, fmt.Errorf("base octave %d outside 0..%d", o, MaxBaseOctave)
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "autobard"}
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options, nil
}
