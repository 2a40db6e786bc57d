// Package config persists the user's playback settings and recent files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/leandrodaf/autobard/internal/mathx"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

// MaxRecent is how many recent files are remembered.
const MaxRecent = 10

// AppConfig is the on-disk settings document.
type AppConfig struct {
	InputDelayMs     int     `json:"input_delay_ms"`
	MinNoteDelayMs   int     `json:"min_note_delay_ms"`
	PlaybackSpeed    float64 `json:"playback_speed"`
	AutoOptimize     bool    `json:"auto_optimize"`
	LoopMode         bool    `json:"loop_mode"`
	CountdownSeconds int     `json:"countdown_seconds"`

	HumanizeMs     int  `json:"humanize_ms"`
	ChordStrumMs   int  `json:"chord_strum_ms"`
	VelocityTiming bool `json:"velocity_timing"`
	DynamicTempo   bool `json:"dynamic_tempo"`

	HighPerformance bool `json:"high_performance"`

	HotkeyStart string `json:"hotkey_start"`
	HotkeyStop  string `json:"hotkey_stop"`

	Sink       contracts.SinkKind `json:"sink"`
	SerialPort string             `json:"serial_port,omitempty"`
	SerialBaud int                `json:"serial_baud,omitempty"`
	BaseOctave int                `json:"base_octave"`

	RecentFiles []string `json:"recent_files"`
	LibraryPath string   `json:"library_path"`

	// AllowedOrigins are the browser origins the control API accepts.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// DefaultConfig returns the settings of a fresh install.
func DefaultConfig() AppConfig {
	pb := contracts.DefaultPlaybackConfig()
	return AppConfig{
		InputDelayMs:     pb.InputDelayMs,
		MinNoteDelayMs:   pb.MinNoteDelayMs,
		PlaybackSpeed:    pb.PlaybackSpeed,
		AutoOptimize:     pb.AutoOptimize,
		LoopMode:         pb.LoopMode,
		CountdownSeconds: pb.CountdownSeconds,
		HumanizeMs:       pb.HumanizeMs,
		ChordStrumMs:     pb.ChordStrumMs,
		VelocityTiming:   pb.VelocityTiming,
		DynamicTempo:     pb.DynamicTempo,
		HighPerformance:  pb.HighPerformance,
		HotkeyStart:      "f10",
		HotkeyStop:       "f12",
		Sink:             contracts.SinkAuto,
		SerialBaud:       115200,
		BaseOctave:       4,
		RecentFiles:      []string{},
	}
}

// DefaultPath is ~/.config/autobard/config.json, or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "autobard", "config.json"), nil
}

// Playback is the immutable snapshot handed to the scheduler, with the ranges
// a session accepts enforced.
func (c AppConfig) Playback() contracts.PlaybackConfig {
	return contracts.PlaybackConfig{
		PlaybackSpeed:    mathx.Clamp(c.PlaybackSpeed, 0.5, 2.0),
		InputDelayMs:     mathx.Clamp(c.InputDelayMs, 0, 500),
		MinNoteDelayMs:   max(0, c.MinNoteDelayMs),
		HumanizeMs:       max(0, c.HumanizeMs),
		ChordStrumMs:     max(0, c.ChordStrumMs),
		VelocityTiming:   c.VelocityTiming,
		DynamicTempo:     c.DynamicTempo,
		HighPerformance:  c.HighPerformance,
		LoopMode:         c.LoopMode,
		CountdownSeconds: max(0, c.CountdownSeconds),
		AutoOptimize:     c.AutoOptimize,
	}
}

// SetPlayback copies the playback fields of pb into c.
func (c *AppConfig) SetPlayback(pb contracts.PlaybackConfig) {
	c.PlaybackSpeed = pb.PlaybackSpeed
	c.InputDelayMs = pb.InputDelayMs
	c.MinNoteDelayMs = pb.MinNoteDelayMs
	c.HumanizeMs = pb.HumanizeMs
	c.ChordStrumMs = pb.ChordStrumMs
	c.VelocityTiming = pb.VelocityTiming
	c.DynamicTempo = pb.DynamicTempo
	c.HighPerformance = pb.HighPerformance
	c.LoopMode = pb.LoopMode
	c.CountdownSeconds = pb.CountdownSeconds
	c.AutoOptimize = pb.AutoOptimize
}

// AddRecentFile moves path to the front of the recent list.
func (c *AppConfig) AddRecentFile(path string) {
	c.RecentFiles = slices.DeleteFunc(c.RecentFiles, func(p string) bool { return p == path })
	c.RecentFiles = slices.Insert(c.RecentFiles, 0, path)
	if len(c.RecentFiles) > MaxRecent {
		c.RecentFiles = c.RecentFiles[:MaxRecent]
	}
}

// Load reads path over the defaults. A missing file yields the defaults and no
// error; a corrupt one yields the defaults and the decode error.
func Load(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decoding %s: %w", path, err)
	}
	if cfg.RecentFiles == nil {
		cfg.RecentFiles = []string{}
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
