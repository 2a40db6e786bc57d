package scheduler

import (
	"testing"
	"time"

	"github.com/leandrodaf/autobard/internal/song"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
)

func fixedJitter(ms float64) Jitter {
	return func(float64) float64 { return ms }
}

func TestDelayPipelineOrder(t *testing.T) {
	cfg := contracts.PlaybackConfig{
		PlaybackSpeed:  2,
		MinNoteDelayMs: 80,
		HumanizeMs:     12,
		DynamicTempo:   true,
		VelocityTiming: true,
	}
	note := song.Note{DeltaSeconds: 1.0, Velocity: 40}

	// 1.0/2 = 0.5; *1.06 = 0.53; *1.2 = 0.636; +10ms = 0.646
	got := Delay(cfg, note, 10, fixedJitter(10))
	assert.InDelta(t, 646*time.Millisecond, got, float64(time.Microsecond))
}

func TestDelayStages(t *testing.T) {
	base := contracts.PlaybackConfig{PlaybackSpeed: 1}
	tests := []struct {
		name    string
		mutate  func(*contracts.PlaybackConfig)
		note    song.Note
		density float64
		want    time.Duration
	}{
		{"speed only", nil, song.Note{DeltaSeconds: 0.3, Velocity: 100}, 20, 300 * time.Millisecond},
		{"density at threshold", func(c *contracts.PlaybackConfig) { c.DynamicTempo = true }, song.Note{DeltaSeconds: 1, Velocity: 100}, 8, time.Second},
		{"dense passage uncapped", func(c *contracts.PlaybackConfig) { c.DynamicTempo = true }, song.Note{DeltaSeconds: 1, Velocity: 100}, 108, 4 * time.Second},
		{"soft note", func(c *contracts.PlaybackConfig) { c.VelocityTiming = true }, song.Note{DeltaSeconds: 1, Velocity: 0}, 0, 1400 * time.Millisecond},
		{"loud note untouched", func(c *contracts.PlaybackConfig) { c.VelocityTiming = true }, song.Note{DeltaSeconds: 1, Velocity: 80}, 0, time.Second},
		{"floor", func(c *contracts.PlaybackConfig) { c.MinNoteDelayMs = 80 }, song.Note{DeltaSeconds: 0.01, Velocity: 100}, 0, 80 * time.Millisecond},
		{"negative jitter hits floor", func(c *contracts.PlaybackConfig) { c.HumanizeMs = 12; c.MinNoteDelayMs = 5 }, song.Note{DeltaSeconds: 0.01, Velocity: 100}, 0, 5 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			got := Delay(cfg, tt.note, tt.density, fixedJitter(-12))
			assert.InDelta(t, tt.want, got, float64(time.Microsecond))
		})
	}
}

func TestUniformJitterBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		j := UniformJitter(12)
		assert.True(t, j >= -12 && j <= 12)
	}
}

func TestNormalize(t *testing.T) {
	cfg := Normalize(contracts.PlaybackConfig{PlaybackSpeed: 0.1, InputDelayMs: -3, HumanizeMs: -1})
	assert.Equal(t, MinSpeed, cfg.PlaybackSpeed)
	assert.Equal(t, 0, cfg.InputDelayMs)
	assert.Equal(t, 0, cfg.HumanizeMs)
	assert.Equal(t, 1.0, Normalize(contracts.PlaybackConfig{}).PlaybackSpeed)
}
