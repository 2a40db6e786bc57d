package scheduler

import (
	"math/rand"
	"time"

	"github.com/leandrodaf/autobard/internal/mathx"
	"github.com/leandrodaf/autobard/internal/song"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

const (
	// denseThreshold is the note rate (notes/s) above which dynamic tempo slows down.
	denseThreshold = 8.0
	// tempoStep is the slow-down per note/s above denseThreshold. Not capped.
	tempoStep = 0.03
	// velocityPivot is the velocity below which soft notes are stretched.
	velocityPivot = 80
	// velocitySpan turns the velocity deficit into a stretch factor, up to +40%.
	velocitySpan = 200.0

	MinSpeed      = 0.5
	MaxSpeed      = 2.0
	MaxInputDelay = 500
)

// Jitter returns a random offset in milliseconds within [-maxMs, +maxMs].
type Jitter func(maxMs float64) float64

// UniformJitter draws from a uniform distribution.
func UniformJitter(maxMs float64) float64 {
	return (rand.Float64()*2 - 1) * maxMs
}

// Delay computes the wait before a note. The steps run in a fixed order: speed,
// dynamic tempo, velocity timing, humanization, then the minimum delay floor.
// Negative jitter can pull the delay down to the floor.
func Delay(cfg contracts.PlaybackConfig, note song.Note, density float64, jitter Jitter) time.Duration {
	speed := cfg.PlaybackSpeed
	if speed <= 0 {
		speed = 1
	}
	d := note.DeltaSeconds / speed

	if cfg.DynamicTempo && density > denseThreshold {
		d *= 1 + (density-denseThreshold)*tempoStep
	}
	if cfg.VelocityTiming && note.Velocity < velocityPivot {
		d *= 1 + float64(velocityPivot-note.Velocity)/velocitySpan
	}
	if cfg.HumanizeMs > 0 && jitter != nil {
		d += jitter(float64(cfg.HumanizeMs)) / 1000
	}
	if floor := cfg.MinNoteDelay().Seconds(); d < floor {
		d = floor
	}
	return time.Duration(d * float64(time.Second))
}

// Normalize clamps the values a session cannot run with.
func Normalize(cfg contracts.PlaybackConfig) contracts.PlaybackConfig {
	if cfg.PlaybackSpeed == 0 {
		cfg.PlaybackSpeed = 1
	}
	cfg.PlaybackSpeed = mathx.Clamp(cfg.PlaybackSpeed, MinSpeed, MaxSpeed)
	cfg.InputDelayMs = mathx.Clamp(cfg.InputDelayMs, 0, MaxInputDelay)
	cfg.MinNoteDelayMs = max(cfg.MinNoteDelayMs, 0)
	cfg.HumanizeMs = max(cfg.HumanizeMs, 0)
	cfg.ChordStrumMs = max(cfg.ChordStrumMs, 0)
	cfg.CountdownSeconds = max(cfg.CountdownSeconds, 0)
	return cfg
}
