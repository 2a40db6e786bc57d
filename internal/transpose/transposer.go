// Package transpose fits a song's pitch range into the instrument window.
package transpose

import (
	"math"

	"github.com/leandrodaf/autobard/internal/mathx"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

// Report summarizes the pitch range of a song's onsets.
type Report struct {
	Min               int  `json:"min"`
	Max               int  `json:"max"`
	Span              int  `json:"span"` // semitones covered, max-min+1
	FitsInInstrument  bool `json:"fitsInInstrument"`
	RecommendedOffset int  `json:"recommendedOffset"`
	Onsets            int  `json:"onsets"`
}

// Transposer computes shifts for an instrument covering [min, max].
type Transposer struct {
	min, max int
	width    int
}

// New builds a transposer for the inclusive pitch range [min, max].
func New(min, max int) *Transposer {
	return &Transposer{min: min, max: max, width: max - min + 1}
}

// Width is the instrument window size in semitones.
func (t *Transposer) Width() int {
	return t.width
}

func (t *Transposer) fits(lo, hi int) bool {
	return lo >= t.min && hi <= t.max
}

// CalculateOffset returns the semitone shift that best centers [lo, hi] in the
// instrument. Octave shifts are preferred when the song is narrow enough.
// Halves round to even.
func (t *Transposer) CalculateOffset(lo, hi int) int {
	if t.fits(lo, hi) {
		return 0
	}

	songCenter := float64(lo+hi) / 2
	instrumentCenter := float64(t.min+t.max) / 2
	raw := instrumentCenter - songCenter

	if hi-lo+1 <= t.width {
		octave := int(math.RoundToEven(raw/12)) * 12
		if t.fits(lo+octave, hi+octave) {
			return octave
		}
	}
	return int(math.RoundToEven(raw))
}

// onsetPitches returns the pitches of onset events plus their bounds.
func onsetPitches(events []contracts.NoteEvent) (pitches []int, lo, hi int) {
	for _, e := range events {
		if !e.IsOnset {
			continue
		}
		if len(pitches) == 0 || e.Pitch < lo {
			lo = e.Pitch
		}
		if len(pitches) == 0 || e.Pitch > hi {
			hi = e.Pitch
		}
		pitches = append(pitches, e.Pitch)
	}
	return pitches, lo, hi
}

// FindBestWindow returns the start of the instrument-wide pitch window holding the
// most onsets, and that count. The lowest start wins ties. Songs that already fit
// return their own minimum and total onset count.
func (t *Transposer) FindBestWindow(events []contracts.NoteEvent) (int, int) {
	pitches, lo, hi := onsetPitches(events)
	if len(pitches) == 0 {
		return t.min, 0
	}
	if hi-lo < t.width {
		return lo, len(pitches)
	}

	// histogram keeps the scan linear in the span rather than span*notes
	hist := make([]int, hi-lo+1)
	for _, p := range pitches {
		hist[p-lo]++
	}

	count := 0
	for i := 0; i < t.width; i++ {
		count += hist[i]
	}
	bestStart, bestCount := lo, count
	for start := lo + 1; start <= hi-t.width+1; start++ {
		count += hist[start+t.width-1-lo] - hist[start-1-lo]
		if count > bestCount {
			bestStart, bestCount = start, count
		}
	}
	return bestStart, bestCount
}

// FilterToWindow keeps the onsets inside [start, start+width-1]. The time of every
// dropped onset is added to the next kept one so kept notes keep their absolute
// position.
func (t *Transposer) FilterToWindow(events []contracts.NoteEvent, start int) []contracts.NoteEvent {
	end := start + t.width - 1
	out := make([]contracts.NoteEvent, 0, len(events))
	acc := 0.0
	for _, e := range events {
		if !e.IsOnset {
			continue
		}
		acc += e.DeltaSeconds
		if e.Pitch < start || e.Pitch > end {
			continue
		}
		e.DeltaSeconds = acc
		out = append(out, e)
		acc = 0
	}
	return out
}

// AnalyzeRange reports the onset range and the recommended shift. An empty song
// reports zeros and fits.
func (t *Transposer) AnalyzeRange(events []contracts.NoteEvent) Report {
	pitches, lo, hi := onsetPitches(events)
	if len(pitches) == 0 {
		return Report{FitsInInstrument: true}
	}
	span := hi - lo + 1
	return Report{
		Min:               lo,
		Max:               hi,
		Span:              span,
		FitsInInstrument:  span <= t.width,
		RecommendedOffset: t.CalculateOffset(lo, hi),
		Onsets:            len(pitches),
	}
}

// Apply shifts every event by offset, clamping to the MIDI range.
func (t *Transposer) Apply(events []contracts.NoteEvent, offset int) []contracts.NoteEvent {
	if offset == 0 {
		return events
	}
	out := make([]contracts.NoteEvent, len(events))
	for i, e := range events {
		e.Pitch = mathx.Clamp(e.Pitch+offset, 0, 127)
		out[i] = e
	}
	return out
}

// OutOfRange counts onsets that land below and above the instrument after offset.
func (t *Transposer) OutOfRange(events []contracts.NoteEvent, offset int) (below, above int) {
	for _, e := range events {
		if !e.IsOnset {
			continue
		}
		switch p := e.Pitch + offset; {
		case p < t.min:
			below++
		case p > t.max:
			above++
		}
	}
	return below, above
}
