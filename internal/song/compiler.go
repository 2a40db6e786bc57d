package song

import (
	"github.com/leandrodaf/autobard/internal/notation"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

// DefaultChordThreshold groups onsets closer than 50 ms into one chord.
const DefaultChordThreshold = 0.05

// densityHalfWindow is half of the centered window used for note density.
const densityHalfWindow = 1.0

// PitchConverter clamps a pitch into the instrument and returns its notation.
type PitchConverter interface {
	Convert(pitch int) notation.Notation
}

// KeyResolver turns notation into a key command.
type KeyResolver interface {
	Resolve(n notation.Notation) (contracts.KeyCommand, error)
}

// Compile groups onsets into chords, resolves every note to a key and
// precomputes the density map. It has no hidden state: the same inputs always
// produce an equal result. Events that cannot be resolved are dropped; the
// delta of a cluster dropped whole moves to the next kept cluster.
func Compile(events []contracts.NoteEvent, offset int, conv PitchConverter, keys KeyResolver, chordThreshold float64) *Compiled {
	c := &Compiled{}

	onsets := make([]contracts.NoteEvent, 0, len(events))
	for _, e := range events {
		if e.IsOnset {
			onsets = append(onsets, e)
		}
	}

	// carry holds the delta of clusters that lost every member, so the next
	// kept cluster still starts at its original time.
	var carry float64
	for i := 0; i < len(onsets); {
		j := i + 1
		for j < len(onsets) && onsets[j].DeltaSeconds <= chordThreshold {
			j++
		}

		delta := onsets[i].DeltaSeconds + carry

		start := len(c.notes)
		for _, e := range onsets[i:j] {
			note, err := resolve(e, offset, conv, keys)
			if err != nil {
				c.dropped++
				continue
			}
			c.notes = append(c.notes, note)
		}

		if kept := len(c.notes) - start; kept > 0 {
			c.notes[start].DeltaSeconds = delta
			if kept > 1 {
				c.notes[start].ChordSize = kept
			}
			c.duration += delta
			carry = 0
		} else {
			carry = delta
		}
		i = j
	}

	c.onsets = cumulative(c.notes)
	c.density = densityMap(c.onsets)
	return c
}

func resolve(e contracts.NoteEvent, offset int, conv PitchConverter, keys KeyResolver) (Note, error) {
	if err := e.Validate(); err != nil {
		return Note{}, err
	}
	pitch := e.Pitch + offset
	key, err := keys.Resolve(conv.Convert(pitch))
	if err != nil {
		return Note{}, err
	}
	return Note{Key: key, Pitch: pitch, Velocity: e.Velocity}, nil
}

func cumulative(notes []Note) []float64 {
	times := make([]float64, len(notes))
	t := 0.0
	for i, n := range notes {
		t += n.DeltaSeconds
		times[i] = t
	}
	return times
}

// densityMap counts, for each onset, the onsets within one second either side
// (bounds included) and divides by the two-second window. times is
// non-decreasing, so both window edges only move forward.
func densityMap(times []float64) []float64 {
	density := make([]float64, len(times))
	lo, hi := 0, 0
	for i, t := range times {
		for times[lo] < t-densityHalfWindow {
			lo++
		}
		if hi < i {
			hi = i
		}
		for hi+1 < len(times) && times[hi+1] <= t+densityHalfWindow {
			hi++
		}
		density[i] = float64(hi-lo+1) / (2 * densityHalfWindow)
	}
	return density
}
