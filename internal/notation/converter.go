// Package notation maps absolute pitches onto the instrument's three-band layout
// and resolves that layout to physical keys.
package notation

import (
	"fmt"

	"github.com/leandrodaf/autobard/internal/mathx"
)

// Band is one of the instrument's three octave rows.
type Band int

const (
	Low Band = iota
	Mid
	High
)

func (b Band) String() string {
	switch b {
	case Low:
		return "LOW"
	case Mid:
		return "MID"
	case High:
		return "HIGH"
	}
	return fmt.Sprintf("Band(%d)", int(b))
}

// Accidental is the raise/lower applied to a scale degree.
type Accidental int

const (
	Natural Accidental = iota
	Sharp
	Flat
)

func (a Accidental) String() string {
	switch a {
	case Natural:
		return "NATURAL"
	case Sharp:
		return "SHARP"
	case Flat:
		return "FLAT"
	}
	return fmt.Sprintf("Accidental(%d)", int(a))
}

// Notation is a pitch expressed in instrument terms.
type Notation struct {
	Band       Band
	Degree     int
	Accidental Accidental
}

var solfege = [8]string{"", "DO", "RE", "MI", "FA", "SOL", "LA", "SI"}

// String renders the notation as shown in logs, e.g. "MID-FA#".
func (n Notation) String() string {
	name := "?"
	if n.Degree >= 1 && n.Degree <= 7 {
		name = solfege[n.Degree]
	}
	switch n.Accidental {
	case Sharp:
		name += "#"
	case Flat:
		name += "b"
	}
	return n.Band.String() + "-" + name
}

type semitone struct {
	degree     int
	accidental Accidental
}

// semitones favors flats for D# and A# because the instrument only has flat keys
// on degrees 3 and 7.
var semitones = [12]semitone{
	{1, Natural}, // C
	{1, Sharp},   // C#
	{2, Natural}, // D
	{3, Flat},    // D#
	{3, Natural}, // E
	{4, Natural}, // F
	{4, Sharp},   // F#
	{5, Natural}, // G
	{5, Sharp},   // G#
	{6, Natural}, // A
	{7, Flat},    // A#
	{7, Natural}, // B
}

// Octaves is the number of bands on the instrument.
const Octaves = 3

// Converter turns MIDI pitches into Notation for an instrument whose lowest
// band starts at BaseOctave*12.
type Converter struct {
	baseOctave int
	min, max   int
}

// NewConverter builds a converter. The game instrument uses base octave 4.
func NewConverter(baseOctave int) *Converter {
	return &Converter{
		baseOctave: baseOctave,
		min:        baseOctave * 12,
		max:        (baseOctave+Octaves)*12 - 1,
	}
}

// Range returns the lowest and highest playable pitch.
func (c *Converter) Range() (int, int) {
	return c.min, c.max
}

// Width is the number of semitones the instrument covers.
func (c *Converter) Width() int {
	return c.max - c.min + 1
}

// IsInRange reports whether the pitch is playable without clamping.
func (c *Converter) IsInRange(pitch int) bool {
	return pitch >= c.min && pitch <= c.max
}

// Clamp bounds the pitch into the playable range.
func (c *Converter) Clamp(pitch int) int {
	return mathx.Clamp(pitch, c.min, c.max)
}

// Convert clamps the pitch and returns its notation.
func (c *Converter) Convert(pitch int) Notation {
	clamped := c.Clamp(pitch)
	octave := clamped / 12
	st := semitones[clamped%12]

	band := High
	switch idx := octave - c.baseOctave; {
	case idx <= 0:
		band = Low
	case idx == 1:
		band = Mid
	}
	return Notation{Band: band, Degree: st.degree, Accidental: st.accidental}
}
