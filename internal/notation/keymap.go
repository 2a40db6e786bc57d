package notation

import (
	"fmt"

	"github.com/leandrodaf/autobard/sdk/contracts"
)

type slot struct {
	band   Band
	degree int
}

// KeyMapper resolves notation to a key and modifier set using the fixed
// game layout: naturals on three rows, sharps with shift on degrees 1, 4 and 5,
// flats with ctrl on degrees 3 and 7.
type KeyMapper struct {
	naturals map[slot]rune
	sharps   map[slot]rune
	flats    map[slot]rune
}

var rows = map[Band]string{
	High: "qwertyu",
	Mid:  "asdfghj",
	Low:  "zxcvbnm",
}

var (
	sharpDegrees = map[int]bool{1: true, 4: true, 5: true}
	flatDegrees  = map[int]bool{3: true, 7: true}
)

// NewKeyMapper builds the 21 natural, 9 sharp and 6 flat bindings.
func NewKeyMapper() *KeyMapper {
	m := &KeyMapper{
		naturals: make(map[slot]rune, 21),
		sharps:   make(map[slot]rune, 9),
		flats:    make(map[slot]rune, 6),
	}
	for band, keys := range rows {
		for i, key := range keys {
			s := slot{band, i + 1}
			m.naturals[s] = key
			if sharpDegrees[s.degree] {
				m.sharps[s] = key
			}
			if flatDegrees[s.degree] {
				m.flats[s] = key
			}
		}
	}
	return m
}

// IsAccidentalSupported reports whether the instrument has a dedicated binding.
func (m *KeyMapper) IsAccidentalSupported(degree int, accidental Accidental) bool {
	switch accidental {
	case Sharp:
		return sharpDegrees[degree]
	case Flat:
		return flatDegrees[degree]
	default:
		return true
	}
}

// Resolve returns the key command for the notation. An accidental the instrument
// cannot play falls back to the natural key with no modifier.
func (m *KeyMapper) Resolve(n Notation) (contracts.KeyCommand, error) {
	s := slot{n.Band, n.Degree}
	natural, ok := m.naturals[s]
	if !ok {
		return contracts.KeyCommand{}, fmt.Errorf("%w: %s", contracts.ErrUnmappablePitch, n)
	}

	switch n.Accidental {
	case Sharp:
		if key, ok := m.sharps[s]; ok {
			return contracts.KeyCommand{Key: key, Modifiers: contracts.ModShift}, nil
		}
	case Flat:
		if key, ok := m.flats[s]; ok {
			return contracts.KeyCommand{Key: key, Modifiers: contracts.ModCtrl}, nil
		}
	}
	return contracts.KeyCommand{Key: natural}, nil
}

// Keys lists every physical key of the layout, low row first.
func Keys() []rune {
	out := make([]rune, 0, 21)
	for _, band := range []Band{Low, Mid, High} {
		out = append(out, []rune(rows[band])...)
	}
	return out
}
