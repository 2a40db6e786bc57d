package notation

import (
	"errors"
	"testing"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNaturals(t *testing.T) {
	m := NewKeyMapper()
	rowsWant := map[Band]string{High: "qwertyu", Mid: "asdfghj", Low: "zxcvbnm"}
	for band, keys := range rowsWant {
		for i, key := range keys {
			got, err := m.Resolve(Notation{band, i + 1, Natural})
			require.NoError(t, err)
			assert.Equal(t, contracts.KeyCommand{Key: key}, got)
		}
	}
}

func TestResolveAccidentals(t *testing.T) {
	m := NewKeyMapper()
	tests := []struct {
		name string
		in   Notation
		want contracts.KeyCommand
	}{
		{"high sharp 1", Notation{High, 1, Sharp}, contracts.KeyCommand{Key: 'q', Modifiers: contracts.ModShift}},
		{"mid sharp 4", Notation{Mid, 4, Sharp}, contracts.KeyCommand{Key: 'f', Modifiers: contracts.ModShift}},
		{"low sharp 5", Notation{Low, 5, Sharp}, contracts.KeyCommand{Key: 'b', Modifiers: contracts.ModShift}},
		{"high flat 7", Notation{High, 7, Flat}, contracts.KeyCommand{Key: 'u', Modifiers: contracts.ModCtrl}},
		{"mid flat 3", Notation{Mid, 3, Flat}, contracts.KeyCommand{Key: 'd', Modifiers: contracts.ModCtrl}},
		{"low flat 7", Notation{Low, 7, Flat}, contracts.KeyCommand{Key: 'm', Modifiers: contracts.ModCtrl}},
		{"unsupported sharp falls back", Notation{Mid, 2, Sharp}, contracts.KeyCommand{Key: 's'}},
		{"unsupported flat falls back", Notation{Low, 6, Flat}, contracts.KeyCommand{Key: 'n'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Resolve(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccidentalSupport(t *testing.T) {
	m := NewKeyMapper()
	sharps, flats := 0, 0
	for d := 1; d <= 7; d++ {
		if m.IsAccidentalSupported(d, Sharp) {
			sharps++
		}
		if m.IsAccidentalSupported(d, Flat) {
			flats++
		}
		assert.True(t, m.IsAccidentalSupported(d, Natural))
	}
	assert.Equal(t, 3, sharps)
	assert.Equal(t, 2, flats)
}

func TestResolveInvalidDegree(t *testing.T) {
	_, err := NewKeyMapper().Resolve(Notation{Mid, 9, Natural})
	assert.True(t, errors.Is(err, contracts.ErrUnmappablePitch))
}

func TestEveryPitchResolves(t *testing.T) {
	c, m := NewConverter(4), NewKeyMapper()
	for p := 0; p <= 127; p++ {
		_, err := m.Resolve(c.Convert(p))
		assert.NoError(t, err, "pitch %d", p)
	}
	assert.Len(t, Keys(), 21)
}

func TestKeyCommandString(t *testing.T) {
	assert.Equal(t, "shift+q", contracts.KeyCommand{Key: 'q', Modifiers: contracts.ModShift}.String())
	assert.Equal(t, "z", contracts.KeyCommand{Key: 'z'}.String())
}
