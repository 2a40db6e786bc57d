package transpose

import (
	"testing"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
)

func onsets(pitches ...int) []contracts.NoteEvent {
	out := make([]contracts.NoteEvent, len(pitches))
	for i, p := range pitches {
		out[i] = contracts.Onset(p, 100, 0.1)
	}
	return out
}

func TestCalculateOffset(t *testing.T) {
	tr := New(48, 83)
	tests := []struct {
		name   string
		lo, hi int
		want   int
	}{
		{"already inside", 50, 70, 0},
		{"exact window", 48, 83, 0},
		{"one octave low exact width", 36, 71, 12},
		{"one octave high", 62, 90, -12},
		{"two octaves low", 24, 40, 36},
		{"too wide centers, half rounds to even", 30, 100, 0},
		{"too wide low", 10, 70, 26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.CalculateOffset(tt.lo, tt.hi))
		})
	}
}

func TestOffsetKeepsNarrowSongsInside(t *testing.T) {
	tr := New(48, 83)
	for lo := 0; lo <= 127; lo++ {
		for hi := lo; hi <= 127 && hi-lo+1 <= tr.Width(); hi++ {
			off := tr.CalculateOffset(lo, hi)
			slo, shi := lo+off, hi+off
			assert.True(t, slo >= 48 && shi <= 83, "range %d..%d offset %d", lo, hi, off)
		}
	}
}

func TestFindBestWindowFits(t *testing.T) {
	tr := New(48, 83)
	start, count := tr.FindBestWindow(onsets(50, 60, 70))
	assert.Equal(t, 50, start)
	assert.Equal(t, 3, count)

	start, count = tr.FindBestWindow(nil)
	assert.Equal(t, 48, start)
	assert.Equal(t, 0, count)
}

func TestFindBestWindowWideSong(t *testing.T) {
	tr := New(48, 83)
	var pitches []int
	for p := 0; p <= 71; p++ {
		pitches = append(pitches, p)
	}
	// weight the upper octaves so the best window is not at the bottom
	for p := 40; p <= 60; p++ {
		pitches = append(pitches, p, p)
	}
	events := onsets(pitches...)

	start, count := tr.FindBestWindow(events)

	inWindow := func(lo int) int {
		n := 0
		for _, p := range pitches {
			if p >= lo && p <= lo+35 {
				n++
			}
		}
		return n
	}
	assert.Equal(t, inWindow(start), count)
	for octave := 0; octave+35 <= 71; octave += 12 {
		assert.GreaterOrEqual(t, count, inWindow(octave))
	}
	for lo := 0; lo <= 71-35; lo++ {
		assert.GreaterOrEqual(t, count, inWindow(lo))
	}
}

func TestFindBestWindowEarliestMaxWins(t *testing.T) {
	tr := New(48, 83)
	// 0..72 uniformly: windows starting at 0..37 all hold 36 notes
	var pitches []int
	for p := 0; p <= 72; p++ {
		pitches = append(pitches, p)
	}
	start, count := tr.FindBestWindow(onsets(pitches...))
	assert.Equal(t, 0, start)
	assert.Equal(t, 36, count)
}

func TestFilterToWindowFoldsTime(t *testing.T) {
	tr := New(48, 83)
	events := []contracts.NoteEvent{
		contracts.Onset(60, 100, 0.0),
		contracts.Onset(20, 100, 0.5),
		contracts.Onset(100, 100, 0.25),
		contracts.Onset(62, 90, 0.25),
		{Pitch: 62, DeltaSeconds: 9, IsOnset: false},
		contracts.Onset(64, 80, 0.1),
	}
	got := tr.FilterToWindow(events, 48)
	if assert.Len(t, got, 3) {
		assert.Equal(t, 0.0, got[0].DeltaSeconds)
		assert.InDelta(t, 1.0, got[1].DeltaSeconds, 1e-9)
		assert.Equal(t, 90, got[1].Velocity)
		assert.InDelta(t, 0.1, got[2].DeltaSeconds, 1e-9)
	}
}

func TestAnalyzeRange(t *testing.T) {
	tr := New(48, 83)
	assert.Equal(t, Report{FitsInInstrument: true}, tr.AnalyzeRange(nil))

	r := tr.AnalyzeRange(onsets(36, 50, 71))
	assert.Equal(t, Report{Min: 36, Max: 71, Span: 36, FitsInInstrument: true, RecommendedOffset: 12, Onsets: 3}, r)

	wide := tr.AnalyzeRange(onsets(20, 100))
	assert.False(t, wide.FitsInInstrument)
	assert.Equal(t, 81, wide.Span)
}

func TestApplyAndOutOfRange(t *testing.T) {
	tr := New(48, 83)
	events := onsets(0, 40, 60, 90, 127)

	shifted := tr.Apply(events, 10)
	assert.Equal(t, 10, shifted[0].Pitch)
	assert.Equal(t, 127, shifted[4].Pitch)
	assert.Equal(t, 0, events[0].Pitch, "input is not mutated")

	below, above := tr.OutOfRange(events, 0)
	assert.Equal(t, 2, below)
	assert.Equal(t, 2, above)
}
