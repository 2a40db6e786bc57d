// Package song compiles note events into an immutable, playback-ready form.
package song

import "github.com/leandrodaf/autobard/sdk/contracts"

// Note is one resolved key press. Only the first member of a chord carries
// a delta and a ChordSize above 1.
type Note struct {
	Key          contracts.KeyCommand
	Pitch        int
	DeltaSeconds float64
	Velocity     int
	ChordSize    int
}

// Compiled is a song ready for the scheduler. It is never modified after
// Compile returns and is safe to read from several goroutines.
type Compiled struct {
	name     string
	notes    []Note
	onsets   []float64
	density  []float64
	duration float64
	dropped  int
}

// Name is the display name attached at load time.
func (c *Compiled) Name() string { return c.name }

// Len returns the number of compiled notes.
func (c *Compiled) Len() int { return len(c.notes) }

// Note returns the note at index i.
func (c *Compiled) Note(i int) Note { return c.notes[i] }

// Density returns the local note rate (notes per second) around note i.
func (c *Compiled) Density(i int) float64 { return c.density[i] }

// OnsetTime is the cumulative time in seconds at which note i starts.
func (c *Compiled) OnsetTime(i int) float64 { return c.onsets[i] }

// TotalDuration is the sum of all note deltas in seconds, which is also the
// onset time of the last note.
func (c *Compiled) TotalDuration() float64 { return c.duration }

// Dropped counts events that could not be resolved to a key.
func (c *Compiled) Dropped() int { return c.dropped }

// Chords counts chord clusters with more than one member.
func (c *Compiled) Chords() int {
	n := 0
	for _, note := range c.notes {
		if note.ChordSize > 1 {
			n++
		}
	}
	return n
}

// ChordKeys returns the keys of the chord starting at i, or the single key at i.
func (c *Compiled) ChordKeys(i int) []contracts.KeyCommand {
	if i < 0 || i >= len(c.notes) {
		return nil
	}
	size := c.notes[i].ChordSize
	if size <= 1 {
		return []contracts.KeyCommand{c.notes[i].Key}
	}
	keys := make([]contracts.KeyCommand, 0, size)
	for j := i; j < i+size && j < len(c.notes); j++ {
		keys = append(keys, c.notes[j].Key)
	}
	return keys
}

// WithName returns a copy sharing the same note data under another name.
func (c *Compiled) WithName(name string) *Compiled {
	cp := *c
	cp.name = name
	return &cp
}
