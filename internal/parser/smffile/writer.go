package smffile

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	exportTicksPerQuarter = 960
	exportBPM             = 120
	// ticks per second at exportBPM
	exportTicksPerSecond = exportTicksPerQuarter * exportBPM / 60
	// NoteLength is how long each exported note sounds.
	NoteLength = 0.1
)

type placed struct {
	tick uint32
	off  bool
	key  uint8
	vel  uint8
}

// Write encodes the onsets as a single-track SMF at 120 BPM. Each note lasts
// NoteLength seconds or until the same pitch sounds again.
func Write(w io.Writer, name string, events []contracts.NoteEvent) error {
	s, err := build(name, events)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

// WriteFile is Write to a file at path.
func WriteFile(path, name string, events []contracts.NoteEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, name, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func build(name string, events []contracts.NoteEvent) (*smf.SMF, error) {
	var ons []placed
	var elapsed float64
	for _, e := range events {
		if !e.IsOnset {
			continue
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		elapsed += e.DeltaSeconds
		ons = append(ons, placed{
			tick: uint32(math.Round(elapsed * exportTicksPerSecond)),
			key:  uint8(e.Pitch),
			vel:  uint8(max(1, e.Velocity)),
		})
	}

	length := uint32(math.Round(NoteLength * exportTicksPerSecond))
	ends := make([]uint32, len(ons))
	nextOn := make(map[uint8]uint32)
	for i := len(ons) - 1; i >= 0; i-- {
		ends[i] = ons[i].tick + length
		if next, ok := nextOn[ons[i].key]; ok && next < ends[i] {
			ends[i] = next
		}
		nextOn[ons[i].key] = ons[i].tick
	}
	all := make([]placed, 0, len(ons)*2)
	for i, on := range ons {
		all = append(all, on, placed{tick: ends[i], off: true, key: on.key})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].tick != all[j].tick {
			return all[i].tick < all[j].tick
		}
		return all[i].off && !all[j].off
	})

	var tr smf.Track
	if name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(name))
	}
	tr.Add(0, smf.MetaTempo(exportBPM))
	var cursor uint32
	for _, p := range all {
		delta := p.tick - cursor
		cursor = p.tick
		if p.off {
			tr.Add(delta, midi.NoteOff(0, p.key))
		} else {
			tr.Add(delta, midi.NoteOn(0, p.key, p.vel))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(exportTicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("smf: %w", err)
	}
	return s, nil
}
