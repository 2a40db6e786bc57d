// Package smffile reads and writes Standard MIDI Files through gomidi.
package smffile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"gitlab.com/gomidi/midi/v2/smf"
)

// AllTracks merges every track of the file into one stream.
const AllTracks = -1

// TrackInfo summarizes one track of a file.
type TrackInfo struct {
	Index     int
	Name      string
	NoteCount int
}

// Song is the onset stream of a file plus its track listing.
type Song struct {
	Name   string
	Tracks []TrackInfo
	Events []contracts.NoteEvent
	// Track is the track the events came from, or AllTracks.
	Track int
}

type readOptions struct {
	track int
}

// ReadOption tunes Read.
type ReadOption func(*readOptions)

// WithTrack restricts the events to a single track. Out of range indexes fall
// back to merging all tracks.
func WithTrack(index int) ReadOption {
	return func(o *readOptions) {
		o.track = index
	}
}

// IsMIDI reports whether the file name looks like a Standard MIDI File.
func IsMIDI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi", ".smf", ".kar":
		return true
	}
	return false
}

// ReadFile opens path and parses it. The file name is used as the song name.
func ReadFile(path string, opts ...ReadOption) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrParse, err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path), opts...)
}

type onset struct {
	micros   int64
	track    int
	order    int
	key, vel uint8
}

// Read parses an SMF and returns its note-on events with velocity > 0, in
// playback order. Deltas are seconds since the previous onset; tempo changes
// from every track are honored.
func Read(r io.Reader, name string, opts ...ReadOption) (song *Song, err error) {
	o := readOptions{track: AllTracks}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if rec := recover(); rec != nil {
			song, err = nil, fmt.Errorf("%w: malformed MIDI data: %v", contracts.ErrParse, rec)
		}
	}()

	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrParse, err)
	}

	if o.track < 0 || o.track >= len(s.Tracks) {
		o.track = AllTracks
	}

	song = &Song{Name: name, Track: o.track, Tracks: make([]TrackInfo, 0, len(s.Tracks))}
	var onsets []onset

	for ti, track := range s.Tracks {
		info := TrackInfo{Index: ti, Name: fmt.Sprintf("Track %d", ti)}
		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			var ch, key, vel uint8
			var text string
			switch {
			case ev.Message.GetMetaTrackName(&text):
				info.Name = text
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				info.NoteCount++
				if o.track == AllTracks || o.track == ti {
					onsets = append(onsets, onset{
						micros: s.TimeAt(absTicks),
						track:  ti,
						order:  len(onsets),
						key:    key,
						vel:    vel,
					})
				}
			}
		}
		song.Tracks = append(song.Tracks, info)
	}

	sort.SliceStable(onsets, func(i, j int) bool {
		return onsets[i].micros < onsets[j].micros
	})

	song.Events = make([]contracts.NoteEvent, 0, len(onsets))
	var last int64
	for _, on := range onsets {
		delta := float64(on.micros-last) / 1e6
		last = on.micros
		song.Events = append(song.Events, contracts.Onset(int(on.key), int(on.vel), delta))
	}
	return song, nil
}
