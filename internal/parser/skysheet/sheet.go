// Package skysheet reads the community JSON sheet format used for the Sky
// instrument (15 pentatonic keys per layout, "1Key0".."1Key14").
package skysheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leandrodaf/autobard/sdk/contracts"
)

// DefaultVelocity is used for every note; the format carries no dynamics.
const DefaultVelocity = 100

// keyPitches maps key indexes of the first layout to MIDI pitches (C4..C6).
var keyPitches = [15]int{60, 62, 64, 65, 67, 69, 71, 72, 74, 76, 77, 79, 81, 83, 84}

// Sheet is a parsed sheet with its metadata.
type Sheet struct {
	Name   string
	Author string
	BPM    float64
	Events []contracts.NoteEvent
}

type document struct {
	Name      string            `json:"name"`
	Author    string            `json:"author"`
	BPM       float64           `json:"bpm"`
	SongNotes []json.RawMessage `json:"songNotes"`
	Notes     []json.RawMessage `json:"notes"`
}

type noteObject struct {
	Time float64 `json:"time"`
	Key  string  `json:"key"`
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// ReadFile parses the sheet at path. The file name is the fallback song name.
func ReadFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrParse, err)
	}
	defer f.Close()
	return Parse(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// Parse reads any of the accepted layouts: an object with songNotes or notes,
// an array wrapping such an object, a bare array of {time, key} objects, or a
// bare array of [keyIndex, timeMs] pairs.
func Parse(r io.Reader, fallbackName string) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrParse, err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, bom))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", contracts.ErrParse)
	}

	doc := document{Name: fallbackName, BPM: 120}
	var raw []json.RawMessage

	switch data[0] {
	case '{':
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", contracts.ErrParse, err)
		}
		raw = doc.notes()
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", contracts.ErrParse, err)
		}
		switch {
		case len(items) == 0:
		case isNote(items[0]):
			raw = items
		default:
			if err := json.Unmarshal(items[0], &doc); err != nil {
				return nil, fmt.Errorf("%w: unexpected sheet wrapper: %v", contracts.ErrParse, err)
			}
			raw = doc.notes()
		}
	default:
		return nil, fmt.Errorf("%w: not a JSON sheet", contracts.ErrParse)
	}

	if doc.Name == "" {
		doc.Name = fallbackName
	}
	return &Sheet{Name: doc.Name, Author: doc.Author, BPM: doc.BPM, Events: parseNotes(raw)}, nil
}

func (d document) notes() []json.RawMessage {
	if len(d.SongNotes) > 0 {
		return d.SongNotes
	}
	return d.Notes
}

// isNote reports whether a top-level array element is a note rather than a
// wrapped sheet document.
func isNote(item json.RawMessage) bool {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return false
	}
	if item[0] == '[' {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return false
	}
	_, ok := fields["key"]
	return ok
}

func parseNotes(raw []json.RawMessage) []contracts.NoteEvent {
	events := make([]contracts.NoteEvent, 0, len(raw))
	last := 0.0
	for _, item := range raw {
		timeMs, key, ok := decodeNote(item)
		if !ok {
			continue
		}
		pitch, ok := KeyToPitch(key)
		if !ok {
			continue
		}
		delta := max(0, timeMs-last)
		last = timeMs
		events = append(events, contracts.Onset(pitch, DefaultVelocity, delta/1000))
	}
	return events
}

func decodeNote(item json.RawMessage) (float64, string, bool) {
	var obj noteObject
	if err := json.Unmarshal(item, &obj); err == nil {
		return obj.Time, obj.Key, true
	}
	var pair []float64
	if err := json.Unmarshal(item, &pair); err == nil && len(pair) >= 2 {
		return pair[1], "1Key" + strconv.Itoa(int(pair[0])), true
	}
	return 0, "", false
}

// KeyToPitch converts "1Key5"-style names. Layout 2 is one octave above
// layout 1; layout n>=3 adds (n-1) octaves and unknown indexes fall back to C4.
func KeyToPitch(key string) (int, bool) {
	prefix, idxStr, found := strings.Cut(key, "Key")
	if !found || prefix == "" {
		return 0, false
	}
	octave, err := strconv.Atoi(prefix[:1])
	if err != nil {
		return 0, false
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return 0, false
	}
	known := idx >= 0 && idx < len(keyPitches)

	switch {
	case octave == 1 && known:
		return keyPitches[idx], true
	case octave == 2 && known:
		return keyPitches[idx] + 12, true
	case octave >= 3:
		base := 60
		if known {
			base = keyPitches[idx]
		}
		return base + (octave-1)*12, true
	}
	return 0, false
}

// IsSheet guesses from the name, and for .json files from the first bytes,
// whether path holds a sheet rather than another JSON document.
func IsSheet(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.ToLower(filepath.Base(path))
	switch ext {
	case ".skysheet", ".txt":
		return true
	case ".json":
		if strings.Contains(name, "sky") {
			return true
		}
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		defer f.Close()
		head := make([]byte, 500)
		n, _ := io.ReadFull(f, head)
		s := string(head[:n])
		return strings.Contains(s, "songNotes") || (strings.Contains(s, `"key"`) && strings.Contains(s, "Key"))
	}
	return false
}
