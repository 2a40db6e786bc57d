// Package sinkwindows injects key presses with the Win32 SendInput API using
// hardware scan codes, which games that read raw input accept.
package sinkwindows

import (
	"fmt"
	"time"

	"github.com/leandrodaf/autobard/sdk/contracts"
)

const (
	scanShift uint16 = 0x2A
	scanCtrl  uint16 = 0x1D
	scanAlt   uint16 = 0x38

	// keyHold is how long a single key stays down.
	keyHold = 20 * time.Millisecond
	// chordHold is how long chord keys stay down together.
	chordHold = 15 * time.Millisecond
	// modifierSettle lets the game register a modifier before the key.
	modifierSettle = 10 * time.Millisecond
)

// scanCodes covers every key of the instrument layout.
var scanCodes = map[rune]uint16{
	'q': 0x10, 'w': 0x11, 'e': 0x12, 'r': 0x13, 't': 0x14, 'y': 0x15, 'u': 0x16,
	'a': 0x1E, 's': 0x1F, 'd': 0x20, 'f': 0x21, 'g': 0x22, 'h': 0x23, 'j': 0x24,
	'z': 0x2C, 'x': 0x2D, 'c': 0x2E, 'v': 0x2F, 'b': 0x30, 'n': 0x31, 'm': 0x32,
}

// ScanCode returns the set-1 scan code of an instrument key.
func ScanCode(key rune) (uint16, error) {
	code, ok := scanCodes[key]
	if !ok {
		return 0, fmt.Errorf("%w: no scan code for %q", contracts.ErrSink, key)
	}
	return code, nil
}

func modifierCodes(m contracts.Modifier) []uint16 {
	var codes []uint16
	for _, mod := range m.List() {
		switch mod {
		case contracts.ModShift:
			codes = append(codes, scanShift)
		case contracts.ModCtrl:
			codes = append(codes, scanCtrl)
		}
	}
	return codes
}

// allCodes lists every scan code ReleaseAll lifts, modifiers last.
func allCodes() []uint16 {
	codes := make([]uint16, 0, len(scanCodes)+3)
	for _, code := range scanCodes {
		codes = append(codes, code)
	}
	return append(codes, scanShift, scanCtrl, scanAlt)
}
