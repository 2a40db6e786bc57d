//go:build windows
// +build windows

package sinkwindows

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

const (
	inputKeyboard     = 1
	keyeventfKeyUp    = 0x0002
	keyeventfScanCode = 0x0008
)

// keybdInput mirrors KEYBDINPUT.
type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// input mirrors INPUT for keyboard events, padded to the size of the union.
type input struct {
	inputType uint32
	ki        keybdInput
	_         [8]byte
}

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

// Sink sends scan-code key events to the foreground window.
type Sink struct {
	logger contracts.Logger
}

// NewSink checks that SendInput is available and returns the sink.
func NewSink(options *contracts.PlayerOptions) (contracts.KeySink, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("%w: SendInput unavailable: %v", contracts.ErrSink, err)
	}
	options.Logger.Info("SendInput key sink created for Windows")
	return &Sink{logger: options.Logger}, nil
}

func (s *Sink) send(code uint16, up bool) error {
	flags := uint32(keyeventfScanCode)
	if up {
		flags |= keyeventfKeyUp
	}
	in := input{inputType: inputKeyboard, ki: keybdInput{wScan: code, dwFlags: flags}}
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n != 1 {
		return fmt.Errorf("%w: SendInput scan 0x%02X: %v", contracts.ErrSink, code, err)
	}
	return nil
}

func (s *Sink) downAll(codes []uint16) error {
	for _, c := range codes {
		if err := s.send(c, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) upAll(codes []uint16) error {
	var errs error
	for i := len(codes) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, s.send(codes[i], true))
	}
	return errs
}

// Press taps key with its modifiers, then waits holdDelay.
func (s *Sink) Press(key contracts.KeyCommand, holdDelay time.Duration) error {
	code, err := ScanCode(key.Key)
	if err != nil {
		return err
	}
	mods := modifierCodes(key.Modifiers)

	if err := s.downAll(mods); err != nil {
		return multierr.Append(err, s.upAll(mods))
	}
	if len(mods) > 0 {
		time.Sleep(modifierSettle)
	}
	err = s.send(code, false)
	time.Sleep(keyHold)
	err = multierr.Combine(err, s.send(code, true), s.upAll(mods))
	time.Sleep(holdDelay)
	return err
}

// PressMultiple holds the union of the chord's modifiers, presses every key
// staggered by strum, releases them together and waits holdDelay.
func (s *Sink) PressMultiple(keys []contracts.KeyCommand, holdDelay, strum time.Duration) error {
	var union contracts.Modifier
	codes := make([]uint16, 0, len(keys))
	for _, k := range keys {
		code, err := ScanCode(k.Key)
		if err != nil {
			s.logger.Warn("skipping unknown chord key", s.logger.Field().String("key", k.String()))
			continue
		}
		union |= k.Modifiers
		codes = append(codes, code)
	}
	mods := modifierCodes(union)

	if err := s.downAll(mods); err != nil {
		return multierr.Append(err, s.upAll(mods))
	}
	if len(mods) > 0 {
		time.Sleep(modifierSettle)
	}

	var errs error
	pressed := make([]uint16, 0, len(codes))
	for i, c := range codes {
		if i > 0 && strum > 0 {
			time.Sleep(strum)
		}
		if err := s.send(c, false); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		pressed = append(pressed, c)
	}
	time.Sleep(chordHold)
	errs = multierr.Combine(errs, s.upAll(pressed), s.upAll(mods))
	time.Sleep(holdDelay)
	return errs
}

// ReleaseAll sends a key-up for every instrument key and modifier.
func (s *Sink) ReleaseAll() error {
	var errs error
	for _, c := range allCodes() {
		errs = multierr.Append(errs, s.send(c, true))
	}
	return errs
}

// Close releases every key.
func (s *Sink) Close() error {
	return s.ReleaseAll()
}
