//go:build windows

// Package capturewindows records live MIDI input through the winmm API.
package capturewindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"golang.org/x/sys/windows"
)

type hMidiIn windows.Handle

const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
)

const (
	mimOpen      = 0x3C1
	mimClose     = 0x3C2
	mimData      = 0x3C3
	mimError     = 0x3C5
	mimLongError = 0x3C6
	mimMoreData  = 0x3CC
)

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// ErrNoDevices is returned when no MIDI input is attached.
var ErrNoDevices = errors.New("no MIDI input devices found")

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")

	// windows.NewCallback slots are never released, so one is shared.
	callbackOnce sync.Once
	callbackPtr  uintptr
)

// Input captures note messages from one winmm MIDI input.
type Input struct {
	logger contracts.Logger
	filter *contracts.CaptureFilter

	mu      sync.Mutex
	handle  hMidiIn
	open    bool
	started bool
	events  atomic.Pointer[chan contracts.CaptureEvent]
}

// NewCapturer creates a winmm capturer.
func NewCapturer(opts *contracts.PlayerOptions) (contracts.Capturer, error) {
	opts.Logger.Debug("winmm capturer created")
	return &Input{logger: opts.Logger, filter: opts.CaptureFilter}, nil
}

// ListDevices lists the MIDI inputs known to winmm.
func (in *Input) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	count := uint32(r0)
	if count == 0 {
		return nil, ErrNoDevices
	}

	devices := make([]contracts.DeviceInfo, 0, count)
	for i := uint32(0); i < count; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			in.logger.Warn("skipping unreadable MIDI input", in.logger.Field().Int("device", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID %d PID %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// SelectDevice opens the input with the given winmm index.
func (in *Input) SelectDevice(deviceID int) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.open {
		if err := in.closeLocked(); err != nil {
			return fmt.Errorf("closing previous MIDI input: %w", err)
		}
	}

	callbackOnce.Do(func() {
		callbackPtr = windows.NewCallback(midiInProc)
	})

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&in.handle)),
		uintptr(deviceID),
		callbackPtr,
		uintptr(unsafe.Pointer(in)),
		uintptr(callbackFunction|midiIOStatus),
	)
	if r1 != 0 {
		return fmt.Errorf("opening MIDI input %d: %v", deviceID, err)
	}

	in.open = true
	in.logger.Info("MIDI input opened", in.logger.Field().Int("device", deviceID))
	return nil
}

// StartCapture starts forwarding messages to events. Messages are dropped
// when events is full.
func (in *Input) StartCapture(events chan contracts.CaptureEvent) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !in.open || in.handle == 0 {
		in.logger.Error("capture requested without an open MIDI input")
		return
	}
	if in.started {
		in.logger.Warn("capture already running")
		return
	}

	in.events.Store(&events)
	r1, _, err := procMidiInStart.Call(uintptr(in.handle))
	if r1 != 0 {
		in.events.Store(nil)
		in.logger.Error("midiInStart failed", in.logger.Field().Error("error", err))
		return
	}
	in.started = true
	in.logger.Info("MIDI capture started")
}

func midiInProc(_ uintptr, msg uint32, instance uintptr, param1 uintptr, _ uintptr) uintptr {
	in := (*Input)(unsafe.Pointer(instance))

	switch msg {
	case mimOpen, mimClose, mimMoreData:
	case mimData:
		in.deliver(contracts.CaptureEvent{
			Timestamp: uint64(time.Now().UnixNano()),
			Command:   byte(param1) & 0xF0,
			Note:      byte(param1 >> 8),
			Velocity:  byte(param1 >> 16),
		})
	case mimError, mimLongError:
		in.logger.Warn("invalid MIDI message received", in.logger.Field().Int("msg", int(msg)))
	}
	return 0
}

func (in *Input) deliver(ev contracts.CaptureEvent) {
	if !in.filter.Allows(ev.Command) {
		return
	}
	ch := in.events.Load()
	if ch == nil {
		return
	}
	select {
	case *ch <- ev:
	default:
		in.logger.Warn("capture buffer full; MIDI event dropped")
	}
}

// Stop stops the capture and closes the input. It is safe to call twice.
func (in *Input) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !in.open {
		return nil
	}
	return in.closeLocked()
}

func (in *Input) closeLocked() error {
	in.events.Store(nil)
	if in.started {
		if r1, _, err := procMidiInStop.Call(uintptr(in.handle)); r1 != 0 {
			return fmt.Errorf("midiInStop: %v", err)
		}
		in.started = false
	}
	if r1, _, err := procMidiInClose.Call(uintptr(in.handle)); r1 != 0 {
		return fmt.Errorf("midiInClose: %v", err)
	}
	in.open = false
	in.handle = 0
	in.logger.Info("MIDI input closed")
	return nil
}
