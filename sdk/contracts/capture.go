package contracts

// CaptureCommand is the status nibble of a live MIDI message.
type CaptureCommand byte

const (
	// CaptureNoteOn is the MIDI Note On status (0x90).
	CaptureNoteOn CaptureCommand = 0x90
	// CaptureNoteOff is the MIDI Note Off status (0x80).
	CaptureNoteOff CaptureCommand = 0x80
)

// CaptureEvent is a raw message received from a live MIDI input.
type CaptureEvent struct {
	Timestamp uint64 // UnixNano when the driver delivered the message.
	Command   byte
	Note      byte
	Velocity  byte
}

// IsOnset reports whether the event starts a note.
func (e CaptureEvent) IsOnset() bool {
	return e.Command&0xF0 == byte(CaptureNoteOn) && e.Velocity > 0
}

// DeviceInfo describes a live MIDI input.
type DeviceInfo struct {
	Name         string
	Manufacturer string
	EntityName   string
}

// CaptureFilter restricts the commands forwarded by a Capturer.
type CaptureFilter struct {
	Commands []CaptureCommand
}

// Allows reports whether the command passes the filter. A nil filter allows everything.
func (f *CaptureFilter) Allows(command byte) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Commands {
		if command&0xF0 == byte(c) {
			return true
		}
	}
	return false
}

// Capturer records a live performance from a MIDI keyboard.
type Capturer interface {
	Stop() error
	ListDevices() ([]DeviceInfo, error)
	SelectDevice(deviceID int) error
	StartCapture(events chan CaptureEvent)
}
