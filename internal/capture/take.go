// Package capture turns a live MIDI performance into note events that can be
// compiled, played back or exported.
package capture

import (
	"context"
	"fmt"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"go.uber.org/multierr"
)

// DefaultBuffer is the capacity of the channel handed to the capturer.
const DefaultBuffer = 256

// ToNoteEvents keeps the onsets of a captured stream and converts their
// timestamps into deltas. The first onset has a zero delta.
func ToNoteEvents(captured []contracts.CaptureEvent) []contracts.NoteEvent {
	out := make([]contracts.NoteEvent, 0, len(captured))
	var last uint64
	for _, ev := range captured {
		if !ev.IsOnset() {
			continue
		}
		var delta float64
		if len(out) > 0 && ev.Timestamp > last {
			delta = float64(ev.Timestamp-last) / 1e9
		}
		last = ev.Timestamp
		out = append(out, contracts.Onset(int(ev.Note&0x7F), int(ev.Velocity&0x7F), delta))
	}
	return out
}

// Recorder drives a Capturer for the length of a take.
type Recorder struct {
	capturer contracts.Capturer
	logger   contracts.Logger
	buffer   int
	// OnEvent, when set, sees every captured message as it arrives.
	OnEvent func(contracts.CaptureEvent)
}

// NewRecorder wraps capturer.
func NewRecorder(capturer contracts.Capturer, logger contracts.Logger) *Recorder {
	return &Recorder{capturer: capturer, logger: logger, buffer: DefaultBuffer}
}

// Devices lists the inputs the capturer can record from.
func (r *Recorder) Devices() ([]contracts.DeviceInfo, error) {
	return r.capturer.ListDevices()
}

// Record captures from device until ctx is done and returns the take.
func (r *Recorder) Record(ctx context.Context, device int) (events []contracts.NoteEvent, err error) {
	if err := r.capturer.SelectDevice(device); err != nil {
		return nil, fmt.Errorf("selecting device %d: %w", device, err)
	}

	ch := make(chan contracts.CaptureEvent, r.buffer)
	r.capturer.StartCapture(ch)
	r.logger.Info("recording", r.logger.Field().Int("device", device))

	var raw []contracts.CaptureEvent
	defer func() {
		err = multierr.Append(err, r.capturer.Stop())
	}()

	for {
		select {
		case ev := <-ch:
			raw = r.keep(raw, ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-ch:
					raw = r.keep(raw, ev)
				default:
					events = ToNoteEvents(raw)
					r.logger.Info("recording finished",
						r.logger.Field().Int("messages", len(raw)),
						r.logger.Field().Int("notes", len(events)))
					return events, nil
				}
			}
		}
	}
}

func (r *Recorder) keep(raw []contracts.CaptureEvent, ev contracts.CaptureEvent) []contracts.CaptureEvent {
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}
	return append(raw, ev)
}
