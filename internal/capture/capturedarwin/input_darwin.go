//go:build darwin

// Package capturedarwin records live MIDI input through CoreMIDI.
package capturedarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

var (
	ErrNoDevices     = errors.New("no MIDI sources found")
	ErrInvalidDevice = errors.New("invalid MIDI source")
)

type disconnecter interface {
	Disconnect()
}

// Input captures note messages from one CoreMIDI source.
type Input struct {
	logger contracts.Logger
	filter *contracts.CaptureFilter
	client coremidi.Client

	mu       sync.Mutex
	port     coremidi.InputPort
	conn     disconnecter
	inflight sync.WaitGroup
	events   atomic.Pointer[chan contracts.CaptureEvent]
}

// NewCapturer creates a CoreMIDI client named after the configured client name.
func NewCapturer(opts *contracts.PlayerOptions) (contracts.Capturer, error) {
	name := "autobard"
	if opts.CoreMIDIConfig != nil && opts.CoreMIDIConfig.ClientName != "" {
		name = opts.CoreMIDIConfig.ClientName
	}
	client, err := coremidi.NewClient(name)
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI client: %w", err)
	}
	opts.Logger.Debug("CoreMIDI capturer created", opts.Logger.Field().String("client", name))
	return &Input{logger: opts.Logger, filter: opts.CaptureFilter, client: client}, nil
}

// ListDevices lists every CoreMIDI source.
func (in *Input) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, ErrNoDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects to the source at deviceID, dropping any previous one.
func (in *Input) SelectDevice(deviceID int) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("listing MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		return fmt.Errorf("%w: %d", ErrInvalidDevice, deviceID)
	}

	if in.conn != nil {
		in.conn.Disconnect()
		in.conn = nil
	}

	source := sources[deviceID]
	in.port, err = coremidi.NewInputPort(in.client, "autobard input", in.handlePacket)
	if err != nil {
		return fmt.Errorf("creating input port: %w", err)
	}
	conn, err := in.port.Connect(source)
	if err != nil {
		return fmt.Errorf("connecting to %q: %w", source.Name(), err)
	}
	in.conn = conn

	in.logger.Info("MIDI source connected",
		in.logger.Field().Int("device", deviceID),
		in.logger.Field().String("name", source.Name()))
	return nil
}

func (in *Input) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	in.inflight.Add(1)
	defer in.inflight.Done()

	ch := in.events.Load()
	if ch == nil || len(packet.Data) < 3 {
		return
	}
	ev := contracts.CaptureEvent{
		Timestamp: uint64(time.Now().UnixNano()),
		Command:   packet.Data[0] & 0xF0,
		Note:      packet.Data[1],
		Velocity:  packet.Data[2],
	}
	if !in.filter.Allows(ev.Command) {
		return
	}
	select {
	case *ch <- ev:
	default:
		in.logger.Warn("capture buffer full; MIDI event dropped")
	}
}

// StartCapture starts forwarding packets to events, replacing any earlier channel.
func (in *Input) StartCapture(events chan contracts.CaptureEvent) {
	if events == nil {
		in.logger.Error("capture requested with a nil channel")
		return
	}
	in.events.Store(&events)
	in.logger.Info("MIDI capture started")
}

// Stop disconnects the source and waits for in-flight packets.
func (in *Input) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.events.Store(nil)
	if in.conn != nil {
		in.conn.Disconnect()
		in.conn = nil
	}
	in.inflight.Wait()
	return nil
}
