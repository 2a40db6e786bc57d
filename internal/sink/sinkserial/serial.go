package sinkserial

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"go.bug.st/serial"
	"go.uber.org/multierr"
)

// DefaultBaudRate matches the reference firmware.
const DefaultBaudRate = 115200

const keyHold = 20 * time.Millisecond

// Sink writes key frames to a serial port. Writes are serialized so that
// ReleaseAll can interleave safely with a press in progress.
type Sink struct {
	logger contracts.Logger

	mu   sync.Mutex
	port io.WriteCloser
	seq  byte

	sleep func(time.Duration)
}

// NewSink opens the configured serial port.
func NewSink(options *contracts.PlayerOptions) (contracts.KeySink, error) {
	if options.Serial == nil || options.Serial.Port == "" {
		return nil, fmt.Errorf("%w: serial port not configured", contracts.ErrSink)
	}
	baud := options.Serial.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(options.Serial.Port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", contracts.ErrSink, options.Serial.Port, err)
	}
	options.Logger.Info("serial key sink opened",
		options.Logger.Field().String("device", options.Serial.Port),
		options.Logger.Field().Int("baud", baud))
	return NewWithWriter(p, options.Logger), nil
}

// NewWithWriter builds a sink over any writer, such as a pipe in tests.
func NewWithWriter(w io.WriteCloser, logger contracts.Logger) *Sink {
	return &Sink{logger: logger, port: w, sleep: time.Sleep}
}

// Ports lists serial devices that could host the firmware.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

func (s *Sink) write(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	f.Seq = s.seq
	data := f.Encode()
	if _, err := s.port.Write(data); err != nil {
		return fmt.Errorf("%w: serial write: %v", contracts.ErrSink, err)
	}
	s.logger.Debug("serial frame sent",
		s.logger.Field().Uint8("cmd", f.Cmd),
		s.logger.Field().Uint8("seq", f.Seq))
	return nil
}

func keyFrame(cmd byte, k contracts.KeyCommand) Frame {
	return Frame{Cmd: cmd, Key: byte(k.Key), Mods: byte(k.Modifiers)}
}

// Press sends key-down, holds, sends key-up and waits holdDelay. The firmware
// presses and releases the modifiers carried in the frame.
func (s *Sink) Press(key contracts.KeyCommand, holdDelay time.Duration) error {
	if err := s.write(keyFrame(CmdKeyDown, key)); err != nil {
		return err
	}
	s.sleep(keyHold)
	err := s.write(keyFrame(CmdKeyUp, key))
	s.sleep(holdDelay)
	return err
}

// PressMultiple staggers key-downs by strum and releases in reverse order.
func (s *Sink) PressMultiple(keys []contracts.KeyCommand, holdDelay, strum time.Duration) error {
	var errs error
	for i, k := range keys {
		if i > 0 && strum > 0 {
			s.sleep(strum)
		}
		errs = multierr.Append(errs, s.write(keyFrame(CmdKeyDown, k)))
	}
	s.sleep(keyHold)
	for i := len(keys) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, s.write(keyFrame(CmdKeyUp, keys[i])))
	}
	s.sleep(holdDelay)
	return errs
}

// ReleaseAll asks the firmware to lift every key.
func (s *Sink) ReleaseAll() error {
	return s.write(Frame{Cmd: CmdReleaseAll, NoKey: true})
}

// Close releases all keys and closes the port.
func (s *Sink) Close() error {
	return multierr.Combine(s.ReleaseAll(), s.port.Close())
}
