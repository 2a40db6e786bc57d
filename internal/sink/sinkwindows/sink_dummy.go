//go:build !windows
// +build !windows

package sinkwindows

import (
	"fmt"
	"time"

	"github.com/leandrodaf/autobard/sdk/contracts"
)

type dummySink struct {
	logger contracts.Logger
}

// NewSink returns a sink that refuses every press on non-Windows systems.
func NewSink(options *contracts.PlayerOptions) (contracts.KeySink, error) {
	options.Logger.Info("Using dummy key sink for non-Windows system")
	return &dummySink{logger: options.Logger}, nil
}

func (d *dummySink) Press(key contracts.KeyCommand, _ time.Duration) error {
	d.logger.Warn("Press called on dummy key sink", d.logger.Field().String("key", key.String()))
	return fmt.Errorf("%w: SendInput", contracts.ErrUnavailable)
}

func (d *dummySink) PressMultiple(keys []contracts.KeyCommand, _, _ time.Duration) error {
	d.logger.Warn("PressMultiple called on dummy key sink", d.logger.Field().Int("keys", len(keys)))
	return fmt.Errorf("%w: SendInput", contracts.ErrUnavailable)
}

func (d *dummySink) ReleaseAll() error {
	return nil
}

func (d *dummySink) Close() error {
	return nil
}
