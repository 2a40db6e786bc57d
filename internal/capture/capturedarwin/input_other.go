//go:build !darwin

package capturedarwin

import "github.com/leandrodaf/autobard/sdk/contracts"

// NewCapturer reports that CoreMIDI capture is unavailable off macOS.
func NewCapturer(*contracts.PlayerOptions) (contracts.Capturer, error) {
	return nil, contracts.ErrUnavailable
}
