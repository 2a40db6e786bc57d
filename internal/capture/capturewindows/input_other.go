//go:build !windows

package capturewindows

import "github.com/leandrodaf/autobard/sdk/contracts"

// NewCapturer reports that winmm capture is unavailable off Windows.
func NewCapturer(*contracts.PlayerOptions) (contracts.Capturer, error) {
	return nil, contracts.ErrUnavailable
}
