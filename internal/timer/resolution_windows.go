//go:build windows
// +build windows

package timer

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	winmm               = windows.NewLazySystemDLL("winmm.dll")
	procTimeBeginPeriod = winmm.NewProc("timeBeginPeriod")
	procTimeEndPeriod   = winmm.NewProc("timeEndPeriod")
)

// winmmResolution requests 1 ms scheduler granularity through winmm.
type winmmResolution struct{}

func platformResolution() Resolution {
	return winmmResolution{}
}

func (winmmResolution) Begin() error {
	if err := procTimeBeginPeriod.Find(); err != nil {
		return fmt.Errorf("timeBeginPeriod unavailable: %w", err)
	}
	if r1, _, err := procTimeBeginPeriod.Call(1); r1 != 0 {
		return fmt.Errorf("timeBeginPeriod(1) failed: %v", err)
	}
	return nil
}

func (winmmResolution) End() error {
	if err := procTimeEndPeriod.Find(); err != nil {
		return fmt.Errorf("timeEndPeriod unavailable: %w", err)
	}
	if r1, _, err := procTimeEndPeriod.Call(1); r1 != 0 {
		return fmt.Errorf("timeEndPeriod(1) failed: %v", err)
	}
	return nil
}
