//go:build !linux && !darwin

package goble

import (
	"fmt"
	"runtime"

	"github.com/go-ble/ble"
	"github.com/srg/gyatt/internal/device"
)

func newHCIDevice(string) (ble.Device, error) {
	return nil, fmt.Errorf("BLE host stack is not available on %s: %w", runtime.GOOS, device.ErrUnsupported)
}
