//go:build darwin

package goble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
)

// newHCIDevice opens the CoreBluetooth central. macOS exposes a single radio, so
// the adapter name is only validated.
func newHCIDevice(adapter string) (ble.Device, error) {
	if _, err := AdapterIndex(adapter); err != nil {
		return nil, err
	}

	dev, err := darwin.NewDevice()
	if err != nil {
		return nil, err
	}
	return dev, nil
}
