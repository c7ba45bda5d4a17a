//go:build linux

package goble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// newHCIDevice opens the local HCI adapter (hci0, hci1, ...) through the Linux host stack.
func newHCIDevice(adapter string) (ble.Device, error) {
	id, err := AdapterIndex(adapter)
	if err != nil {
		return nil, err
	}

	dev, err := linux.NewDevice(ble.OptDeviceID(id))
	if err != nil {
		return nil, err
	}
	return dev, nil
}
