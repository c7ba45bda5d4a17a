package goble

import (
	"fmt"
	"strings"

	"github.com/srg/gyatt/internal/device"
)

// NormalizeError maps go-ble specific error strings to structured device errors,
// then falls back to device.NormalizeError for the generic ones.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case msg == "central manager has invalid state: have=4 want=5: is Bluetooth turned on?":
		return fmt.Errorf("%w: %v", device.ErrBluetoothOff, err)
	case strings.Contains(msg, "operation not permitted"):
		return fmt.Errorf("%w: %v (HCI access requires CAP_NET_ADMIN)", device.ErrNotInitialized, err)
	default:
		return device.NormalizeError(err)
	}
}
