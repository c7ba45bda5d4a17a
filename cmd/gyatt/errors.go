package main

import (
	"errors"
	"fmt"

	"github.com/srg/gyatt/internal/device"
)

// exitInterrupted is the conventional 128+SIGINT status.
const exitInterrupted = 130

// ErrInterrupted indicates the user interrupted startup before the shell was entered.
var ErrInterrupted = errors.New("interrupted")

// FormatUserError turns a startup error into a one-line message for the user.
func FormatUserError(err error) string {
	switch {
	case err == nil:
		return ""
	case device.IsConnectionState(err, device.BluetoothOff):
		return "Bluetooth is turned off. Turn it on and try again."
	case device.IsConnectionState(err, device.NotInitialized):
		return fmt.Sprintf("Bluetooth adapter is not available: %v", err)
	default:
		return err.Error()
	}
}
