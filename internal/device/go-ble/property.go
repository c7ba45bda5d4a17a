package goble

import (
	"github.com/go-ble/ble"
	"github.com/srg/gyatt/internal/device"
)

// NewProperties converts go-ble property bit flags into device.Properties.
func NewProperties(p ble.Property) device.Properties {
	var props device.Properties

	if p&ble.CharBroadcast != 0 {
		props |= device.PropBroadcast
	}
	if p&ble.CharRead != 0 {
		props |= device.PropRead
	}
	if p&ble.CharWriteNR != 0 {
		props |= device.PropWriteWithoutResponse
	}
	if p&ble.CharWrite != 0 {
		props |= device.PropWrite
	}
	if p&ble.CharNotify != 0 {
		props |= device.PropNotify
	}
	if p&ble.CharIndicate != 0 {
		props |= device.PropIndicate
	}
	if p&ble.CharSignedWrite != 0 {
		props |= device.PropAuthenticatedSignedWrites
	}
	if p&ble.CharExtended != 0 {
		props |= device.PropExtendedProperties
	}

	return props
}
