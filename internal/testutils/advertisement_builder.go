// Package testutils provides go-ble fakes for exercising the host stack adapter
// without a radio.
package testutils

import (
	"github.com/go-ble/ble"
)

// AdvertisementBuilder builds fake BLE advertisements for testing.
type AdvertisementBuilder struct {
	name    string
	address string
	rssi    int
}

// NewAdvertisementBuilder creates a builder for an unnamed advertisement.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{rssi: -60}
}

// WithName sets the local name for the advertisement.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.name = name
	return b
}

// WithAddress sets the device address for the advertisement.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.address = addr
	return b
}

// WithRSSI sets the signal strength for the advertisement.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.rssi = rssi
	return b
}

// Build returns the advertisement. Only LocalName, RSSI and Addr are
// implemented; any other method panics.
func (b *AdvertisementBuilder) Build() ble.Advertisement {
	return &fakeAdvertisement{
		name: b.name,
		addr: ble.NewAddr(b.address),
		rssi: b.rssi,
	}
}

type fakeAdvertisement struct {
	ble.Advertisement
	name string
	addr ble.Addr
	rssi int
}

func (a *fakeAdvertisement) LocalName() string { return a.name }
func (a *fakeAdvertisement) RSSI() int         { return a.rssi }
func (a *fakeAdvertisement) Addr() ble.Addr    { return a.addr }
