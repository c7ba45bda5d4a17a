package testutils

import (
	"context"
	"sync"

	"github.com/go-ble/ble"
)

// PeripheralDeviceBuilder builds a FakeDevice: the advertisements it replays on
// Scan and the GATT profile of the peripheral it dials.
type PeripheralDeviceBuilder struct {
	device  *FakeDevice
	profile *ble.Profile
}

// NewPeripheralDeviceBuilder creates a builder for an empty peripheral.
func NewPeripheralDeviceBuilder() *PeripheralDeviceBuilder {
	return &PeripheralDeviceBuilder{
		device:  &FakeDevice{},
		profile: &ble.Profile{},
	}
}

// WithAdvertisements adds advertisements replayed, in order, by every Scan.
func (b *PeripheralDeviceBuilder) WithAdvertisements(ads ...ble.Advertisement) *PeripheralDeviceBuilder {
	b.device.Advertisements = append(b.device.Advertisements, ads...)
	return b
}

// WithService adds a service to the profile.
func (b *PeripheralDeviceBuilder) WithService(uuid string) *PeripheralDeviceBuilder {
	b.profile.Services = append(b.profile.Services, &ble.Service{UUID: ble.MustParse(uuid)})
	return b
}

// WithCharacteristic adds a characteristic to the last added service.
func (b *PeripheralDeviceBuilder) WithCharacteristic(uuid string, props ble.Property) *PeripheralDeviceBuilder {
	if len(b.profile.Services) == 0 {
		panic("testutils: WithCharacteristic called before WithService")
	}
	svc := b.profile.Services[len(b.profile.Services)-1]
	svc.Characteristics = append(svc.Characteristics, &ble.Characteristic{UUID: ble.MustParse(uuid), Property: props})
	return b
}

// WithScanError makes Scan fail with err.
func (b *PeripheralDeviceBuilder) WithScanError(err error) *PeripheralDeviceBuilder {
	b.device.ScanErr = err
	return b
}

// WithDialError makes Dial fail with err.
func (b *PeripheralDeviceBuilder) WithDialError(err error) *PeripheralDeviceBuilder {
	b.device.DialErr = err
	return b
}

// Build returns the configured device.
func (b *PeripheralDeviceBuilder) Build() *FakeDevice {
	b.device.Client = &FakeClient{GATTProfile: b.profile, disconnected: make(chan struct{})}
	return b.device
}

// FakeDevice is a ble.Device that replays advertisements and dials a FakeClient.
// Methods other than Scan, Dial and Stop panic.
type FakeDevice struct {
	ble.Device

	Advertisements []ble.Advertisement
	ScanErr        error
	DialErr        error
	Client         *FakeClient

	mu      sync.Mutex
	dialed  []string
	stopped bool
}

// Scan delivers every advertisement, then blocks until ctx is done.
func (d *FakeDevice) Scan(ctx context.Context, _ bool, h ble.AdvHandler) error {
	if d.ScanErr != nil {
		return d.ScanErr
	}
	for _, adv := range d.Advertisements {
		h(adv)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *FakeDevice) Dial(_ context.Context, a ble.Addr) (ble.Client, error) {
	d.mu.Lock()
	d.dialed = append(d.dialed, a.String())
	d.mu.Unlock()
	if d.DialErr != nil {
		return nil, d.DialErr
	}
	return d.Client, nil
}

func (d *FakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}

// Dialed returns the addresses passed to Dial.
func (d *FakeDevice) Dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dialed...)
}

// Stopped reports whether Stop was called.
func (d *FakeDevice) Stopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// FakeClient is a ble.Client serving a fixed profile. Methods other than
// DiscoverProfile, CancelConnection and Disconnected panic.
type FakeClient struct {
	ble.Client

	GATTProfile *ble.Profile
	ProfileErr  error

	once         sync.Once
	disconnected chan struct{}
}

func (c *FakeClient) DiscoverProfile(bool) (*ble.Profile, error) {
	if c.ProfileErr != nil {
		return nil, c.ProfileErr
	}
	return c.GATTProfile, nil
}

func (c *FakeClient) CancelConnection() error {
	c.Drop()
	return nil
}

func (c *FakeClient) Disconnected() <-chan struct{} {
	return c.disconnected
}

// Drop simulates the peripheral going away.
func (c *FakeClient) Drop() {
	c.once.Do(func() { close(c.disconnected) })
}
