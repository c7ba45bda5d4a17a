package goble

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/gyatt/internal/device"
	"github.com/srg/gyatt/internal/groutine"
)

// gattClient is the subset of ble.Client a Connection needs.
type gattClient interface {
	ReadCharacteristic(c *ble.Characteristic) ([]byte, error)
	WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error
	Subscribe(c *ble.Characteristic, ind bool, h ble.NotificationHandler) error
	Unsubscribe(c *ble.Characteristic, ind bool) error
	CancelConnection() error
}

// BLEConnection is a live GATT connection backed by a go-ble client.
type BLEConnection struct {
	address string
	client  gattClient
	profile *ble.Profile
	logger  *logrus.Logger

	// characteristic index by normalized UUID; the first occurrence wins when a
	// UUID appears in several services
	chars *hashmap.Map[string, *ble.Characteristic]
	// indicate (true) or notify (false) per subscribed characteristic
	subs *hashmap.Map[string, bool]

	closed atomic.Bool
}

func newConnection(address string, client gattClient, profile *ble.Profile, logger *logrus.Logger) *BLEConnection {
	c := &BLEConnection{
		address: address,
		client:  client,
		profile: profile,
		logger:  logger,
		chars:   hashmap.New[string, *ble.Characteristic](),
		subs:    hashmap.New[string, bool](),
	}

	for _, svc := range profile.Services {
		for _, ch := range svc.Characteristics {
			uuid := device.NormalizeUUID(ch.UUID.String())
			if _, ok := c.chars.Get(uuid); !ok {
				c.chars.Set(uuid, ch)
			}
			c.logger.WithFields(logrus.Fields{
				"service_uuid": device.NormalizeUUID(svc.UUID.String()),
				"char_uuid":    uuid,
			}).Debug("Found characteristic UUID")
		}
	}

	return c
}

// Address returns the transport address this connection was dialed with.
func (c *BLEConnection) Address() string {
	return c.address
}

// IsConnected reports whether the link is still up: Disconnect was not called
// and the client has not signalled a disconnection.
func (c *BLEConnection) IsConnected() bool {
	if c.closed.Load() {
		return false
	}
	if dc, ok := c.client.(interface{ Disconnected() <-chan struct{} }); ok {
		select {
		case <-dc.Disconnected():
			return false
		default:
		}
	}
	return true
}

// Disconnect cancels the connection. Calling it more than once is a no-op.
func (c *BLEConnection) Disconnect(ctx context.Context) error {
	if c.closed.Swap(true) {
		c.logger.Debug("Disconnect called but already disconnected")
		return nil
	}

	c.logger.WithField("address", c.address).Info("Disconnecting BLE device...")

	_, err := groutine.Await(ctx, "ble-cancel-connection", func() (struct{}, error) {
		return struct{}{}, c.client.CancelConnection()
	})
	if err != nil {
		c.logger.WithField("error", err).Warn("BLE device disconnected with errors")
		return NormalizeError(err)
	}

	c.logger.Info("BLE device disconnected successfully")
	return nil
}

// Services returns the discovered GATT services in handle order.
func (c *BLEConnection) Services(_ context.Context) ([]device.Service, error) {
	if !c.IsConnected() {
		return nil, device.ErrNotConnected
	}

	services := make([]device.Service, 0, len(c.profile.Services))
	for _, svc := range c.profile.Services {
		svcUUID := device.NormalizeUUID(svc.UUID.String())
		s := device.Service{
			UUID:            svcUUID,
			KnownName:       device.LookupService(svcUUID),
			Characteristics: make([]device.Characteristic, 0, len(svc.Characteristics)),
		}
		for _, ch := range svc.Characteristics {
			charUUID := device.NormalizeUUID(ch.UUID.String())
			s.Characteristics = append(s.Characteristics, device.Characteristic{
				UUID:       charUUID,
				KnownName:  device.LookupCharacteristic(charUUID),
				Properties: NewProperties(ch.Property),
			})
		}
		services = append(services, s)
	}
	return services, nil
}

// characteristic looks up a live characteristic by any UUID spelling.
func (c *BLEConnection) characteristic(uuid string) (*ble.Characteristic, string, error) {
	if !c.IsConnected() {
		return nil, "", device.ErrNotConnected
	}

	normalized := device.NormalizeUUID(uuid)
	ch, ok := c.chars.Get(normalized)
	if !ok {
		return nil, "", &device.NotFoundError{Resource: "characteristic", UUIDs: []string{uuid}}
	}
	return ch, normalized, nil
}

// Read reads the characteristic value.
func (c *BLEConnection) Read(ctx context.Context, uuid string) ([]byte, error) {
	ch, normalized, err := c.characteristic(uuid)
	if err != nil {
		return nil, err
	}
	if !NewProperties(ch.Property).Has(device.PropRead) {
		return nil, fmt.Errorf("characteristic %s does not support read: %w", uuid, device.ErrUnsupported)
	}

	data, err := groutine.Await(ctx, "ble-read", func() ([]byte, error) {
		return c.client.ReadCharacteristic(ch)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read characteristic %s: %w", uuid, NormalizeError(err))
	}

	c.logger.WithFields(logrus.Fields{
		"char_uuid": normalized,
		"bytes":     len(data),
	}).Debug("Characteristic read")
	return data, nil
}

// Write writes data to the characteristic, with response when the characteristic
// supports it and without response otherwise.
func (c *BLEConnection) Write(ctx context.Context, uuid string, data []byte) error {
	ch, normalized, err := c.characteristic(uuid)
	if err != nil {
		return err
	}

	props := NewProperties(ch.Property)
	if !props.CanWrite() {
		return fmt.Errorf("characteristic %s does not support write: %w", uuid, device.ErrUnsupported)
	}
	noRsp := !props.Has(device.PropWrite)

	_, err = groutine.Await(ctx, "ble-write", func() (struct{}, error) {
		return struct{}{}, c.client.WriteCharacteristic(ch, data, noRsp)
	})
	if err != nil {
		return fmt.Errorf("failed to write characteristic %s: %w", uuid, NormalizeError(err))
	}

	c.logger.WithFields(logrus.Fields{
		"char_uuid":     normalized,
		"bytes":         len(data),
		"with_response": !noRsp,
	}).Debug("Characteristic written")
	return nil
}

// Subscribe enables value pushes for the characteristic. Notify is preferred;
// indicate is used when the characteristic only supports indications. The handler
// runs on go-ble's goroutine and receives its own copy of each payload.
func (c *BLEConnection) Subscribe(ctx context.Context, uuid string, handler device.NotificationHandler) error {
	if handler == nil {
		return fmt.Errorf("no notification handler specified")
	}

	ch, normalized, err := c.characteristic(uuid)
	if err != nil {
		return err
	}

	props := NewProperties(ch.Property)
	if !props.CanSubscribe() {
		return fmt.Errorf("characteristic %s does not support notifications: %w", uuid, device.ErrUnsupported)
	}
	ind := !props.Has(device.PropNotify)

	_, err = groutine.Await(ctx, "ble-subscribe", func() (struct{}, error) {
		return struct{}{}, c.client.Subscribe(ch, ind, func(data []byte) {
			handler(append([]byte(nil), data...))
		})
	})
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"char_uuid": normalized,
			"error":     err,
		}).Error("Failed to subscribe to characteristic notifications")
		return fmt.Errorf("failed to subscribe to characteristic %s: %w", uuid, NormalizeError(err))
	}
	c.subs.Set(normalized, ind)

	c.logger.WithFields(logrus.Fields{
		"char_uuid": normalized,
		"indicate":  ind,
	}).Info("Successfully subscribed to characteristic notifications")
	return nil
}

// Unsubscribe disables value pushes for the characteristic.
func (c *BLEConnection) Unsubscribe(ctx context.Context, uuid string) error {
	ch, normalized, err := c.characteristic(uuid)
	if err != nil {
		return err
	}

	ind, _ := c.subs.Get(normalized)
	_, err = groutine.Await(ctx, "ble-unsubscribe", func() (struct{}, error) {
		return struct{}{}, c.client.Unsubscribe(ch, ind)
	})
	if err != nil {
		return fmt.Errorf("failed to unsubscribe from characteristic %s: %w", uuid, NormalizeError(err))
	}
	c.subs.Del(normalized)

	c.logger.WithField("char_uuid", normalized).Debug("Unsubscribed from characteristic notifications")
	return nil
}
