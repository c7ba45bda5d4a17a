package goble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/gyatt/internal/device"
	"github.com/srg/gyatt/internal/groutine"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultConnectTimeout bounds a direct dial when Options.ConnectTimeout is unset.
const DefaultConnectTimeout = 10 * time.Second

// DeviceFactory creates the ble.Device for the named adapter (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = newHCIDevice

// Options configures the go-ble stack.
type Options struct {
	Adapter        string
	ConnectTimeout time.Duration
}

// Stack implements device.Stack on top of go-ble. The HCI device is opened on
// first use and shared by scans and connections.
type Stack struct {
	opts   Options
	logger *logrus.Logger

	mu  sync.Mutex
	dev ble.Device
}

// NewStack creates a go-ble backed stack. No radio is touched until the first
// Scan or Connect.
func NewStack(opts Options, logger *logrus.Logger) *Stack {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	return &Stack{opts: opts, logger: logger}
}

// device returns the shared HCI device, opening it on first call.
func (s *Stack) device() (ble.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev != nil {
		return s.dev, nil
	}

	s.logger.WithField("adapter", s.opts.Adapter).Debug("Opening BLE adapter...")
	dev, err := DeviceFactory(s.opts.Adapter)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"adapter": s.opts.Adapter,
			"error":   err,
		}).Error("Failed to open BLE adapter")
		return nil, fmt.Errorf("failed to open adapter %q: %w", s.opts.Adapter, NormalizeError(err))
	}
	s.dev = dev
	return dev, nil
}

// Scan performs discovery for the given duration and returns peripherals in the
// order they were first seen. A later advertisement carrying a name fills in the
// name of an already seen peripheral.
func (s *Stack) Scan(ctx context.Context, duration time.Duration) ([]device.DeviceInfo, error) {
	dev, err := s.device()
	if err != nil {
		return nil, err
	}

	s.logger.WithField("duration", duration).Info("Starting BLE scan...")

	var mu sync.Mutex
	found := orderedmap.New[string, device.DeviceInfo]()

	handler := func(adv ble.Advertisement) {
		addr := adv.Addr().String()

		mu.Lock()
		defer mu.Unlock()

		info, seen := found.Get(addr)
		info.Address = addr
		info.RSSI = adv.RSSI()
		if name := adv.LocalName(); name != "" {
			info.Name = name
		}
		found.Set(addr, info)

		if !seen {
			s.logger.WithFields(logrus.Fields{
				"address": addr,
				"name":    info.Name,
				"rssi":    info.RSSI,
			}).Debug("Discovered new device")
		}
	}

	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	err = dev.Scan(scanCtx, false, handler)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("scan failed: %w", NormalizeError(err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	devices := make([]device.DeviceInfo, 0, found.Len())
	for pair := found.Oldest(); pair != nil; pair = pair.Next() {
		devices = append(devices, pair.Value)
	}

	s.logger.WithField("device_count", len(devices)).Info("BLE scan completed")
	return devices, nil
}

// Connect dials the peripheral at address and discovers its GATT profile.
// Identifiers that are not shaped like a transport address fail immediately
// with device.ErrInvalidAddress rather than waiting for the dial timeout.
func (s *Stack) Connect(ctx context.Context, address string) (device.Connection, error) {
	if !IsTransportAddress(address) {
		return nil, fmt.Errorf("%w: %q", device.ErrInvalidAddress, address)
	}

	dev, err := s.device()
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"address": address,
		"timeout": s.opts.ConnectTimeout,
	}).Info("Connecting to BLE device...")

	dialCtx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	defer cancel()

	client, err := dev.Dial(dialCtx, ble.NewAddr(address))
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"address": address,
			"error":   err,
		}).Error("Failed to dial BLE device")
		return nil, fmt.Errorf("failed to connect to device with address %q: %w", address, NormalizeError(err))
	}

	s.logger.WithField("address", address).Debug("Discovering services and characteristics...")
	profile, err := groutine.Await(ctx, "ble-discover-profile", func() (*ble.Profile, error) {
		return client.DiscoverProfile(true)
	})
	if err != nil {
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			s.logger.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection during profile discovery failure")
		}
		return nil, fmt.Errorf("failed to discover profile: %w", NormalizeError(err))
	}

	conn := newConnection(address, client, profile, s.logger)

	s.logger.WithFields(logrus.Fields{
		"address":         address,
		"services":        len(profile.Services),
		"characteristics": conn.chars.Len(),
	}).Info("BLE device connected successfully")
	return conn, nil
}

// Close stops the HCI device if it was opened.
func (s *Stack) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev == nil {
		return nil
	}
	err := s.dev.Stop()
	s.dev = nil
	return NormalizeError(err)
}
