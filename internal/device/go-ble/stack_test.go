package goble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/gyatt/internal/device"
	"github.com/srg/gyatt/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withDevice swaps DeviceFactory for the duration of the test.
func withDevice(t *testing.T, dev ble.Device, err error) *int {
	t.Helper()
	opened := 0
	orig := DeviceFactory
	DeviceFactory = func(string) (ble.Device, error) {
		opened++
		return dev, err
	}
	t.Cleanup(func() { DeviceFactory = orig })
	return &opened
}

func testStack() *Stack {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewStack(Options{Adapter: "hci0", ConnectTimeout: time.Second}, logger)
}

func TestStack_ScanKeepsDiscoveryOrder(t *testing.T) {
	// GOAL: Verify scan results are de-duplicated by address and kept in first-seen order
	//
	// TEST SCENARIO: Replay advertisements with a repeat carrying a name → ordered results, name filled in

	dev := testutils.NewPeripheralDeviceBuilder().
		WithAdvertisements(
			testutils.NewAdvertisementBuilder().WithAddress("aa:aa:aa:aa:aa:01").WithRSSI(-70).Build(),
			testutils.NewAdvertisementBuilder().WithAddress("aa:aa:aa:aa:aa:02").WithName("Thermo").Build(),
			testutils.NewAdvertisementBuilder().WithAddress("aa:aa:aa:aa:aa:01").WithName("MyWidget").WithRSSI(-50).Build(),
		).
		Build()
	opened := withDevice(t, dev, nil)
	stack := testStack()

	devices, err := stack.Scan(context.Background(), 20*time.Millisecond)

	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "aa:aa:aa:aa:aa:01", devices[0].Address)
	assert.Equal(t, "MyWidget", devices[0].Name)
	assert.Equal(t, -50, devices[0].RSSI)
	assert.Equal(t, "Thermo", devices[1].Name)

	_, err = stack.Scan(context.Background(), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, *opened, "the adapter MUST be opened once and reused")

	require.NoError(t, stack.Close())
	assert.True(t, dev.Stopped())
}

func TestStack_ScanErrors(t *testing.T) {
	t.Run("adapter fails to open", func(t *testing.T) {
		withDevice(t, nil, errors.New("operation not permitted"))
		_, err := testStack().Scan(context.Background(), time.Millisecond)
		assert.ErrorIs(t, err, device.ErrNotInitialized)
	})

	t.Run("scan fails", func(t *testing.T) {
		dev := testutils.NewPeripheralDeviceBuilder().WithScanError(errors.New("hci: busy")).Build()
		withDevice(t, dev, nil)
		_, err := testStack().Scan(context.Background(), time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan failed")
	})

	t.Run("caller cancels", func(t *testing.T) {
		withDevice(t, testutils.NewPeripheralDeviceBuilder().Build(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := testStack().Scan(ctx, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStack_Connect(t *testing.T) {
	// GOAL: Verify Connect dials addresses, rejects names without dialling, and indexes the profile
	//
	// TEST SCENARIO: name → ErrInvalidAddress; address → connection exposing discovered services

	dev := testutils.NewPeripheralDeviceBuilder().
		WithService("180f").WithCharacteristic("2a19", ble.CharRead|ble.CharNotify).
		Build()
	withDevice(t, dev, nil)
	stack := testStack()

	_, err := stack.Connect(context.Background(), "MyWidget")
	assert.ErrorIs(t, err, device.ErrInvalidAddress)
	assert.Empty(t, dev.Dialed(), "a name MUST NOT be dialled")

	conn, err := stack.Connect(context.Background(), "AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	assert.Len(t, dev.Dialed(), 1)
	assert.True(t, conn.IsConnected())

	services, err := conn.Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "180f", services[0].UUID)
	require.Len(t, services[0].Characteristics, 1)
	assert.Equal(t, "2a19", services[0].Characteristics[0].UUID)

	dev.Client.Drop()
	assert.False(t, conn.IsConnected(), "a dropped link MUST report disconnected")
}

func TestStack_ConnectFailures(t *testing.T) {
	t.Run("dial fails", func(t *testing.T) {
		dev := testutils.NewPeripheralDeviceBuilder().WithDialError(context.DeadlineExceeded).Build()
		withDevice(t, dev, nil)
		_, err := testStack().Connect(context.Background(), "AA:BB:CC:DD:EE:FF")
		assert.ErrorIs(t, err, device.ErrTimeout)
	})

	t.Run("profile discovery fails", func(t *testing.T) {
		dev := testutils.NewPeripheralDeviceBuilder().Build()
		dev.Client.ProfileErr = errors.New("att: timeout")
		withDevice(t, dev, nil)

		_, err := testStack().Connect(context.Background(), "AA:BB:CC:DD:EE:FF")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to discover profile")
		select {
		case <-dev.Client.Disconnected():
		default:
			t.Fatal("connection MUST be cancelled after a failed discovery")
		}
	})
}
