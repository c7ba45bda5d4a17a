package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError represents an error when a GATT resource is not found on the connected peripheral
type NotFoundError struct {
	Resource string   // "service", "characteristic"
	UUIDs    []string // One or more UUIDs (e.g., [charUUID] or [serviceUUID, charUUID])
}

func (e *NotFoundError) Error() string {
	if len(e.UUIDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	if len(e.UUIDs) == 1 {
		return fmt.Sprintf("%s %q not found", e.Resource, e.UUIDs[0])
	}
	return fmt.Sprintf("%s %q not found in service %q", e.Resource, e.UUIDs[len(e.UUIDs)-1], e.UUIDs[0])
}

// ConnectionState represents the specific kind of connection state failure
type ConnectionState string

const (
	NotConnected     ConnectionState = "not_connected"
	AlreadyConnected ConnectionState = "already_connected"
	NotInitialized   ConnectionState = "not_initialized"
	BluetoothOff     ConnectionState = "bluetooth_off"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrNotConnected     = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected = &ConnectionError{State: AlreadyConnected}
	ErrNotInitialized   = &ConnectionError{State: NotInitialized}
	ErrBluetoothOff     = &ConnectionError{State: BluetoothOff}
)

// Operation errors
var (
	ErrTimeout        = errors.New("timeout")
	ErrUnsupported    = errors.New("unsupported")
	ErrInvalidAddress = errors.New("invalid device address")
)

// NormalizeError maps known host-stack error strings to structured ConnectionError types.
// Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return err
	}

	msg := err.Error()
	switch {
	case containsIgnoreCase(msg, "is Bluetooth turned on"),
		containsIgnoreCase(msg, "bluetooth is turned off"),
		containsIgnoreCase(msg, "can't init hci"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "device not connected"),
		containsIgnoreCase(msg, "disconnected"):
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	case containsIgnoreCase(msg, "device already connected"):
		return fmt.Errorf("%w: %v", ErrAlreadyConnected, err)
	case containsIgnoreCase(msg, "connection is not initialized"):
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return err
	}
}

// containsIgnoreCase checks substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// IsConnectionState reports whether err is a ConnectionError with the given state
func IsConnectionState(err error, state ConnectionState) bool {
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return cerr.State == state
	}
	return false
}

// DeviceInfo is a peripheral seen during discovery. Name is empty when the
// peripheral did not advertise one.
//
//nolint:revive // DeviceInfo name is intentional for clarity when used as a device.DeviceInfo
type DeviceInfo struct {
	Address string
	Name    string
	RSSI    int
}

// DisplayName returns the advertised name, or "Unknown" when there is none.
func (d DeviceInfo) DisplayName() string {
	if d.Name == "" {
		return "Unknown"
	}
	return d.Name
}

// Characteristic describes a GATT characteristic of the connected peripheral.
type Characteristic struct {
	UUID       string
	KnownName  string
	Properties Properties
}

// Service describes a GATT service and its characteristics.
type Service struct {
	UUID            string
	KnownName       string
	Characteristics []Characteristic
}

// Notification is a single value pushed by the peripheral for a subscribed characteristic.
type Notification struct {
	UUID string
	Data []byte
	At   time.Time
}

// NotificationHandler receives raw notification payloads. It is invoked from
// the host stack's own goroutine.
type NotificationHandler func(data []byte)

// Stack is the BLE host stack the shell drives: discovery and connection setup.
type Stack interface {
	// Scan discovers advertising peripherals for the given duration. Results are
	// de-duplicated by address and returned in discovery order.
	Scan(ctx context.Context, duration time.Duration) ([]DeviceInfo, error)
	// Connect dials the peripheral with the given transport address and
	// discovers its GATT profile.
	Connect(ctx context.Context, address string) (Connection, error)
	// Close releases the local adapter.
	Close() error
}

// Connection is a live GATT connection. Characteristic UUIDs are accepted in
// any spelling understood by NormalizeUUID.
type Connection interface {
	Address() string
	IsConnected() bool
	Disconnect(ctx context.Context) error

	Services(ctx context.Context) ([]Service, error)
	Read(ctx context.Context, uuid string) ([]byte, error)
	Write(ctx context.Context, uuid string, data []byte) error
	Subscribe(ctx context.Context, uuid string, handler NotificationHandler) error
	Unsubscribe(ctx context.Context, uuid string) error
}
