package shell

import "fmt"

// ErrorKind classifies every failure a shell command can report.
type ErrorKind int

const (
	// NotConnected: the operation requires a connection that is absent.
	NotConnected ErrorKind = iota + 1
	// DeviceNotFound: the name-fallback scan found no matching device.
	DeviceNotFound
	// MissingCharacteristic: no UUID was given and no default is set.
	MissingCharacteristic
	// MissingArgument: a required positional argument is absent.
	MissingArgument
	// InvalidHexPayload: the write payload is not valid hex.
	InvalidHexPayload
	// InvalidArgument: an argument is present but malformed (e.g. scan timeout).
	InvalidArgument
	// ConnectFailed: the stack accepted the connect call but reports no active link.
	ConnectFailed
	// TransportError: a host stack call failed.
	TransportError
	// UnrecognizedCommand: the command word is not one the shell knows.
	UnrecognizedCommand
)

var kindNames = map[ErrorKind]string{
	NotConnected:          "not_connected",
	DeviceNotFound:        "device_not_found",
	MissingCharacteristic: "missing_characteristic",
	MissingArgument:       "missing_argument",
	InvalidHexPayload:     "invalid_hex_payload",
	InvalidArgument:       "invalid_argument",
	ConnectFailed:         "connect_failed",
	TransportError:        "transport_error",
	UnrecognizedCommand:   "unrecognized_command",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error_kind(%d)", int(k))
}

// Error is the single error type returned by the shell core. Msg is the
// one-line text shown to the user; Err, when set, is the underlying cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to compare Error values by Kind
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotConnected          = &Error{Kind: NotConnected, Msg: "Not connected."}
	ErrDeviceNotFound        = &Error{Kind: DeviceNotFound, Msg: "Device not found."}
	ErrMissingCharacteristic = &Error{Kind: MissingCharacteristic, Msg: "No characteristic specified or default set."}
	ErrMissingArgument       = &Error{Kind: MissingArgument}
	ErrInvalidHexPayload     = &Error{Kind: InvalidHexPayload}
	ErrInvalidArgument       = &Error{Kind: InvalidArgument}
	ErrConnectFailed         = &Error{Kind: ConnectFailed, Msg: "Failed to connect."}
	ErrTransport             = &Error{Kind: TransportError}
	ErrUnrecognizedCommand   = &Error{Kind: UnrecognizedCommand}
)

func missingArgument(op, usage string) *Error {
	return &Error{Kind: MissingArgument, Op: op, Msg: "Usage: " + usage}
}

func transportError(op string, err error) *Error {
	return &Error{Kind: TransportError, Op: op, Msg: op + " failed", Err: err}
}
