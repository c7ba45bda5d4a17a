package shell

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	// GOAL: Verify every command word maps to exactly one command with its arguments
	//
	// TEST SCENARIO: Parse representative lines → compare the resulting command values

	tests := []struct {
		name     string
		line     string
		expected Command
	}{
		{"scan default", "scan", ScanCommand{}},
		{"scan with timeout", "scan 2.5", ScanCommand{Timeout: 2500 * time.Millisecond}},
		{"connect", "connect AA:BB:CC:DD:EE:FF", ConnectCommand{Identifier: "AA:BB:CC:DD:EE:FF"}},
		{"connect ignores extra args", "connect MyWidget extra", ConnectCommand{Identifier: "MyWidget"}},
		{"disconnect", "disconnect", DisconnectCommand{}},
		{"services", "services", ServicesCommand{}},
		{"setchar", "setchar 180f", SetCharCommand{UUID: "180f"}},
		{"unsetchar", "unsetchar", UnsetCharCommand{}},
		{"read default", "read", ReadCommand{}},
		{"read uuid", "read 2a19", ReadCommand{UUID: "2a19"}},
		{"write payload only", "write AB01", WriteCommand{Payload: "AB01"}},
		{"write uuid and payload", "write 1234 AB01", WriteCommand{UUID: "1234", Payload: "AB01"}},
		{"notify default", "notify", NotifyCommand{}},
		{"notify uuid", "notify 2a37", NotifyCommand{UUID: "2a37"}},
		{"help", "help", HelpCommand{}},
		{"help alias", "?", HelpCommand{}},
		{"exit", "exit", QuitCommand{}},
		{"quit", "quit", QuitCommand{}},
		{"surrounding whitespace", "   read   2a19  ", ReadCommand{UUID: "2a19"}},
		{"unknown", "frobnicate", UnknownCommand{Name: "frobnicate"}},
		{"case sensitive", "READ", UnknownCommand{Name: "READ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)
		})
	}
}

func TestParse_Failures(t *testing.T) {
	// GOAL: Verify malformed lines fail with the matching error kind and never yield a command
	//
	// TEST SCENARIO: Parse lines with missing or malformed arguments → nil command and kinded error

	tests := []struct {
		name string
		line string
		kind *Error
	}{
		{"blank", "   ", ErrInvalidArgument},
		{"connect without identifier", "connect", ErrMissingArgument},
		{"setchar without uuid", "setchar", ErrMissingArgument},
		{"write without payload", "write", ErrMissingArgument},
		{"scan non-numeric", "scan soon", ErrInvalidArgument},
		{"scan zero", "scan 0", ErrInvalidArgument},
		{"scan negative", "scan -1", ErrInvalidArgument},
		{"scan NaN", "scan NaN", ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			assert.Nil(t, cmd)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "expected %v, got %v", tt.kind.Kind, err)
		})
	}
}

func TestParse_MissingArgumentShowsUsage(t *testing.T) {
	_, err := Parse("write")
	require.Error(t, err)
	assert.Equal(t, "Usage: write [char-UUID] <hex>", err.Error())
}

func TestDecodeHex(t *testing.T) {
	// GOAL: Verify hex payload decoding tolerates common spellings
	//
	// TEST SCENARIO: Decode payloads with prefixes and separators → expected bytes

	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{"plain", "ab01", []byte{0xab, 0x01}},
		{"upper case", "AB01", []byte{0xab, 0x01}},
		{"0x prefix", "0xAB01", []byte{0xab, 0x01}},
		{"colons", "01:02:FF", []byte{0x01, 0x02, 0xff}},
		{"dashes", "01-02-FF", []byte{0x01, 0x02, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := DecodeHex(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

func TestDecodeHex_Invalid(t *testing.T) {
	for _, input := range []string{"ZZ", "abc", "0x", "", "12:3"} {
		t.Run(input, func(t *testing.T) {
			data, err := DecodeHex(input)
			assert.Nil(t, data)
			assert.ErrorIs(t, err, ErrInvalidHexPayload)
			assert.Contains(t, err.Error(), "Invalid hex payload")
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "5.0", formatSeconds(5*time.Second))
	assert.Equal(t, "2.5", formatSeconds(2500*time.Millisecond))
	assert.Equal(t, "0.25", formatSeconds(250*time.Millisecond))
}

func TestCompleteCommand(t *testing.T) {
	// GOAL: Verify Tab completes a unique command prefix and leaves ambiguous input alone
	//
	// TEST SCENARIO: Feed prefixes to the completion callback → completed line or no-op

	line, pos, ok := completeCommand("se", 2, '\t')
	assert.False(t, ok, "services and setchar share the prefix")

	line, pos, ok = completeCommand("serv", 4, '\t')
	require.True(t, ok)
	assert.Equal(t, "services ", line)
	assert.Equal(t, len("services "), pos)

	_, _, ok = completeCommand("read 2a", 7, '\t')
	assert.False(t, ok, "only the command word is completed")

	_, _, ok = completeCommand("serv", 4, 'x')
	assert.False(t, ok, "only Tab triggers completion")

	_, _, ok = completeCommand("zzz", 3, '\t')
	assert.False(t, ok)
}

func TestErrorIsByKind(t *testing.T) {
	err := transportError("read", errors.New("att: read not permitted"))
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, "read failed: att: read not permitted", err.Error())
	assert.Equal(t, "transport_error", err.Kind.String())
}

func TestErrorKindNames(t *testing.T) {
	assert.Equal(t, "unrecognized_command", UnrecognizedCommand.String())
	assert.Equal(t, "invalid_argument", InvalidArgument.String())
	assert.Equal(t, "error_kind(99)", ErrorKind(99).String())
}
