package shell

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Command is a parsed input line. The set of implementations is closed; the
// dispatcher switches over all of them.
type Command interface {
	command()
}

type (
	// ScanCommand runs discovery. A zero Timeout means the configured default.
	ScanCommand struct{ Timeout time.Duration }
	// ConnectCommand connects by transport address or advertised name substring.
	ConnectCommand struct{ Identifier string }
	DisconnectCommand struct{}
	ServicesCommand   struct{}
	SetCharCommand    struct{ UUID string }
	UnsetCharCommand  struct{}
	// ReadCommand reads UUID, or the default characteristic when UUID is empty.
	ReadCommand struct{ UUID string }
	// WriteCommand writes the hex Payload to UUID, or to the default
	// characteristic when UUID is empty.
	WriteCommand struct {
		UUID    string
		Payload string
	}
	// NotifyCommand toggles notifications on UUID, or on the default characteristic.
	NotifyCommand struct{ UUID string }
	HelpCommand   struct{}
	QuitCommand   struct{}
	// UnknownCommand carries an unrecognised command word.
	UnknownCommand struct{ Name string }
)

func (ScanCommand) command()       {}
func (ConnectCommand) command()    {}
func (DisconnectCommand) command() {}
func (ServicesCommand) command()   {}
func (SetCharCommand) command()    {}
func (UnsetCharCommand) command()  {}
func (ReadCommand) command()       {}
func (WriteCommand) command()      {}
func (NotifyCommand) command()     {}
func (HelpCommand) command()       {}
func (QuitCommand) command()       {}
func (UnknownCommand) command()    {}

// CommandNames lists the command words in help order.
var CommandNames = []string{
	"scan", "connect", "disconnect", "services", "setchar", "unsetchar",
	"read", "write", "notify", "help", "?", "exit", "quit",
}

// Parse splits line on whitespace and maps it to exactly one Command, or fails.
// Command words are case-sensitive. Arguments beyond those a command takes are
// ignored.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, &Error{Kind: InvalidArgument, Op: "parse", Msg: "Empty command."}
	}
	name, args := fields[0], fields[1:]

	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch name {
	case "scan":
		if len(args) == 0 {
			return ScanCommand{}, nil
		}
		d, err := parseSeconds(args[0])
		if err != nil {
			return nil, err
		}
		return ScanCommand{Timeout: d}, nil
	case "connect":
		if len(args) == 0 {
			return nil, missingArgument("connect", "connect <address-or-name>")
		}
		return ConnectCommand{Identifier: args[0]}, nil
	case "disconnect":
		return DisconnectCommand{}, nil
	case "services":
		return ServicesCommand{}, nil
	case "setchar":
		if len(args) == 0 {
			return nil, missingArgument("setchar", "setchar <char-UUID>")
		}
		return SetCharCommand{UUID: args[0]}, nil
	case "unsetchar":
		return UnsetCharCommand{}, nil
	case "read":
		return ReadCommand{UUID: arg(0)}, nil
	case "write":
		switch len(args) {
		case 0:
			return nil, missingArgument("write", writeUsage)
		case 1:
			// a lone argument is always the payload
			return WriteCommand{Payload: args[0]}, nil
		default:
			return WriteCommand{UUID: args[0], Payload: args[1]}, nil
		}
	case "notify":
		return NotifyCommand{UUID: arg(0)}, nil
	case "help", "?":
		return HelpCommand{}, nil
	case "exit", "quit":
		return QuitCommand{}, nil
	default:
		return UnknownCommand{Name: name}, nil
	}
}

const writeUsage = "write [char-UUID] <hex>"

func parseSeconds(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || !(secs > 0) || secs > time.Duration(1<<62).Seconds() {
		return 0, &Error{Kind: InvalidArgument, Op: "scan", Msg: "Invalid timeout: " + s}
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// DecodeHex decodes a hex payload. A 0x prefix and ':' or '-' byte separators
// are accepted; an empty or odd-length payload is rejected.
func DecodeHex(s string) ([]byte, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	clean = strings.NewReplacer(":", "", "-", "").Replace(clean)

	data, err := hex.DecodeString(clean)
	if err != nil || len(data) == 0 {
		return nil, &Error{Kind: InvalidHexPayload, Op: "write", Msg: "Invalid hex payload: " + s}
	}
	return data, nil
}
