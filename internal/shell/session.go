// Package shell implements the interactive BLE shell: the session state, command
// parsing and dispatch, the connection manager and the notification registry.
//
// All session state is owned by the dispatch flow and mutated only from it. The
// one concurrent actor is notification delivery, which never touches the
// Session; it only enqueues records for the output sink.
package shell

import (
	"github.com/srg/gyatt/internal/device"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// State is the connectivity state of a Session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Session is the single mutable state of a shell run: the live connection (if
// any), the characteristics with active notification subscriptions and the
// default characteristic. The connection and the subscription set are cleared
// together; the default characteristic survives reconnects.
type Session struct {
	conn          device.Connection
	state         State
	subscriptions *orderedmap.OrderedMap[string, struct{}]
	defaultChar   string
}

// NewSession returns a disconnected session with no default characteristic.
func NewSession() *Session {
	return &Session{
		state:         Disconnected,
		subscriptions: orderedmap.New[string, struct{}](),
	}
}

// State returns the current connectivity state.
func (s *Session) State() State {
	return s.state
}

// Connection returns the live connection, or nil when disconnected.
func (s *Session) Connection() device.Connection {
	return s.conn
}

// IsConnected reports whether a connection is held and the stack still reports it up.
func (s *Session) IsConnected() bool {
	return s.state == Connected && s.conn != nil && s.conn.IsConnected()
}

// DefaultCharacteristic returns the default characteristic UUID, or "" when unset.
func (s *Session) DefaultCharacteristic() string {
	return s.defaultChar
}

// Subscriptions returns the subscribed characteristic UUIDs in subscription order.
func (s *Session) Subscriptions() []string {
	out := make([]string, 0, s.subscriptions.Len())
	for pair := s.subscriptions.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// IsSubscribed reports whether uuid has an active subscription.
func (s *Session) IsSubscribed(uuid string) bool {
	_, ok := s.subscriptions.Get(uuid)
	return ok
}

func (s *Session) setConnecting() {
	s.state = Connecting
}

func (s *Session) setConnected(conn device.Connection) {
	s.conn = conn
	s.state = Connected
}

// reset drops the connection handle and every subscription in one step.
func (s *Session) reset() {
	s.conn = nil
	s.state = Disconnected
	s.subscriptions = orderedmap.New[string, struct{}]()
}
