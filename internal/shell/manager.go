package shell

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/gyatt/internal/device"
)

// ConnectionManager owns the session's single connection handle.
type ConnectionManager struct {
	stack       device.Stack
	scanTimeout time.Duration
	logger      *logrus.Logger
}

// NewConnectionManager creates a manager. scanTimeout bounds the name-fallback
// scan performed by Connect.
func NewConnectionManager(stack device.Stack, scanTimeout time.Duration, logger *logrus.Logger) *ConnectionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &ConnectionManager{stack: stack, scanTimeout: scanTimeout, logger: logger}
}

// Scan runs discovery for d and returns devices in discovery order.
func (m *ConnectionManager) Scan(ctx context.Context, d time.Duration) ([]device.DeviceInfo, error) {
	devices, err := m.stack.Scan(ctx, d)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportError("scan", err)
	}
	return devices, nil
}

// Connect opens a connection to identifier, closing any open connection first.
// identifier is tried as a transport address; when that fails, a scan looks for
// the first device (in discovery order) whose advertised name contains it.
// On any failure the session ends up Disconnected with no handle.
func (m *ConnectionManager) Connect(ctx context.Context, sess *Session, identifier string) error {
	if sess.conn != nil {
		m.Disconnect(ctx, sess)
	}
	sess.setConnecting()

	conn, err := m.connect(ctx, identifier)
	if err != nil {
		sess.reset()
		return err
	}

	if !conn.IsConnected() {
		m.logger.WithField("identifier", identifier).Warn("Stack returned a connection that is not connected")
		_ = conn.Disconnect(ctx)
		sess.reset()
		return ErrConnectFailed
	}

	sess.setConnected(conn)
	m.logger.WithField("address", conn.Address()).Info("Connected")
	return nil
}

func (m *ConnectionManager) connect(ctx context.Context, identifier string) (device.Connection, error) {
	conn, err := m.stack.Connect(ctx, identifier)
	if err == nil {
		return conn, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.logger.WithError(err).WithField("identifier", identifier).Debug("Direct connect failed, scanning by name")

	devices, err := m.stack.Scan(ctx, m.scanTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportError("scan", err)
	}

	address, ok := matchName(devices, identifier)
	if !ok {
		return nil, ErrDeviceNotFound
	}

	m.logger.WithFields(logrus.Fields{"identifier": identifier, "address": address}).Debug("Name matched")
	conn, err = m.stack.Connect(ctx, address)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, device.ErrTimeout) {
			m.logger.WithField("address", address).Debug("Connect timed out")
		}
		return nil, transportError("connect", err)
	}
	return conn, nil
}

// matchName returns the address of the first device whose name contains name.
// Devices without an advertised name never match.
func matchName(devices []device.DeviceInfo, name string) (string, bool) {
	for _, d := range devices {
		if d.Name != "" && strings.Contains(d.Name, name) {
			return d.Address, true
		}
	}
	return "", false
}

// Disconnect closes the session's connection, if any, and clears the handle and
// every subscription even when the stack call fails. It reports whether a
// connection existed. Disconnecting while disconnected is a no-op.
func (m *ConnectionManager) Disconnect(ctx context.Context, sess *Session) bool {
	conn := sess.conn
	had := conn != nil
	if had {
		if err := conn.Disconnect(ctx); err != nil {
			m.logger.WithError(err).WithField("address", conn.Address()).Warn("Disconnect failed, dropping connection anyway")
		} else {
			m.logger.WithField("address", conn.Address()).Info("Disconnected")
		}
	}
	sess.reset()
	return had
}
