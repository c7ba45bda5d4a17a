package shell

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/srg/gyatt/internal/device"
	"github.com/stretchr/testify/mock"
)

// mockStack is a testify mock of device.Stack.
type mockStack struct {
	mock.Mock
}

func (m *mockStack) Scan(ctx context.Context, d time.Duration) ([]device.DeviceInfo, error) {
	args := m.Called(ctx, d)
	devices, _ := args.Get(0).([]device.DeviceInfo)
	return devices, args.Error(1)
}

func (m *mockStack) Connect(ctx context.Context, address string) (device.Connection, error) {
	args := m.Called(ctx, address)
	conn, _ := args.Get(0).(device.Connection)
	return conn, args.Error(1)
}

func (m *mockStack) Close() error {
	return m.Called().Error(0)
}

// mockConnection is a testify mock of device.Connection. Link state is a plain
// flag so tests can flip it without expectations.
type mockConnection struct {
	mock.Mock
	address   string
	connected atomic.Bool

	mu       sync.Mutex
	handlers map[string]device.NotificationHandler
}

func newMockConnection(address string, connected bool) *mockConnection {
	c := &mockConnection{address: address, handlers: make(map[string]device.NotificationHandler)}
	c.connected.Store(connected)
	return c
}

func (m *mockConnection) Address() string {
	return m.address
}

func (m *mockConnection) IsConnected() bool {
	return m.connected.Load()
}

func (m *mockConnection) Disconnect(ctx context.Context) error {
	m.connected.Store(false)
	return m.Called(ctx).Error(0)
}

func (m *mockConnection) Services(ctx context.Context) ([]device.Service, error) {
	args := m.Called(ctx)
	services, _ := args.Get(0).([]device.Service)
	return services, args.Error(1)
}

func (m *mockConnection) Read(ctx context.Context, uuid string) ([]byte, error) {
	args := m.Called(ctx, uuid)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockConnection) Write(ctx context.Context, uuid string, data []byte) error {
	return m.Called(ctx, uuid, data).Error(0)
}

func (m *mockConnection) Subscribe(ctx context.Context, uuid string, handler device.NotificationHandler) error {
	err := m.Called(ctx, uuid).Error(0)
	if err == nil {
		m.mu.Lock()
		m.handlers[uuid] = handler
		m.mu.Unlock()
	}
	return err
}

func (m *mockConnection) Unsubscribe(ctx context.Context, uuid string) error {
	err := m.Called(ctx, uuid).Error(0)
	if err == nil {
		m.mu.Lock()
		delete(m.handlers, uuid)
		m.mu.Unlock()
	}
	return err
}

// notify simulates the stack delivering a value on uuid.
func (m *mockConnection) notify(uuid string, data []byte) bool {
	m.mu.Lock()
	h, ok := m.handlers[uuid]
	m.mu.Unlock()
	if ok {
		h(data)
	}
	return ok
}

// syncBuffer is a bytes.Buffer safe for the notification pump and the test
// goroutine to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
