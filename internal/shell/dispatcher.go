package shell

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatcher executes parsed commands against a Session. No command failure is
// fatal: every error is reported as a single line and the session continues.
type Dispatcher struct {
	sess        *Session
	manager     *ConnectionManager
	registry    *NotificationRegistry
	printer     *Printer
	scanTimeout time.Duration
	logger      *logrus.Logger
}

// NewDispatcher wires a dispatcher. scanTimeout is the duration of a bare `scan`.
func NewDispatcher(sess *Session, manager *ConnectionManager, registry *NotificationRegistry, printer *Printer, scanTimeout time.Duration, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Dispatcher{
		sess:        sess,
		manager:     manager,
		registry:    registry,
		printer:     printer,
		scanTimeout: scanTimeout,
		logger:      logger,
	}
}

// Dispatch parses and executes one input line. It reports true only for an
// explicit quit.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) bool {
	cmd, err := Parse(line)
	if err != nil {
		d.report(err)
		return false
	}
	if _, ok := cmd.(QuitCommand); ok {
		return true
	}
	if err := d.Execute(ctx, cmd); err != nil {
		d.report(err)
	}
	return false
}

// Execute runs a single command. QuitCommand is a no-op here; ending the
// session is up to the caller.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) error {
	d.logger.WithField("command", fmt.Sprintf("%T", cmd)).Debug("Executing command")

	switch c := cmd.(type) {
	case ScanCommand:
		return d.scan(ctx, c)
	case ConnectCommand:
		d.printer.Info("Connecting to %s…", c.Identifier)
		if err := d.manager.Connect(ctx, d.sess, c.Identifier); err != nil {
			return err
		}
		d.printer.Success("Connected.")
	case DisconnectCommand:
		if d.manager.Disconnect(ctx, d.sess) {
			d.printer.Success("Disconnected.")
		}
	case ServicesCommand:
		return d.services(ctx)
	case SetCharCommand:
		SetDefaultCharacteristic(d.sess, c.UUID)
		d.printer.Success("Default characteristic set to %s", c.UUID)
	case UnsetCharCommand:
		ClearDefaultCharacteristic(d.sess)
		d.printer.Success("Default characteristic cleared")
	case ReadCommand:
		return d.read(ctx, c)
	case WriteCommand:
		return d.write(ctx, c)
	case NotifyCommand:
		return d.notify(ctx, c)
	case HelpCommand:
		d.printer.Plain(helpText)
	case QuitCommand:
	case UnknownCommand:
		return &Error{Kind: UnrecognizedCommand, Op: c.Name, Msg: "Unknown command. Type `help`."}
	default:
		panic(fmt.Sprintf("shell: unhandled command %T", cmd))
	}
	return nil
}

func (d *Dispatcher) scan(ctx context.Context, c ScanCommand) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = d.scanTimeout
	}
	d.printer.Info("Scanning for %ss…", formatSeconds(timeout))

	devices, err := d.manager.Scan(ctx, timeout)
	if err != nil {
		return err
	}
	for _, dev := range devices {
		d.printer.Device(dev.Address, dev.DisplayName())
	}
	d.printer.Success("Scan complete.")
	return nil
}

func (d *Dispatcher) services(ctx context.Context) error {
	if !d.sess.IsConnected() {
		return ErrNotConnected
	}
	services, err := d.sess.conn.Services(ctx)
	if err != nil {
		return transportError("services", err)
	}
	for _, svc := range services {
		d.printer.Service(svc.UUID, svc.KnownName)
		for _, ch := range svc.Characteristics {
			d.printer.Characteristic(ch.UUID, ch.KnownName, ch.Properties.String())
		}
	}
	return nil
}

func (d *Dispatcher) read(ctx context.Context, c ReadCommand) error {
	uuid, err := ResolveCharacteristic(d.sess, c.UUID)
	if err != nil {
		return err
	}
	if !d.sess.IsConnected() {
		return ErrNotConnected
	}
	data, err := d.sess.conn.Read(ctx, uuid)
	if err != nil {
		return transportError("read", err)
	}
	d.printer.Success("Read %s: %s", uuid, hex.EncodeToString(data))
	return nil
}

func (d *Dispatcher) write(ctx context.Context, c WriteCommand) error {
	if c.Payload == "" {
		return missingArgument("write", writeUsage)
	}
	uuid, err := ResolveCharacteristic(d.sess, c.UUID)
	if err != nil {
		return err
	}
	data, err := DecodeHex(c.Payload)
	if err != nil {
		return err
	}
	if !d.sess.IsConnected() {
		return ErrNotConnected
	}
	if err := d.sess.conn.Write(ctx, uuid, data); err != nil {
		return transportError("write", err)
	}
	d.printer.Success("Wrote %s to %s", c.Payload, uuid)
	return nil
}

func (d *Dispatcher) notify(ctx context.Context, c NotifyCommand) error {
	uuid, err := ResolveCharacteristic(d.sess, c.UUID)
	if err != nil {
		return err
	}
	started, err := d.registry.Toggle(ctx, d.sess, uuid)
	if err != nil {
		return err
	}
	if started {
		d.printer.Success("Started notifications on %s", uuid)
	} else {
		d.printer.Success("Stopped notifications on %s", uuid)
	}
	return nil
}

// report prints err as one line. Shell errors without a cause are already
// user-facing; anything else is prefixed with "Error: ".
func (d *Dispatcher) report(err error) {
	var shellErr *Error
	if errors.As(err, &shellErr) && shellErr.Err == nil && shellErr.Msg != "" {
		d.printer.Error("%s", shellErr.Msg)
		return
	}
	d.logger.WithError(err).Debug("Command failed")
	d.printer.Error("Error: %v", err)
}

// formatSeconds renders whole seconds with one decimal ("5.0") and fractional
// ones as short as possible ("2.25").
func formatSeconds(d time.Duration) string {
	secs := d.Seconds()
	if secs == float64(int64(secs)) {
		return strconv.FormatFloat(secs, 'f', 1, 64)
	}
	return strconv.FormatFloat(secs, 'f', -1, 64)
}
