package shell

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/gyatt/internal/device"
	"github.com/srg/gyatt/internal/groutine"
)

// Options configures a Shell.
type Options struct {
	ScanTimeout        time.Duration
	DisconnectTimeout  time.Duration
	NotificationBuffer int
	Color              bool
}

// Shell is the read-dispatch loop around a single Session.
type Shell struct {
	input      LineInput
	printer    *Printer
	session    *Session
	manager    *ConnectionManager
	registry   *NotificationRegistry
	dispatcher *Dispatcher
	opts       Options
	logger     *logrus.Logger
}

// New assembles a shell over stack. Output, notification records included,
// goes to out.
func New(stack device.Stack, input LineInput, out io.Writer, opts Options, logger *logrus.Logger) *Shell {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = 5 * time.Second
	}
	if opts.DisconnectTimeout <= 0 {
		opts.DisconnectTimeout = 5 * time.Second
	}
	if opts.NotificationBuffer <= 0 {
		opts.NotificationBuffer = 128
	}
	printer := NewPrinter(out, opts.Color)
	sess := NewSession()
	manager := NewConnectionManager(stack, opts.ScanTimeout, logger)
	registry := NewNotificationRegistry(opts.NotificationBuffer, logger)

	return &Shell{
		input:      input,
		printer:    printer,
		session:    sess,
		manager:    manager,
		registry:   registry,
		dispatcher: NewDispatcher(sess, manager, registry, printer, opts.ScanTimeout, logger),
		opts:       opts,
		logger:     logger,
	}
}

// Session returns the shell's session.
func (s *Shell) Session() *Session {
	return s.session
}

type readResult struct {
	line string
	err  error
}

// Run processes input lines until explicit quit, end of input, or ctx
// cancellation. On every exit path it attempts to disconnect, bounded by the
// disconnect timeout. Command failures never end the loop.
func (s *Shell) Run(ctx context.Context) error {
	s.printer.Info("Welcome to Gyatt BLE shell. Type `help` for commands.")
	s.registry.Start(ctx, func(n device.Notification) {
		s.printer.Notification("%s", FormatNotification(n))
	})
	defer s.shutdown()

	// The reader only reads when asked, so the prompt is not drawn while a
	// command is still producing output.
	requests := make(chan struct{})
	results := make(chan readResult, 1)
	defer close(requests)
	groutine.Go(ctx, "line-reader", func(context.Context) {
		for range requests {
			line, err := s.input.ReadLine()
			results <- readResult{line: line, err: err}
			if err != nil {
				return
			}
		}
	})

	for {
		select {
		case requests <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		var r readResult
		select {
		case r = <-results:
		case <-ctx.Done():
			s.printer.Plain("")
			return nil
		}

		if r.err != nil {
			if !errors.Is(r.err, io.EOF) {
				s.logger.WithError(r.err).Warn("Reading input failed")
			}
			s.printer.Plain("")
			return nil
		}

		line := strings.TrimSpace(r.line)
		if line == "" {
			continue
		}
		if s.dispatcher.Dispatch(ctx, line) {
			s.printer.Info("Goodbye!")
			return nil
		}
	}
}

// shutdown disconnects on a fresh context so a cancelled shell context still
// gets a bounded attempt, then drains pending notifications.
func (s *Shell) shutdown() {
	if s.session.Connection() != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.DisconnectTimeout)
		s.manager.Disconnect(ctx, s.session)
		cancel()
	}
	s.registry.Close()
	if err := s.input.Close(); err != nil {
		s.logger.WithError(err).Debug("Closing input failed")
	}
}
