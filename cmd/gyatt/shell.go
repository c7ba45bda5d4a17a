package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/gyatt/internal/device"
	goble "github.com/srg/gyatt/internal/device/go-ble"
	"github.com/srg/gyatt/internal/shell"
	"github.com/srg/gyatt/pkg/config"
)

// StackFactory creates the host BLE stack (can be overridden in tests)
//
//nolint:revive // StackFactory name is intentional for test mocking
var StackFactory = func(cfg *config.Config, logger *logrus.Logger) device.Stack {
	return goble.NewStack(goble.Options{
		Adapter:        cfg.Adapter,
		ConnectTimeout: cfg.ConnectTimeout,
	}, logger)
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter, _ = flags.GetString("adapter")
	}
	if flags.Changed("scan-timeout") {
		cfg.ScanTimeout, _ = flags.GetDuration("scan-timeout")
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		cfg.Color = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, out, err := shell.OpenInput(os.Stdin, os.Stdout, cfg.Prompt)
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if _, interactive := input.(*shell.TerminalInput); interactive {
		// Log lines go through the line editor so they do not tear the prompt
		logger.SetOutput(out)
	}

	stack := StackFactory(cfg, logger)
	defer func() {
		if err := stack.Close(); err != nil {
			logger.WithError(err).Debug("Closing BLE stack failed")
		}
	}()

	if ctx.Err() != nil {
		_ = input.Close()
		return ErrInterrupted
	}

	sh := shell.New(stack, input, out, shell.Options{
		ScanTimeout:        cfg.ScanTimeout,
		DisconnectTimeout:  cfg.DisconnectTimeout,
		NotificationBuffer: cfg.NotificationBuffer,
		Color:              cfg.Color && !color.NoColor,
	}, logger)

	logger.WithFields(logrus.Fields{
		"adapter":      cfg.Adapter,
		"scan_timeout": cfg.ScanTimeout,
	}).Debug("Starting shell")

	return sh.Run(ctx)
}
