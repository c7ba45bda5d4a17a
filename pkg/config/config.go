package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var adapterPattern = regexp.MustCompile(`^(hci)?[0-9]+$`)

// Config holds application configuration
type Config struct {
	// Adapter selects the local radio (hci0, hci1, ...). Ignored on macOS.
	Adapter string `yaml:"adapter" default:"hci0"`
	// ScanTimeout is the default `scan` duration and the fixed duration of the
	// name-fallback scan performed by `connect`.
	ScanTimeout       time.Duration `yaml:"scan_timeout" default:"5s"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout" default:"10s"`
	DisconnectTimeout time.Duration `yaml:"disconnect_timeout" default:"5s"`
	// NotificationBuffer is the number of undelivered notifications kept before the oldest is dropped.
	NotificationBuffer int    `yaml:"notification_buffer" default:"128"`
	LogLevel           string `yaml:"log_level"`
	Color              bool   `yaml:"color" default:"true"`
	Prompt             string `yaml:"prompt" default:"gyatt> "`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gyatt", "config.yaml")
}

// Load reads a YAML config file over the defaults. A missing file at the
// default path is not an error; a missing explicitly named file is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if !adapterPattern.MatchString(c.Adapter) {
		return fmt.Errorf("adapter must look like hciN, got %q", c.Adapter)
	}
	if c.ScanTimeout <= 0 {
		return fmt.Errorf("scan_timeout must be > 0")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be > 0")
	}
	if c.DisconnectTimeout <= 0 {
		return fmt.Errorf("disconnect_timeout must be > 0")
	}
	if c.NotificationBuffer <= 0 {
		return fmt.Errorf("notification_buffer must be > 0")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a log level name to a logrus level. An empty name keeps the
// logger silent for normal operation.
func ParseLogLevel(level string) (logrus.Level, error) {
	switch level {
	case "":
		return logrus.PanicLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.PanicLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		level = logrus.PanicLevel
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
