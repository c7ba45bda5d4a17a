package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/gyatt/pkg/config"
)

// configureLogger creates a logger whose level comes from --log-level, then
// --verbose, then the config file. With none of them set the logger stays
// silent for normal operation. An invalid level is an error.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	levelName := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		levelName = "debug"
	}
	if cmd.Flags().Changed("log-level") {
		levelName, _ = cmd.Flags().GetString("log-level")
	}

	if _, err := config.ParseLogLevel(levelName); err != nil {
		return nil, err
	}
	cfg.LogLevel = levelName

	return cfg.NewLogger(), nil
}
