package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// rootCmd starts the interactive shell
var rootCmd = &cobra.Command{
	Use:   "gyatt",
	Short: "Interactive Bluetooth Low Energy shell",
	Long: `Interactive Bluetooth Low Energy (BLE) shell driving a single peripheral connection:

- Scan for nearby devices
- Connect by address or by advertised name
- List GATT services and characteristics
- Read and write characteristic values as hex
- Toggle notifications, with a default characteristic for repeated operations

Type 'help' inside the shell for the command list.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", formatVersion(version), commit, date),
	Args:    cobra.NoArgs,
	RunE:    runShell,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Interrupted before the shell started
		if errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}

func init() {
	// Silence Cobra's "Error:" prefix - main() prints clean errors
	rootCmd.SilenceErrors = true

	addShellFlags(rootCmd)

	// Add -v as a short flag for --version
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
}

func addShellFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Config file (default $XDG_CONFIG_HOME/gyatt/config.yaml)")
	cmd.Flags().String("adapter", "", "HCI adapter to use, e.g. hci0 (Linux only)")
	cmd.Flags().Duration("scan-timeout", 0, "Default scan duration and name-fallback scan duration")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolP("verbose", "V", false, "Enable debug logging")
}
