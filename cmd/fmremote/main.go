// Fmremote is a remote control for network FM tuners.
//
// It talks to a tuner's WebSocket endpoint, shows the tuned frequency,
// signal gauge, stereo lamp and preset list, and sends tune, seek, preset and
// color commands. Tuners are found over mDNS or addressed directly.
//
// Usage:
//
//	fmremote [command] [flags]
//
// Running without arguments launches the interactive dashboard.
// See 'fmremote --help' for available commands.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fmremote/internal/config"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/session"
	"github.com/muurk/fmremote/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath   string
	logLevel     string
	logFile      string
	deviceTarget string
)

var rootCmd = &cobra.Command{
	Use:   "fmremote",
	Short: "Remote control for network FM tuners",
	Long: `A terminal remote control for FM tuners that expose the tuner
WebSocket protocol.

Shows the tuned frequency on a seven-segment display together with the signal
gauge, stereo lamp and the device's presets, and lets you tune, seek, store
presets and change the display color.

If no command is specified, the interactive dashboard launches. Without
--device it starts on the discovery screen, or connects to the configured
default device.`,
	Version: version.Version,
	RunE:    runDashboard,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file for the dashboard (default <config dir>/fmremote.log when logging is enabled)")
	rootCmd.Flags().StringVar(&deviceTarget, "device", "", "Device address, URL, nickname or mDNS instance (skips discovery)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Banner("fmremote"))
	},
}

// loadRegistry loads the config file named by --config, or the default one
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadRegistry()
}

// saveRegistry writes reg back to where loadRegistry read it from
func saveRegistry(reg *config.Registry) error {
	if configPath != "" {
		return reg.SaveFile(configPath)
	}
	return reg.Save()
}

// setupLogging starts the logger. Command output owns stdout, so logs go to
// stderr, or to a file for the full-screen dashboard.
func setupLogging(prefs *config.Preferences, dashboard bool) error {
	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LogLevelEnvVar)
	}
	if level == "" {
		level = prefs.LogLevel
	}
	if level == "" {
		return logging.InitializeWithOutput("", nil)
	}

	if !dashboard {
		return logging.InitializeWithOutput(level, []string{"stderr"})
	}

	path := logFile
	if path == "" {
		path = prefs.LogFile
	}
	if path == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(dir, "fmremote.log")
	}
	return logging.InitializeWithOutput(level, []string{path})
}

// displayDefaults converts the configured display preferences
func displayDefaults(prefs *config.Preferences) session.DisplayDefaults {
	d := prefs.Display
	if d == nil {
		return session.DefaultDisplay()
	}
	return session.DisplayDefaults{
		ColorScheme:      d.ColorScheme,
		DecimalPointType: d.DecimalPointType,
		DecimalPlaces:    d.DecimalPlaces,
		DigitCount:       d.DigitCount,
	}
}

// groupNames returns the configured preset group names
func groupNames(prefs *config.Preferences) (navigate, setDefault string) {
	if prefs.Groups == nil {
		return "", ""
	}
	return prefs.Groups.Navigate, prefs.Groups.SetDefault
}

// recordSeen stores a successful connection or discovery in the registry
func recordSeen(reg *config.Registry, url, instance string) {
	reg.UpdateDeviceLastSeen(url, instance)
	if err := saveRegistry(reg); err != nil {
		logging.Warn("Failed to save config", zap.String("url", url), zap.Error(err))
	}
}
