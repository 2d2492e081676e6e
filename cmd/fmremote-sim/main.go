// Fmremote-sim is a simulated FM tuner speaking the tuner WebSocket protocol.
//
// It serves the device endpoint at "/", broadcasts STATUS once a second,
// answers init with the full state snapshot and acts on tune, seek, preset and
// color commands. Use it to develop against fmremote without hardware.
//
// Usage:
//
//	fmremote-sim serve [flags]
//
// See 'fmremote-sim serve --help' for available options.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fmremote/internal/devicesim"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/metrics"
	"github.com/muurk/fmremote/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fmremote-sim",
	Short: "Simulated network FM tuner",
	Long: `A simulated FM tuner for developing and testing fmremote.

The simulator speaks the same WebSocket protocol as the hardware: HEAD, STATUS,
PRESET and COLOR frames out, JSON commands in. Stations are a fixed set of
transmitters on the dial; seeking stops on the next one.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host        string
	port        int
	title       string
	band        string
	stateFile   string
	mdnsName    string
	metricsAddr string
	interval    time.Duration
	logLevel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated tuner",
	Long: `Start the simulated tuner and accept fmremote connections.

Tuned frequency, presets and color scheme are kept in memory unless
--state-file is given, in which case they survive restarts. With --mdns the
simulator advertises itself so 'fmremote scan' finds it.`,
	Example: `  # Simulator on port 8080
  fmremote-sim serve

  # Japanese band, advertised over mDNS
  fmremote-sim serve --band jp --mdns kitchen-sim

  # Persist settings and expose metrics
  fmremote-sim serve --state-file sim.yaml --metrics-addr :9121 --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8080, "Listen port")
	serveCmd.Flags().StringVar(&title, "title", "FM SIMULATOR", "Station title sent as HEAD (empty sends none)")
	serveCmd.Flags().StringVar(&band, "band", "wide", "Tuning band: us (87.5-108), jp (76-90) or wide (76-108)")
	serveCmd.Flags().StringVar(&stateFile, "state-file", "", "YAML file to persist tuner settings (in memory if not specified)")
	serveCmd.Flags().StringVar(&mdnsName, "mdns", "", "Advertise over mDNS with this instance name (disabled if not specified)")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (disabled if not specified)")
	serveCmd.Flags().DurationVar(&interval, "interval", devicesim.DefaultStatusInterval, "STATUS broadcast interval")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// parseBand maps a --band value to a tuning range
func parseBand(name string) (devicesim.Band, error) {
	switch strings.ToLower(name) {
	case "us", "eu":
		return devicesim.BandUS, nil
	case "jp":
		return devicesim.BandJP, nil
	case "wide", "":
		return devicesim.BandWide, nil
	default:
		return devicesim.Band{}, fmt.Errorf("unknown band %q (want us, jp or wide)", name)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeWithOutput(logLevel, []string{"stderr"}); err != nil {
		return err
	}
	defer logging.Sync()

	b, err := parseBand(band)
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var m *metrics.Metrics
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		go func() {
			if err := metrics.Serve(ctx, metricsAddr, reg); err != nil {
				logging.Error("Metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	srv, err := devicesim.New(devicesim.Config{
		Host:           host,
		Port:           port,
		Title:          title,
		Band:           b,
		StatusInterval: interval,
		StatePath:      stateFile,
		Metrics:        m,
	})
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	bound := port
	if tcp, ok := srv.Addr().(*net.TCPAddr); ok {
		bound = tcp.Port
	}
	fmt.Printf("Simulated tuner on ws://%s/ (%.1f MHz)\n", srv.Addr(), srv.Frequency())

	if mdnsName != "" {
		adv, err := devicesim.Advertise(mdnsName, bound, title)
		if err != nil {
			return err
		}
		defer adv.Shutdown()
		fmt.Printf("Advertised as %q\n", mdnsName)
	}

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Banner("fmremote-sim"))
	},
}
