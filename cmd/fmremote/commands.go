package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/fmremote/internal/capture"
	"github.com/muurk/fmremote/internal/config"
	"github.com/muurk/fmremote/internal/discovery"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/tui"
	"github.com/muurk/fmremote/internal/ui"
)

// Command flags
var (
	scanTimeout int
	captureDir  string
)

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(devicesCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connectCmd opens the dashboard for one device
var connectCmd = &cobra.Command{
	Use:   "connect [device]",
	Short: "Open the remote control for a tuner",
	Long: `Open the interactive remote control for one tuner.

The device may be a host, host:port, an http(s) or ws(s) URL, or the nickname
or mDNS instance of a device in the config file. Without an argument the
configured default device is used, and failing that an mDNS scan that finds
exactly one tuner.`,
	Example: `  # Connect by address
  fmremote connect 192.168.1.40

  # Connect to a tuner on a non-standard port
  fmremote connect ws://radio.local:8080/

  # Connect by nickname
  fmremote connect kitchen

  # Keep a JSONL capture of the session
  fmremote connect kitchen --capture-dir ./captures`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&captureDir, "capture-dir", "", "Directory to write a frame capture (disabled if not specified)")
}

func runConnect(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if err := setupLogging(reg.Preferences, true); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	t, err := resolveDevice(ctx, reg, name, ui.NewPrinter(os.Stdout))
	if err != nil {
		return err
	}
	return runApp(ctx, reg, t)
}

// runDashboard is the root command: the dashboard for --device or the
// default device, else the discovery screen
func runDashboard(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if err := setupLogging(reg.Preferences, true); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	name := deviceTarget
	if name == "" {
		name = reg.Preferences.DefaultDevice
	}

	var t target
	if name != "" {
		if t, err = resolveTarget(reg, name); err != nil {
			return err
		}
	}
	return runApp(ctx, reg, t)
}

func runApp(ctx context.Context, reg *config.Registry, t target) error {
	prefs := reg.Preferences
	nav, def := groupNames(prefs)

	opts := tui.Options{
		URL:             t.URL,
		Instance:        t.Instance,
		Display:         displayDefaults(prefs),
		NavigateGroup:   nav,
		SetDefaultGroup: def,
		ScanTimeout:     prefs.DiscoverTimeoutDuration(),
		OnConnected: func(url, instance string) {
			recordSeen(reg, url, instance)
		},
	}

	if captureDir != "" && t.URL != "" {
		rec, err := capture.NewRecorder(captureDir, t.URL)
		if err != nil {
			return err
		}
		defer rec.Close()
		opts.Recorder = rec
		defer fmt.Printf("Capture written to %s\n", rec.Path())
	}

	if err := tui.Run(ctx, opts); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

// scanCmd discovers tuners on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for tuners on the network",
	Long: `Scan for tuners using mDNS/DNS-SD discovery.

Every tuner found is recorded in the config file so it can later be addressed
by its instance name.`,
	Example: `  # Scan with the configured timeout
  fmremote scan

  # Longer scan for busy networks
  fmremote scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if err := setupLogging(reg.Preferences, false); err != nil {
		return err
	}
	defer logging.Sync()

	timeout := reg.Preferences.DiscoverTimeoutDuration()
	if scanTimeout > 0 {
		timeout = time.Duration(scanTimeout) * time.Second
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("Tuner Scan", "fmremote scan",
		ui.Field{Key: "Service", Value: discovery.ServiceType},
		ui.Field{Key: "Timeout", Value: timeout.String()},
	)

	ctx, cancel := signalContext()
	defer cancel()

	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	devices, err := scanner.ScanForDevices(ctx)
	if err != nil {
		p.PrintFailure("Scan failed", err, "Check that multicast is allowed on this interface")
		return err
	}

	if len(devices) == 0 {
		p.PrintWarning("No tuners found",
			"Ensure the tuner is powered on and joined to this network",
			"mDNS does not cross VLANs or most VPNs",
			"Try a longer scan with --timeout 15",
			"Connect by address with 'fmremote connect <host>'",
		)
		return nil
	}

	table := ui.NewTable("INSTANCE", "TITLE", "ADDRESS", "URL")
	for _, d := range devices {
		url := d.WebSocketURL()
		table.AddRow(d.Instance, d.Title(), fmt.Sprintf("%s:%d", d.IP, d.Port), url)
		reg.UpdateDeviceLastSeen(url, d.Instance)
	}
	p.PrintSuccess(fmt.Sprintf("Found %d tuner(s)", len(devices)))
	p.PrintTable(table)
	p.Newline()

	if err := saveRegistry(reg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	p.PrintHint("Use 'fmremote connect <instance>' to open the remote control")
	return nil
}

// analyzeCmd summarizes a capture file
var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture.jsonl>",
	Short: "Summarize a frame capture",
	Long: `Summarize a JSONL capture written with --capture-dir: how many frames
of each tag the device sent and how many commands of each id were sent to it.`,
	Example: `  fmremote analyze captures/capture-20260101-120000.jsonl`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	summary, err := capture.Analyze(f)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("Capture Analysis", "fmremote analyze", ui.Field{Key: "File", Value: args[0]})

	details := []ui.Field{
		{Key: "Records", Value: strconv.Itoa(summary.Records)},
		{Key: "Sessions", Value: strconv.Itoa(summary.Sessions)},
		{Key: "Duration", Value: summary.Duration().Round(time.Millisecond).String()},
	}
	if summary.Malformed > 0 {
		details = append(details, ui.Field{Key: "Malformed", Value: strconv.Itoa(summary.Malformed)})
	}
	if summary.Unknown > 0 {
		details = append(details, ui.Field{Key: "Unknown tags", Value: strconv.Itoa(summary.Unknown)})
	}
	p.PrintSuccess("Capture summary", details...)

	if len(summary.Inbound) > 0 {
		t := ui.NewTable("INBOUND TAG", "FRAMES")
		for _, c := range summary.Inbound {
			t.AddRow(c.Label, strconv.Itoa(c.N))
		}
		p.PrintTable(t)
		p.Newline()
	}
	if len(summary.Outbound) > 0 {
		t := ui.NewTable("OUTBOUND COMMAND", "SENT")
		for _, c := range summary.Outbound {
			t.AddRow(c.Label, strconv.Itoa(c.N))
		}
		p.PrintTable(t)
	}
	return nil
}

// devicesCmd lists and names known tuners
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List known tuners",
	Long: `List the tuners recorded in the config file by scan and connect.

Subcommands give a tuner a nickname or make it the default for the dashboard.`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

var renameCmd = &cobra.Command{
	Use:   "rename <device> <nickname>",
	Short: "Give a tuner a nickname",
	Example: `  fmremote devices rename ws://192.168.1.40/ kitchen
  fmremote devices rename esp32-radio kitchen`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		t, err := resolveTarget(reg, args[0])
		if err != nil {
			return err
		}
		reg.SetDeviceNickname(t.URL, args[1])
		if err := saveRegistry(reg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("%s is now %q\n", t.URL, args[1])
		return nil
	},
}

var setDefaultCmd = &cobra.Command{
	Use:   "default <device>",
	Short: "Make a tuner the dashboard default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		t, err := resolveTarget(reg, args[0])
		if err != nil {
			return err
		}
		reg.EnsureDevice(t.URL)
		reg.Preferences.DefaultDevice = t.URL
		if err := saveRegistry(reg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Default device set to %s\n", t.URL)
		return nil
	},
}

func init() {
	devicesCmd.AddCommand(renameCmd)
	devicesCmd.AddCommand(setDefaultCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	if len(reg.Devices) == 0 {
		p.PrintWarning("No known tuners", "Run 'fmremote scan' or connect to one by address")
		return nil
	}

	urls := make([]string, 0, len(reg.Devices))
	for url := range reg.Devices {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	t := ui.NewTable("URL", "NICKNAME", "INSTANCE", "LAST SEEN", "")
	for _, url := range urls {
		d := reg.Devices[url]
		seen := "never"
		if !d.LastSeen.IsZero() {
			seen = d.LastSeen.Local().Format("2006-01-02 15:04")
		}
		mark := ""
		if url == reg.Preferences.DefaultDevice {
			mark = "default"
		}
		t.AddRow(url, d.Nickname, d.Instance, seen, mark)
	}
	p.PrintTable(t)
	return nil
}
