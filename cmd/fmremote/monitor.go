package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fmremote/internal/capture"
	"github.com/muurk/fmremote/internal/display"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/metrics"
	"github.com/muurk/fmremote/internal/preset"
	"github.com/muurk/fmremote/internal/session"
	"github.com/muurk/fmremote/internal/transport"
	"github.com/muurk/fmremote/internal/ui"
)

// Monitor flags
var (
	metricsAddr     string
	monitorCapture  string
	monitorDuration time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [device]",
	Short: "Print live tuner status without the dashboard",
	Long: `Connect to a tuner and print one line per status update, plus the
station title, presets and color changes as they arrive.

Nothing is sent to the device other than the initial snapshot request. The
command ends when the device closes the connection, after --duration, or on
Ctrl+C.`,
	Example: `  # Watch a tuner
  fmremote monitor kitchen

  # Expose Prometheus metrics while watching
  fmremote monitor kitchen --metrics-addr :9120

  # Capture ten minutes of traffic for later analysis
  fmremote monitor 192.168.1.40 --capture-dir ./captures --duration 10m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (disabled if not specified)")
	monitorCmd.Flags().StringVar(&monitorCapture, "capture-dir", "", "Directory to write a frame capture (disabled if not specified)")
	monitorCmd.Flags().DurationVar(&monitorDuration, "duration", 0, "Stop after this long (0 runs until the device disconnects)")

	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if err := setupLogging(reg.Preferences, false); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()
	if monitorDuration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, monitorDuration)
		defer stop()
	}

	p := ui.NewPrinter(os.Stdout)

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	t, err := resolveDevice(ctx, reg, name, p)
	if err != nil {
		return err
	}

	params := []ui.Field{{Key: "Device", Value: t.URL}}

	var m *metrics.Metrics
	if metricsAddr != "" {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(promReg)
		go func() {
			if err := metrics.Serve(ctx, metricsAddr, promReg); err != nil {
				logging.Error("Metrics endpoint failed", zap.Error(err))
			}
		}()
		params = append(params, ui.Field{Key: "Metrics", Value: "http://" + metricsAddr + "/metrics"})
	}

	var rec *capture.Recorder
	if monitorCapture != "" {
		rec, err = capture.NewRecorder(monitorCapture, t.URL)
		if err != nil {
			return err
		}
		defer rec.Close()
		params = append(params, ui.Field{Key: "Capture", Value: rec.Path()})
	}

	p.PrintHeader("Live Monitor", "fmremote monitor", params...)

	client := transport.NewClient(transport.Config{URL: t.URL})
	view := newStatusLines(os.Stdout)
	nav, def := groupNames(reg.Preferences)

	sess, err := session.New(session.Config{
		Conn:            client,
		URL:             t.URL,
		Display:         displayDefaults(reg.Preferences),
		NavigateGroup:   nav,
		SetDefaultGroup: def,
		Widget:          view,
		Gauge:           view,
		Stereo:          view,
		Header:          view,
		Metrics:         m,
		Recorder:        rec,
		OnStateChange:   view.stateChanged,
	})
	if err != nil {
		return err
	}
	presets := sess.Presets()
	presets.OnChange = func() { view.presetsChanged(presets.Entries()) }

	if err := client.Connect(ctx); err != nil {
		// the failure events are still queued; let the session see them
		_ = sess.Run(ctx, client.Events())
		p.PrintFailure("Connection failed", err,
			"Check the address with 'fmremote scan'",
			"The tuner accepts WebSocket connections on port 80 at /",
		)
		return err
	}
	rec.SetSessionID(client.SessionID())
	recordSeen(reg, t.URL, t.Instance)
	defer client.Close()

	err = sess.Run(ctx, client.Events())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	p.Newline()

	if lerr := sess.LastError(); lerr != nil && sess.State() == session.Closed {
		p.PrintFailure("Connection lost", lerr)
		return nil
	}
	p.PrintSuccess("Monitor stopped",
		ui.Field{Key: "Status updates", Value: fmt.Sprint(view.statuses)},
		ui.Field{Key: "Presets", Value: fmt.Sprint(presets.Len())},
	)
	return err
}

// statusLines prints device state changes as plain lines. It implements the
// display and header interfaces the session drives.
type statusLines struct {
	out      io.Writer
	stereo   bool
	signal   int
	color    int
	printed  int
	statuses int
}

func newStatusLines(w io.Writer) *statusLines {
	return &statusLines{out: w, color: display.DefaultColorScheme}
}

// Render implements display.Widget. COLOR and STATUS both end in a render;
// a color change prints its own line.
func (s *statusLines) Render(st display.State) {
	if st.ColorScheme != s.color {
		s.color = st.ColorScheme
		s.line("color    scheme %d", st.ColorScheme)
		return
	}
	s.statuses++
	lamp := "mono  "
	if s.stereo {
		lamp = "stereo"
	}
	s.line("status   %s MHz  %s  %s %2d/15", st.FormatValue(), lamp, meter(s.signal), s.signal)
}

// DrawSignal implements display.Gauge
func (s *statusLines) DrawSignal(level, size int) {
	s.signal = level
}

// SetStereo implements display.StereoIndicator. Modes other than 0 and 1
// leave the lamp as it was.
func (s *statusLines) SetStereo(mode int) {
	switch mode {
	case 0:
		s.stereo = false
	case 1:
		s.stereo = true
	}
}

// SetHeader implements session.HeaderSink
func (s *statusLines) SetHeader(title string) {
	s.line("title    %s", title)
}

func (s *statusLines) stateChanged(st session.ConnectionState) {
	s.line("channel  %s", st)
}

// presetsChanged prints entries announced since the last call
func (s *statusLines) presetsChanged(entries []preset.Entry) {
	for _, e := range entries[s.printed:] {
		def := ""
		if e.IsDefault {
			def = "  (default)"
		}
		s.line("preset   %d: %s%s", e.Index, e.FrequencyText, def)
	}
	s.printed = len(entries)
}

func (s *statusLines) line(format string, args ...any) {
	fmt.Fprintf(s.out, "%s  %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// meter draws the signal level as a 15-cell bar
func meter(level int) string {
	if level < 0 {
		level = 0
	}
	if level > 15 {
		level = 15
	}
	return strings.Repeat("▮", level) + strings.Repeat("▯", 15-level)
}
