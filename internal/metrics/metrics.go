package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/muurk/fmremote/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "fmremote"

// Metrics holds the collectors for one client or simulator process.
// All methods are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// Client side
	framesReceived  *prometheus.CounterVec // inbound frames by tag
	unknownFrames   prometheus.Counter     // frames dropped as unrecognized
	commandsSent    *prometheus.CounterVec // outbound commands by id
	sendErrors      prometheus.Counter     // failed or refused sends
	connectionState *prometheus.GaugeVec   // 1 for the current state, 0 otherwise
	frequencyMHz    prometheus.Gauge       // last displayed value
	signalLevel     prometheus.Gauge       // last signal level
	stereo          prometheus.Gauge       // 1 = stereo, 0 = mono
	presets         prometheus.Gauge       // entries in the preset list

	// Simulator side
	clientsConnected prometheus.Gauge       // open simulator connections
	commandsReceived *prometheus.CounterVec // client commands by id
}

// States lists the connection state label values, in display order
var States = []string{"connecting", "open", "closed", "errored"}

// New registers all collectors with reg. Pass prometheus.DefaultRegisterer for
// the process-wide registry or a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		framesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Inbound device frames by tag",
		}, []string{"tag"}),
		unknownFrames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_unknown_total",
			Help:      "Inbound frames dropped because the tag is not recognized",
		}),
		commandsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_sent_total",
			Help:      "Outbound commands by id",
		}, []string{"id"}),
		sendErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Outbound commands that were refused or failed to write",
		}),
		connectionState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "Current connection state (1 for the active state)",
		}, []string{"state"}),
		frequencyMHz: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frequency_mhz",
			Help:      "Last frequency reported by the device",
		}),
		signalLevel: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signal_level",
			Help:      "Last signal level reported by the device",
		}),
		stereo: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stereo",
			Help:      "1 when the device reports a stereo signal",
		}),
		presets: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "presets",
			Help:      "Number of presets announced this session",
		}),
		clientsConnected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sim",
			Name:      "clients_connected",
			Help:      "Open client connections to the simulator",
		}),
		commandsReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sim",
			Name:      "commands_received_total",
			Help:      "Client commands received by the simulator, by id",
		}, []string{"id"}),
	}
}

// FrameReceived counts one inbound frame
func (m *Metrics) FrameReceived(tag string, known bool) {
	if m == nil {
		return
	}
	if !known {
		m.unknownFrames.Inc()
		return
	}
	m.framesReceived.WithLabelValues(tag).Inc()
}

// CommandSent counts one outbound command
func (m *Metrics) CommandSent(id string) {
	if m == nil {
		return
	}
	m.commandsSent.WithLabelValues(id).Inc()
}

// SendFailed counts one refused or failed send
func (m *Metrics) SendFailed() {
	if m == nil {
		return
	}
	m.sendErrors.Inc()
}

// SetConnectionState marks state as the active connection state
func (m *Metrics) SetConnectionState(state string) {
	if m == nil {
		return
	}
	for _, s := range States {
		v := 0.0
		if s == state {
			v = 1
		}
		m.connectionState.WithLabelValues(s).Set(v)
	}
}

// ObserveStatus records the last telemetry values
func (m *Metrics) ObserveStatus(frequency float64, stereo, signal int) {
	if m == nil {
		return
	}
	m.frequencyMHz.Set(frequency)
	m.stereo.Set(float64(stereo))
	m.signalLevel.Set(float64(signal))
}

// SetPresets records the preset list length
func (m *Metrics) SetPresets(n int) {
	if m == nil {
		return
	}
	m.presets.Set(float64(n))
}

// ClientConnected tracks a simulator client connection
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.clientsConnected.Inc()
}

// ClientDisconnected tracks a simulator client disconnection
func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.clientsConnected.Dec()
}

// CommandReceived counts one command received by the simulator
func (m *Metrics) CommandReceived(id string) {
	if m == nil {
		return
	}
	m.commandsReceived.WithLabelValues(id).Inc()
}

// Handler returns the /metrics handler for g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Metrics endpoint listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	}
}
