package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/fmremote/internal/capture"
	"github.com/muurk/fmremote/internal/display"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/metrics"
	"github.com/muurk/fmremote/internal/preset"
	"github.com/muurk/fmremote/internal/protocol"
	"github.com/muurk/fmremote/internal/transport"
	"go.uber.org/zap"
)

// ErrNotOpen is returned by Send while the channel is not open
var ErrNotOpen = errors.New("channel is not open")

// Conn is the write side of the device channel
type Conn interface {
	Send(text string) error
}

// DisplayDefaults is the one-time display setup applied when a session starts
type DisplayDefaults struct {
	ColorScheme      int
	DecimalPointType int
	DecimalPlaces    int
	DigitCount       int
}

// DefaultDisplay returns the layout the device's own page uses
func DefaultDisplay() DisplayDefaults {
	return DisplayDefaults{
		ColorScheme:      display.DefaultColorScheme,
		DecimalPointType: display.DefaultDecimalPointType,
		DecimalPlaces:    display.DefaultDecimalPlaces,
		DigitCount:       display.DefaultDigitCount,
	}
}

// Config holds everything a Session is built from. Only Conn is required.
type Config struct {
	Conn    Conn
	URL     string
	Display DisplayDefaults

	// Device-assigned group names; empty uses the names seen on the wire
	NavigateGroup   string
	SetDefaultGroup string

	Widget   display.Widget
	Gauge    display.Gauge
	Stereo   display.StereoIndicator
	Header   HeaderSink
	Metrics  *metrics.Metrics
	Recorder *capture.Recorder

	// OnStateChange is called after every connection state transition
	OnStateChange func(ConnectionState)
}

// Session is the client side of one device connection. It owns the display
// projector and the preset list and mutates them only from the event
// callbacks, which must be called from a single goroutine.
type Session struct {
	conn     Conn
	url      string
	state    ConnectionState
	lastErr  error
	header   string
	metrics  *metrics.Metrics
	recorder *capture.Recorder

	projector  *display.Projector
	presets    *preset.Manager
	dispatcher *Dispatcher

	externalHeader HeaderSink
	onStateChange  func(ConnectionState)
}

// New creates a session in the Connecting state and initializes the display
func New(cfg Config) (*Session, error) {
	if cfg.Conn == nil {
		return nil, fmt.Errorf("session requires a connection")
	}
	if cfg.Display == (DisplayDefaults{}) {
		cfg.Display = DefaultDisplay()
	}

	s := &Session{
		conn:           cfg.Conn,
		url:            cfg.URL,
		state:          Connecting,
		metrics:        cfg.Metrics,
		recorder:       cfg.Recorder,
		externalHeader: cfg.Header,
		onStateChange:  cfg.OnStateChange,
	}

	s.projector = display.NewProjector(
		display.WithWidget(cfg.Widget),
		display.WithGauge(cfg.Gauge),
		display.WithStereoIndicator(cfg.Stereo),
	)
	if err := s.projector.Initialize(cfg.Display.ColorScheme, cfg.Display.DecimalPointType,
		cfg.Display.DecimalPlaces, cfg.Display.DigitCount); err != nil {
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}

	var opts []preset.Option
	if cfg.NavigateGroup != "" || cfg.SetDefaultGroup != "" {
		nav, def := cfg.NavigateGroup, cfg.SetDefaultGroup
		if nav == "" {
			nav = preset.DefaultNavigateGroup
		}
		if def == "" {
			def = preset.DefaultSetDefaultGroup
		}
		opts = append(opts, preset.WithGroupNames(nav, def))
	}
	s.presets = preset.NewManager(s, opts...)

	s.dispatcher = NewDispatcher(s.projector, s.presets, HeaderFunc(s.setHeader), cfg.Metrics)
	s.metrics.SetConnectionState(s.state.String())
	return s, nil
}

// State returns the connection state
func (s *Session) State() ConnectionState {
	return s.state
}

// LastError returns the error reported by the last OnError, if any
func (s *Session) LastError() error {
	return s.lastErr
}

// Header returns the last HEAD title
func (s *Session) Header() string {
	return s.header
}

// Projector returns the display projector
func (s *Session) Projector() *display.Projector {
	return s.projector
}

// Presets returns the preset list manager
func (s *Session) Presets() *preset.Manager {
	return s.presets
}

// OnOpen handles the channel opening: the session becomes Open and requests
// a full state snapshot.
func (s *Session) OnOpen() {
	s.setState(Open)
	logging.LogConnection(s.url, "session_open")

	if err := s.Send(protocol.InitCommand()); err != nil {
		logging.Error("Failed to send init", zap.String("url", s.url), zap.Error(err))
	}
}

// OnMessage decodes and dispatches one inbound frame
func (s *Session) OnMessage(text string) {
	msg := protocol.Decode(text)
	s.recorder.Inbound(msg.Tag(), text)

	logging.Debug("Decoded message", zap.String("message", msg.String()))
	s.dispatcher.Dispatch(msg)
}

// OnClose handles the channel closing. There is no reconnect.
func (s *Session) OnClose() {
	s.setState(Closed)
	logging.LogConnection(s.url, "session_closed")
}

// OnError handles a channel error
func (s *Session) OnError(err error) {
	s.lastErr = err
	s.setState(Errored)
	logging.Error("Channel error", zap.String("url", s.url), zap.Error(err))
}

// Send encodes cmd and writes it to the channel. Commands are never queued:
// sending while not Open returns ErrNotOpen.
func (s *Session) Send(cmd protocol.OutboundCommand) error {
	if s.state != Open {
		s.metrics.SendFailed()
		return fmt.Errorf("send %s: %w", cmd.ID, ErrNotOpen)
	}

	text, err := protocol.Encode(cmd)
	if err != nil {
		s.metrics.SendFailed()
		return err
	}

	if err := s.conn.Send(text); err != nil {
		s.metrics.SendFailed()
		return fmt.Errorf("send %s: %w", cmd.ID, err)
	}

	s.recorder.Outbound(cmd.ID, text)
	s.metrics.CommandSent(cmd.ID)
	logging.Debug("Command sent", zap.String("command", cmd.String()))
	return nil
}

// HandleEvent feeds one transport event to the matching callback
func (s *Session) HandleEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventOpen:
		s.OnOpen()
	case transport.EventMessage:
		s.OnMessage(ev.Text)
	case transport.EventError:
		s.OnError(ev.Err)
	case transport.EventClose:
		s.OnClose()
	}
}

// Run processes events one at a time until the channel is closed or ctx is
// done. It returns ctx.Err() on cancellation and nil otherwise.
func (s *Session) Run(ctx context.Context, events <-chan transport.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.HandleEvent(ev)
		}
	}
}

func (s *Session) setState(state ConnectionState) {
	if s.state == state {
		return
	}
	logging.Debug("Connection state change",
		zap.String("from", s.state.String()),
		zap.String("to", state.String()),
	)
	s.state = state
	s.metrics.SetConnectionState(state.String())
	if s.onStateChange != nil {
		s.onStateChange(state)
	}
}

func (s *Session) setHeader(title string) {
	s.header = title
	if s.externalHeader != nil {
		s.externalHeader.SetHeader(title)
	}
}
