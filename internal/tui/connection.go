package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/fmremote/internal/capture"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/metrics"
	"github.com/muurk/fmremote/internal/session"
	"github.com/muurk/fmremote/internal/transport"
)

// connectTimeout bounds the WebSocket handshake started from the dashboard
const connectTimeout = 15 * time.Second

// Link is the device channel the dashboard drives. *transport.Client
// implements it.
type Link interface {
	Connect(ctx context.Context) error
	Send(text string) error
	Events() <-chan transport.Event
	Close() error
	SessionID() string
}

// DialFunc creates an unconnected Link for a device URL
type DialFunc func(url string) Link

// DialWebSocket creates a transport client for url
func DialWebSocket(url string) Link {
	return transport.NewClient(transport.Config{URL: url})
}

// connectionConfig is the session setup shared by every connection the
// dashboard opens
type connectionConfig struct {
	Display         session.DisplayDefaults
	NavigateGroup   string
	SetDefaultGroup string
	Metrics         *metrics.Metrics
	Recorder        *capture.Recorder
}

// connection binds one Link to the session that consumes its events and the
// panel the session renders into. A reconnect replaces the whole connection.
type connection struct {
	url     string
	link    Link
	session *session.Session
	panel   *panel
}

func newConnection(url string, dial DialFunc, cfg connectionConfig) (*connection, error) {
	if dial == nil {
		dial = DialWebSocket
	}
	link := dial(url)
	p := newPanel()

	s, err := session.New(session.Config{
		Conn:            link,
		URL:             url,
		Display:         cfg.Display,
		NavigateGroup:   cfg.NavigateGroup,
		SetDefaultGroup: cfg.SetDefaultGroup,
		Widget:          p,
		Gauge:           p,
		Stereo:          p,
		Header:          p,
		Metrics:         cfg.Metrics,
		Recorder:        cfg.Recorder,
	})
	if err != nil {
		return nil, err
	}

	return &connection{url: url, link: link, session: s, panel: p}, nil
}

// connectResultMsg reports the outcome of the handshake. The matching open
// or error event still arrives through the event channel.
type connectResultMsg struct {
	conn *connection
	err  error
}

// eventMsg carries one transport event to Update
type eventMsg struct {
	conn *connection
	ev   transport.Event
}

// eventsClosedMsg is sent once a connection's event channel is drained
type eventsClosedMsg struct {
	conn *connection
}

// connectCmd dials the device in the background
func connectCmd(c *connection) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		err := c.link.Connect(ctx)
		if err != nil {
			logging.Warn("Dashboard connect failed", zap.String("url", c.url), zap.Error(err))
		}
		return connectResultMsg{conn: c, err: err}
	}
}

// waitForEvent blocks for the next transport event. Update re-issues it after
// every eventMsg so events are handled one at a time on the Update goroutine.
func waitForEvent(c *connection) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-c.link.Events()
		if !ok {
			return eventsClosedMsg{conn: c}
		}
		return eventMsg{conn: c, ev: ev}
	}
}

// closeCmd closes a connection that is being replaced or abandoned
func closeCmd(c *connection) tea.Cmd {
	return func() tea.Msg {
		if err := c.link.Close(); err != nil {
			logging.Debug("Close failed", zap.String("url", c.url), zap.Error(err))
		}
		return nil
	}
}
