package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/muurk/fmremote/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the device
	writeWait = 10 * time.Second

	// Maximum frame size accepted from the device
	maxMessageSize = 8192

	// Buffered events before the reader blocks on a slow consumer
	eventBuffer = 64
)

// ErrNotConnected is returned by Send before Connect succeeds or after Close
var ErrNotConnected = errors.New("not connected")

// EventKind identifies a channel event
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventClose
	EventError
)

// String returns the event name
func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one channel event delivered to the consumer in arrival order
type Event struct {
	Kind EventKind
	Text string // EventMessage only
	Err  error  // EventError only
}

// Config holds the client configuration
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
}

// Client is a WebSocket connection to one device. The reader goroutine turns
// frames into Events; everything else happens in the consumer.
type Client struct {
	url    string
	dialer websocket.Dialer

	mu        sync.Mutex // guards conn and serializes writes
	conn      *websocket.Conn
	sessionID string

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	started   bool
}

// NewClient creates a client for cfg.URL. Nothing is dialed until Connect.
func NewClient(cfg Config) *Client {
	timeout := cfg.HandshakeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		url: cfg.URL,
		dialer: websocket.Dialer{
			HandshakeTimeout: timeout,
		},
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// URL returns the device URL
func (c *Client) URL() string {
	return c.url
}

// SessionID returns the id assigned to the current connection, or "" before Connect
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Events returns the event channel. It is closed after the final EventClose.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connect dials the device. On success EventOpen is queued and the reader
// starts. On failure EventError and EventClose are queued, the channel is
// closed, and the error is returned. A Client connects at most once. Close
// aborts a dial in progress, and a Client closed before Connect never dials.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return &Error{Op: "dial", URL: c.url, Err: errors.New("client already used")}
	}
	c.started = true
	c.mu.Unlock()

	if c.closed() {
		return c.abandon()
	}

	logging.LogConnection(c.url, "dialing")

	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-dialCtx.Done():
		}
	}()

	conn, _, err := c.dialer.DialContext(dialCtx, c.url, nil)
	if err != nil {
		if c.closed() {
			return c.abandon()
		}
		werr := &Error{Op: "dial", URL: c.url, Err: err}
		logging.LogConnection(c.url, "dial_failed", zap.Error(err))
		c.emit(Event{Kind: EventError, Err: werr})
		c.emit(Event{Kind: EventClose})
		close(c.events)
		return werr
	}
	conn.SetReadLimit(maxMessageSize)

	// Close either sees conn here or has already closed done
	id := uuid.NewString()
	c.mu.Lock()
	if c.closed() {
		c.mu.Unlock()
		_ = conn.Close()
		return c.abandon()
	}
	c.conn = conn
	c.sessionID = id
	c.mu.Unlock()

	logging.LogConnection(c.url, "open", zap.String("session_id", id))

	c.emit(Event{Kind: EventOpen})
	go c.readLoop(conn)
	return nil
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// abandon ends a Connect that lost the race with Close
func (c *Client) abandon() error {
	logging.LogConnection(c.url, "dial_abandoned")
	c.emit(Event{Kind: EventClose})
	close(c.events)
	return &Error{Op: "dial", URL: c.url, Err: ErrNotConnected}
}

// Send writes one text frame
func (c *Client) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return &Error{Op: "write", URL: c.url, Err: ErrNotConnected}
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return &Error{Op: "write", URL: c.url, Err: err}
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return &Error{Op: "write", URL: c.url, Err: err}
	}

	logging.LogFrame("sent", text, zap.String("session_id", c.sessionID))
	return nil
}

// Close sends a close frame and tears the connection down. The reader then
// queues EventClose. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		if conn == nil {
			return
		}

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		if cerr := conn.Close(); cerr != nil {
			err = &Error{Op: "close", URL: c.url, Err: cerr}
		}
		logging.LogConnection(c.url, "closed_by_client")
	})
	return err
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.events)
	defer func() { _ = conn.Close() }()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			c.readFailed(conn, err)
			return
		}

		switch msgType {
		case websocket.TextMessage, websocket.BinaryMessage:
			text := string(data)
			logging.LogFrame("received", text)
			if !c.emit(Event{Kind: EventMessage, Text: text}) {
				return
			}
		}
	}
}

func (c *Client) readFailed(conn *websocket.Conn, err error) {
	select {
	case <-c.done:
		logging.Debug("Reader stopped after close", zap.String("url", c.url))
		c.emit(Event{Kind: EventClose})
		return
	default:
	}

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logging.LogConnection(c.url, "closed_by_device")
	} else {
		logging.LogConnection(c.url, "read_failed", zap.Error(err))
		c.emit(Event{Kind: EventError, Err: &Error{Op: "read", URL: c.url, Err: err}})
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	c.emit(Event{Kind: EventClose})
}

// emit queues ev. It gives up, returning false, once the client is closed and
// the consumer has stopped draining.
func (c *Client) emit(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		select {
		case c.events <- ev:
			return true
		default:
			return false
		}
	}
}
