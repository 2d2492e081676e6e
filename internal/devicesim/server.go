package devicesim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/metrics"
	"github.com/muurk/fmremote/internal/protocol"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to a client
	writeWait = 10 * time.Second

	// Maximum command size accepted from a client
	maxMessageSize = 1024

	// DefaultStatusInterval matches the device's once-a-second STATUS broadcast
	DefaultStatusInterval = time.Second
)

// Config holds the simulator configuration
type Config struct {
	Host           string
	Port           int
	Title          string // sent as HEAD on init when non-empty
	Band           Band
	Stations       []Station
	StatusInterval time.Duration
	StatePath      string // persisted settings; empty keeps them in memory
	Metrics        *metrics.Metrics
}

// DefaultStations is a small simulated dial
func DefaultStations() []Station {
	return []Station{
		{Frequency: 801, Level: 9, Stereo: false},
		{Frequency: 875, Level: 12, Stereo: true},
		{Frequency: 901, Level: 14, Stereo: true},
		{Frequency: 947, Level: 6, Stereo: false},
		{Frequency: 1011, Level: 11, Stereo: true},
		{Frequency: 1054, Level: 8, Stereo: true},
	}
}

// Server is a simulated tuner device speaking the device WebSocket protocol
type Server struct {
	config   Config
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics

	mu      sync.Mutex // guards tuner and clients
	tuner   *Tuner
	clients map[*client]struct{}

	listener net.Listener
	http     *http.Server
	wg       sync.WaitGroup
}

type client struct {
	conn       *websocket.Conn
	remoteAddr string
	writeMu    sync.Mutex
}

func (c *client) send(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// New creates a simulator, loading persisted settings when configured
func New(cfg Config) (*Server, error) {
	if cfg.Band == (Band{}) {
		cfg.Band = BandWide
	}
	if cfg.Stations == nil {
		cfg.Stations = DefaultStations()
	}
	if cfg.StatusInterval == 0 {
		cfg.StatusInterval = DefaultStatusInterval
	}

	st := DefaultState()
	if cfg.StatePath != "" {
		loaded, err := LoadState(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		st = loaded
	}

	return &Server{
		config:  cfg,
		metrics: cfg.Metrics,
		tuner:   NewTuner(cfg.Band, cfg.Stations, st, cfg.Title),
		clients: make(map[*client]struct{}),
	}, nil
}

// Handler returns the WebSocket endpoint. The device serves it at "/".
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveWS)
}

// Listen binds the configured address. Addr is valid afterwards.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the HTTP server and the status broadcaster until ctx is done
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logging.Info("Simulator listening",
		zap.String("addr", s.listener.Addr().String()),
		zap.Float64("frequency", s.Frequency()),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(s.listener)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop(ctx)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("simulator server failed: %w", err)
	}
}

func (s *Server) shutdown() error {
	logging.Info("Shutting down simulator...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)

	// hijacked WebSocket connections are not closed by Shutdown
	s.mu.Lock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	logging.Sync()
	return err
}

// Frequency returns the tuned frequency in MHz
func (s *Server) Frequency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tuner.Frequency()
}

// State returns the persisted settings
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tuner.State()
}

// Clients returns the number of connected clients
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &client{conn: conn, remoteAddr: r.RemoteAddr}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.ClientConnected()
	logging.LogConnection(c.remoteAddr, "client_connected")

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		_ = conn.Close()
		s.metrics.ClientDisconnected()
		logging.LogConnection(c.remoteAddr, "client_disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("Client read ended",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		s.handleCommand(c, string(data))
	}
}

func (s *Server) handleCommand(c *client, text string) {
	logging.LogFrame("received", text, zap.String("remote_addr", c.remoteAddr))

	cmd, err := protocol.DecodeCommand(text)
	if err != nil {
		logging.Warn("Ignoring malformed command",
			zap.String("remote_addr", c.remoteAddr),
			zap.Error(err),
		)
		return
	}
	s.metrics.CommandReceived(cmd.ID)

	s.mu.Lock()
	reply, err := s.tuner.Handle(cmd)
	st := s.tuner.State()
	s.mu.Unlock()

	if err != nil {
		logging.Warn("Command rejected",
			zap.String("remote_addr", c.remoteAddr),
			zap.String("command", cmd.String()),
			zap.Error(err),
		)
	}

	for _, frame := range reply.Direct {
		if err := c.send(frame); err != nil {
			logging.Warn("Failed to reply", zap.String("remote_addr", c.remoteAddr), zap.Error(err))
			return
		}
	}
	for _, frame := range reply.Broadcast {
		s.broadcast(frame)
	}

	if reply.Changed && s.config.StatePath != "" {
		if err := SaveState(s.config.StatePath, st); err != nil {
			logging.Error("Failed to persist simulator state", zap.Error(err))
		}
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances a pending seek and broadcasts STATUS to every client, as the
// device does once a second
func (s *Server) Tick() {
	s.mu.Lock()
	s.tuner.Tick()
	status := s.tuner.Status()
	s.mu.Unlock()

	s.broadcast(status)
}

func (s *Server) broadcast(frame string) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(frame); err != nil {
			logging.Debug("Broadcast failed",
				zap.String("remote_addr", c.remoteAddr),
				zap.Error(err),
			)
		}
	}
}
