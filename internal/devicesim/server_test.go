package devicesim

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/fmremote/internal/protocol"
	"github.com/muurk/fmremote/internal/session"
	"github.com/muurk/fmremote/internal/transport"
)

const testTimeout = 5 * time.Second

// remote is a real client session connected to a simulator
type remote struct {
	t      *testing.T
	sim    *Server
	client *transport.Client
	sess   *session.Session
}

func newRemote(t *testing.T, cfg Config) *remote {
	t.Helper()

	if cfg.StatusInterval == 0 {
		cfg.StatusInterval = time.Hour
	}
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv := httptest.NewServer(sim.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	client := transport.NewClient(transport.Config{URL: url})
	sess, err := session.New(session.Config{Conn: client, URL: url})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return &remote{t: t, sim: sim, client: client, sess: sess}
}

// pump feeds transport events into the session on the test goroutine until
// cond holds
func (r *remote) pump(what string, cond func() bool) {
	r.t.Helper()
	deadline := time.After(testTimeout)
	for !cond() {
		select {
		case ev, ok := <-r.client.Events():
			if !ok {
				r.t.Fatalf("connection ended waiting for %s", what)
			}
			r.sess.HandleEvent(ev)
		case <-deadline:
			r.t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_InitPopulatesSession(t *testing.T) {
	r := newRemote(t, Config{Title: "SIM RADIO"})

	r.pump("init replies", func() bool {
		return r.sess.Presets().Len() == 3 && r.sess.Header() == "SIM RADIO"
	})

	presets := r.sess.Presets()
	def := presets.Selected(presets.SetDefaultGroup())
	if def == nil || def.Value != "90.1" {
		t.Errorf("default preset = %v, want 90.1", def)
	}
	if presets.Selected(presets.NavigateGroup()) != nil {
		t.Error("navigate group should start unselected")
	}
	if r.sess.Projector().State().ColorScheme != 2 {
		t.Errorf("color = %d, want 2", r.sess.Projector().State().ColorScheme)
	}
	waitFor(t, "client registration", func() bool { return r.sim.Clients() == 1 })
}

func TestServer_NavigateAndStatus(t *testing.T) {
	r := newRemote(t, Config{})
	r.pump("presets", func() bool { return r.sess.Presets().Len() == 3 })

	if err := r.sess.Presets().SelectNavigate(2); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "retune", func() bool { return r.sim.Frequency() == 101.1 })

	r.sim.Tick()
	r.pump("status", func() bool { return r.sess.Projector().State().Value == 101.1 })

	if got := r.sess.Projector().State().FormatValue(); got != "101.10" {
		t.Errorf("FormatValue() = %q, want 101.10", got)
	}
}

func TestServer_SeekUp(t *testing.T) {
	r := newRemote(t, Config{})
	r.pump("presets", func() bool { return r.sess.Presets().Len() == 3 })

	if err := r.sess.Send(protocol.SearchUpCommand()); err != nil {
		t.Fatal(err)
	}

	// the seek lands on whichever tick follows the command
	deadline := time.Now().Add(testTimeout)
	for r.sim.Frequency() != 94.7 {
		if time.Now().After(deadline) {
			t.Fatal("seek never completed")
		}
		r.sim.Tick()
		time.Sleep(5 * time.Millisecond)
	}
	r.pump("seek status", func() bool { return r.sess.Projector().State().Value == 94.7 })
}

func TestServer_AddPresetAndColor(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.yaml")
	r := newRemote(t, Config{StatePath: statePath})
	r.pump("presets", func() bool { return r.sess.Presets().Len() == 3 })

	if err := r.sess.Send(protocol.AddPresetCommand("94.7")); err != nil {
		t.Fatal(err)
	}
	r.pump("preset echo", func() bool { return r.sess.Presets().Len() == 4 })

	presets := r.sess.Presets()
	if def := presets.Selected(presets.SetDefaultGroup()); def == nil || def.Value != "94.7" {
		t.Errorf("echoed preset should become the default, got %v", def)
	}
	if presets.SelectedCount(presets.SetDefaultGroup()) != 1 {
		t.Error("more than one default selected")
	}

	if err := r.sess.Send(protocol.ColorCommand()); err != nil {
		t.Fatal(err)
	}
	r.pump("color", func() bool { return r.sess.Projector().State().ColorScheme == 3 })

	st, err := LoadState(statePath)
	if err != nil {
		t.Fatal(err)
	}
	if st.Default != 947 || st.Color != 3 || len(st.Presets) != 4 {
		t.Errorf("persisted state = %+v", st)
	}
}

func TestServer_BroadcastReachesAllClients(t *testing.T) {
	sim, err := New(Config{StatusInterval: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = conn.Close() }()
		conns = append(conns, conn)
	}
	waitFor(t, "clients", func() bool { return sim.Clients() == 2 })

	if err := conns[0].WriteMessage(websocket.TextMessage, []byte(`{"id":"color-request"}`)); err != nil {
		t.Fatal(err)
	}

	for i, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(testTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		if string(data) != protocol.BuildColor(3) {
			t.Errorf("client %d got %q", i, data)
		}
	}
}

func TestServer_IgnoresMalformedCommand(t *testing.T) {
	sim, err := New(Config{StatusInterval: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = conn.Close() }()

	for _, text := range []string{"not json", `{"value":"1"}`, `{"id":"reboot-request"}`, `{"id":"init"}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			t.Fatal(err)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(testTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("connection dropped after malformed commands: %v", err)
	}
	if string(data) != protocol.BuildColor(2) {
		t.Errorf("first reply = %q, want COLOR from init", data)
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	sim, err := New(Config{Host: "127.0.0.1", Port: 0, StatusInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Listen(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Serve(ctx) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+sim.Addr().String()+"/", nil)
	if err != nil {
		cancel()
		t.Fatal(err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(testTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		cancel()
		t.Fatalf("no periodic status: %v", err)
	}
	if _, ok := protocol.Decode(string(data)).(*protocol.StatusMessage); !ok {
		t.Errorf("periodic frame = %q, want STATUS", data)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("Serve() did not return after cancel")
	}
}
