package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/fmremote/internal/discovery"
	"github.com/muurk/fmremote/internal/protocol"
	"github.com/muurk/fmremote/internal/session"
	"github.com/muurk/fmremote/internal/transport"
)

type fakeLink struct {
	mu      sync.Mutex
	sent    []string
	events  chan transport.Event
	dialed  int
	closed  bool
	sendErr error
}

func newFakeLink() *fakeLink {
	return &fakeLink{events: make(chan transport.Event, 16)}
}

func (l *fakeLink) Connect(ctx context.Context) error {
	l.mu.Lock()
	l.dialed++
	l.mu.Unlock()
	l.events <- transport.Event{Kind: transport.EventOpen}
	return nil
}

func (l *fakeLink) Send(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sendErr != nil {
		return l.sendErr
	}
	l.sent = append(l.sent, text)
	return nil
}

func (l *fakeLink) failSends(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendErr = err
}

func (l *fakeLink) Events() <-chan transport.Event { return l.events }

func (l *fakeLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.events)
	}
	return nil
}

func (l *fakeLink) SessionID() string { return "test-session" }

func (l *fakeLink) Sent() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.sent...)
}

func mustEncode(t *testing.T, cmd protocol.OutboundCommand) string {
	t.Helper()
	text, err := protocol.Encode(cmd)
	if err != nil {
		t.Fatalf("Encode(%v) error = %v", cmd, err)
	}
	return text
}

// testDashboard returns a dashboard whose links are fakes, and the links in
// the order they were dialed
func testDashboard(t *testing.T) (DashboardModel, *[]*fakeLink, *[]string) {
	t.Helper()
	var links []*fakeLink
	var connected []string

	m := NewDashboardModel("ws://radio.test/", "kitchen", Options{
		Dial: func(url string) Link {
			l := newFakeLink()
			links = append(links, l)
			return l
		},
		OnConnected: func(url, instance string) {
			connected = append(connected, url+" "+instance)
		},
	})
	if m.conn == nil {
		t.Fatalf("dashboard has no connection: %v", m.Err)
	}
	return m, &links, &connected
}

func update(t *testing.T, m DashboardModel, msg tea.Msg) DashboardModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(DashboardModel)
}

func deliver(t *testing.T, m DashboardModel, evs ...transport.Event) DashboardModel {
	t.Helper()
	for _, ev := range evs {
		m = update(t, m, eventMsg{conn: m.conn, ev: ev})
	}
	return m
}

func frame(text string) transport.Event {
	return transport.Event{Kind: transport.EventMessage, Text: text}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// openWithPresets brings the dashboard to an open session with a title,
// three presets (90.1 default), a status and a color
func openWithPresets(t *testing.T, m DashboardModel) DashboardModel {
	t.Helper()
	head, _ := protocol.BuildHead("SIM RADIO")
	return deliver(t, m,
		transport.Event{Kind: transport.EventOpen},
		frame(head),
		frame(protocol.BuildScaledPreset(875, false)),
		frame(protocol.BuildScaledPreset(901, true)),
		frame(protocol.BuildScaledPreset(1011, false)),
		frame(protocol.BuildStatus(90.1, true, 11)),
		frame(protocol.BuildColor(3)),
	)
}

func TestDashboard_OpenSendsInit(t *testing.T) {
	m, links, connected := testDashboard(t)
	if !m.Connecting {
		t.Error("new dashboard should be connecting")
	}

	m = deliver(t, m, transport.Event{Kind: transport.EventOpen})

	if m.Connecting {
		t.Error("still connecting after open")
	}
	if got := m.Session().State(); got != session.Open {
		t.Errorf("session state = %v, want open", got)
	}
	sent := (*links)[0].Sent()
	if len(sent) != 1 || sent[0] != mustEncode(t, protocol.InitCommand()) {
		t.Errorf("sent = %q, want init", sent)
	}
	if len(*connected) != 1 || (*connected)[0] != "ws://radio.test/ kitchen" {
		t.Errorf("OnConnected calls = %q", *connected)
	}
}

func TestDashboard_RendersDeviceState(t *testing.T) {
	m, _, _ := testDashboard(t)
	m = openWithPresets(t, m)

	p := m.conn.panel
	if p.header != "SIM RADIO" {
		t.Errorf("header = %q", p.header)
	}
	if !p.stereo || p.signal != 11 {
		t.Errorf("stereo = %v signal = %d, want true 11", p.stereo, p.signal)
	}
	if p.state.ColorScheme != 3 {
		t.Errorf("color scheme = %d, want 3", p.state.ColorScheme)
	}
	if got := p.state.FormatValue(); got != "90.10" {
		t.Errorf("value = %q, want 90.10", got)
	}

	m.Width, m.Height = 100, 40
	view := m.View()
	for _, want := range []string{"SIM RADIO", "87.5", "90.1", "101.1", "STEREO", "★"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboard_PresetKeys(t *testing.T) {
	m, links, _ := testDashboard(t)
	m = openWithPresets(t, m)
	link := (*links)[0]

	// cursor stays inside the list
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.Cursor)
	}
	for i := 0; i < 5; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(t, m, keyRunes("d"))

	sent := link.Sent()
	want := []string{
		mustEncode(t, protocol.InitCommand()),
		mustEncode(t, protocol.NavigateCommand("101.1")),
		mustEncode(t, protocol.SetDefaultCommand("90.1")),
	}
	if strings.Join(sent, "\n") != strings.Join(want, "\n") {
		t.Errorf("sent = %q, want %q", sent, want)
	}

	presets := m.Session().Presets()
	if c := presets.Selected(presets.NavigateGroup()); c == nil || c.EntryIndex != 2 {
		t.Errorf("navigate selection = %v, want entry 2", c)
	}
	if m.Status != "Default set to 90.1" {
		t.Errorf("status = %q", m.Status)
	}
}

func TestDashboard_PresetSendFailure(t *testing.T) {
	m, links, _ := testDashboard(t)
	m = openWithPresets(t, m)
	link := (*links)[0]
	link.failSends(errors.New("broken pipe"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.HasPrefix(m.Status, "Not sent: ") || !strings.Contains(m.Status, "broken pipe") {
		t.Errorf("status after failed tune = %q, want a not-sent message", m.Status)
	}

	m = update(t, m, keyRunes("d"))
	if !strings.HasPrefix(m.Status, "Not sent: ") {
		t.Errorf("status after failed set-default = %q, want a not-sent message", m.Status)
	}

	link.failSends(nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Status != "Tuning to 87.5" {
		t.Errorf("status after recovered send = %q, want %q", m.Status, "Tuning to 87.5")
	}
}

func TestDashboard_CommandKeys(t *testing.T) {
	m, links, _ := testDashboard(t)
	m = openWithPresets(t, m)

	tests := []struct {
		key  tea.KeyMsg
		want protocol.OutboundCommand
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, protocol.SearchUpCommand()},
		{keyRunes("]"), protocol.SearchUpCommand()},
		{tea.KeyMsg{Type: tea.KeyLeft}, protocol.SearchDownCommand()},
		{keyRunes("["), protocol.SearchDownCommand()},
		{keyRunes("a"), protocol.AddPresetCommand("90.1")},
		{keyRunes("c"), protocol.ColorCommand()},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			before := len((*links)[0].Sent())
			m = update(t, m, tt.key)
			sent := (*links)[0].Sent()
			if len(sent) != before+1 {
				t.Fatalf("sent %d commands, want 1", len(sent)-before)
			}
			if got, want := sent[before], mustEncode(t, tt.want); got != want {
				t.Errorf("sent %q, want %q", got, want)
			}
		})
	}
}

func TestDashboard_KeysBeforeOpen(t *testing.T) {
	m, links, _ := testDashboard(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if len((*links)[0].Sent()) != 0 {
		t.Error("command sent before open")
	}
	if !strings.Contains(m.Status, session.ErrNotOpen.Error()) {
		t.Errorf("status = %q, want not open", m.Status)
	}
}

func TestDashboard_CloseAndReconnect(t *testing.T) {
	m, links, _ := testDashboard(t)
	m = openWithPresets(t, m)

	// no reconnect while open
	m = update(t, m, keyRunes("r"))
	if len(*links) != 1 {
		t.Fatalf("dialed %d links while open", len(*links))
	}

	readErr := errors.New("connection reset")
	m = deliver(t, m,
		transport.Event{Kind: transport.EventError, Err: readErr},
		transport.Event{Kind: transport.EventClose},
	)
	if got := m.Session().State(); got != session.Closed {
		t.Errorf("state = %v, want closed", got)
	}
	if !errors.Is(m.Err, readErr) {
		t.Errorf("Err = %v, want %v", m.Err, readErr)
	}

	old := m.conn
	next, cmd := m.Update(keyRunes("r"))
	m = next.(DashboardModel)
	if cmd == nil {
		t.Fatal("reconnect returned no command")
	}
	if len(*links) != 2 || m.conn == old {
		t.Fatal("reconnect did not create a new connection")
	}
	if m.Err != nil || !m.Connecting {
		t.Errorf("after reconnect Err = %v connecting = %v", m.Err, m.Connecting)
	}
	if m.Session().Presets().Len() != 0 {
		t.Error("new session inherited presets")
	}

	// events from the replaced connection are ignored
	stale := update(t, m, eventMsg{conn: old, ev: transport.Event{Kind: transport.EventOpen}})
	if stale.Session().State() != session.Connecting {
		t.Error("stale event reached the new session")
	}
}

func TestConnectCmd_WaitForEvent(t *testing.T) {
	m, links, _ := testDashboard(t)

	msg := connectCmd(m.conn)()
	res, ok := msg.(connectResultMsg)
	if !ok || res.err != nil {
		t.Fatalf("connectCmd() = %#v", msg)
	}
	if (*links)[0].dialed != 1 {
		t.Errorf("dialed = %d, want 1", (*links)[0].dialed)
	}

	ev := waitForEvent(m.conn)()
	em, ok := ev.(eventMsg)
	if !ok || em.ev.Kind != transport.EventOpen {
		t.Fatalf("waitForEvent() = %#v, want open", ev)
	}

	_ = (*links)[0].Close()
	if _, ok := waitForEvent(m.conn)().(eventsClosedMsg); !ok {
		t.Error("waitForEvent after close should report the channel closed")
	}
}

func TestDashboard_BackAndQuit(t *testing.T) {
	m, _, _ := testDashboard(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackRequested {
		t.Error("esc honored while back is disabled")
	}

	m.Keys.Back.SetEnabled(true)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.IsBackRequested() {
		t.Error("esc not honored when back is enabled")
	}

	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestApp_DiscoveryToDashboard(t *testing.T) {
	dev := &discovery.Device{Instance: "kitchen", IP: "10.0.0.5", Port: 80}
	var dialed []string

	app := NewAppModel(Options{
		Scan: func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error) {
			return []*discovery.Device{dev}, nil
		},
		Dial: func(url string) Link {
			dialed = append(dialed, url)
			return newFakeLink()
		},
	})
	if app.CurrentScreen != ScreenDiscovery {
		t.Fatalf("screen = %s, want discovery", app.CurrentScreen)
	}

	step := func(msg tea.Msg) {
		next, _ := app.Update(msg)
		app = next.(AppModel)
	}

	step(tea.WindowSizeMsg{Width: 100, Height: 40})
	step(scanCompleteMsg{devices: []*discovery.Device{dev}})
	if app.DiscoveryModel.Scanning {
		t.Fatal("still scanning after results")
	}
	step(tea.KeyMsg{Type: tea.KeyEnter})

	if app.CurrentScreen != ScreenDashboard {
		t.Fatalf("screen = %s, want dashboard", app.CurrentScreen)
	}
	if len(dialed) != 1 || dialed[0] != "ws://10.0.0.5:80/" {
		t.Errorf("dialed = %q", dialed)
	}
	if app.DashboardModel.Instance != "kitchen" || app.DashboardModel.Width != 100 {
		t.Errorf("dashboard = %q width %d", app.DashboardModel.Instance, app.DashboardModel.Width)
	}

	step(tea.KeyMsg{Type: tea.KeyEsc})
	if app.CurrentScreen != ScreenDiscovery {
		t.Errorf("screen = %s after esc, want discovery", app.CurrentScreen)
	}
}

func TestDiscovery_ManualEntry(t *testing.T) {
	m := NewDiscoveryModel(func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error) {
		return nil, nil
	}, time.Second)

	step := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(DiscoveryModel)
	}

	step(scanCompleteMsg{})
	step(keyRunes("m"))
	if !m.ManualMode {
		t.Fatal("m did not enter manual mode")
	}

	step(tea.KeyMsg{Type: tea.KeyEnter})
	if m.InputErr == nil || m.Selected != nil {
		t.Error("empty address accepted")
	}

	step(keyRunes("radio.local:8080"))
	step(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected == nil {
		t.Fatal("address not accepted")
	}
	if m.SelectedURL != "ws://radio.local:8080/" {
		t.Errorf("SelectedURL = %q", m.SelectedURL)
	}
}
