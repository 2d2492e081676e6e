package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/protocol"
	"github.com/muurk/fmremote/internal/session"
	"github.com/muurk/fmremote/internal/transport"
)

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Navigate   key.Binding
	SetDefault key.Binding
	SeekUp     key.Binding
	SeekDown   key.Binding
	AddPreset  key.Binding
	Color      key.Binding
	Reconnect  key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Navigate, k.SeekDown, k.SeekUp, k.AddPreset, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Navigate, k.SetDefault},
		{k.SeekDown, k.SeekUp, k.AddPreset, k.Color},
		{k.Reconnect, k.Back, k.Help, k.Quit},
	}
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Navigate: key.NewBinding(
			key.WithKeys("enter", "g"),
			key.WithHelp("enter", "tune"),
		),
		SetDefault: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "set default"),
		),
		SeekUp: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("→", "seek up"),
		),
		SeekDown: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("←", "seek down"),
		),
		AddPreset: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add preset"),
		),
		Color: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "color"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "devices"),
			key.WithDisabled(),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DashboardModel is the remote control screen for one tuner
type DashboardModel struct {
	// Device
	URL      string
	Instance string

	conn        *connection
	dial        DialFunc
	cfg         connectionConfig
	onConnected func(url, instance string)

	// Navigation
	Cursor        int
	Status        string
	Err           error
	Connecting    bool
	BackRequested bool

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    dashboardKeyMap
}

// NewDashboardModel creates a dashboard for url. Nothing is dialed until Init.
func NewDashboardModel(url, instance string, opts Options) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := DashboardModel{
		URL:      url,
		Instance: instance,
		dial:     opts.Dial,
		cfg: connectionConfig{
			Display:         opts.Display,
			NavigateGroup:   opts.NavigateGroup,
			SetDefaultGroup: opts.SetDefaultGroup,
			Metrics:         opts.Metrics,
			Recorder:        opts.Recorder,
		},
		onConnected: opts.OnConnected,
		Spinner:     s,
		Help:        help.New(),
		Keys:        newDashboardKeyMap(),
	}

	conn, err := newConnection(url, m.dial, m.cfg)
	if err != nil {
		m.Err = err
		return m
	}
	m.conn = conn
	m.Connecting = true
	return m
}

// Init starts the connection
func (m DashboardModel) Init() tea.Cmd {
	if m.conn == nil {
		return nil
	}
	return tea.Batch(connectCmd(m.conn), waitForEvent(m.conn), m.Spinner.Tick)
}

// Session returns the active session, or nil
func (m DashboardModel) Session() *session.Session {
	if m.conn == nil {
		return nil
	}
	return m.conn.session
}

// IsBackRequested reports whether the user asked to return to discovery
func (m DashboardModel) IsBackRequested() bool {
	return m.BackRequested
}

// Close tears down the active connection
func (m DashboardModel) Close() {
	if m.conn != nil {
		_ = m.conn.link.Close()
	}
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Connecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case connectResultMsg:
		if msg.conn != m.conn {
			return m, nil
		}
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.cfg.Recorder.SetSessionID(msg.conn.link.SessionID())
		return m, nil

	case eventMsg:
		if msg.conn != m.conn {
			return m, nil
		}
		m.handleEvent(msg.ev)
		return m, waitForEvent(m.conn)

	case eventsClosedMsg:
		if msg.conn == m.conn {
			m.Connecting = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

// handleEvent feeds ev to the session on the Update goroutine
func (m *DashboardModel) handleEvent(ev transport.Event) {
	s := m.conn.session
	s.HandleEvent(ev)

	switch ev.Kind {
	case transport.EventOpen:
		m.Connecting = false
		m.Err = nil
		m.Status = "Connected"
		if m.onConnected != nil {
			m.onConnected(m.URL, m.Instance)
		}
	case transport.EventError:
		m.Err = ev.Err
	case transport.EventClose:
		m.Connecting = false
		if m.Err == nil {
			m.Status = "Connection closed"
		}
	}

	m.clampCursor()
}

func (m *DashboardModel) clampCursor() {
	n := 0
	if m.conn != nil {
		n = m.conn.session.Presets().Len()
	}
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// updateKeys handles keyboard input
func (m DashboardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil

	case key.Matches(msg, m.Keys.Back):
		m.BackRequested = true
		return m, nil

	case key.Matches(msg, m.Keys.Reconnect):
		return m.reconnect()
	}

	if m.conn == nil {
		return m, nil
	}
	s := m.conn.session
	presets := s.Presets()

	switch {
	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}

	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < presets.Len()-1 {
			m.Cursor++
		}

	case key.Matches(msg, m.Keys.Navigate):
		m.selectPreset(presets.SelectNavigate, "Tuning to")

	case key.Matches(msg, m.Keys.SetDefault):
		m.selectPreset(presets.SelectDefault, "Default set to")

	case key.Matches(msg, m.Keys.SeekUp):
		m.send(protocol.SearchUpCommand(), "Seeking up")

	case key.Matches(msg, m.Keys.SeekDown):
		m.send(protocol.SearchDownCommand(), "Seeking down")

	case key.Matches(msg, m.Keys.AddPreset):
		value := protocol.FormatShortest(s.Projector().State().Value)
		m.send(protocol.AddPresetCommand(value), "Adding preset "+value)

	case key.Matches(msg, m.Keys.Color):
		m.send(protocol.ColorCommand(), "Changing color")
	}

	return m, nil
}

// selectPreset performs a user selection on the entry under the cursor
func (m *DashboardModel) selectPreset(sel func(int) error, verb string) {
	s := m.conn.session
	if s.State() != session.Open {
		m.Status = "Not connected"
		return
	}
	entries := s.Presets().Entries()
	if m.Cursor >= len(entries) {
		return
	}
	if err := sel(entries[m.Cursor].Index); err != nil {
		logging.Warn("Preset selection failed", zap.Int("index", m.Cursor), zap.Error(err))
		m.Err = err
		return
	}
	if err := s.Presets().LastSendError(); err != nil {
		m.Status = "Not sent: " + err.Error()
		return
	}
	m.Status = fmt.Sprintf("%s %s", verb, entries[m.Cursor].FrequencyText)
}

func (m *DashboardModel) send(cmd protocol.OutboundCommand, status string) {
	if err := m.conn.session.Send(cmd); err != nil {
		m.Status = "Not sent: " + err.Error()
		return
	}
	m.Status = status
}

// reconnect replaces a closed or failed connection with a fresh one
func (m DashboardModel) reconnect() (tea.Model, tea.Cmd) {
	if m.conn != nil {
		st := m.conn.session.State()
		if st == session.Connecting || st == session.Open {
			return m, nil
		}
	}

	old := m.conn
	conn, err := newConnection(m.URL, m.dial, m.cfg)
	if err != nil {
		m.Err = err
		return m, nil
	}

	m.conn = conn
	m.Connecting = true
	m.Err = nil
	m.Status = "Reconnecting"
	m.Cursor = 0

	cmds := []tea.Cmd{connectCmd(conn), waitForEvent(conn), m.Spinner.Tick}
	if old != nil {
		cmds = append(cmds, closeCmd(old))
	}
	return m, tea.Batch(cmds...)
}

// View renders the dashboard
func (m DashboardModel) View() string {
	return RenderApplicationContainer(m.renderContent(), m.Help.View(m.Keys), m.Width, m.Height)
}

func (m DashboardModel) renderContent() string {
	if m.conn == nil {
		return "\n" + RenderError(fmt.Sprintf("Cannot start session: %v", m.Err))
	}

	s := m.conn.session
	p := m.conn.panel

	title := s.Header()
	if title == "" {
		title = m.URL
	}

	box := DisplayBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		RenderSegments(p.state),
		"",
		RenderGauge(p.signal)+"   "+RenderStereo(p.stereo),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		RenderTitle(title)+"  "+m.renderState(s.State()),
		box,
		"",
		m.renderPresets(),
		"",
		m.renderStatus(),
	)
}

func (m DashboardModel) renderState(st session.ConnectionState) string {
	switch st {
	case session.Connecting:
		return m.Spinner.View() + " " + StatusStyle.Render("connecting")
	case session.Open:
		return lipgloss.NewStyle().Foreground(SecondaryColor).Render("● open")
	case session.Errored:
		return ErrorStyle.Render("● error")
	default:
		return WarningStyle.Render("● closed")
	}
}

// renderPresets lists the presets with the cursor, the tuned entry (▶) and
// the power-on default (★)
func (m DashboardModel) renderPresets() string {
	presets := m.conn.session.Presets()
	entries := presets.Entries()
	if len(entries) == 0 {
		return PresetBoxStyle.Render(SubtitleStyle.Render("No presets"))
	}

	tuned, def := -1, -1
	if c := presets.Selected(presets.NavigateGroup()); c != nil {
		tuned = c.EntryIndex
	}
	if c := presets.Selected(presets.SetDefaultGroup()); c != nil {
		def = c.EntryIndex
	}

	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Presets"))
	for i, e := range entries {
		b.WriteString("\n")

		marks := "  "
		if e.Index == tuned {
			marks = "▶ "
		}
		if e.Index == def {
			marks += "★ "
		} else {
			marks += "  "
		}

		line := marks + e.FrequencyText
		if i == m.Cursor {
			b.WriteString(SelectedMenuItemStyle.Render("→ " + line))
		} else {
			b.WriteString(MenuItemStyle.Render("  " + line))
		}
	}
	return PresetBoxStyle.Render(b.String())
}

func (m DashboardModel) renderStatus() string {
	if m.Err != nil {
		return RenderError(m.Err.Error())
	}
	return StatusStyle.Render(m.Status)
}
