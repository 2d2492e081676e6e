package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/fmremote/internal/capture"
	"github.com/muurk/fmremote/internal/metrics"
	"github.com/muurk/fmremote/internal/session"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
)

// Options configures the application. With URL empty the application starts
// on the discovery screen.
type Options struct {
	URL      string
	Instance string

	Display         session.DisplayDefaults
	NavigateGroup   string
	SetDefaultGroup string
	Metrics         *metrics.Metrics
	Recorder        *capture.Recorder
	ScanTimeout     time.Duration

	// OnConnected is called on the UI goroutine each time a device channel opens
	OnConnected func(url, instance string)

	// Dial and Scan default to the WebSocket transport and mDNS
	Dial DialFunc
	Scan ScanFunc
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	DashboardModel DashboardModel

	opts Options

	Width  int
	Height int
}

// NewAppModel creates the application model
func NewAppModel(opts Options) AppModel {
	m := AppModel{opts: opts}
	if opts.URL != "" {
		m.CurrentScreen = ScreenDashboard
		m.DashboardModel = NewDashboardModel(opts.URL, opts.Instance, opts)
	} else {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel(opts.Scan, opts.ScanTimeout)
	}
	return m
}

// Init initializes the current screen
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenDashboard:
		return m.DashboardModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		if m.DiscoveryModel.Selected != nil {
			return m.openDashboard(m.DiscoveryModel.SelectedURL, m.DiscoveryModel.Selected.Instance)
		}

	case ScreenDashboard:
		updated, c := m.DashboardModel.Update(msg)
		m.DashboardModel = updated.(DashboardModel)
		cmd = c

		if m.DashboardModel.IsBackRequested() {
			m.DashboardModel.Close()
			return m.openDiscovery()
		}
	}

	return m, cmd
}

// openDashboard transitions to the dashboard for a picked device. Esc on the
// dashboard leads back to discovery.
func (m AppModel) openDashboard(url, instance string) (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenDashboard
	m.DashboardModel = NewDashboardModel(url, instance, m.opts)
	m.DashboardModel.Keys.Back.SetEnabled(true)
	m.DashboardModel.Width = m.Width
	m.DashboardModel.Height = m.Height
	return m, m.DashboardModel.Init()
}

func (m AppModel) openDiscovery() (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenDiscovery
	m.DiscoveryModel = NewDiscoveryModel(m.opts.Scan, m.opts.ScanTimeout)
	if m.Width > 0 {
		updated, _ := m.DiscoveryModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
		m.DiscoveryModel = updated.(DiscoveryModel)
	}
	return m, m.DiscoveryModel.Init()
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return "Unknown screen"
	}
}

// Close releases the connection held by the dashboard, if any
func (m AppModel) Close() {
	if m.CurrentScreen == ScreenDashboard {
		m.DashboardModel.Close()
	}
}

// Run starts the full-screen application and blocks until the user quits or
// ctx is cancelled
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if app, ok := final.(AppModel); ok {
		app.Close()
	}
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
