package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/fmremote/internal/discovery"
	"github.com/muurk/fmremote/internal/transport"
)

// ScanFunc finds tuners on the local network
type ScanFunc func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error)

// ScanMDNS browses for tuners with a discovery.Scanner
func ScanMDNS(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error) {
	s := discovery.NewScanner()
	if timeout > 0 {
		s.Timeout = timeout
	}
	return s.ScanForDevices(ctx)
}

// scanCompleteMsg carries the result of one scan
type scanCompleteMsg struct {
	devices []*discovery.Device
	err     error
}

// discoveryKeyMap defines key bindings for the device list
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Confirm, m.Cancel}}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
	url    string
}

// FilterValue implements list.Item
func (d deviceItem) FilterValue() string {
	return d.device.Instance + " " + d.device.IP + " " + d.device.Hostname
}

func (d deviceItem) name() string {
	if d.device.Instance == "" {
		return "Manual: " + d.url
	}
	if t := d.device.Title(); t != "" {
		return fmt.Sprintf("%s (%s)", d.device.Instance, t)
	}
	return d.device.Instance
}

// deviceDelegate renders one device per card
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 4 }

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(deviceItem)
	if !ok {
		return
	}
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + it.name()))
	} else {
		content.WriteString("  " + it.name())
	}
	content.WriteString("\n")
	content.WriteString(StatusStyle.Render("  " + it.url))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		MarginLeft(2)

	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}
	cardStyle = cardStyle.Width(cardWidth)
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel is the device picker: an mDNS scan plus manual entry
type DiscoveryModel struct {
	Scanning    bool
	DeviceList  list.Model
	Selected    *discovery.Device
	SelectedURL string
	Err         error

	ManualMode bool
	AddrInput  textinput.Model
	InputErr   error

	scan        ScanFunc
	scanTimeout time.Duration

	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
}

// NewDiscoveryModel creates the discovery screen
func NewDiscoveryModel(scan ScanFunc, timeout time.Duration) DiscoveryModel {
	if scan == nil {
		scan = ScanMDNS
	}
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "192.168.4.1 or ws://radio.local/"
	input.CharLimit = 256
	input.Width = 40

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	deviceList := list.New([]list.Item{}, deviceDelegate{width: MinTerminalWidth}, 0, 0)
	deviceList.Title = "Tuners"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter address"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	return DiscoveryModel{
		Scanning:      true,
		ScanStartTime: time.Now(),
		DeviceList:    deviceList,
		AddrInput:     input,
		scan:          scan,
		scanTimeout:   timeout,
		Spinner:       s,
		ProgressBar:   bar,
		Help:          help.New(),
		Keys:          keys,
		ManualKeys:    manualKeys,
	}
}

// Init starts the first scan
func (m DiscoveryModel) Init() tea.Cmd {
	return m.scanCmd()
}

// rescan clears the list and starts a new scan
func (m *DiscoveryModel) rescan() tea.Cmd {
	m.Err = nil
	m.Scanning = true
	m.ScanStartTime = time.Now()
	m.DeviceList.SetItems(nil)
	return m.scanCmd()
}

func (m DiscoveryModel) scanCmd() tea.Cmd {
	scan, timeout := m.scan, m.scanTimeout
	return tea.Batch(
		func() tea.Msg {
			devices, err := scan(context.Background(), timeout)
			return scanCompleteMsg{devices: devices, err: err}
		},
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetDelegate(deviceDelegate{width: msg.Width})
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10)
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, 0, len(msg.devices))
		for _, dev := range msg.devices {
			items = append(items, deviceItem{device: dev, url: dev.WebSocketURL()})
		}
		cmd = m.DeviceList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

// updateNormalMode handles keys on the device list
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.DeviceList.FilterState() == list.Filtering {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.InputErr = nil
		m.AddrInput.SetValue("")
		return m, m.AddrInput.Focus()

	case m.Scanning:
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		if it, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
			m.Selected = it.device
			m.SelectedURL = it.url
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		return m, m.rescan()
	}

	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

// updateManualMode handles keys in manual address entry
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.AddrInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		url, err := transport.DeviceURL(m.AddrInput.Value())
		if err != nil {
			m.InputErr = err
			return m, nil
		}
		m.ManualMode = false
		m.AddrInput.Blur()
		m.Selected = &discovery.Device{DiscoveredAt: time.Now()}
		m.SelectedURL = url
		return m, nil
	}

	m.AddrInput, cmd = m.AddrInput.Update(msg)
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning()
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderDeviceResults()
		helpText = m.Help.View(m.Keys)
	}
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning shows the spinner and a bar filling over the scan timeout
func (m DiscoveryModel) renderScanning() string {
	width := m.Width
	if width == 0 {
		width = 72
	}

	elapsed := time.Since(m.ScanStartTime)
	frac := float64(elapsed) / float64(m.scanTimeout)
	if frac > 1 {
		frac = 1
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR TUNERS"),
		SubtitleStyle.Render("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
		m.ProgressBar.ViewAs(frac),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderDeviceResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(troubleshooting)

	case len(m.DeviceList.Items()) == 0:
		b.WriteString("  ")
		b.WriteString(WarningStyle.Render("⚠ No tuners found on your network"))
		b.WriteString("\n\n")
		b.WriteString(troubleshooting)

	default:
		b.WriteString(m.DeviceList.View())
	}
	return b.String()
}

const troubleshooting = `  Troubleshooting:
    • Ensure the tuner is powered on and joined to this network
    • mDNS does not cross VLANs or most VPNs
    • Press 'm' to enter the tuner's address by hand
`

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderTitle("Connect by address"))
	b.WriteString("\n")
	b.WriteString("  Host, host:port, or ws:// URL\n\n")
	b.WriteString("  " + m.AddrInput.View())
	b.WriteString("\n")
	if m.InputErr != nil {
		b.WriteString("\n  " + RenderError(m.InputErr.Error()))
		b.WriteString("\n")
	}
	return b.String()
}
