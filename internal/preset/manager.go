package preset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/protocol"
	"go.uber.org/zap"
)

// ErrUnknownControl is returned when selecting a control id that does not exist
var ErrUnknownControl = errors.New("unknown control")

// Sender delivers an outbound command to the device
type Sender interface {
	Send(cmd protocol.OutboundCommand) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(cmd protocol.OutboundCommand) error

// Send calls f(cmd)
func (f SenderFunc) Send(cmd protocol.OutboundCommand) error { return f(cmd) }

// Manager owns the preset list and the two selection groups. Entries are
// appended as the device announces them; every append rebuilds the listener
// set over all controls.
//
// Manager is not safe for concurrent use. It is driven from the single event
// loop that also dispatches inbound messages.
type Manager struct {
	navigate   *Group
	setDefault *Group

	entries  []Entry
	controls []*Control
	byID     map[string]*Control

	nextIndex   int
	sender      Sender
	shared      *Subscription
	lastSendErr error

	// OnChange is called after every structural or selection change, for
	// views that need to redraw. Optional.
	OnChange func()
}

// Option configures a Manager
type Option func(*Manager)

// WithGroupNames overrides the device-assigned group names
func WithGroupNames(navigate, setDefault string) Option {
	return func(m *Manager) {
		m.navigate.Name = navigate
		m.setDefault.Name = setDefault
	}
}

// NewManager creates an empty manager. Selection commands go to sender; a nil
// sender drops them.
func NewManager(sender Sender, opts ...Option) *Manager {
	m := &Manager{
		navigate:   &Group{Name: DefaultNavigateGroup},
		setDefault: &Group{Name: DefaultSetDefaultGroup},
		byID:       make(map[string]*Control),
		sender:     sender,
	}
	m.shared = NewSubscription(m.handleChange)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NormalizeFrequency appends ".0" to frequency text without a decimal point
func NormalizeFrequency(text string) string {
	if strings.Contains(text, ".") {
		return text
	}
	return text + ".0"
}

// Add appends a preset announced with literal frequency text. The entry's
// set-default control starts selected iff isDefault.
func (m *Manager) Add(frequencyText string, isDefault bool) Entry {
	entry := Entry{
		Index:         m.nextIndex,
		FrequencyText: NormalizeFrequency(frequencyText),
		IsDefault:     isDefault,
	}
	m.nextIndex++
	m.entries = append(m.entries, entry)

	nav := &Control{
		ID:         fmt.Sprintf("preset%d", entry.Index),
		Group:      m.navigate,
		Value:      entry.FrequencyText,
		EntryIndex: entry.Index,
	}
	def := &Control{
		ID:         fmt.Sprintf("default%d", entry.Index),
		Group:      m.setDefault,
		Value:      entry.FrequencyText,
		EntryIndex: entry.Index,
	}
	m.controls = append(m.controls, nav, def)
	m.byID[nav.ID] = nav
	m.byID[def.ID] = def

	if isDefault {
		m.check(def)
	}

	m.Rebind()

	logging.Debug("Preset added",
		zap.Int("index", entry.Index),
		zap.String("frequency", entry.FrequencyText),
		zap.Bool("default", entry.IsDefault),
		zap.Int("count", len(m.entries)))

	m.changed()
	return entry
}

// AddScaled appends a preset announced as frequency x10 integer text. A flag
// of 1 pre-selects the set-default control. A value with no integer prefix
// becomes entry "0.0".
func (m *Manager) AddScaled(scaledText, flagText string) Entry {
	scaled, ok := protocol.ParseInt(scaledText)
	if !ok {
		logging.Warn("Malformed scaled preset", zap.String("value", scaledText))
	}
	flag, _ := protocol.ParseInt(flagText)

	return m.Add(protocol.FormatShortest(float64(scaled)/10.0), flag == 1)
}

// Rebind detaches the shared change handler from every control and attaches
// it again to all controls of both groups. After Rebind every control carries
// exactly one copy of the handler.
func (m *Manager) Rebind() {
	for _, c := range m.controls {
		c.detach(m.shared)
	}
	for _, c := range m.controls {
		c.attach(m.shared)
	}
}

// Select performs a user selection of the control with the given id: the
// control becomes selected, the rest of its group is cleared, and the change
// event fires on it.
func (m *Manager) Select(controlID string) error {
	c, ok := m.byID[controlID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, controlID)
	}

	m.lastSendErr = nil
	m.check(c)
	c.fire()
	m.changed()
	return nil
}

// LastSendError returns the error from sending the most recent selection, or
// nil when it went out. The selection itself stands either way.
func (m *Manager) LastSendError() error {
	return m.lastSendErr
}

// SelectNavigate selects the navigate control of the entry with index i
func (m *Manager) SelectNavigate(i int) error {
	return m.Select(fmt.Sprintf("preset%d", i))
}

// SelectDefault selects the set-default control of the entry with index i
func (m *Manager) SelectDefault(i int) error {
	return m.Select(fmt.Sprintf("default%d", i))
}

// check selects c and clears every other control of its group
func (m *Manager) check(c *Control) {
	for _, other := range m.controls {
		if other.Group == c.Group {
			other.checked = false
		}
	}
	c.checked = true
}

// handleChange is the shared handler. It looks only at the group the event
// fired in and sends the selected control's value under the group name.
func (m *Manager) handleChange(fired *Control) {
	group := fired.Group

	var selected *Control
	for _, c := range m.controls {
		if c.Group == group && c.checked {
			selected = c
			break
		}
	}
	if selected == nil {
		logging.Warn("Change event with no selected control", zap.String("group", group.Name))
		return
	}

	cmd := protocol.NewValueCommand(group.Name, selected.Value)
	logging.Debug("Preset selection", zap.String("command", cmd.String()))

	if m.sender == nil {
		return
	}
	if err := m.sender.Send(cmd); err != nil {
		m.lastSendErr = err
		logging.Warn("Failed to send preset selection",
			zap.String("command", cmd.String()),
			zap.Error(err))
	}
}

func (m *Manager) changed() {
	if m.OnChange != nil {
		m.OnChange()
	}
}

// Entries returns a copy of the preset list in announcement order
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries
func (m *Manager) Len() int {
	return len(m.entries)
}

// Controls returns every control, navigate and set-default interleaved per entry
func (m *Manager) Controls() []*Control {
	out := make([]*Control, len(m.controls))
	copy(out, m.controls)
	return out
}

// Control returns the control with the given id
func (m *Manager) Control(id string) (*Control, bool) {
	c, ok := m.byID[id]
	return c, ok
}

// Selected returns the selected control of a group, or nil
func (m *Manager) Selected(g *Group) *Control {
	for _, c := range m.controls {
		if c.Group == g && c.checked {
			return c
		}
	}
	return nil
}

// SelectedCount returns how many controls of a group are selected
func (m *Manager) SelectedCount(g *Group) int {
	n := 0
	for _, c := range m.controls {
		if c.Group == g && c.checked {
			n++
		}
	}
	return n
}

// NavigateGroup returns the navigate selection group
func (m *Manager) NavigateGroup() *Group { return m.navigate }

// SetDefaultGroup returns the set-default selection group
func (m *Manager) SetDefaultGroup() *Group { return m.setDefault }

// ListenerCount returns how many listeners are attached to a control, or -1
// when the control does not exist
func (m *Manager) ListenerCount(controlID string) int {
	c, ok := m.byID[controlID]
	if !ok {
		return -1
	}
	return len(c.listeners)
}
