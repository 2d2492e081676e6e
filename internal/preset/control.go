package preset

import (
	"fmt"

	"github.com/muurk/fmremote/internal/protocol"
)

// Group is a named selection group. At most one of its controls is selected
// at any time. The name is the device-assigned command id for the group.
type Group struct {
	Name string
}

// Default group names observed on the wire
const (
	DefaultNavigateGroup   = protocol.CommandNavigate
	DefaultSetDefaultGroup = protocol.CommandSetDefault
)

// Entry is one announced preset. Entries are never mutated or removed.
type Entry struct {
	Index         int
	FrequencyText string
	IsDefault     bool
}

// String returns a debug representation of the entry
func (e Entry) String() string {
	return fmt.Sprintf("Entry{index=%d, frequency=%s, default=%t}", e.Index, e.FrequencyText, e.IsDefault)
}

// Listener handles a change event fired on a control
type Listener func(c *Control)

// Subscription is an attachable listener. Detaching compares subscriptions by
// identity, so the same subscription is never attached twice to a control.
type Subscription struct {
	fn Listener
}

// NewSubscription wraps fn in a subscription
func NewSubscription(fn Listener) *Subscription {
	return &Subscription{fn: fn}
}

// Control is one selectable UI control: either the navigate or the
// set-default control of an entry.
type Control struct {
	ID         string
	Group      *Group
	Value      string
	EntryIndex int

	checked   bool
	listeners []*Subscription
}

// Checked reports whether the control is selected
func (c *Control) Checked() bool {
	return c.checked
}

func (c *Control) attach(s *Subscription) {
	c.listeners = append(c.listeners, s)
}

func (c *Control) detach(s *Subscription) {
	kept := c.listeners[:0]
	for _, l := range c.listeners {
		if l != s {
			kept = append(kept, l)
		}
	}
	for i := len(kept); i < len(c.listeners); i++ {
		c.listeners[i] = nil
	}
	c.listeners = kept
}

// fire runs every listener attached to the control, in attach order
func (c *Control) fire() {
	for _, l := range c.listeners {
		l.fn(c)
	}
}
