package preset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/muurk/fmremote/internal/protocol"
)

type recordingSender struct {
	sent []protocol.OutboundCommand
	err  error
}

func (r *recordingSender) Send(cmd protocol.OutboundCommand) error {
	r.sent = append(r.sent, cmd)
	return r.err
}

func TestNormalizeFrequency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"87", "87.0"},
		{"87.5", "87.5"},
		{"101.1", "101.1"},
		{"108", "108.0"},
		{"", ".0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeFrequency(tt.in); got != tt.want {
				t.Errorf("NormalizeFrequency(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAdd_StoresNormalizedText(t *testing.T) {
	m := NewManager(nil)

	e1 := m.Add("87", false)
	e2 := m.Add("87.5", false)

	if e1.FrequencyText != "87.0" {
		t.Errorf("Add(87) stored %q, want 87.0", e1.FrequencyText)
	}
	if e2.FrequencyText != "87.5" {
		t.Errorf("Add(87.5) stored %q, want 87.5", e2.FrequencyText)
	}
	if e1.Index != 0 || e2.Index != 1 {
		t.Errorf("indices = %d, %d; want 0, 1", e1.Index, e2.Index)
	}
}

func TestAdd_NoDedup(t *testing.T) {
	m := NewManager(nil)
	m.Add("90.1", false)
	m.Add("90.1", false)

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if len(m.Controls()) != 4 {
		t.Errorf("len(Controls()) = %d, want 4", len(m.Controls()))
	}
}

func TestAddScaled_MatchesAdd(t *testing.T) {
	tests := []struct {
		scaled, flag string
		literal      string
		isDefault    bool
		wantText     string
	}{
		{"875", "0", "87.5", false, "87.5"},
		{"875", "1", "87.5", true, "87.5"},
		{"1011", "0", "101.1", false, "101.1"},
		{"870", "0", "87", false, "87.0"},
		{"1080", "1", "108.0", true, "108.0"},
	}

	for _, tt := range tests {
		t.Run(tt.scaled+"/"+tt.flag, func(t *testing.T) {
			scaled := NewManager(nil).AddScaled(tt.scaled, tt.flag)
			literal := NewManager(nil).Add(tt.literal, tt.isDefault)

			if scaled != literal {
				t.Errorf("AddScaled(%q, %q) = %v, Add(%q, %v) = %v",
					tt.scaled, tt.flag, scaled, tt.literal, tt.isDefault, literal)
			}
			if scaled.FrequencyText != tt.wantText {
				t.Errorf("FrequencyText = %q, want %q", scaled.FrequencyText, tt.wantText)
			}
		})
	}
}

func TestAddScaled_Malformed(t *testing.T) {
	tests := []struct {
		scaled, flag  string
		wantText      string
		wantIsDefault bool
	}{
		{"abc", "0", "0.0", false},
		{"", "1", "0.0", true},
		{"87x5", "1", "8.7", true},
		{"875", "yes", "87.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.scaled+"/"+tt.flag, func(t *testing.T) {
			got := NewManager(nil).AddScaled(tt.scaled, tt.flag)
			if got.FrequencyText != tt.wantText || got.IsDefault != tt.wantIsDefault {
				t.Errorf("AddScaled(%q, %q) = %q default=%v, want %q default=%v",
					tt.scaled, tt.flag, got.FrequencyText, got.IsDefault, tt.wantText, tt.wantIsDefault)
			}
		})
	}
}

func TestAdd_DefaultFlagPreselects(t *testing.T) {
	m := NewManager(nil)
	m.Add("87.5", false)
	m.Add("90.1", true)

	sel := m.Selected(m.SetDefaultGroup())
	if sel == nil || sel.ID != "default1" {
		t.Fatalf("Selected(set-default) = %v, want default1", sel)
	}
	if m.Selected(m.NavigateGroup()) != nil {
		t.Error("navigate group should have no selection")
	}

	m.Add("101.1", true)
	if sel := m.Selected(m.SetDefaultGroup()); sel == nil || sel.ID != "default2" {
		t.Errorf("later flagged preset should take over the selection, got %v", sel)
	}
	if n := m.SelectedCount(m.SetDefaultGroup()); n != 1 {
		t.Errorf("SelectedCount(set-default) = %d, want 1", n)
	}
}

func TestAdd_DoesNotSend(t *testing.T) {
	s := &recordingSender{}
	m := NewManager(s)
	m.Add("87.5", true)
	m.AddScaled("1011", "1")

	if len(s.sent) != 0 {
		t.Errorf("announcing presets sent %v, want nothing", s.sent)
	}
}

func TestSelection_AtMostOnePerGroup(t *testing.T) {
	for _, n := range []int{0, 1, 50} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			m := NewManager(&recordingSender{})
			for i := 0; i < n; i++ {
				m.AddScaled(fmt.Sprint(876+2*i), fmt.Sprint(i%2))
			}

			check := func(stage string) {
				t.Helper()
				for _, g := range []*Group{m.NavigateGroup(), m.SetDefaultGroup()} {
					if c := m.SelectedCount(g); c > 1 {
						t.Errorf("%s: group %s has %d selected controls", stage, g.Name, c)
					}
				}
			}

			check("after add")
			for i := 0; i < n; i++ {
				if err := m.SelectNavigate(i); err != nil {
					t.Fatal(err)
				}
				check("after navigate")
				if err := m.SelectDefault(n - 1 - i); err != nil {
					t.Fatal(err)
				}
				check("after set-default")
			}

			if n > 0 {
				if c := m.SelectedCount(m.NavigateGroup()); c != 1 {
					t.Errorf("navigate selected count = %d, want 1", c)
				}
			}
		})
	}
}

func TestSelection_HandlerFiresOncePerAction(t *testing.T) {
	for _, n := range []int{1, 2, 10, 50} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			s := &recordingSender{}
			m := NewManager(s)
			for i := 0; i < n; i++ {
				m.Add(fmt.Sprintf("%d.1", 88+i%20), false)
			}

			for _, c := range m.Controls() {
				if got := m.ListenerCount(c.ID); got != 1 {
					t.Fatalf("ListenerCount(%s) = %d, want 1", c.ID, got)
				}
			}

			if err := m.SelectNavigate(0); err != nil {
				t.Fatal(err)
			}
			if len(s.sent) != 1 {
				t.Errorf("navigate selection sent %d commands, want 1", len(s.sent))
			}

			if err := m.SelectDefault(n - 1); err != nil {
				t.Fatal(err)
			}
			if len(s.sent) != 2 {
				t.Errorf("after set-default selection sent %d commands, want 2", len(s.sent))
			}
		})
	}
}

func TestRebind_Idempotent(t *testing.T) {
	m := NewManager(nil)
	m.Add("87.5", false)
	m.Add("90.1", false)

	m.Rebind()
	m.Rebind()

	for _, c := range m.Controls() {
		if got := m.ListenerCount(c.ID); got != 1 {
			t.Errorf("ListenerCount(%s) = %d after repeated Rebind, want 1", c.ID, got)
		}
	}
}

func TestRebind_KeepsOtherListeners(t *testing.T) {
	m := NewManager(nil)
	m.Add("87.5", false)

	c, _ := m.Control("preset0")
	fired := 0
	c.attach(NewSubscription(func(*Control) { fired++ }))

	m.Add("90.1", false)

	if got := m.ListenerCount("preset0"); got != 2 {
		t.Errorf("ListenerCount(preset0) = %d, want 2", got)
	}
	if err := m.Select("preset0"); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("extra listener fired %d times, want 1", fired)
	}
}

func TestSelect_SetDefaultCommand(t *testing.T) {
	s := &recordingSender{}
	m := NewManager(s)
	m.Add("87.5", false)
	m.Add("101.1", false)

	if err := m.SelectDefault(1); err != nil {
		t.Fatal(err)
	}

	if len(s.sent) != 1 {
		t.Fatalf("sent %d commands, want 1", len(s.sent))
	}
	wire, err := protocol.Encode(s.sent[0])
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"id":"write-request","value":"101.1"}`; wire != want {
		t.Errorf("wire = %s, want %s", wire, want)
	}
}

func TestSelect_NavigateCommand(t *testing.T) {
	s := &recordingSender{}
	m := NewManager(s)
	m.Add("87", false)

	if err := m.Select("preset0"); err != nil {
		t.Fatal(err)
	}

	if len(s.sent) != 1 {
		t.Fatalf("sent %d commands, want 1", len(s.sent))
	}
	got := s.sent[0]
	if got.ID != protocol.CommandNavigate || got.ValueOr("") != "87.0" {
		t.Errorf("sent %v, want jump-request 87.0", got)
	}
}

func TestSelect_GroupsIndependent(t *testing.T) {
	s := &recordingSender{}
	m := NewManager(s)
	m.Add("87.5", true)
	m.Add("90.1", false)
	m.Add("101.1", false)

	if err := m.SelectNavigate(2); err != nil {
		t.Fatal(err)
	}
	if sel := m.Selected(m.SetDefaultGroup()); sel == nil || sel.ID != "default0" {
		t.Errorf("navigate selection changed set-default group to %v", sel)
	}

	if err := m.SelectDefault(1); err != nil {
		t.Fatal(err)
	}
	if sel := m.Selected(m.NavigateGroup()); sel == nil || sel.ID != "preset2" {
		t.Errorf("set-default selection changed navigate group to %v", sel)
	}

	want := []string{
		`{"id":"jump-request","value":"101.1"}`,
		`{"id":"write-request","value":"90.1"}`,
	}
	if len(s.sent) != len(want) {
		t.Fatalf("sent %d commands, want %d", len(s.sent), len(want))
	}
	for i, cmd := range s.sent {
		wire, _ := protocol.Encode(cmd)
		if wire != want[i] {
			t.Errorf("command %d = %s, want %s", i, wire, want[i])
		}
	}
}

func TestSelect_UnknownControl(t *testing.T) {
	m := NewManager(nil)
	m.Add("87.5", false)

	if err := m.Select("preset9"); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("Select(preset9) error = %v, want ErrUnknownControl", err)
	}
	if m.SelectedCount(m.NavigateGroup()) != 0 {
		t.Error("failed selection changed state")
	}
}

func TestSelect_SendErrorIsNotFatal(t *testing.T) {
	s := &recordingSender{err: errors.New("closed")}
	m := NewManager(s)
	m.Add("87.5", false)

	if err := m.SelectNavigate(0); err != nil {
		t.Errorf("SelectNavigate() error = %v, want nil", err)
	}
	if !m.Controls()[0].Checked() {
		t.Error("selection should stand even when the send fails")
	}
	if err := m.LastSendError(); err == nil || err.Error() != "closed" {
		t.Errorf("LastSendError() = %v, want the send error", err)
	}

	s.err = nil
	if err := m.SelectNavigate(0); err != nil {
		t.Fatal(err)
	}
	if err := m.LastSendError(); err != nil {
		t.Errorf("LastSendError() = %v after a successful send, want nil", err)
	}
}

func TestWithGroupNames(t *testing.T) {
	s := &recordingSender{}
	m := NewManager(s, WithGroupNames("tune", "store"))
	m.Add("95.0", false)

	_ = m.SelectNavigate(0)
	_ = m.SelectDefault(0)

	if len(s.sent) != 2 || s.sent[0].ID != "tune" || s.sent[1].ID != "store" {
		t.Errorf("sent %v, want ids tune, store", s.sent)
	}
}

func TestOnChange(t *testing.T) {
	m := NewManager(nil)
	calls := 0
	m.OnChange = func() { calls++ }

	m.Add("87.5", false)
	_ = m.SelectNavigate(0)
	_ = m.Select("missing")

	if calls != 2 {
		t.Errorf("OnChange called %d times, want 2", calls)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	m := NewManager(nil)
	m.Add("87.5", false)

	entries := m.Entries()
	entries[0].FrequencyText = "changed"

	if m.Entries()[0].FrequencyText != "87.5" {
		t.Error("Entries() exposed internal storage")
	}
	if m.ListenerCount("nope") != -1 {
		t.Error("ListenerCount of unknown id should be -1")
	}
}
