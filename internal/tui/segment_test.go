package tui

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/fmremote/internal/display"
)

func TestSegmentText(t *testing.T) {
	base := display.DefaultState()

	tests := []struct {
		name   string
		mutate func(*display.State)
		want   string
	}{
		{"padded to digit count", func(s *display.State) { s.Value = 90.1 }, " 90.10"},
		{"full width", func(s *display.State) { s.Value = 101.1 }, "101.10"},
		{"comma separator", func(s *display.State) { s.Value = 87.5; s.DecimalPointType = DecimalPointComma }, " 87,50"},
		{"no separator", func(s *display.State) { s.Value = 87.5; s.DecimalPointType = DecimalPointNone }, " 8750"},
		{"no decimals", func(s *display.State) { s.Value = 87.5; s.DecimalPlaces = 0 }, " 88"},
		{"invalid value", func(s *display.State) { s.Value = math.NaN() }, "-----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := base
			tt.mutate(&st)
			if got := segmentText(st); got != tt.want {
				t.Errorf("segmentText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSegments_ThreeRows(t *testing.T) {
	st := display.DefaultState()
	st.Value = 88.8

	out := RenderSegments(st)
	rows := strings.Split(out, "\n")
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// "  88.80" is 3 digits wide plus dot and two decimals
	want := 3*3 + 1 + 2*3
	for i, r := range rows {
		if w := lipgloss.Width(r); w != want {
			t.Errorf("row %d width = %d, want %d", i, w, want)
		}
	}
}

func TestSchemeColor(t *testing.T) {
	def := SchemeColor(display.DefaultColorScheme)
	for _, scheme := range []int{0, -1, 7, 99} {
		if got := SchemeColor(scheme); got != def {
			t.Errorf("SchemeColor(%d) = %v, want default %v", scheme, got, def)
		}
	}

	seen := map[lipgloss.Color]bool{}
	for s := display.MinColorScheme; s <= display.MaxColorScheme; s++ {
		seen[SchemeColor(s)] = true
	}
	if len(seen) != display.MaxColorScheme-display.MinColorScheme+1 {
		t.Errorf("schemes share colors: %v", seen)
	}
}

func TestRenderGauge(t *testing.T) {
	tests := []struct {
		level  int
		filled int
	}{
		{0, 0},
		{5, 5},
		{11, 11},
		{15, 15},
	}

	for _, tt := range tests {
		out := RenderGauge(tt.level)
		if got := strings.Count(out, "●"); got != tt.filled {
			t.Errorf("RenderGauge(%d) filled = %d, want %d", tt.level, got, tt.filled)
		}
		if got := strings.Count(out, "○"); got != GaugeDots-tt.filled {
			t.Errorf("RenderGauge(%d) empty = %d, want %d", tt.level, got, GaugeDots-tt.filled)
		}
	}
}

func TestRenderStereo(t *testing.T) {
	if !strings.Contains(RenderStereo(true), "STEREO") {
		t.Error("stereo lamp off when on")
	}
	if !strings.Contains(RenderStereo(false), "MONO") {
		t.Error("stereo lamp on when off")
	}
}

func TestPanel_Stereo(t *testing.T) {
	p := newPanel()

	steps := []struct {
		mode int
		want bool
	}{
		{1, true},
		{2, true}, // other modes keep the lamp
		{0, false},
		{-1, false},
		{1, true},
	}
	for i, s := range steps {
		p.SetStereo(s.mode)
		if p.stereo != s.want {
			t.Errorf("step %d: SetStereo(%d) lamp = %v, want %v", i, s.mode, p.stereo, s.want)
		}
	}
}

func TestPanel_DrawSignalClamps(t *testing.T) {
	p := newPanel()

	for _, tt := range []struct{ in, want int }{{-3, 0}, {7, 7}, {40, GaugeDots}} {
		p.DrawSignal(tt.in, display.GaugeDotSize)
		if p.signal != tt.want {
			t.Errorf("DrawSignal(%d) = %d, want %d", tt.in, p.signal, tt.want)
		}
		if p.dotSize != display.GaugeDotSize {
			t.Errorf("dot size = %d, want %d", p.dotSize, display.GaugeDotSize)
		}
	}
}
