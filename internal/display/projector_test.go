package display

import (
	"errors"
	"math"
	"testing"
)

type fakeWidget struct {
	renders []State
}

func (w *fakeWidget) Render(s State) { w.renders = append(w.renders, s) }

type gaugeCall struct{ level, size int }

type fakeGauge struct {
	calls []gaugeCall
}

func (g *fakeGauge) DrawSignal(level, size int) {
	g.calls = append(g.calls, gaugeCall{level, size})
}

type fakeStereo struct {
	modes []int
}

func (s *fakeStereo) SetStereo(mode int) { s.modes = append(s.modes, mode) }

func newTestProjector() (*Projector, *fakeWidget, *fakeGauge, *fakeStereo) {
	w, g, s := &fakeWidget{}, &fakeGauge{}, &fakeStereo{}
	p := NewProjector(WithWidget(w), WithGauge(g), WithStereoIndicator(s))
	return p, w, g, s
}

func TestApplyStatus_ValueMatchesParsedFloat(t *testing.T) {
	tests := []struct {
		valueText string
		want      float64
	}{
		{"87.5", 87.5},
		{"87.500000", 87.5},
		{"101.100000", 101.1},
		{"108", 108},
		{"76.000000", 76},
		{"99.9", 99.9},
	}

	for _, tt := range tests {
		t.Run(tt.valueText, func(t *testing.T) {
			p, w, _, _ := newTestProjector()
			p.ApplyStatus(tt.valueText, "1", "9")

			if got := p.State().Value; got != tt.want {
				t.Errorf("State().Value = %v, want %v", got, tt.want)
			}
			if len(w.renders) != 1 || w.renders[0].Value != tt.want {
				t.Errorf("widget renders = %v, want one render with value %v", w.renders, tt.want)
			}
		})
	}
}

func TestApplyStatus_SideEffects(t *testing.T) {
	p, _, g, s := newTestProjector()

	p.ApplyStatus("90.1", "1", "12")
	p.ApplyStatus("90.1", "0", "3")

	wantModes := []int{1, 0}
	if len(s.modes) != len(wantModes) {
		t.Fatalf("stereo calls = %v, want %v", s.modes, wantModes)
	}
	for i := range wantModes {
		if s.modes[i] != wantModes[i] {
			t.Errorf("stereo call %d = %d, want %d", i, s.modes[i], wantModes[i])
		}
	}

	wantGauge := []gaugeCall{{12, GaugeDotSize}, {3, GaugeDotSize}}
	if len(g.calls) != len(wantGauge) {
		t.Fatalf("gauge calls = %v, want %v", g.calls, wantGauge)
	}
	for i := range wantGauge {
		if g.calls[i] != wantGauge[i] {
			t.Errorf("gauge call %d = %v, want %v", i, g.calls[i], wantGauge[i])
		}
	}
}

func TestApplyStatus_MalformedPropagates(t *testing.T) {
	p, w, g, s := newTestProjector()

	p.ApplyStatus("tuning", "x", "")

	if v := p.State().Value; !math.IsNaN(v) {
		t.Errorf("State().Value = %v, want NaN", v)
	}
	if len(w.renders) != 1 || !math.IsNaN(w.renders[0].Value) {
		t.Errorf("widget should receive NaN, got %v", w.renders)
	}
	if len(s.modes) != 1 || s.modes[0] != 0 {
		t.Errorf("stereo calls = %v, want [0]", s.modes)
	}
	if len(g.calls) != 1 || g.calls[0].level != 0 {
		t.Errorf("gauge calls = %v, want level 0", g.calls)
	}
	if p.State().FormatValue() != "-----" {
		t.Errorf("FormatValue() = %q, want dashes", p.State().FormatValue())
	}
}

func TestApplyColor(t *testing.T) {
	tests := []struct {
		colorText string
		want      int
	}{
		{"1", 1},
		{"6", 6},
		{"4", 4},
		{"blue", 0},
	}

	for _, tt := range tests {
		t.Run(tt.colorText, func(t *testing.T) {
			p, w, _, _ := newTestProjector()
			p.ApplyColor(tt.colorText)

			if got := p.State().ColorScheme; got != tt.want {
				t.Errorf("ColorScheme = %d, want %d", got, tt.want)
			}
			if len(w.renders) != 1 {
				t.Errorf("expected one render, got %d", len(w.renders))
			}
		})
	}
}

func TestApplyColor_KeepsValue(t *testing.T) {
	p, _, _, _ := newTestProjector()
	p.ApplyStatus("95.5", "0", "1")
	p.ApplyColor("5")

	if p.State().Value != 95.5 {
		t.Errorf("Value changed to %v by ApplyColor", p.State().Value)
	}
}

func TestInitialize(t *testing.T) {
	p, w, _, _ := newTestProjector()

	if p.Initialized() {
		t.Fatal("new projector reports initialized")
	}
	if err := p.Initialize(3, 1, 1, 4); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	want := State{Value: 0, ColorScheme: 3, DecimalPointType: 1, DecimalPlaces: 1, DigitCount: 4}
	if got := p.State(); got != want {
		t.Errorf("State() = %v, want %v", got, want)
	}
	if len(w.renders) != 1 {
		t.Errorf("Initialize should render once, got %d", len(w.renders))
	}

	if err := p.Initialize(1, 1, 1, 1); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Initialize() error = %v, want ErrAlreadyInitialized", err)
	}
	if got := p.State(); got != want {
		t.Errorf("second Initialize changed state to %v", got)
	}
}

func TestProjector_NilCollaborators(t *testing.T) {
	p := NewProjector()

	p.ApplyStatus("88.8", "1", "7")
	p.ApplyColor("2")
	if err := p.Initialize(DefaultColorScheme, DefaultDecimalPointType, DefaultDecimalPlaces, DefaultDigitCount); err != nil {
		t.Fatal(err)
	}

	if p.State().Value != 88.8 {
		t.Errorf("Value = %v, want 88.8", p.State().Value)
	}
}

func TestState_FormatValue(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"default places", State{Value: 87.5, DecimalPlaces: 2, DigitCount: 3}, "87.50"},
		{"one place", State{Value: 101.1, DecimalPlaces: 1, DigitCount: 3}, "101.1"},
		{"no places", State{Value: 90, DecimalPlaces: 0, DigitCount: 3}, "90"},
		{"infinite", State{Value: math.Inf(1), DecimalPlaces: 1, DigitCount: 3}, "----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.FormatValue(); got != tt.want {
				t.Errorf("FormatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
