package tui

import (
	"github.com/muurk/fmremote/internal/display"
)

// panel is the dashboard's display surface. The session's projector drives
// it through the display.Widget, display.Gauge and display.StereoIndicator
// interfaces; View reads it back.
type panel struct {
	state    display.State
	signal   int
	dotSize  int
	stereo   bool
	header   string
	renders  int
	hasValue bool
}

func newPanel() *panel {
	return &panel{state: display.DefaultState()}
}

// Render implements display.Widget
func (p *panel) Render(st display.State) {
	p.state = st
	p.renders++
	p.hasValue = true
}

// DrawSignal implements display.Gauge
func (p *panel) DrawSignal(level, size int) {
	if level < 0 {
		level = 0
	}
	if level > GaugeDots {
		level = GaugeDots
	}
	p.signal = level
	p.dotSize = size
}

// SetStereo implements display.StereoIndicator. Modes other than 0 and 1
// leave the lamp as it was.
func (p *panel) SetStereo(mode int) {
	switch mode {
	case 0:
		p.stereo = false
	case 1:
		p.stereo = true
	}
}

// SetHeader implements session.HeaderSink
func (p *panel) SetHeader(title string) {
	p.header = title
}
