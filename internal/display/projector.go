package display

import (
	"errors"

	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/protocol"
	"go.uber.org/zap"
)

// ErrAlreadyInitialized is returned by a second Initialize call
var ErrAlreadyInitialized = errors.New("display already initialized")

// Widget draws the segment display from a state snapshot
type Widget interface {
	Render(state State)
}

// Gauge draws the signal strength gauge
type Gauge interface {
	DrawSignal(level int, size int)
}

// StereoIndicator toggles the stereo indicator (0 = mono, 1 = stereo)
type StereoIndicator interface {
	SetStereo(mode int)
}

// Projector applies decoded telemetry to the display state.
// It is not safe for concurrent use; callers drive it from one event loop.
type Projector struct {
	state       State
	initialized bool

	widget Widget
	gauge  Gauge
	stereo StereoIndicator
}

// Option configures a Projector
type Option func(*Projector)

// WithWidget sets the display widget
func WithWidget(w Widget) Option {
	return func(p *Projector) { p.widget = w }
}

// WithGauge sets the signal gauge
func WithGauge(g Gauge) Option {
	return func(p *Projector) { p.gauge = g }
}

// WithStereoIndicator sets the stereo indicator
func WithStereoIndicator(s StereoIndicator) Option {
	return func(p *Projector) { p.stereo = s }
}

// NewProjector creates a projector holding DefaultState. Any collaborator may
// be left unset for headless use.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{state: DefaultState()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialize performs the one-time display setup done before any message arrives
func (p *Projector) Initialize(colorScheme, decimalPointType, decimalPlaces, digitCount int) error {
	if p.initialized {
		return ErrAlreadyInitialized
	}
	p.initialized = true

	p.state.ColorScheme = colorScheme
	p.state.DecimalPointType = decimalPointType
	p.state.DecimalPlaces = decimalPlaces
	p.state.DigitCount = digitCount

	logging.Debug("Display initialized", zap.String("state", p.state.String()))
	p.render()
	return nil
}

// Initialized reports whether Initialize has run
func (p *Projector) Initialized() bool {
	return p.initialized
}

// ApplyStatus applies one STATUS message. A malformed value becomes NaN and is
// passed to the widget as is; malformed integers become 0.
func (p *Projector) ApplyStatus(valueText, stereoText, signalText string) {
	value, ok := protocol.ParseFloat(valueText)
	if !ok {
		logging.Warn("Malformed status value", zap.String("value", valueText))
	}
	stereo, ok := protocol.ParseInt(stereoText)
	if !ok {
		logging.Warn("Malformed stereo mode", zap.String("stereo", stereoText))
	}
	signal, ok := protocol.ParseInt(signalText)
	if !ok {
		logging.Warn("Malformed signal level", zap.String("signal", signalText))
	}

	p.state.Value = value

	if p.stereo != nil {
		p.stereo.SetStereo(stereo)
	}
	if p.gauge != nil {
		p.gauge.DrawSignal(signal, GaugeDotSize)
	}
	p.render()
}

// ApplyColor applies one COLOR message
func (p *Projector) ApplyColor(colorText string) {
	scheme, ok := protocol.ParseInt(colorText)
	if !ok {
		logging.Warn("Malformed color scheme", zap.String("color", colorText))
	}

	p.state.ColorScheme = scheme
	p.render()
}

// State returns a copy of the current display state
func (p *Projector) State() State {
	return p.state
}

func (p *Projector) render() {
	if p.widget != nil {
		p.widget.Render(p.state)
	}
}
