package session

import (
	"github.com/muurk/fmremote/internal/display"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/metrics"
	"github.com/muurk/fmremote/internal/preset"
	"github.com/muurk/fmremote/internal/protocol"
	"go.uber.org/zap"
)

// HeaderSink receives HEAD titles
type HeaderSink interface {
	SetHeader(title string)
}

// HeaderFunc adapts a function to HeaderSink
type HeaderFunc func(title string)

// SetHeader calls f(title)
func (f HeaderFunc) SetHeader(title string) { f(title) }

// Dispatcher routes decoded inbound messages to the component that owns them
type Dispatcher struct {
	projector *display.Projector
	presets   *preset.Manager
	header    HeaderSink
	metrics   *metrics.Metrics
}

// NewDispatcher creates a dispatcher. header and m may be nil.
func NewDispatcher(projector *display.Projector, presets *preset.Manager, header HeaderSink, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		projector: projector,
		presets:   presets,
		header:    header,
		metrics:   m,
	}
}

// Dispatch handles one message and reports whether its tag was recognized.
// Unrecognized messages have no effect.
func (d *Dispatcher) Dispatch(msg protocol.Message) bool {
	switch m := msg.(type) {
	case *protocol.HeadMessage:
		if d.header != nil {
			d.header.SetHeader(m.Title)
		}

	case *protocol.StatusMessage:
		d.projector.ApplyStatus(m.ValueText, m.StereoText, m.SignalText)
		stereo, _ := protocol.ParseInt(m.StereoText)
		signal, _ := protocol.ParseInt(m.SignalText)
		d.metrics.ObserveStatus(d.projector.State().Value, stereo, signal)

	case *protocol.ColorMessage:
		d.projector.ApplyColor(m.ColorText)

	case *protocol.PresetMessage:
		d.presets.Add(m.FrequencyText, presetFlag(m.DefaultFlagText))
		d.metrics.SetPresets(d.presets.Len())

	case *protocol.ScaledPresetMessage:
		d.presets.AddScaled(m.ScaledText, m.DefaultFlagText)
		d.metrics.SetPresets(d.presets.Len())

	case *protocol.UnknownMessage:
		logging.Debug("Dropping unrecognized message",
			zap.String("tag", m.Record.Tag),
			zap.Int("fields", len(m.Record.Fields)),
		)
		d.metrics.FrameReceived(m.Tag(), false)
		return false

	default:
		return false
	}

	d.metrics.FrameReceived(msg.Tag(), true)
	return true
}

// presetFlag reads the PRESET selection flag. The device echoes a newly
// stored preset without a flag and makes it the default, so a missing flag
// selects.
func presetFlag(text string) bool {
	if text == "" {
		return true
	}
	n, _ := protocol.ParseInt(text)
	return n == 1
}
