package devicesim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/muurk/fmremote/internal/display"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/protocol"
	"go.uber.org/zap"
)

// MaxPresets is how many presets the device stores; further preset-request
// commands are ignored
const MaxPresets = 9

// Band is a tunable range in MHz x10
type Band struct {
	Min int
	Max int
}

// Common FM bands
var (
	BandUS   = Band{Min: 875, Max: 1080}
	BandJP   = Band{Min: 760, Max: 900}
	BandWide = Band{Min: 760, Max: 1080}
)

// Station is a simulated transmitter
type Station struct {
	Frequency int  // MHz x10
	Level     int  // 0..15
	Stereo    bool
}

// ErrNoValue is returned for a frequency command that carries no value
var ErrNoValue = errors.New("command carries no value")

// noiseLevel is the signal level reported between stations
const noiseLevel = 2

// Tuner is the simulated radio and its stored settings. It is not safe for
// concurrent use; Server serializes access.
type Tuner struct {
	band     Band
	stations []Station

	frequency  int // MHz x10
	seeking    int // 0 idle, +1 up, -1 down
	presets    []int
	defaultFrq int
	color      int
	title      string
}

// NewTuner creates a tuner from persisted settings. With no default frequency
// it starts at the bottom of the band.
func NewTuner(band Band, stations []Station, st State, title string) *Tuner {
	sorted := make([]Station, len(stations))
	copy(sorted, stations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Frequency < sorted[j].Frequency })

	t := &Tuner{
		band:       band,
		stations:   sorted,
		presets:    append([]int(nil), st.Presets...),
		defaultFrq: st.Default,
		color:      st.Color,
		title:      title,
	}
	if len(t.presets) > MaxPresets {
		t.presets = t.presets[:MaxPresets]
	}
	if t.color < display.MinColorScheme || t.color > display.MaxColorScheme {
		t.color = display.DefaultColorScheme
	}

	t.frequency = band.Min
	if st.Default != 0 {
		t.frequency = t.clamp(st.Default)
	}
	return t
}

// State returns the settings that survive a restart
func (t *Tuner) State() State {
	return State{
		Presets: append([]int(nil), t.presets...),
		Default: t.defaultFrq,
		Color:   t.color,
	}
}

// Frequency returns the tuned frequency in MHz
func (t *Tuner) Frequency() float64 {
	return float64(t.frequency) / 10.0
}

// Status returns the STATUS frame for the current reception
func (t *Tuner) Status() string {
	level, stereo := noiseLevel, false
	if s, ok := t.stationAt(t.frequency); ok {
		level, stereo = s.Level, s.Stereo
	}
	return protocol.BuildStatus(t.Frequency(), stereo, level)
}

// Tick advances a pending seek. It reports whether anything changed.
func (t *Tuner) Tick() bool {
	if t.seeking == 0 {
		return false
	}
	dir := t.seeking
	t.seeking = 0

	next, ok := t.nextStation(dir)
	if !ok {
		logging.Debug("Seek found no station", zap.Int("direction", dir))
		return false
	}
	t.frequency = next
	logging.Debug("Seek complete", zap.Float64("frequency", t.Frequency()))
	return true
}

// Reply holds the frames a command produces: Direct goes to the sender only,
// Broadcast to every client.
type Reply struct {
	Direct    []string
	Broadcast []string
	Changed   bool // persisted settings changed
}

// Handle applies one client command
func (t *Tuner) Handle(cmd protocol.OutboundCommand) (Reply, error) {
	var r Reply

	switch cmd.ID {
	case protocol.CommandInit:
		if t.title != "" {
			head, err := protocol.BuildHead(t.title)
			if err != nil {
				return r, err
			}
			r.Direct = append(r.Direct, head)
		}
		r.Direct = append(r.Direct, protocol.BuildColor(t.color))
		for _, p := range t.presets {
			r.Direct = append(r.Direct, protocol.BuildScaledPreset(p, p == t.defaultFrq))
		}

	case protocol.CommandSearchUp:
		t.seeking = 1

	case protocol.CommandSearchDown:
		t.seeking = -1

	case protocol.CommandAddPreset:
		if len(t.presets) >= MaxPresets {
			logging.Warn("Preset list full", zap.Int("max", MaxPresets))
			return r, nil
		}
		value, err := commandValue(cmd)
		if err != nil {
			return r, err
		}
		frame, err := protocol.BuildPreset(value)
		if err != nil {
			return r, err
		}
		r.Broadcast = append(r.Broadcast, frame)

		x10, err := parseTenths(value)
		if err != nil {
			return r, err
		}
		t.presets = append(t.presets, x10)
		t.defaultFrq = x10
		r.Changed = true

	case protocol.CommandNavigate:
		value, err := commandValue(cmd)
		if err != nil {
			return r, err
		}
		x10, err := parseTenths(value)
		if err != nil {
			return r, err
		}
		t.seeking = 0
		t.frequency = t.clamp(x10)

	case protocol.CommandSetDefault:
		value, err := commandValue(cmd)
		if err != nil {
			return r, err
		}
		x10, err := parseTenths(value)
		if err != nil {
			return r, err
		}
		t.defaultFrq = x10
		r.Changed = true

	case protocol.CommandColor:
		t.color++
		if t.color > display.MaxColorScheme {
			t.color = display.MinColorScheme
		}
		r.Broadcast = append(r.Broadcast, protocol.BuildColor(t.color))
		r.Changed = true

	default:
		return r, fmt.Errorf("unknown command id %q", cmd.ID)
	}

	return r, nil
}

func (t *Tuner) clamp(x10 int) int {
	if x10 < t.band.Min {
		return t.band.Min
	}
	if x10 > t.band.Max {
		return t.band.Max
	}
	return x10
}

func (t *Tuner) stationAt(x10 int) (Station, bool) {
	for _, s := range t.stations {
		if s.Frequency == x10 {
			return s, true
		}
	}
	return Station{}, false
}

// nextStation steps 0.1 MHz at a time in dir, wrapping at the band edges,
// until it lands on a station other than the current frequency
func (t *Tuner) nextStation(dir int) (int, bool) {
	span := t.band.Max - t.band.Min + 1
	f := t.frequency
	for i := 0; i < span; i++ {
		f += dir
		if f > t.band.Max {
			f = t.band.Min
		}
		if f < t.band.Min {
			f = t.band.Max
		}
		if f == t.frequency {
			break
		}
		if _, ok := t.stationAt(f); ok {
			return f, true
		}
	}
	return 0, false
}

// parseTenths converts MHz text to MHz x10, rounding to the nearest step
func commandValue(cmd protocol.OutboundCommand) (string, error) {
	if !cmd.HasValue() {
		return "", fmt.Errorf("%s: %w", cmd.ID, ErrNoValue)
	}
	return cmd.ValueOr(""), nil
}

func parseTenths(text string) (int, error) {
	v, ok := protocol.ParseFloat(text)
	if !ok || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid frequency %q", text)
	}
	return int(math.Round(v * 10)), nil
}
