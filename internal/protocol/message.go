package protocol

import (
	"fmt"
	"strings"
)

// FieldSeparator is the ASCII End-Of-Transmission byte used between fields of
// an inbound frame. There is no escaping: a field containing 0x04 is a
// protocol violation and splits into extra fields.
const FieldSeparator = "\x04"

// Inbound message tags (device -> client)
const (
	TagHead         = "HEAD"
	TagStatus       = "STATUS"
	TagPreset       = "PRESET"
	TagScaledPreset = "PRESET*10"
	TagColor        = "COLOR"
)

// Record is the raw split of one inbound frame: field 0 is the tag, the rest are fields.
type Record struct {
	Tag    string
	Fields []string
}

// Field returns the i-th field (0-based, tag excluded), or "" when absent.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// String returns a debug representation of the record
func (r Record) String() string {
	return fmt.Sprintf("Record{tag=%q, fields=%q}", r.Tag, r.Fields)
}

// Message is a decoded inbound message. The set of implementations is closed:
// HeadMessage, StatusMessage, PresetMessage, ScaledPresetMessage, ColorMessage
// and UnknownMessage.
type Message interface {
	Tag() string
	String() string
	isMessage()
}

// HeadMessage (HEAD) replaces the header title
type HeadMessage struct {
	Title string
}

func (m *HeadMessage) Tag() string { return TagHead }
func (m *HeadMessage) isMessage()  {}

func (m *HeadMessage) String() string {
	return fmt.Sprintf("Head{title=%q}", m.Title)
}

// StatusMessage (STATUS) is live telemetry. Fields stay as text; the display
// projector owns their numeric interpretation.
type StatusMessage struct {
	ValueText  string // frequency in MHz, float text (firmware uses %f)
	StereoText string // 0 = mono, 1 = stereo
	SignalText string // signal level 0-14
}

func (m *StatusMessage) Tag() string { return TagStatus }
func (m *StatusMessage) isMessage()  {}

func (m *StatusMessage) String() string {
	return fmt.Sprintf("Status{value=%s, stereo=%s, signal=%s}", m.ValueText, m.StereoText, m.SignalText)
}

// PresetMessage (PRESET) announces a preset with literal frequency text
type PresetMessage struct {
	FrequencyText string
	// DefaultFlagText drives the initial selection of the set-default control.
	// Empty when the device sent the one-field form.
	DefaultFlagText string
}

func (m *PresetMessage) Tag() string { return TagPreset }
func (m *PresetMessage) isMessage()  {}

func (m *PresetMessage) String() string {
	return fmt.Sprintf("Preset{frequency=%s, default=%s}", m.FrequencyText, m.DefaultFlagText)
}

// ScaledPresetMessage (PRESET*10) announces a preset as frequency x10 integer text
type ScaledPresetMessage struct {
	ScaledText      string
	DefaultFlagText string
}

func (m *ScaledPresetMessage) Tag() string { return TagScaledPreset }
func (m *ScaledPresetMessage) isMessage()  {}

func (m *ScaledPresetMessage) String() string {
	return fmt.Sprintf("ScaledPreset{frequency_x10=%s, default=%s}", m.ScaledText, m.DefaultFlagText)
}

// ColorMessage (COLOR) changes the display color scheme
type ColorMessage struct {
	ColorText string
}

func (m *ColorMessage) Tag() string { return TagColor }
func (m *ColorMessage) isMessage()  {}

func (m *ColorMessage) String() string {
	return fmt.Sprintf("Color{scheme=%s}", m.ColorText)
}

// UnknownMessage - fallback for tags this client does not recognize.
// Newer firmware may add tags; they decode here and are dropped by dispatch.
type UnknownMessage struct {
	Record Record
}

func (m *UnknownMessage) Tag() string { return m.Record.Tag }
func (m *UnknownMessage) isMessage()  {}

func (m *UnknownMessage) String() string {
	return fmt.Sprintf("Unknown{tag=%q, fields=%d}", m.Record.Tag, len(m.Record.Fields))
}

// Split splits a raw inbound frame on the EOT separator. It never fails: text
// without a separator becomes a record whose tag is the whole text.
func Split(raw string) Record {
	parts := strings.Split(raw, FieldSeparator)
	return Record{
		Tag:    parts[0],
		Fields: parts[1:],
	}
}

// Decode splits a raw inbound frame and maps it to its message variant.
// Missing positional fields decode as empty text.
func Decode(raw string) Message {
	return FromRecord(Split(raw))
}

// FromRecord maps an already split record to its message variant.
// A record without fields came from text with no separator at all and is
// never a known message, whatever its tag.
func FromRecord(r Record) Message {
	if len(r.Fields) == 0 {
		return &UnknownMessage{Record: r}
	}

	switch r.Tag {
	case TagHead:
		return &HeadMessage{Title: r.Field(0)}
	case TagStatus:
		return &StatusMessage{
			ValueText:  r.Field(0),
			StereoText: r.Field(1),
			SignalText: r.Field(2),
		}
	case TagPreset:
		return &PresetMessage{
			FrequencyText:   r.Field(0),
			DefaultFlagText: r.Field(1),
		}
	case TagScaledPreset:
		return &ScaledPresetMessage{
			ScaledText:      r.Field(0),
			DefaultFlagText: r.Field(1),
		}
	case TagColor:
		return &ColorMessage{ColorText: r.Field(0)}
	default:
		return &UnknownMessage{Record: r}
	}
}

// IsKnownTag reports whether the tag maps to a handled message variant
func IsKnownTag(tag string) bool {
	switch tag {
	case TagHead, TagStatus, TagPreset, TagScaledPreset, TagColor:
		return true
	default:
		return false
	}
}
