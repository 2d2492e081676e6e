package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Outbound command ids (client -> device). The two group ids double as the
// names of the preset selection groups.
const (
	CommandInit       = "init"
	CommandNavigate   = "jump-request"
	CommandSetDefault = "write-request"
	CommandSearchUp   = "searchup-request"
	CommandSearchDown = "searchdown-request"
	CommandAddPreset  = "preset-request"
	CommandColor      = "color-request"
)

// ErrMissingID is returned when a command has no id
var ErrMissingID = errors.New("command has no id")

// OutboundCommand is the structured intent sent to the device
type OutboundCommand struct {
	ID    string
	Value *string
}

// HasValue reports whether the command carries a value
func (c OutboundCommand) HasValue() bool {
	return c.Value != nil
}

// ValueOr returns the value, or def when the command carries none
func (c OutboundCommand) ValueOr(def string) string {
	if !c.HasValue() {
		return def
	}
	return *c.Value
}

// String returns a debug representation of the command
func (c OutboundCommand) String() string {
	if !c.HasValue() {
		return fmt.Sprintf("Command{id=%s}", c.ID)
	}
	return fmt.Sprintf("Command{id=%s, value=%s}", c.ID, *c.Value)
}

// wireCommand is the JSON shape on the wire
type wireCommand struct {
	ID    string  `json:"id"`
	Value *string `json:"value,omitempty"`
}

// Encode serializes a command as {"id":...} or {"id":...,"value":...}
func Encode(cmd OutboundCommand) (string, error) {
	if cmd.ID == "" {
		return "", ErrMissingID
	}

	data, err := json.Marshal(wireCommand{ID: cmd.ID, Value: cmd.Value})
	if err != nil {
		return "", fmt.Errorf("failed to marshal command: %w", err)
	}
	return string(data), nil
}

// DecodeCommand parses a client command. The simulator uses this on the
// device side; the client never decodes its own output.
func DecodeCommand(text string) (OutboundCommand, error) {
	var w wireCommand
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return OutboundCommand{}, fmt.Errorf("failed to parse command: %w", err)
	}
	if w.ID == "" {
		return OutboundCommand{}, ErrMissingID
	}
	return OutboundCommand{ID: w.ID, Value: w.Value}, nil
}

// NewCommand builds a command without a value
func NewCommand(id string) OutboundCommand {
	return OutboundCommand{ID: id}
}

// NewValueCommand builds a command carrying a value
func NewValueCommand(id, value string) OutboundCommand {
	return OutboundCommand{ID: id, Value: &value}
}

// InitCommand requests a full state snapshot (sent on open)
func InitCommand() OutboundCommand { return NewCommand(CommandInit) }

// NavigateCommand asks the device to tune to frequency
func NavigateCommand(frequency string) OutboundCommand {
	return NewValueCommand(CommandNavigate, frequency)
}

// SetDefaultCommand asks the device to persist frequency as its power-on default
func SetDefaultCommand(frequency string) OutboundCommand {
	return NewValueCommand(CommandSetDefault, frequency)
}

// SearchUpCommand starts a seek towards higher frequencies
func SearchUpCommand() OutboundCommand { return NewCommand(CommandSearchUp) }

// SearchDownCommand starts a seek towards lower frequencies
func SearchDownCommand() OutboundCommand { return NewCommand(CommandSearchDown) }

// AddPresetCommand asks the device to store frequency as a new preset
func AddPresetCommand(frequency string) OutboundCommand {
	return NewValueCommand(CommandAddPreset, frequency)
}

// ColorCommand asks the device to cycle the display color scheme
func ColorCommand() OutboundCommand { return NewCommand(CommandColor) }
