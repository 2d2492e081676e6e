// Package protocol implements the tuner's message protocol.
//
// The protocol is deliberately asymmetric. Device -> client traffic is
// high-frequency telemetry, sent as text frames of EOT-delimited fields so it
// is cheap to split. Client -> device traffic is low-frequency intent, sent as
// small JSON objects.
//
// # Inbound (device -> client)
//
// One WebSocket text frame carries one message:
//
//	TAG 0x04 field1 0x04 field2 ...
//
// Tags:
//
//	HEAD       title                            replace header text
//	STATUS     value, stereo(0/1), level(0-14)  live telemetry
//	PRESET     frequency text, flag(0/1)        announce a preset
//	PRESET*10  frequency x10 integer, flag      same, scaled integer form
//	COLOR      scheme (int)                     display color scheme
//
// Decode splits the frame once and maps the tag to a typed message
// (HeadMessage, StatusMessage, ...). Tags this client does not know become an
// UnknownMessage, which the dispatcher drops, so newer firmware stays
// compatible with older clients.
//
// Example:
//
//	msg := protocol.Decode("PRESET\x0487.5\x041")
//	switch m := msg.(type) {
//	case *protocol.PresetMessage:
//	    fmt.Println(m.FrequencyText, m.DefaultFlagText) // 87.5 1
//	}
//
// # Outbound (client -> device)
//
//	{"id":"init"}
//	{"id":"jump-request","value":"87.5"}
//	{"id":"write-request","value":"101.1"}
//
// Encode produces these from an OutboundCommand. The command constructors
// (InitCommand, NavigateCommand, SetDefaultCommand, SearchUpCommand,
// SearchDownCommand, AddPresetCommand, ColorCommand) cover every id the
// firmware understands.
//
// # Limitations
//
// There is no escaping of the separator. A field containing 0x04 splits into
// extra fields; BuildFrame refuses to produce such frames.
package protocol
