// Package devicesim is a simulated tuner device for development and tests.
//
// It serves the device WebSocket protocol at "/": client commands arrive as
// JSON ({"id":...,"value":...}) and the device answers with EOT-delimited
// frames. Behaviour follows the device firmware:
//
//   - init replies with HEAD (when a title is configured), COLOR and one
//     PRESET*10 per stored preset, flagged 1 for the stored default
//   - STATUS is broadcast to every client once a second
//   - searchup-request and searchdown-request seek to the next station,
//     wrapping at the band edges
//   - jump-request tunes, write-request stores the default
//   - preset-request echoes PRESET with the value only, stores it, and makes
//     it the default; at most MaxPresets are kept
//   - color-request cycles the color scheme 1..6 and broadcasts COLOR
//
// Stored settings can be persisted to a YAML file, and the simulator can
// advertise itself over mDNS.
package devicesim
