// Package session ties the device channel to the display projector and the
// preset list.
//
// A Session follows the channel lifecycle (Connecting, Open, Closed,
// Errored). When the channel opens it sends {"id":"init"} so the device
// replies with its color scheme and stored presets; afterwards every inbound
// frame is decoded and routed by the Dispatcher:
//
//	HEAD           header title
//	STATUS, COLOR  display.Projector
//	PRESET         preset.Manager.Add
//	PRESET*10      preset.Manager.AddScaled
//
// Any other tag is dropped. Preset selections flow back out through
// Session.Send, which refuses to write unless the channel is Open.
//
// All callbacks run on one goroutine: either Run, draining a transport event
// channel, or the caller's own event loop via HandleEvent.
package session
