// Package tui is the interactive full-screen remote control.
//
// It is built on the Bubble Tea framework with Bubbles components and
// Lipgloss styling, and has two screens:
//
//   - Discovery: browses for tuners over mDNS, or takes an address typed by
//     hand, and lets the user pick one
//   - Dashboard: the remote itself. A seven-segment rendering of the tuned
//     frequency in the device's color scheme, the 15-dot signal gauge, the
//     stereo lamp, the station title, and the preset list
//
// # Event flow
//
// The dashboard owns one session.Session per connection. The transport
// client's reader goroutine queues events; a waitForEvent command pulls them
// one at a time and Update hands each to Session.HandleEvent, so the session
// is only ever touched on the Bubble Tea goroutine. The session's display
// projector draws into a panel, which implements display.Widget,
// display.Gauge, display.StereoIndicator and session.HeaderSink, and View
// reads the panel back.
//
// There is no automatic reconnect. When the channel closes the dashboard
// says so and 'r' opens a new connection.
//
// # Usage
//
//	err := tui.Run(ctx, tui.Options{
//		URL:     "ws://192.168.1.40/",
//		Display: session.DefaultDisplay(),
//	})
//
// Leaving URL empty starts on the discovery screen.
//
// # Key Bindings
//
// Dashboard:
//   - ↑/↓ or k/j: Move the preset cursor
//   - enter: Tune to the preset under the cursor
//   - d: Make the preset under the cursor the power-on default
//   - ←/→ or [/]: Seek down/up
//   - a: Store the current frequency as a preset
//   - c: Cycle the display color scheme
//   - r: Reconnect after the channel closed
//   - esc: Back to discovery (when the device was picked there)
//   - ?: Toggle full help
//   - q: Quit
//
// Discovery:
//   - ↑/↓: Move between tuners
//   - enter: Connect
//   - r: Rescan
//   - m: Enter an address by hand
//   - q: Quit
//
// Logging goes to a file while the alternate screen is active; see the
// fmremote command's --log-file flag.
package tui
