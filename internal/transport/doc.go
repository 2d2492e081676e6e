// Package transport connects to a tuner device over a WebSocket.
//
// A Client dials once and then reports everything that happens on the
// connection as Events on a single channel: EventOpen, one EventMessage per
// text frame, EventError when the connection fails, and a final EventClose
// after which the channel is closed. Consumers process the channel from one
// goroutine, so the packages above the transport need no locking.
//
// Send may be called from any goroutine; writes are serialized. There is no
// reconnection and no outbound buffering.
package transport
