// Package metrics exposes Prometheus collectors for the client session and
// the device simulator, and a small helper to serve them over HTTP.
package metrics
