package transport

import (
	"fmt"
	"net/url"
	"strings"
)

// DeviceURL turns a user supplied address into the device's WebSocket URL.
// It accepts a bare host ("radio.local", "192.168.4.1:8080"), an http(s) URL
// or a ws(s) URL. The device serves its socket at "/".
func DeviceURL(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("empty device address")
	}
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}

	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid device address %q: %w", addr, err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("device address %q has no host", addr)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}
