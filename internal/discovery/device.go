package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Device is a tuner found on the local network
type Device struct {
	// Instance is the advertised service instance name (e.g., "kitchen-radio")
	Instance string

	// Hostname is the mDNS hostname (e.g., "esp32-radio.local.")
	Hostname string

	// IP is the device address, IPv4 when one was advertised
	IP string

	// Port is the HTTP/WebSocket port (typically 80)
	Port int

	// Metadata contains the mDNS TXT records ("path=/", "title=ESP32 RADIO")
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("Tuner %s (%s) at %s", d.Instance, d.Hostname, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)))
}

// WebSocketURL returns the URL the client dials. The socket path comes from
// the "path" TXT record and defaults to "/".
func (d *Device) WebSocketURL() string {
	path := d.GetMetadata("path")
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(d.IP, strconv.Itoa(d.Port)), path)
}

// Title returns the advertised display title, if any
func (d *Device) Title() string {
	return d.GetMetadata("title")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
