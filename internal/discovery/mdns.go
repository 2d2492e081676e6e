package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/fmremote/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type tuners advertise
	ServiceType = "_fmremote._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the tuner's HTTP/WebSocket port when the record has none
	DefaultPort = 80
)

// ErrNotFound is returned by WaitForDevice when the instance never answers
var ErrNotFound = errors.New("tuner not found")

// Scanner browses the local network for tuners
type Scanner struct {
	// Timeout bounds every browse
	Timeout time.Duration
}

// NewScanner creates a scanner with DefaultScanTimeout
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// ScanForDevices collects every tuner that answers before the timeout, one
// entry per instance, in the order they answered
func (s *Scanner) ScanForDevices(ctx context.Context) ([]*Device, error) {
	devices := make([]*Device, 0)
	seen := make(map[string]bool)

	err := s.browse(ctx, func(d *Device) bool {
		if !seen[d.Instance] {
			seen[d.Instance] = true
			devices = append(devices, d)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// WaitForDevice browses until a tuner with the given instance name (case
// insensitive) answers, or returns ErrNotFound at the timeout
func (s *Scanner) WaitForDevice(ctx context.Context, instance string) (*Device, error) {
	var found *Device
	err := s.browse(ctx, func(d *Device) bool {
		if strings.EqualFold(d.Instance, instance) {
			found = d
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q did not answer within %s", ErrNotFound, instance, s.Timeout)
	}
	return found, nil
}

// browse runs one mDNS query and hands each usable answer to fn on a single
// goroutine. It returns when fn returns false, the timeout elapses or ctx is
// done.
func (s *Scanner) browse(ctx context.Context, fn func(*Device) bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// the resolver closes entries once ctx is done
	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		wanted := true
		for entry := range entries {
			d := parseServiceEntry(entry)
			if d == nil || !wanted {
				continue
			}
			logging.Debug("Discovered tuner", zap.String("device", d.String()))
			if !fn(d) {
				wanted = false
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		// entries is never closed when Browse fails to start
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done
	return nil
}

// parseServiceEntry converts a zeroconf answer to a Device, or nil when the
// answer carries no address
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil || entry.HostName == "" {
		return nil
	}

	var ip string
	switch {
	case len(entry.AddrIPv4) > 0:
		ip = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		ip = entry.AddrIPv6[0].String()
	default:
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	instance := entry.Instance
	if instance == "" {
		instance = strings.TrimSuffix(strings.TrimSuffix(entry.HostName, "."), ".local")
	}

	return &Device{
		Instance:     instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
