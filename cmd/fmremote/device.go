package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/fmremote/internal/config"
	"github.com/muurk/fmremote/internal/discovery"
	"github.com/muurk/fmremote/internal/logging"
	"github.com/muurk/fmremote/internal/transport"
	"github.com/muurk/fmremote/internal/ui"
)

// errNoDevice is returned when nothing names a device and discovery is off
var errNoDevice = errors.New("no device given; pass one or set preferences.default_device")

// target is a resolved device
type target struct {
	URL      string
	Instance string
}

// resolveTarget maps a user-supplied name to a device URL without touching
// the network. Known nicknames and instances win over address parsing.
func resolveTarget(reg *config.Registry, name string) (target, error) {
	if url, d, ok := reg.FindDevice(name); ok {
		return target{URL: url, Instance: d.Instance}, nil
	}

	url, err := transport.DeviceURL(name)
	if err != nil {
		return target{}, err
	}
	t := target{URL: url}
	if d := reg.GetDevice(url); d != nil {
		t.Instance = d.Instance
	}
	return t, nil
}

// looksLikeInstance reports whether name is a bare mDNS instance name rather
// than an address
func looksLikeInstance(name string) bool {
	return name != "" && !strings.ContainsAny(name, ".:/[")
}

// resolveDevice is resolveTarget falling back to the configured default
// device, then to an mDNS scan that must find exactly one tuner. An unknown
// bare name is first looked up as an mDNS instance.
func resolveDevice(ctx context.Context, reg *config.Registry, name string, p *ui.Printer) (target, error) {
	prefs := reg.Preferences
	if name == "" {
		name = prefs.DefaultDevice
	}
	if name != "" {
		if _, _, known := reg.FindDevice(name); known || !prefs.AutoDiscover || !looksLikeInstance(name) {
			return resolveTarget(reg, name)
		}

		p.Printf("Looking for %q on %s...\n", name, discovery.ServiceType)
		scanner := discovery.NewScanner()
		scanner.Timeout = prefs.DiscoverTimeoutDuration()
		d, err := scanner.WaitForDevice(ctx, name)
		if err == nil {
			return target{URL: d.WebSocketURL(), Instance: d.Instance}, nil
		}
		logging.Debug("Instance lookup failed, trying as a host name", zap.String("name", name), zap.Error(err))
		return resolveTarget(reg, name)
	}
	if !prefs.AutoDiscover {
		return target{}, errNoDevice
	}

	p.Printf("No device specified, browsing %s for %s...\n", discovery.ServiceType, prefs.DiscoverTimeoutDuration())

	scanner := discovery.NewScanner()
	scanner.Timeout = prefs.DiscoverTimeoutDuration()
	devices, err := scanner.ScanForDevices(ctx)
	if err != nil {
		return target{}, fmt.Errorf("discovery failed: %w", err)
	}

	switch len(devices) {
	case 0:
		return target{}, fmt.Errorf("no tuners found; pass an address or run 'fmremote scan --timeout 10'")
	case 1:
		d := devices[0]
		p.Printf("Found %s\n\n", d)
		return target{URL: d.WebSocketURL(), Instance: d.Instance}, nil
	default:
		names := make([]string, len(devices))
		for i, d := range devices {
			names[i] = d.Instance
		}
		return target{}, fmt.Errorf("multiple tuners found (%s); pass one by name", strings.Join(names, ", "))
	}
}
