package config

import (
	"strings"
	"time"
)

// CurrentVersion is the config file schema version
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// This stores known tuners and application preferences. Presets and display
// state live on the device and are never stored here.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by WebSocket URL
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents user-defined metadata for a single tuner.
// This is keyed by the device's WebSocket URL in the Registry.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Instance string    `yaml:"instance,omitempty"`  // mDNS instance name, when discovered
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool          `yaml:"auto_discover"`            // Browse mDNS when no device is given
	DiscoverTimeout int           `yaml:"discover_timeout"`         // mDNS discovery timeout in seconds
	DefaultDevice   string        `yaml:"default_device,omitempty"` // URL, nickname or instance to connect to
	Display         *DisplayPrefs `yaml:"display,omitempty"`
	Groups          *GroupPrefs   `yaml:"groups,omitempty"`
	LogLevel        string        `yaml:"log_level,omitempty"`
	LogFile         string        `yaml:"log_file,omitempty"` // Dashboard log destination
}

// DisplayPrefs are the segment display parameters used at session start.
type DisplayPrefs struct {
	ColorScheme      int `yaml:"color_scheme"`
	DecimalPointType int `yaml:"decimal_point_type"`
	DecimalPlaces    int `yaml:"decimal_places"`
	DigitCount       int `yaml:"digit_count"`
}

// GroupPrefs name the two preset control groups. The names double as the
// outbound command ids.
type GroupPrefs struct {
	Navigate   string `yaml:"navigate"`
	SetDefault string `yaml:"set_default"`
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 5,
		Display: &DisplayPrefs{
			ColorScheme:      2,
			DecimalPointType: 2,
			DecimalPlaces:    2,
			DigitCount:       3,
		},
		Groups: &GroupPrefs{
			Navigate:   "jump-request",
			SetDefault: "write-request",
		},
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// normalize fills sections missing from an older or hand-edited file
func (r *Registry) normalize() {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	defaults := defaultPreferences()
	if r.Preferences == nil {
		r.Preferences = defaults
		return
	}
	if r.Preferences.DiscoverTimeout <= 0 {
		r.Preferences.DiscoverTimeout = defaults.DiscoverTimeout
	}
	if r.Preferences.Display == nil {
		r.Preferences.Display = defaults.Display
	}
	if r.Preferences.Groups == nil {
		r.Preferences.Groups = defaults.Groups
	}
}

// GetDevice retrieves device metadata by URL.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(url string) *Device {
	return r.Devices[url]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(url string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[url]; exists {
		return device
	}

	device := &Device{}
	r.Devices[url] = device
	return device
}

// UpdateDeviceLastSeen records a discovery or connection.
// instance may be empty for devices added by URL.
func (r *Registry) UpdateDeviceLastSeen(url, instance string) {
	device := r.EnsureDevice(url)
	device.LastSeen = time.Now()
	if instance != "" {
		device.Instance = instance
	}
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(url, nickname string) {
	device := r.EnsureDevice(url)
	device.Nickname = nickname
}

// FindDevice resolves a URL, nickname or mDNS instance name (case-insensitive
// for names) to a known device URL.
func (r *Registry) FindDevice(target string) (string, *Device, bool) {
	if target == "" {
		return "", nil, false
	}
	if d, ok := r.Devices[target]; ok {
		return target, d, true
	}
	for url, d := range r.Devices {
		if strings.EqualFold(d.Nickname, target) || strings.EqualFold(d.Instance, target) {
			return url, d, true
		}
	}
	return "", nil, false
}

// DiscoverTimeoutDuration returns the discovery timeout as a duration
func (p *Preferences) DiscoverTimeoutDuration() time.Duration {
	return time.Duration(p.DiscoverTimeout) * time.Second
}
