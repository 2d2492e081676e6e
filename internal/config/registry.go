package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "fmremote"
	configFile = "config.yaml"

	// ConfigEnvVar names a config file that overrides the platform location
	ConfigEnvVar = "FMREMOTE_CONFIG"
)

// saveMu serializes writers; the dashboard saves from its OnConnected hook
// while a command may still hold the registry
var saveMu sync.Mutex

// GetConfigDir returns the directory fmremote keeps its config and default
// log file in:
//   - Linux and other Unix: $XDG_CONFIG_HOME/fmremote, else ~/.config/fmremote
//   - macOS: ~/.config/fmremote
//   - Windows: %LOCALAPPDATA%\fmremote
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		return windowsConfigDir()
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

func windowsConfigDir() (string, error) {
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		return filepath.Join(local, appName), nil
	}
	profile := os.Getenv("USERPROFILE")
	if profile == "" {
		return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
	}
	return filepath.Join(profile, "AppData", "Local", appName), nil
}

// GetConfigPath returns the config file path: $FMREMOTE_CONFIG when set,
// otherwise config.yaml in GetConfigDir.
func GetConfigPath() (string, error) {
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry loads the registry from GetConfigPath. A missing file yields
// the defaults.
func LoadRegistry() (*Registry, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile loads a registry from path. A missing file yields NewRegistry;
// sections missing from the file are filled with defaults.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if reg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", reg.Version, CurrentVersion)
	}

	reg.normalize()
	return &reg, nil
}

// Save writes the registry to GetConfigPath
func (r *Registry) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveFile(path)
}

// SaveFile writes the registry to path through a temp file and rename, so a
// crash never leaves a truncated config behind
func (r *Registry) SaveFile(path string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# fmremote configuration file\n")
	fmt.Fprintf(&buf, "# Known tuners and client preferences. Presets are stored on the device.\n#\n")
	fmt.Fprintf(&buf, "# Location: %s\n\n", path)
	buf.Write(body)

	return writeAtomic(path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
