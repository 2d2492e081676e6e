package devicesim

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is the simulated device's non-volatile storage. Frequencies are MHz x10.
type State struct {
	Presets []int `yaml:"presets"`
	Default int   `yaml:"default"`
	Color   int   `yaml:"color"`
}

// DefaultState is what a factory-fresh simulator starts with
func DefaultState() State {
	return State{
		Presets: []int{875, 901, 1011},
		Default: 901,
		Color:   2,
	}
}

// LoadState reads path. A missing file yields DefaultState.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultState(), nil
		}
		return State{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	return st, nil
}

// SaveState writes st to path atomically
func SaveState(path string, st State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save state file: %w", err)
	}
	return nil
}
