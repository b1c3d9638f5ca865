package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/sprintboard/core/settings"
	"github.com/huangsam/sprintboard/schema"
)

// stateFile is the on-disk layout of the state file.
type stateFile struct {
	Settings json.RawMessage  `json:"settings"`
	Features []schema.Feature `json:"features"`
}

// LoadState reads the state file. A missing file yields default settings and no features.
// Settings inside the file pass the same validation as an imported settings document.
func LoadState(path string) (schema.State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return schema.State{Settings: settings.Default(), Features: []schema.Feature{}}, nil
	}
	if err != nil {
		return schema.State{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var raw stateFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return schema.State{}, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}

	state := schema.State{Settings: settings.Default(), Features: raw.Features}
	if len(raw.Settings) > 0 && string(raw.Settings) != "null" {
		s, err := settings.Import(raw.Settings)
		if err != nil {
			return schema.State{}, fmt.Errorf("state file %s: %w", path, err)
		}
		state.Settings = s
	}
	if state.Features == nil {
		state.Features = []schema.Feature{}
	}
	return state, nil
}

// SaveState writes the state file through a temporary file in the same directory.
func SaveState(path string, state schema.State) error {
	settingsJSON, err := settings.Export(state.Settings)
	if err != nil {
		return err
	}
	features := state.Features
	if features == nil {
		features = []schema.Feature{}
	}
	data, err := json.MarshalIndent(stateFile{Settings: settingsJSON, Features: features}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// ReadSettingsFile reads a settings document, as YAML for .yaml/.yml files and JSON otherwise.
func ReadSettingsFile(path string) (schema.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	if isYAMLPath(path) {
		return settings.ImportYAML(data)
	}
	return settings.Import(data)
}

// isYAMLPath reports whether a path has a YAML extension.
func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
