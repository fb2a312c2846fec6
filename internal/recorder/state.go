package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AppState is what the commands remember between runs.
type AppState struct {
	LastSessionID     string `json:"last_session_id,omitempty"`
	LastDeviceName    string `json:"last_device_name,omitempty"`
	LastDeviceAddress string `json:"last_device_address,omitempty"`
}

// StateFile manages the application state file.
type StateFile struct {
	path  string
	state AppState
}

// NewStateFile loads the state at path, starting empty if it does not exist.
func NewStateFile(path string) (*StateFile, error) {
	sf := &StateFile{path: path}

	if err := sf.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return sf, nil
}

// Load loads the state from disk.
func (sf *StateFile) Load() error {
	data, err := os.ReadFile(sf.path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &sf.state); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	return nil
}

// Save saves the state to disk.
func (sf *StateFile) Save() error {
	data, err := json.MarshalIndent(sf.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(sf.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := os.WriteFile(sf.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// State returns the current state.
func (sf *StateFile) State() AppState {
	return sf.state
}

// SetLastSession remembers the most recent session.
func (sf *StateFile) SetLastSession(id string) error {
	sf.state.LastSessionID = id
	return sf.Save()
}

// SetLastDevice remembers the last connected cube.
func (sf *StateFile) SetLastDevice(name, address string) error {
	sf.state.LastDeviceName = name
	sf.state.LastDeviceAddress = address
	return sf.Save()
}

// LastSessionID returns the most recent session ID.
func (sf *StateFile) LastSessionID() string {
	return sf.state.LastSessionID
}
