// Package state persists operator toggles between brain runs.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tactical-os/tos/pkg/paths"
	"gopkg.in/yaml.v3"
)

// Keys of the toggles the brain restores on start.
const (
	KeyAudioEnabled = "audio.enabled"
	KeyAudioEffects = "audio.chirps"
	KeyAudioAmbient = "audio.ambient"
)

// State represents the persisted tos state as a generic map of key-value pairs.
type State map[string]interface{}

// Load loads the state from the state file.
// Returns an empty state if the file doesn't exist.
func Load() (State, error) {
	data, err := os.ReadFile(paths.StateFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(State), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}

	if state == nil {
		state = make(State)
	}

	return state, nil
}

// Save saves the state to the state file.
func Save(state State) error {
	path := paths.StateFilePath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// Get retrieves a value from the state by key.
// Returns the value and true if found, nil and false otherwise.
func Get(key string) (interface{}, bool, error) {
	state, err := Load()
	if err != nil {
		return nil, false, err
	}

	val, ok := state[key]
	return val, ok, nil
}

// Bool returns the boolean stored under key. ok is false when the key is
// missing or holds another type.
func (s State) Bool(key string) (value bool, ok bool) {
	value, ok = s[key].(bool)
	return value, ok
}

// Set sets a value in the state.
func Set(key string, value interface{}) error {
	state, err := Load()
	if err != nil {
		return err
	}

	state[key] = value
	return Save(state)
}

// Merge writes every key of values into the state file in one save.
func Merge(values map[string]interface{}) error {
	state, err := Load()
	if err != nil {
		return err
	}
	for k, v := range values {
		state[k] = v
	}
	return Save(state)
}

// Delete removes a key from the state.
func Delete(key string) error {
	state, err := Load()
	if err != nil {
		return err
	}

	delete(state, key)
	return Save(state)
}
