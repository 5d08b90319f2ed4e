// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func LoadRegistry(path string) (*ChannelRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ChannelRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes reg as indented JSON, creating the directory if needed.
func SaveRegistry(reg *ChannelRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Default returns the two built-in channels: a high-importance call
// channel and an ordinary one.
func Default(defaultChannelID, callChannelID string) *ChannelRegistry {
	return &ChannelRegistry{
		Version: "1.0.0",
		Channels: []Channel{
			{
				ID:               callChannelID,
				Name:             "Incoming Calls",
				Description:      "Notifications for incoming voice and video calls.",
				Importance:       ImportanceHigh,
				Lights:           true,
				LightColor:       "red",
				Vibration:        true,
				VibrationPattern: []int64{0, 1000, 500, 1000},
				Category:         "call",
			},
			{
				ID:          defaultChannelID,
				Name:        "General Notifications",
				Description: "General application notifications.",
				Importance:  ImportanceDefault,
				Lights:      true,
				LightColor:  "blue",
				Vibration:   true,
			},
		},
	}
}

// Find returns the channel with the given id.
func (r *ChannelRegistry) Find(id string) (Channel, bool) {
	for _, ch := range r.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return Channel{}, false
}

// Validate checks ids are present and unique and that the required ids
// are declared.
func (r *ChannelRegistry) Validate(required ...string) error {
	if len(r.Channels) == 0 {
		return fmt.Errorf("registry contains no channels")
	}
	ids := make(map[string]bool, len(r.Channels))
	for _, ch := range r.Channels {
		if ch.ID == "" {
			return fmt.Errorf("channel missing required field: ID")
		}
		if ids[ch.ID] {
			return fmt.Errorf("duplicate channel ID: %s", ch.ID)
		}
		ids[ch.ID] = true
		if ch.Name == "" {
			return fmt.Errorf("channel %s missing required field: Name", ch.ID)
		}
		switch ch.Importance {
		case ImportanceDefault, ImportanceHigh, ImportanceMax:
		default:
			return fmt.Errorf("channel %s has unknown importance %q", ch.ID, ch.Importance)
		}
	}
	for _, id := range required {
		if !ids[id] {
			return fmt.Errorf("required channel %s is not declared", id)
		}
	}
	return nil
}
