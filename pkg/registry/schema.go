// pkg/registry/schema.go
package registry

type ChannelRegistry struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Channels    []Channel `json:"channels"`
}

// Channel describes one platform notification channel.
type Channel struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Importance       string  `json:"importance"` // "default", "high" or "max"
	Lights           bool    `json:"lights"`
	LightColor       string  `json:"lightColor,omitempty"`
	Vibration        bool    `json:"vibration"`
	VibrationPattern []int64 `json:"vibrationPattern,omitempty"` // milliseconds
	Category         string  `json:"category,omitempty"`
}

const (
	ImportanceDefault = "default"
	ImportanceHigh    = "high"
	ImportanceMax     = "max"
)
