// internal/collaborators/console-native/models.go
package consolenative

import "time"

// Action is a button attached to a presented notification.
type Action struct {
	Label string `json:"label"`
	URI   string `json:"uri"`
}

// Presented is the record of one notification the module rendered.
type Presented struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ChannelID  string    `json:"channelId"`
	DeepLink   string    `json:"deepLink"`
	FullScreen bool      `json:"fullScreen"`
	Priority   string    `json:"priority"`
	Category   string    `json:"category,omitempty"`
	Actions    []Action  `json:"actions,omitempty"`
	ShownAt    time.Time `json:"shownAt"`
}

const (
	PriorityDefault = "default"
	PriorityHigh    = "high"

	SourceNotification      = "notification"
	SourceLocalNotification = "local_notification"
)
