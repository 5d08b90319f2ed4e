// internal/collaborators/trigger/models.go
package trigger

import (
	"push-lifecycle/internal/models"
)

const (
	ProviderSNS   = "sns"
	ProviderFCM   = "fcm"
	ProviderRedis = "redis"

	PriorityHigh = "high"
	TypeCall     = "call"
)

// CallNotification is the visible part of a call message.
type CallNotification struct {
	Title            string `json:"title"`
	Body             string `json:"body"`
	AndroidChannelID string `json:"android_channel_id"`
}

// CallMessage is the high-priority payload a backend sends to ring a
// device.
type CallMessage struct {
	Token            string            `json:"to,omitempty"`
	Priority         string            `json:"priority"`
	ContentAvailable bool              `json:"content_available"`
	Data             map[string]string `json:"data"`
	Notification     CallNotification  `json:"notification"`
}

// CallInput holds the caller-supplied fields of a call message.
type CallInput struct {
	Token         string
	CallID        string
	Title         string
	Body          string
	Screen        string
	CallChannelID string
}

// SendResult describes one accepted message.
type SendResult struct {
	Provider  string `json:"provider"`
	MessageID string `json:"messageId"`
}

// RemotePayload converts the message to the shape the push service hands
// to the app.
func (m CallMessage) RemotePayload() models.RemotePayload {
	return models.RemotePayload{
		Notification: &models.Content{Title: m.Notification.Title, Body: m.Notification.Body},
		Data:         models.CopyData(m.Data),
	}
}
