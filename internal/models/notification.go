// internal/models/notification.go
package models

import (
	"time"
)

// EventKind identifies which delivery path produced a NotificationEvent.
type EventKind string

const (
	KindForeground           EventKind = "foreground"
	KindOpenedFromBackground EventKind = "opened_from_background"
	KindOpenedFromColdStart  EventKind = "opened_from_cold_start"
)

// ScreenKey is the data key carrying the deep-link target.
const ScreenKey = "screen"

// Content is the optional visible part of a foreground message.
type Content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NotificationEvent is the normalized form of anything the push service
// delivers. Content is only ever set for KindForeground.
type NotificationEvent struct {
	ID         string            `json:"id"`
	Kind       EventKind         `json:"kind"`
	Content    *Content          `json:"content,omitempty"`
	Data       map[string]string `json:"data"`
	ReceivedAt time.Time         `json:"receivedAt"`
}

// Screen returns the deep-link target, if any.
func (e NotificationEvent) Screen() (string, bool) {
	screen, ok := e.Data[ScreenKey]
	if !ok || screen == "" {
		return "", false
	}
	return screen, true
}

// AppState is the canonical controller state. It is treated as a value:
// every transition returns a fresh copy.
type AppState struct {
	LastNotificationData map[string]string `json:"lastNotificationData"`
	PendingBadgeCount    int               `json:"pendingBadgeCount"`
	RegistrationToken    string            `json:"registrationToken,omitempty"`
}

// NewAppState returns the process-start state.
func NewAppState() AppState {
	return AppState{LastNotificationData: map[string]string{}}
}

// HasToken reports whether a registration token has been recorded.
func (s AppState) HasToken() bool {
	return s.RegistrationToken != ""
}

// Clone returns a deep copy safe to hand to readers.
func (s AppState) Clone() AppState {
	out := s
	out.LastNotificationData = CopyData(s.LastNotificationData)
	return out
}

// CopyData copies a payload map, turning nil into an empty map.
func CopyData(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
