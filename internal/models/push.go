// internal/models/push.go
package models

import (
	"context"
	"strings"
)

// AuthorizationStatus is the push service's answer to a permission request.
type AuthorizationStatus string

const (
	AuthorizationAuthorized  AuthorizationStatus = "authorized"
	AuthorizationProvisional AuthorizationStatus = "provisional"
	AuthorizationDenied      AuthorizationStatus = "denied"
)

// Enabled reports whether the status allows token registration.
func (s AuthorizationStatus) Enabled() bool {
	return s == AuthorizationAuthorized || s == AuthorizationProvisional
}

// ParseAuthorizationStatus maps a raw value to a status; anything unknown is denied.
func ParseAuthorizationStatus(raw string) AuthorizationStatus {
	switch AuthorizationStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case AuthorizationAuthorized:
		return AuthorizationAuthorized
	case AuthorizationProvisional:
		return AuthorizationProvisional
	default:
		return AuthorizationDenied
	}
}

// RemotePayload is the message shape the push service hands to listeners.
type RemotePayload struct {
	Notification *Content          `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

// Subscription is returned by the push service listener registrations.
type Subscription interface {
	Unsubscribe() error
}

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func() error

func (f SubscriptionFunc) Unsubscribe() error { return f() }

// PayloadHandler receives payloads from one delivery path.
type PayloadHandler func(RemotePayload)

// PushService is the push delivery collaborator.
type PushService interface {
	RequestPermission(ctx context.Context) (AuthorizationStatus, error)
	GetToken(ctx context.Context) (string, error)
	OnForegroundMessage(handler PayloadHandler) (Subscription, error)
	OnOpenedFromBackground(handler PayloadHandler) (Subscription, error)
	// GetPendingColdStartMessage returns nil when the process was not
	// launched from a notification tap.
	GetPendingColdStartMessage(ctx context.Context) (*RemotePayload, error)
}

// NativeModule is the platform presentation collaborator.
type NativeModule interface {
	ProvisionChannels(ctx context.Context) error
	ShowLocal(ctx context.Context, n LocalNotification) error
	ShowCall(ctx context.Context, n LocalNotification) error
	ClearAll(ctx context.Context) error
}

// View is the rendering collaborator for the in-app surface.
type View interface {
	ScrollToLatest(ctx context.Context) error
	Alert(ctx context.Context, title, message string) error
	Render(ctx context.Context, state AppState) error
}
