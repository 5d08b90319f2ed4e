// internal/collaborators/log-view/view.go
package logview

import (
	"context"
	"encoding/json"
	"sync"

	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/models"
)

const TokenPlaceholder = "no token yet"

// Alert is one message shown to the user.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// View renders the controller state through the logger.
type View struct {
	logger    logger.Logger
	maxAlerts int

	mu      sync.Mutex
	alerts  []Alert
	scrolls int
}

func NewView(log logger.Logger) *View {
	return &View{
		logger:    log.WithFields(map[string]interface{}{"component": "log-view"}),
		maxAlerts: 50,
	}
}

func (v *View) Render(ctx context.Context, state models.AppState) error {
	data, err := json.MarshalIndent(state.LastNotificationData, "", "  ")
	if err != nil {
		return err
	}
	token := state.RegistrationToken
	if token == "" {
		token = TokenPlaceholder
	}
	v.logger.Info("state", map[string]interface{}{
		"registrationToken":    token,
		"pendingBadgeCount":    state.PendingBadgeCount,
		"lastNotificationData": string(data),
	})
	return nil
}

func (v *View) Alert(ctx context.Context, title, message string) error {
	v.mu.Lock()
	v.alerts = append(v.alerts, Alert{Title: title, Message: message})
	if len(v.alerts) > v.maxAlerts {
		v.alerts = v.alerts[len(v.alerts)-v.maxAlerts:]
	}
	v.mu.Unlock()

	v.logger.Info("alert", map[string]interface{}{
		"title":   title,
		"message": message,
	})
	return nil
}

func (v *View) ScrollToLatest(ctx context.Context) error {
	v.mu.Lock()
	v.scrolls++
	v.mu.Unlock()
	v.logger.Debug("scrolled to latest", nil)
	return nil
}

// Alerts returns the most recent alerts, oldest first.
func (v *View) Alerts() []Alert {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Alert(nil), v.alerts...)
}
