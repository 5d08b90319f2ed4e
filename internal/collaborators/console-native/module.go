// internal/collaborators/console-native/module.go
package consolenative

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/models"
	"push-lifecycle/pkg/registry"
)

const (
	callAnswerScreen  = "CallScreen"
	callDeclineScreen = "HomeScreen"
)

// Module is a headless native presentation module. Notifications are
// rendered as structured log records and tracked until ClearAll.
type Module struct {
	registry *registry.ChannelRegistry
	scheme   string
	logger   logger.Logger
	now      func() time.Time

	mu          sync.Mutex
	provisioned map[string]bool
	active      []Presented
	nextID      int
}

func NewModule(reg *registry.ChannelRegistry, scheme string, log logger.Logger) *Module {
	if scheme == "" {
		scheme = "myapp"
	}
	return &Module{
		registry:    reg,
		scheme:      scheme,
		logger:      log.WithFields(map[string]interface{}{"component": "console-native"}),
		now:         time.Now,
		provisioned: make(map[string]bool),
	}
}

// ProvisionChannels declares every registry channel. Repeated calls are
// no-ops for channels already declared.
func (m *Module) ProvisionChannels(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.registry.Channels {
		if m.provisioned[ch.ID] {
			continue
		}
		m.provisioned[ch.ID] = true
		m.logger.Info("notification channel created", map[string]interface{}{
			"channelId":        ch.ID,
			"name":             ch.Name,
			"importance":       ch.Importance,
			"lightColor":       ch.LightColor,
			"vibrationPattern": ch.VibrationPattern,
		})
	}
	return nil
}

func (m *Module) ShowLocal(ctx context.Context, n models.LocalNotification) error {
	p := Presented{
		Title:      n.Title,
		Body:       n.Body,
		ChannelID:  n.ChannelID,
		DeepLink:   m.DeepLink(n.Screen, SourceLocalNotification, n.Title),
		FullScreen: n.FullScreen,
		Priority:   PriorityDefault,
	}
	if n.FullScreen {
		p.Priority = PriorityHigh
	}
	return m.present(p)
}

// ShowCall renders a full-screen call alert with Answer and Decline actions.
func (m *Module) ShowCall(ctx context.Context, n models.LocalNotification) error {
	return m.present(Presented{
		Title:      n.Title,
		Body:       n.Body,
		ChannelID:  n.ChannelID,
		DeepLink:   m.DeepLink(n.Screen, SourceNotification, n.Title),
		FullScreen: true,
		Priority:   PriorityHigh,
		Category:   "call",
		Actions: []Action{
			{Label: "Answer", URI: m.actionLink(callAnswerScreen, "answer", n.Title)},
			{Label: "Decline", URI: m.actionLink(callDeclineScreen, "decline", n.Title)},
		},
	})
}

func (m *Module) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleared := len(m.active)
	m.active = nil
	m.logger.Info("all notifications cleared", map[string]interface{}{
		"cleared": cleared,
	})
	return nil
}

// Active returns the notifications currently shown.
func (m *Module) Active() []Presented {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Presented(nil), m.active...)
}

// DeepLink builds the URI a tap on the notification opens.
func (m *Module) DeepLink(screen, source, title string) string {
	return fmt.Sprintf("%s://app/%s?source=%s&title=%s", m.scheme, url.PathEscape(screen), source, encode(title))
}

func (m *Module) actionLink(screen, action, title string) string {
	return fmt.Sprintf("%s://app/%s?action=%s&title=%s", m.scheme, screen, action, encode(title))
}

func (m *Module) present(p Presented) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.registry.Find(p.ChannelID)
	if !ok {
		return fmt.Errorf("unknown notification channel %q", p.ChannelID)
	}
	if !m.provisioned[ch.ID] {
		return fmt.Errorf("notification channel %q not provisioned", ch.ID)
	}

	m.nextID++
	p.ID = m.nextID
	p.ShownAt = m.now().UTC()
	m.active = append(m.active, p)

	m.logger.Info("notification presented", map[string]interface{}{
		"id":         p.ID,
		"title":      p.Title,
		"body":       p.Body,
		"channelId":  p.ChannelID,
		"importance": ch.Importance,
		"fullScreen": p.FullScreen,
		"priority":   p.Priority,
		"deepLink":   p.DeepLink,
		"actions":    len(p.Actions),
		"active":     len(m.active),
	})
	return nil
}

// encode escapes like a URI component: spaces become %20, not '+'.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
