// internal/controller/event-router/router_test.go
package eventrouter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockPushService struct {
	mu           sync.Mutex
	foreground   models.PayloadHandler
	opened       models.PayloadHandler
	unsubscribed int

	ForegroundErr         error
	ColdStartFunc         func(ctx context.Context) (*models.RemotePayload, error)
	RequestPermissionFunc func(ctx context.Context) (models.AuthorizationStatus, error)
	GetTokenFunc          func(ctx context.Context) (string, error)
}

func (m *MockPushService) RequestPermission(ctx context.Context) (models.AuthorizationStatus, error) {
	return m.RequestPermissionFunc(ctx)
}

func (m *MockPushService) GetToken(ctx context.Context) (string, error) {
	return m.GetTokenFunc(ctx)
}

func (m *MockPushService) OnForegroundMessage(h models.PayloadHandler) (models.Subscription, error) {
	if m.ForegroundErr != nil {
		return nil, m.ForegroundErr
	}
	m.mu.Lock()
	m.foreground = h
	m.mu.Unlock()
	return m.subscription(), nil
}

func (m *MockPushService) OnOpenedFromBackground(h models.PayloadHandler) (models.Subscription, error) {
	m.mu.Lock()
	m.opened = h
	m.mu.Unlock()
	return m.subscription(), nil
}

func (m *MockPushService) GetPendingColdStartMessage(ctx context.Context) (*models.RemotePayload, error) {
	if m.ColdStartFunc == nil {
		return nil, nil
	}
	return m.ColdStartFunc(ctx)
}

func (m *MockPushService) subscription() models.Subscription {
	return models.SubscriptionFunc(func() error {
		m.mu.Lock()
		m.unsubscribed++
		m.mu.Unlock()
		return nil
	})
}

// fire mimics the platform: handlers keep firing even after unsubscribe.
func (m *MockPushService) fireForeground(p models.RemotePayload) {
	m.mu.Lock()
	h := m.foreground
	m.mu.Unlock()
	h(p)
}

func (m *MockPushService) fireOpened(p models.RemotePayload) {
	m.mu.Lock()
	h := m.opened
	m.mu.Unlock()
	h(p)
}

type collector struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (c *collector) sink(ev models.NotificationEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) snapshot() []models.NotificationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.NotificationEvent(nil), c.events...)
}

func payload(screen string) models.RemotePayload {
	return models.RemotePayload{Data: map[string]string{"screen": screen}}
}

// ==========================
// Tests
// ==========================

func TestRouter_ColdStartForwardedBeforeBufferedLiveEvents(t *testing.T) {
	push := &MockPushService{}
	push.ColdStartFunc = func(ctx context.Context) (*models.RemotePayload, error) {
		// Live events fire while the cold start check is still running.
		push.fireForeground(models.RemotePayload{
			Notification: &models.Content{Title: "Hi", Body: "there"},
			Data:         map[string]string{"screen": "Chat"},
		})
		push.fireOpened(payload("Profile"))
		p := payload("CallScreen")
		return &p, nil
	}
	c := &collector{}
	router := NewRouter(push, logger.NewTestLogger(t))

	require.NoError(t, router.Start(context.Background(), c.sink))

	events := c.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, models.KindOpenedFromColdStart, events[0].Kind)
	assert.Equal(t, "CallScreen", events[0].Data["screen"])
	assert.Equal(t, models.KindForeground, events[1].Kind)
	require.NotNil(t, events[1].Content)
	assert.Equal(t, "Hi", events[1].Content.Title)
	assert.Equal(t, models.KindOpenedFromBackground, events[2].Kind)
	assert.Equal(t, "Profile", events[2].Data["screen"])

	for _, ev := range events {
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.ReceivedAt.IsZero())
	}
}

func TestRouter_LiveEventsPassThroughAfterStart(t *testing.T) {
	push := &MockPushService{}
	c := &collector{}
	router := NewRouter(push, logger.NewNoOpLogger())

	require.NoError(t, router.Start(context.Background(), c.sink))
	assert.Empty(t, c.snapshot())

	push.fireOpened(models.RemotePayload{})
	push.fireForeground(payload("Home"))

	events := c.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, models.KindOpenedFromBackground, events[0].Kind)
	assert.NotNil(t, events[0].Data)
	assert.Empty(t, events[0].Data)
	assert.Nil(t, events[0].Content)
	assert.Equal(t, models.KindForeground, events[1].Kind)
}

func TestRouter_ColdStartErrorTreatedAsAbsent(t *testing.T) {
	push := &MockPushService{
		ColdStartFunc: func(ctx context.Context) (*models.RemotePayload, error) {
			return nil, errors.New("bridge not ready")
		},
	}
	c := &collector{}
	router := NewRouter(push, logger.NewNoOpLogger())

	require.NoError(t, router.Start(context.Background(), c.sink))
	push.fireForeground(payload("Home"))

	events := c.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, models.KindForeground, events[0].Kind)
}

func TestRouter_StopSilencesLateEvents(t *testing.T) {
	push := &MockPushService{}
	c := &collector{}
	router := NewRouter(push, logger.NewNoOpLogger())

	require.NoError(t, router.Start(context.Background(), c.sink))
	push.fireForeground(payload("Home"))
	router.Stop()

	push.fireForeground(payload("Late"))
	push.fireOpened(payload("Late"))

	assert.Len(t, c.snapshot(), 1)
	assert.Equal(t, 2, push.unsubscribed)

	// Idempotent.
	router.Stop()
	assert.Equal(t, 2, push.unsubscribed)
}

func TestRouter_StopDuringColdStartCheckDropsEverything(t *testing.T) {
	push := &MockPushService{}
	c := &collector{}
	router := NewRouter(push, logger.NewNoOpLogger())

	push.ColdStartFunc = func(ctx context.Context) (*models.RemotePayload, error) {
		push.fireForeground(payload("Buffered"))
		router.Stop()
		p := payload("CallScreen")
		return &p, nil
	}

	require.NoError(t, router.Start(context.Background(), c.sink))
	assert.Empty(t, c.snapshot())
}

func TestRouter_StartTwice(t *testing.T) {
	router := NewRouter(&MockPushService{}, logger.NewNoOpLogger())
	c := &collector{}

	require.NoError(t, router.Start(context.Background(), c.sink))
	assert.ErrorIs(t, router.Start(context.Background(), c.sink), ErrAlreadyStarted)

	router.Stop()
	fresh := NewRouter(&MockPushService{}, logger.NewNoOpLogger())
	fresh.Stop()
	assert.ErrorIs(t, fresh.Start(context.Background(), c.sink), ErrStopped)
}

func TestRouter_SubscriptionFailure(t *testing.T) {
	push := &MockPushService{ForegroundErr: errors.New("not registered")}
	router := NewRouter(push, logger.NewNoOpLogger())

	err := router.Start(context.Background(), (&collector{}).sink)

	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSubscriptionFailed, stdErr.Code)
}

func TestRouter_ConcurrentLiveEventsAllForwarded(t *testing.T) {
	push := &MockPushService{}
	c := &collector{}
	router := NewRouter(push, logger.NewNoOpLogger())
	require.NoError(t, router.Start(context.Background(), c.sink))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); push.fireForeground(payload("A")) }()
		go func() { defer wg.Done(); push.fireOpened(payload("B")) }()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return len(c.snapshot()) == 100 }, time.Second, 10*time.Millisecond)
}
