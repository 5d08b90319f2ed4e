// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"push-lifecycle/internal/api"
	consolenative "push-lifecycle/internal/collaborators/console-native"
	logview "push-lifecycle/internal/collaborators/log-view"
	redispush "push-lifecycle/internal/collaborators/redis-push"
	"push-lifecycle/internal/collaborators/trigger"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/controller/lifecycle"
	simulationharness "push-lifecycle/internal/controller/simulation-harness"
	statereducer "push-lifecycle/internal/controller/state-reducer"
	"push-lifecycle/internal/models"
	"push-lifecycle/pkg/registry"
)

const (
	defaultChannel = "default_channel_id"
	callChannel    = "call_channel_id"
)

// stack is one fully wired controller backed by an in-memory Redis.
type stack struct {
	mr         *miniredis.Miniredis
	client     *redis.Client
	pushConfig *redispush.Config
	publisher  *redispush.Publisher
	native     *consolenative.Module
	view       *logview.View
	controller *lifecycle.Controller
	router     *gin.Engine
	runErr     chan error
}

func newStack(t *testing.T, seed func(ctx context.Context, p *redispush.Publisher)) *stack {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewTestLogger(t)
	pushConfig := &redispush.Config{
		KeyPrefix:         "e2e",
		DefaultPermission: models.AuthorizationAuthorized,
		ValidatePayloads:  true,
		SubscribeTimeout:  2 * time.Second,
	}
	publisher := redispush.NewPublisher(client, pushConfig)
	if seed != nil {
		seed(context.Background(), publisher)
	}

	push, err := redispush.NewService(client, pushConfig, log)
	require.NoError(t, err)

	native := consolenative.NewModule(registry.Default(defaultChannel, callChannel), "myapp", log)
	view := logview.NewView(log)

	controller := lifecycle.New(models.NewAppState(), lifecycle.Config{
		RequiresChannels: true,
		SubmitTimeout:    2 * time.Second,
	}, lifecycle.Deps{
		Push:         push,
		Native:       native,
		View:         view,
		Logger:       log,
		Reducer:      statereducer.NewReducer(statereducer.LoadConfig(true, defaultChannel, callChannel)),
		TokenTimeout: 2 * time.Second,
	})

	harness := simulationharness.NewHarness(simulationharness.Config{
		Platform:              "android",
		NativeModuleAvailable: true,
	}, controller, log)

	gin.SetMode(gin.TestMode)
	s := &stack{
		mr:         mr,
		client:     client,
		pushConfig: pushConfig,
		publisher:  publisher,
		native:     native,
		view:       view,
		controller: controller,
		router:     api.NewRouter(api.NewHandler(controller, harness, nil, log), false),
		runErr:     make(chan error, 1),
	}

	go func() { s.runErr <- controller.Run(context.Background()) }()
	t.Cleanup(controller.Stop)

	s.waitSubscribed(t)
	return s
}

func (s *stack) waitSubscribed(t *testing.T) {
	t.Helper()
	keys := s.pushConfig.Keys()
	require.Eventually(t, func() bool {
		subs, err := s.client.PubSubNumSub(context.Background(), keys.Foreground, keys.Opened).Result()
		return err == nil && subs[keys.Foreground] == 1 && subs[keys.Opened] == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *stack) send(t *testing.T, delivery trigger.Delivery, in trigger.CallInput) {
	t.Helper()
	in.CallChannelID = callChannel
	msg, err := trigger.BuildCallMessage(in)
	require.NoError(t, err)
	_, err = trigger.NewRedisSender(s.publisher, delivery, logger.NewNoOpLogger()).Send(context.Background(), msg)
	require.NoError(t, err)
}

func (s *stack) post(t *testing.T, path, body string) (int, models.AppState) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var state models.AppState
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	}
	return w.Code, state
}

// ==========================
// Tests
// ==========================

func TestE2E_ColdStartThenForegroundThenCall(t *testing.T) {
	s := newStack(t, func(ctx context.Context, p *redispush.Publisher) {
		require.NoError(t, p.SetColdStart(ctx, models.RemotePayload{
			Data: map[string]string{"screen": "Profile", "userId": "42"},
		}, time.Minute))
	})

	// Cold start is applied before any live message and the device
	// registers with the development token.
	require.Eventually(t, func() bool {
		st := s.controller.State()
		return st.LastNotificationData["screen"] == "Profile" && st.HasToken()
	}, 3*time.Second, 10*time.Millisecond)

	st := s.controller.State()
	assert.Equal(t, 0, st.PendingBadgeCount)
	assert.True(t, strings.HasPrefix(st.RegistrationToken, "dev-"))
	require.NotEmpty(t, s.view.Alerts())
	assert.Equal(t, "Deep Link (Initial)", s.view.Alerts()[0].Title)

	// The cold start message is consumed once.
	exists, err := s.client.Exists(context.Background(), s.pushConfig.Keys().ColdStart).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	// Foreground message raises the badge and shows a local notification.
	s.send(t, trigger.DeliveryForeground, trigger.CallInput{Title: "Ping", Body: "hello", Screen: "Chat"})
	require.Eventually(t, func() bool {
		return s.controller.State().PendingBadgeCount == 1 && len(s.native.Active()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	shown := s.native.Active()[0]
	assert.Equal(t, "Ping", shown.Title)
	assert.Equal(t, defaultChannel, shown.ChannelID)
	assert.Contains(t, shown.DeepLink, "myapp://app/Chat")

	// Opening it from the background brings the badge back down.
	s.send(t, trigger.DeliveryOpened, trigger.CallInput{Screen: "Chat"})
	require.Eventually(t, func() bool {
		return s.controller.State().PendingBadgeCount == 0
	}, 3*time.Second, 10*time.Millisecond)

	// Simulated call through the control surface.
	code, st := s.post(t, "/simulate-call", `{"title":"Incoming Call","body":"John Doe is calling...","screen":"CallScreen"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, st.PendingBadgeCount)
	assert.Equal(t, "Chat", st.LastNotificationData["screen"])

	require.Eventually(t, func() bool {
		for _, p := range s.native.Active() {
			if p.Category == "call" {
				return p.FullScreen && p.ChannelID == callChannel && len(p.Actions) == 2
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)

	// Clearing the badge also clears presented notifications.
	code, st = s.post(t, "/badge/clear", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, st.PendingBadgeCount)
	require.Eventually(t, func() bool {
		return len(s.native.Active()) == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestE2E_DeniedPermissionStaysTokenless(t *testing.T) {
	s := newStack(t, func(ctx context.Context, p *redispush.Publisher) {
		require.NoError(t, p.SetPermission(ctx, models.AuthorizationDenied))
	})

	require.Eventually(t, func() bool {
		for _, a := range s.view.Alerts() {
			if a.Title == "Permission Denied" {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)
	assert.False(t, s.controller.State().HasToken())

	// Live messages still flow without a token.
	s.send(t, trigger.DeliveryForeground, trigger.CallInput{})
	require.Eventually(t, func() bool {
		return s.controller.State().PendingBadgeCount == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestE2E_StopSilencesLateMessages(t *testing.T) {
	s := newStack(t, nil)

	require.Eventually(t, func() bool {
		return s.controller.State().HasToken()
	}, 3*time.Second, 10*time.Millisecond)

	s.controller.Stop()
	select {
	case err := <-s.runErr:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("controller did not stop")
	}

	// Subscriptions are released on stop.
	keys := s.pushConfig.Keys()
	require.Eventually(t, func() bool {
		subs, err := s.client.PubSubNumSub(context.Background(), keys.Foreground).Result()
		return err == nil && subs[keys.Foreground] == 0
	}, 2*time.Second, 10*time.Millisecond)

	before := s.controller.State()
	s.send(t, trigger.DeliveryForeground, trigger.CallInput{})
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, s.controller.State())

	code, _ := s.post(t, "/badge/clear", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
