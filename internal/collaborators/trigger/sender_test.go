// internal/collaborators/trigger/sender_test.go
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	redispush "push-lifecycle/internal/collaborators/redis-push"
	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type MockFCMService struct {
	SendFunc func(ctx context.Context, message *messaging.Message) (string, error)
}

func (m *MockFCMService) Send(ctx context.Context, message *messaging.Message) (string, error) {
	return m.SendFunc(ctx, message)
}

func createTestMessage(t *testing.T) CallMessage {
	t.Helper()
	msg, err := BuildCallMessage(CallInput{
		Token:         "device-token",
		CallID:        "12345",
		CallChannelID: "call_channel_id",
	})
	require.NoError(t, err)
	return msg
}

// ==========================
// Builder
// ==========================

func TestBuildCallMessage(t *testing.T) {
	msg := createTestMessage(t)

	assert.Equal(t, PriorityHigh, msg.Priority)
	assert.True(t, msg.ContentAvailable)
	assert.Equal(t, map[string]string{
		"title":  "Incoming Video Call",
		"body":   "Alice is calling you...",
		"screen": "CallScreen",
		"callId": "12345",
		"type":   "call",
	}, msg.Data)
	assert.Equal(t, "call_channel_id", msg.Notification.AndroidChannelID)
}

func TestBuildCallMessage_GeneratesCallID(t *testing.T) {
	msg, err := BuildCallMessage(CallInput{CallChannelID: "call_channel_id", Title: "Bob", Screen: "Chat"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Data["callId"])
	assert.Equal(t, "Bob", msg.Notification.Title)
	assert.Equal(t, "Chat", msg.Data["screen"])
}

func TestBuildCallMessage_RequiresChannel(t *testing.T) {
	_, err := BuildCallMessage(CallInput{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidPayload))
}

// ==========================
// SNS
// ==========================

func TestSNSSender_Send(t *testing.T) {
	var captured *sns.PublishInput
	client := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("msg-001")}, nil
		},
	}
	sender := NewSNSSender(client, "arn:aws:sns:us-east-1:123:endpoint/GCM/app/abc", logger.NewTestLogger(t))

	result, err := sender.Send(context.Background(), createTestMessage(t))
	require.NoError(t, err)
	assert.Equal(t, "msg-001", result.MessageID)

	require.NotNil(t, captured)
	assert.Equal(t, "json", aws.ToString(captured.MessageStructure))
	assert.Equal(t, "arn:aws:sns:us-east-1:123:endpoint/GCM/app/abc", aws.ToString(captured.TargetArn))

	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(captured.Message)), &doc))
	assert.Equal(t, "Alice is calling you...", doc["default"])

	var gcm map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc["GCM"]), &gcm))
	assert.Equal(t, "high", gcm["priority"])
	assert.Equal(t, true, gcm["content_available"])
	assert.NotContains(t, gcm, "to")
	notification := gcm["notification"].(map[string]interface{})
	assert.Equal(t, "call_channel_id", notification["android_channel_id"])
}

func TestSNSSender_Errors(t *testing.T) {
	client := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("EndpointDisabled")
		},
	}

	_, err := NewSNSSender(client, "", logger.NewNoOpLogger()).Send(context.Background(), createTestMessage(t))
	require.Error(t, err)

	_, err = NewSNSSender(client, "arn:endpoint", logger.NewNoOpLogger()).Send(context.Background(), createTestMessage(t))
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.Contains(t, err.Error(), "EndpointDisabled")
}

// ==========================
// FCM
// ==========================

func TestFCMSender_Send(t *testing.T) {
	var captured *messaging.Message
	client := &MockFCMService{
		SendFunc: func(ctx context.Context, message *messaging.Message) (string, error) {
			captured = message
			return "projects/demo/messages/1", nil
		},
	}

	result, err := NewFCMSender(client, logger.NewTestLogger(t)).Send(context.Background(), createTestMessage(t))
	require.NoError(t, err)
	assert.Equal(t, "projects/demo/messages/1", result.MessageID)

	require.NotNil(t, captured)
	assert.Equal(t, "device-token", captured.Token)
	assert.Equal(t, "high", captured.Android.Priority)
	assert.Equal(t, "call_channel_id", captured.Android.Notification.ChannelID)
	assert.True(t, captured.APNS.Payload.Aps.ContentAvailable)
	assert.Equal(t, "CallScreen", captured.Data["screen"])
}

func TestFCMSender_Errors(t *testing.T) {
	calls := 0
	client := &MockFCMService{
		SendFunc: func(ctx context.Context, message *messaging.Message) (string, error) {
			calls++
			return "", errors.New("quota exceeded")
		},
	}
	sender := NewFCMSender(client, logger.NewNoOpLogger())

	msg := createTestMessage(t)
	msg.Token = ""
	_, err := sender.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, 0, calls)

	_, err = sender.Send(context.Background(), createTestMessage(t))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// ==========================
// Redis
// ==========================

func TestRedisSender_Deliveries(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := &redispush.Config{KeyPrefix: "push", DefaultPermission: models.AuthorizationAuthorized, SubscribeTimeout: time.Second}
	publisher := redispush.NewPublisher(client, cfg)
	svc, err := redispush.NewService(client, cfg, logger.NewNoOpLogger())
	require.NoError(t, err)
	ctx := context.Background()

	// Cold start stores a data-only payload.
	_, err = NewRedisSender(publisher, DeliveryColdStart, logger.NewNoOpLogger()).Send(ctx, createTestMessage(t))
	require.NoError(t, err)
	pending, err := svc.GetPendingColdStartMessage(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Nil(t, pending.Notification)
	assert.Equal(t, "12345", pending.Data["callId"])

	// Foreground keeps the visible part.
	got := make(chan models.RemotePayload, 1)
	sub, err := svc.OnForegroundMessage(func(p models.RemotePayload) { got <- p })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	result, err := NewRedisSender(publisher, DeliveryForeground, logger.NewNoOpLogger()).Send(ctx, createTestMessage(t))
	require.NoError(t, err)
	assert.Equal(t, "12345", result.MessageID)

	select {
	case p := <-got:
		require.NotNil(t, p.Notification)
		assert.Equal(t, "Incoming Video Call", p.Notification.Title)
	case <-time.After(time.Second):
		t.Fatal("foreground message not delivered")
	}

	_, err = NewRedisSender(publisher, Delivery("sideways"), logger.NewNoOpLogger()).Send(ctx, createTestMessage(t))
	assert.Error(t, err)
}
