// internal/collaborators/trigger/sender.go
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redispush "push-lifecycle/internal/collaborators/redis-push"
	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"

	"firebase.google.com/go/v4/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Sender delivers a call message through one provider.
type Sender interface {
	Send(ctx context.Context, msg CallMessage) (*SendResult, error)
}

// ==========================
// SNS
// ==========================

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes to a mobile push platform endpoint using the GCM
// message structure.
type SNSSender struct {
	client      SNSService
	endpointARN string
	logger      logger.Logger
}

func NewSNSSender(client SNSService, endpointARN string, log logger.Logger) *SNSSender {
	return &SNSSender{
		client:      client,
		endpointARN: endpointARN,
		logger:      log.WithFields(map[string]interface{}{"provider": ProviderSNS}),
	}
}

func (s *SNSSender) Send(ctx context.Context, msg CallMessage) (*SendResult, error) {
	if s.endpointARN == "" {
		return nil, apperrors.NewNotificationSendFailedError(ProviderSNS, fmt.Errorf("platform endpoint ARN is required"))
	}

	body, err := snsMessage(msg)
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError(ProviderSNS, err)
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(s.endpointARN),
		Message:          aws.String(body),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError(ProviderSNS, err)
	}

	result := &SendResult{Provider: ProviderSNS, MessageID: aws.ToString(out.MessageId)}
	s.logger.Info("call message published", map[string]interface{}{
		"messageId": result.MessageID,
		"callId":    msg.Data["callId"],
	})
	return result, nil
}

// snsMessage renders the per-protocol JSON document SNS expects.
func snsMessage(msg CallMessage) (string, error) {
	gcm := msg
	gcm.Token = ""
	gcmBody, err := json.Marshal(gcm)
	if err != nil {
		return "", err
	}
	doc, err := json.Marshal(map[string]string{
		"default": msg.Notification.Body,
		"GCM":     string(gcmBody),
	})
	if err != nil {
		return "", err
	}
	return string(doc), nil
}

// ==========================
// FCM
// ==========================

type FCMService interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMSender struct {
	client FCMService
	logger logger.Logger
}

func NewFCMSender(client FCMService, log logger.Logger) *FCMSender {
	return &FCMSender{
		client: client,
		logger: log.WithFields(map[string]interface{}{"provider": ProviderFCM}),
	}
}

func (f *FCMSender) Send(ctx context.Context, msg CallMessage) (*SendResult, error) {
	if msg.Token == "" {
		return nil, apperrors.NewNotificationSendFailedError(ProviderFCM, fmt.Errorf("device token is required"))
	}

	id, err := f.client.Send(ctx, fcmMessage(msg))
	if err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
			f.logger.Warn("device token rejected", map[string]interface{}{
				"error": err,
			})
		}
		return nil, apperrors.NewNotificationSendFailedError(ProviderFCM, err)
	}

	f.logger.Info("call message sent", map[string]interface{}{
		"messageId": id,
		"callId":    msg.Data["callId"],
	})
	return &SendResult{Provider: ProviderFCM, MessageID: id}, nil
}

func fcmMessage(msg CallMessage) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Data:  msg.Data,
		Notification: &messaging.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: msg.Priority,
			Notification: &messaging.AndroidNotification{
				ChannelID: msg.Notification.AndroidChannelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: msg.ContentAvailable},
			},
		},
	}
}

// ==========================
// Redis development bus
// ==========================

// Delivery selects which app path the redis sender simulates.
type Delivery string

const (
	DeliveryForeground Delivery = "foreground"
	DeliveryOpened     Delivery = "opened"
	DeliveryColdStart  Delivery = "coldstart"
)

type RedisSender struct {
	publisher *redispush.Publisher
	delivery  Delivery
	ttl       time.Duration
	logger    logger.Logger
}

func NewRedisSender(publisher *redispush.Publisher, delivery Delivery, log logger.Logger) *RedisSender {
	return &RedisSender{
		publisher: publisher,
		delivery:  delivery,
		ttl:       10 * time.Minute,
		logger:    log.WithFields(map[string]interface{}{"provider": ProviderRedis}),
	}
}

func (r *RedisSender) Send(ctx context.Context, msg CallMessage) (*SendResult, error) {
	payload := msg.RemotePayload()
	var (
		receivers int64
		err       error
	)
	switch r.delivery {
	case DeliveryForeground:
		receivers, err = r.publisher.PublishForeground(ctx, payload)
	case DeliveryOpened:
		// A tap carries only the data part.
		payload.Notification = nil
		receivers, err = r.publisher.PublishOpened(ctx, payload)
	case DeliveryColdStart:
		payload.Notification = nil
		err = r.publisher.SetColdStart(ctx, payload, r.ttl)
	default:
		err = fmt.Errorf("unknown delivery %q", r.delivery)
	}
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError(ProviderRedis, err)
	}

	r.logger.Info("call message injected", map[string]interface{}{
		"delivery":  string(r.delivery),
		"receivers": receivers,
		"callId":    msg.Data["callId"],
	})
	return &SendResult{Provider: ProviderRedis, MessageID: msg.Data["callId"]}, nil
}
