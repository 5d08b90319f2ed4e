// internal/collaborators/redis-push/service.go
package redispush

import (
	"context"
	"errors"
	"fmt"
	"time"

	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/metrics"
	"push-lifecycle/internal/common/validation"
	"push-lifecycle/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Service is a development push service backed by Redis. Messages published
// on the foreground/opened channels are delivered to the subscribed
// handlers, the cold-start key holds at most one pending payload.
type Service struct {
	client    redis.UniversalClient
	config    *Config
	keys      Keys
	validator *validation.PayloadValidator
	logger    logger.Logger
}

func NewService(client redis.UniversalClient, config *Config, log logger.Logger) (*Service, error) {
	s := &Service{
		client: client,
		config: config,
		keys:   config.Keys(),
		logger: log.WithFields(map[string]interface{}{"component": "redis-push"}),
	}
	if config.ValidatePayloads {
		v, err := validation.NewPayloadValidator()
		if err != nil {
			return nil, err
		}
		s.validator = v
	}
	return s, nil
}

// RequestPermission reads the stored answer, falling back to the
// configured default the first time.
func (s *Service) RequestPermission(ctx context.Context) (models.AuthorizationStatus, error) {
	raw, err := s.client.Get(ctx, s.keys.Permission).Result()
	if errors.Is(err, redis.Nil) {
		status := s.config.DefaultPermission
		if err := s.client.Set(ctx, s.keys.Permission, string(status), 0).Err(); err != nil {
			return models.AuthorizationDenied, fmt.Errorf("store permission: %w", err)
		}
		return status, nil
	}
	if err != nil {
		return models.AuthorizationDenied, fmt.Errorf("read permission: %w", err)
	}
	return models.ParseAuthorizationStatus(raw), nil
}

// GetToken returns the device token, minting one on first use.
func (s *Service) GetToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.keys.Token).Result()
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read token: %w", err)
	}

	candidate := "dev-" + uuid.New().String()
	if err := s.client.SetNX(ctx, s.keys.Token, candidate, 0).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	// Another process may have won the SETNX race.
	token, err = s.client.Get(ctx, s.keys.Token).Result()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (s *Service) OnForegroundMessage(handler models.PayloadHandler) (models.Subscription, error) {
	return s.subscribe(s.keys.Foreground, models.KindForeground, handler)
}

func (s *Service) OnOpenedFromBackground(handler models.PayloadHandler) (models.Subscription, error) {
	return s.subscribe(s.keys.Opened, models.KindOpenedFromBackground, handler)
}

// GetPendingColdStartMessage consumes the cold-start key. A second call
// returns nil.
func (s *Service) GetPendingColdStartMessage(ctx context.Context) (*models.RemotePayload, error) {
	raw, err := s.client.GetDel(ctx, s.keys.ColdStart).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cold start message: %w", err)
	}
	payload, err := validation.DecodePayload(raw, s.validator)
	if err != nil {
		metrics.EventsDropped.WithLabelValues(string(models.KindOpenedFromColdStart), "invalid_payload").Inc()
		return nil, err
	}
	return &payload, nil
}

func (s *Service) subscribe(channel string, kind models.EventKind, handler models.PayloadHandler) (models.Subscription, error) {
	ctx := context.Background()
	if s.config.SubscribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SubscribeTimeout)
		defer cancel()
	}

	pubsub := s.client.Subscribe(context.Background(), channel)
	// Wait for the subscription to be confirmed so no message published
	// after this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	messages := pubsub.Channel()
	go func() {
		for msg := range messages {
			s.handle(kind, msg, handler)
		}
		s.logger.Debug("subscription closed", map[string]interface{}{
			"channel": channel,
		})
	}()

	s.logger.Info("subscribed", map[string]interface{}{
		"channel": channel,
	})
	return models.SubscriptionFunc(pubsub.Close), nil
}

func (s *Service) handle(kind models.EventKind, msg *redis.Message, handler models.PayloadHandler) {
	payload, err := validation.DecodePayload([]byte(msg.Payload), s.validator)
	if err != nil {
		metrics.EventsDropped.WithLabelValues(string(kind), "invalid_payload").Inc()
		s.logger.Warn("dropping invalid payload", map[string]interface{}{
			"channel": msg.Channel,
			"error":   err,
		})
		return
	}
	handler(payload)
}

// Publisher injects messages into the development bus. It is the sending
// half used by the push-sender tool and by tests.
type Publisher struct {
	client redis.UniversalClient
	keys   Keys
}

func NewPublisher(client redis.UniversalClient, config *Config) *Publisher {
	return &Publisher{client: client, keys: config.Keys()}
}

func (p *Publisher) PublishForeground(ctx context.Context, payload models.RemotePayload) (int64, error) {
	return p.publish(ctx, p.keys.Foreground, payload)
}

func (p *Publisher) PublishOpened(ctx context.Context, payload models.RemotePayload) (int64, error) {
	return p.publish(ctx, p.keys.Opened, payload)
}

// SetColdStart stores the payload the next controller start will pick up.
func (p *Publisher) SetColdStart(ctx context.Context, payload models.RemotePayload, ttl time.Duration) error {
	raw, err := validation.EncodePayload(payload)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, p.keys.ColdStart, raw, ttl).Err()
}

// SetPermission overrides the answer RequestPermission returns.
func (p *Publisher) SetPermission(ctx context.Context, status models.AuthorizationStatus) error {
	return p.client.Set(ctx, p.keys.Permission, string(status), 0).Err()
}

func (p *Publisher) publish(ctx context.Context, channel string, payload models.RemotePayload) (int64, error) {
	raw, err := validation.EncodePayload(payload)
	if err != nil {
		return 0, err
	}
	receivers, err := p.client.Publish(ctx, channel, raw).Result()
	if err != nil {
		return 0, fmt.Errorf("publish %s: %w", channel, err)
	}
	return receivers, nil
}
