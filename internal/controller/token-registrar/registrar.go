// internal/controller/token-registrar/registrar.go
package tokenregistrar

import (
	"context"
	"sync"
	"time"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/metrics"
)

// TokenSource is the part of the push service that issues tokens.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// Registrar fetches the registration token on demand and caches the last
// one it obtained. It never retries on its own.
type Registrar struct {
	source  TokenSource
	logger  logger.Logger
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

func NewRegistrar(source TokenSource, timeout time.Duration, log logger.Logger) *Registrar {
	return &Registrar{
		source:  source,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "token-registrar"}),
	}
}

// Fetch asks the push service for a token. Failures come back as
// TOKEN_FETCH_FAILED and leave the cached token untouched.
func (r *Registrar) Fetch(ctx context.Context) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	token, err := r.source.GetToken(ctx)
	if err == nil && token == "" {
		err = errEmptyToken
	}
	if err != nil {
		metrics.TokenFetches.WithLabelValues("failure").Inc()
		r.logger.Warn("registration token fetch failed", map[string]interface{}{
			"error": err,
		})
		return "", apperrors.NewTokenFetchFailedError(err)
	}

	r.mu.Lock()
	r.token = token
	r.mu.Unlock()

	metrics.TokenFetches.WithLabelValues("success").Inc()
	r.logger.Info("registration token obtained", map[string]interface{}{
		"tokenPrefix": prefix(token),
	})
	return token, nil
}

// Retry is the user-triggered re-fetch.
func (r *Registrar) Retry(ctx context.Context) (string, error) {
	r.logger.Info("retrying registration token fetch", nil)
	return r.Fetch(ctx)
}

// Token returns the cached token, empty when none was obtained.
func (r *Registrar) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.token
}

func prefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}
