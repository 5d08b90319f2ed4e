// internal/controller/simulation-harness/harness.go
package simulationharness

import (
	"context"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/metrics"
	"push-lifecycle/internal/models"
)

const (
	DefaultTitle  = "Incoming Call"
	DefaultBody   = "John Doe is calling..."
	DefaultScreen = "CallScreen"
)

// Submitter applies a simulated call to the owned state.
type Submitter interface {
	SubmitSimulatedCall(ctx context.Context, title, body, screen string) (models.AppState, error)
}

type Config struct {
	Platform              string
	NativeModuleAvailable bool
}

// Harness lets a tester fire a call-grade alert without a real push.
type Harness struct {
	config    Config
	submitter Submitter
	logger    logger.Logger
}

func NewHarness(config Config, submitter Submitter, log logger.Logger) *Harness {
	return &Harness{
		config:    config,
		submitter: submitter,
		logger:    log.WithFields(map[string]interface{}{"component": "simulation-harness"}),
	}
}

// SimulateCall returns UNSUPPORTED_PLATFORM, without touching state, when
// the platform has no native module. Empty arguments take the defaults.
func (h *Harness) SimulateCall(ctx context.Context, title, body, screen string) (models.AppState, error) {
	if !h.config.NativeModuleAvailable {
		metrics.SimulatedCalls.WithLabelValues("unsupported").Inc()
		h.logger.Warn("call simulation unsupported on this platform", map[string]interface{}{
			"platform": h.config.Platform,
		})
		return models.AppState{}, apperrors.NewUnsupportedPlatformError(h.config.Platform)
	}

	if title == "" {
		title = DefaultTitle
	}
	if body == "" {
		body = DefaultBody
	}
	if screen == "" {
		screen = DefaultScreen
	}

	state, err := h.submitter.SubmitSimulatedCall(ctx, title, body, screen)
	if err != nil {
		metrics.SimulatedCalls.WithLabelValues("failed").Inc()
		return models.AppState{}, err
	}

	metrics.SimulatedCalls.WithLabelValues("ok").Inc()
	h.logger.Info("simulated call submitted", map[string]interface{}{
		"title":  title,
		"screen": screen,
		"badge":  state.PendingBadgeCount,
	})
	return state, nil
}
