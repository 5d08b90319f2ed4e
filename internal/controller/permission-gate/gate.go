// internal/controller/permission-gate/gate.go
package permissiongate

import (
	"context"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/metrics"
	"push-lifecycle/internal/models"
)

const (
	DeniedAlertTitle   = "Permission Denied"
	DeniedAlertMessage = "Please enable notification permissions in settings."
)

// Requester is the part of the push service the gate talks to.
type Requester interface {
	RequestPermission(ctx context.Context) (models.AuthorizationStatus, error)
}

// Alerter surfaces the denial to the user.
type Alerter interface {
	Alert(ctx context.Context, title, message string) error
}

// Gate asks the push service for authorization once per call. There is no
// automatic retry.
type Gate struct {
	requester Requester
	alerter   Alerter
	logger    logger.Logger
}

func NewGate(requester Requester, alerter Alerter, log logger.Logger) *Gate {
	return &Gate{
		requester: requester,
		alerter:   alerter,
		logger:    log.WithFields(map[string]interface{}{"component": "permission-gate"}),
	}
}

// Request returns the authorization status. A denied status, or a failure
// of the request itself, yields AuthorizationDenied together with a
// PERMISSION_DENIED error after the user has been warned.
func (g *Gate) Request(ctx context.Context) (models.AuthorizationStatus, error) {
	status, err := g.requester.RequestPermission(ctx)
	if err != nil {
		g.logger.Warn("permission request failed, treating as denied", map[string]interface{}{
			"error": err,
		})
		status = models.AuthorizationDenied
	}

	metrics.AuthorizationRequests.WithLabelValues(string(status)).Inc()

	if status.Enabled() {
		g.logger.Info("notification permission granted", map[string]interface{}{
			"status": string(status),
		})
		return status, nil
	}

	if g.alerter != nil {
		if alertErr := g.alerter.Alert(ctx, DeniedAlertTitle, DeniedAlertMessage); alertErr != nil {
			g.logger.Warn("failed to surface permission warning", map[string]interface{}{
				"error": alertErr,
			})
		}
	}
	return models.AuthorizationDenied, apperrors.NewPermissionDeniedError(string(status))
}
