// internal/controller/lifecycle/bootstrap.go
package lifecycle

import (
	"context"
	"errors"

	apperrors "push-lifecycle/internal/common/errors"
	eventrouter "push-lifecycle/internal/controller/event-router"
	"push-lifecycle/internal/models"
)

// bootstrap provisions channels, starts the event router and kicks off the
// permission/token sequence on its own goroutine so routing never waits on
// it.
func (c *Controller) bootstrap(ctx context.Context) {
	if c.config.RequiresChannels && c.native != nil {
		if err := c.native.ProvisionChannels(ctx); err != nil {
			c.logger.Warn("channel provisioning failed", map[string]interface{}{
				"error": err,
			})
		}
	}

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.register(ctx)
	}()
	go func() {
		defer c.wg.Done()
		if err := c.router.Start(ctx, c.route); err != nil && !errors.Is(err, eventrouter.ErrStopped) {
			c.logger.Error("event router failed to start", map[string]interface{}{
				"error": err,
			})
		}
	}()
}

// route is the router sink.
func (c *Controller) route(ev models.NotificationEvent) {
	c.logger.Info("notification event received", map[string]interface{}{
		"eventId": ev.ID,
		"kind":    string(ev.Kind),
	})
	if err := c.Dispatch(ev); err != nil {
		c.logger.Debug("event not queued", map[string]interface{}{
			"eventId": ev.ID,
			"error":   err,
		})
	}
}

// register runs Permission Gate then Token Registrar. Denial and fetch
// failures leave the controller in tokenless mode.
func (c *Controller) register(ctx context.Context) {
	status, err := c.gate.Request(ctx)
	if err != nil {
		c.logger.Warn("continuing without registration token", map[string]interface{}{
			"status": string(status),
		})
		return
	}

	token, err := c.registrar.Fetch(ctx)
	if err != nil {
		return
	}

	if _, err := c.SetToken(ctx, token); err != nil && !errors.Is(err, apperrors.ErrControllerStopped) && !errors.Is(err, context.Canceled) {
		c.logger.Warn("failed to record registration token", map[string]interface{}{
			"error": err,
		})
	}
}
