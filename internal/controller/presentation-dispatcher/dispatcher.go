// internal/controller/presentation-dispatcher/dispatcher.go
package presentationdispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/metrics"
	"push-lifecycle/internal/models"
)

const (
	DeepLinkTitle        = "Deep Link"
	DeepLinkInitialTitle = "Deep Link (Initial)"
)

var (
	errNoNativeModule = errors.New("native presentation module not available")
	errNoView         = errors.New("view not attached")
	errUnknownCommand = errors.New("unknown command")
)

// Dispatcher executes presentation commands against the native module and
// the view. Failures are logged and counted, never returned.
type Dispatcher struct {
	native       models.NativeModule
	view         models.View
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewDispatcher builds a dispatcher. native may be nil on platforms without
// the native module.
func NewDispatcher(native models.NativeModule, view models.View, log logger.Logger) *Dispatcher {
	l := log.WithFields(map[string]interface{}{"component": "presentation-dispatcher"})
	return &Dispatcher{
		native:       native,
		view:         view,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
	}
}

// Dispatch runs commands in order. It returns how many of them failed.
func (d *Dispatcher) Dispatch(ctx context.Context, commands []models.Command) int {
	failed := 0
	for _, cmd := range commands {
		if err := d.execute(ctx, cmd); err != nil {
			failed++
			metrics.CommandsDispatched.WithLabelValues(string(cmd.Type()), "failed").Inc()
			d.errorHandler.Handle("dispatch", apperrors.NewPresentationFailedError(string(cmd.Type()), err), nil)
			continue
		}
		metrics.CommandsDispatched.WithLabelValues(string(cmd.Type()), "ok").Inc()
	}
	return failed
}

// Render pushes a state snapshot to the view.
func (d *Dispatcher) Render(ctx context.Context, state models.AppState) {
	if d.view == nil {
		return
	}
	if err := d.view.Render(ctx, state); err != nil {
		d.errorHandler.Handle("render", apperrors.NewPresentationFailedError("render", err), nil)
	}
}

func (d *Dispatcher) execute(ctx context.Context, cmd models.Command) error {
	switch c := cmd.(type) {
	case models.ShowLocal:
		if d.native == nil {
			return errNoNativeModule
		}
		return d.native.ShowLocal(ctx, c.LocalNotification)

	case models.ShowCall:
		if d.native == nil {
			return errNoNativeModule
		}
		n := c.LocalNotification
		n.FullScreen = true
		return d.native.ShowCall(ctx, n)

	case models.ClearAllPresented:
		if d.native == nil {
			return errNoNativeModule
		}
		return d.native.ClearAll(ctx)

	case models.ScrollToLatest:
		if d.view == nil {
			return errNoView
		}
		return d.view.ScrollToLatest(ctx)

	case models.ShowDeepLinkAlert:
		if d.view == nil {
			return errNoView
		}
		title, message := DeepLinkAlertText(c)
		return d.view.Alert(ctx, title, message)

	default:
		return fmt.Errorf("%w: %T", errUnknownCommand, cmd)
	}
}

// DeepLinkAlertText renders the user-facing copy for a deep-link alert.
func DeepLinkAlertText(c models.ShowDeepLinkAlert) (string, string) {
	data := c.Data
	if data == nil {
		data = map[string]string{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("{}")
	}
	if c.Initial {
		return DeepLinkInitialTitle, fmt.Sprintf("App opened to %s with data: %s", c.Screen, raw)
	}
	return DeepLinkTitle, fmt.Sprintf("Navigating to %s with data: %s", c.Screen, raw)
}
