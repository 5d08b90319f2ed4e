// internal/controller/lifecycle/controller.go
package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/metrics"
	"push-lifecycle/internal/common/observability"
	eventrouter "push-lifecycle/internal/controller/event-router"
	permissiongate "push-lifecycle/internal/controller/permission-gate"
	presentationdispatcher "push-lifecycle/internal/controller/presentation-dispatcher"
	statereducer "push-lifecycle/internal/controller/state-reducer"
	tokenregistrar "push-lifecycle/internal/controller/token-registrar"
	"push-lifecycle/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

var ErrAlreadyRunning = errors.New("lifecycle controller already running")

// Deps are the collaborators the controller drives. Native may be nil.
type Deps struct {
	Push          models.PushService
	Native        models.NativeModule
	View          models.View
	Logger        logger.Logger
	Observability *observability.Observability
	Reducer       *statereducer.Reducer
	TokenTimeout  time.Duration
}

// unit is one run-to-completion step of the loop.
type unit struct {
	name   string
	apply  func(models.AppState) (models.AppState, []models.Command)
	result chan models.AppState
}

// Controller owns the AppState. A single goroutine (Run) applies units of
// work one at a time; readers only ever see the snapshot published after a
// unit has been fully reduced.
type Controller struct {
	config     Config
	reducer    *statereducer.Reducer
	dispatcher *presentationdispatcher.Dispatcher
	router     *eventrouter.Router
	gate       *permissiongate.Gate
	registrar  *tokenregistrar.Registrar
	native     models.NativeModule
	obs        *observability.Observability
	logger     logger.Logger

	state atomic.Pointer[models.AppState]
	inbox chan unit

	running  atomic.Bool
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New builds a controller around an explicit initial state.
func New(initial models.AppState, config Config, deps Deps) *Controller {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "lifecycle"})

	c := &Controller{
		config:     config,
		reducer:    deps.Reducer,
		dispatcher: presentationdispatcher.NewDispatcher(deps.Native, deps.View, log),
		router:     eventrouter.NewRouter(deps.Push, log),
		gate:       permissiongate.NewGate(deps.Push, deps.View, log),
		registrar:  tokenregistrar.NewRegistrar(deps.Push, deps.TokenTimeout, log),
		native:     deps.Native,
		obs:        deps.Observability,
		logger:     log,
		inbox:      make(chan unit, config.inboxSize()),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if c.reducer == nil {
		c.reducer = statereducer.NewReducer(statereducer.LoadConfig(deps.Native != nil, "default_channel_id", "call_channel_id"))
	}

	snapshot := initial.Clone()
	if snapshot.PendingBadgeCount < 0 {
		snapshot.PendingBadgeCount = 0
	}
	c.state.Store(&snapshot)
	return c
}

// Run bootstraps the collaborators and processes units until ctx is done or
// Stop is called. It returns after teardown has completed.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	select {
	case <-c.quit:
		return nil
	default:
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.bootstrap(ctx)
	c.dispatcher.Render(ctx, c.State())

	for {
		select {
		case <-ctx.Done():
			c.teardown(cancel)
			return nil
		case <-c.quit:
			c.teardown(cancel)
			return nil
		case u := <-c.inbox:
			c.process(ctx, u)
		}
	}
}

// Stop tears the controller down and waits for Run to return. Events that
// were queued but not yet reduced are dropped whole.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
	if c.running.Load() {
		<-c.done
	}
}

// State returns the latest published snapshot.
func (c *Controller) State() models.AppState {
	return c.state.Load().Clone()
}

// Token returns the token held by the registrar.
func (c *Controller) Token() string {
	return c.registrar.Token()
}

// Dispatch queues a notification event for reduction without waiting for it.
func (c *Controller) Dispatch(event models.NotificationEvent) error {
	select {
	case <-c.quit:
		metrics.EventsDropped.WithLabelValues(string(event.Kind), "controller_stopped").Inc()
		return apperrors.NewControllerStoppedError()
	default:
	}

	u := unit{
		name: string(event.Kind),
		apply: func(s models.AppState) (models.AppState, []models.Command) {
			metrics.EventsReduced.WithLabelValues(string(event.Kind)).Inc()
			return c.reducer.Reduce(s, event)
		},
	}
	select {
	case <-c.quit:
		metrics.EventsDropped.WithLabelValues(string(event.Kind), "controller_stopped").Inc()
		return apperrors.NewControllerStoppedError()
	case c.inbox <- u:
		return nil
	}
}

// ClearBadge resets the badge and clears presented notifications.
func (c *Controller) ClearBadge(ctx context.Context) (models.AppState, error) {
	return c.submit(ctx, "clear_badge", c.reducer.ClearBadge)
}

// SubmitSimulatedCall applies a simulated call, bypassing the event router.
func (c *Controller) SubmitSimulatedCall(ctx context.Context, title, body, screen string) (models.AppState, error) {
	return c.submit(ctx, "simulated_call", func(s models.AppState) (models.AppState, []models.Command) {
		return c.reducer.SimulatedCall(s, title, body, screen)
	})
}

// SetToken records a registration token in the state.
func (c *Controller) SetToken(ctx context.Context, token string) (models.AppState, error) {
	return c.submit(ctx, "set_token", func(s models.AppState) (models.AppState, []models.Command) {
		return c.reducer.WithToken(s, token)
	})
}

// RetryToken is the user-triggered token re-fetch.
func (c *Controller) RetryToken(ctx context.Context) (models.AppState, error) {
	token, err := c.registrar.Retry(ctx)
	if err != nil {
		return c.State(), err
	}
	return c.SetToken(ctx, token)
}

func (c *Controller) submit(ctx context.Context, name string, apply func(models.AppState) (models.AppState, []models.Command)) (models.AppState, error) {
	if c.config.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.SubmitTimeout)
		defer cancel()
	}

	u := unit{name: name, apply: apply, result: make(chan models.AppState, 1)}
	select {
	case <-c.quit:
		return models.AppState{}, apperrors.NewControllerStoppedError()
	case <-ctx.Done():
		return models.AppState{}, ctx.Err()
	case c.inbox <- u:
	}

	select {
	case s := <-u.result:
		return s, nil
	case <-c.done:
		return models.AppState{}, apperrors.NewControllerStoppedError()
	case <-ctx.Done():
		return models.AppState{}, ctx.Err()
	}
}

// process reduces one unit, publishes the snapshot, then presents.
func (c *Controller) process(ctx context.Context, u unit) {
	start := time.Now()
	ctx, span := c.obs.StartSpan(ctx, "lifecycle."+u.name, attribute.String("unit", u.name))
	defer span.End()

	current := c.state.Load()
	next, commands := u.apply(current.Clone())
	if next.PendingBadgeCount < 0 {
		next.PendingBadgeCount = 0
	}
	c.state.Store(&next)
	metrics.PendingBadgeCount.Set(float64(next.PendingBadgeCount))

	if u.result != nil {
		u.result <- next.Clone()
	}

	c.dispatcher.Render(ctx, next)
	failed := c.dispatcher.Dispatch(ctx, commands)

	span.SetAttributes(
		attribute.Int("badge", next.PendingBadgeCount),
		attribute.Int("commands", len(commands)),
		attribute.Int("failedCommands", failed),
	)
	c.obs.RecordUnit(ctx, u.name, time.Since(start))

	c.logger.Debug("unit processed", map[string]interface{}{
		"unit":     u.name,
		"badge":    next.PendingBadgeCount,
		"commands": len(commands),
	})
}

func (c *Controller) teardown(cancel context.CancelFunc) {
	c.stopOnce.Do(func() { close(c.quit) })
	c.router.Stop()
	cancel()
	c.wg.Wait()

	dropped := 0
	for {
		select {
		case u := <-c.inbox:
			dropped++
			metrics.EventsDropped.WithLabelValues(u.name, "controller_stopped").Inc()
		default:
			c.logger.Info("lifecycle controller stopped", map[string]interface{}{
				"droppedUnits": dropped,
			})
			return
		}
	}
}
