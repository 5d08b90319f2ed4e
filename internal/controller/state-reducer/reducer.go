// internal/controller/state-reducer/reducer.go
package statereducer

import (
	"push-lifecycle/internal/models"
)

// Reducer derives the next AppState and the presentation commands for one
// unit of work. It holds no state of its own and never performs I/O.
type Reducer struct {
	config *Config
}

func NewReducer(config *Config) *Reducer {
	if config.FallbackTitle == "" {
		config.FallbackTitle = DefaultTitle
	}
	if config.FallbackBody == "" {
		config.FallbackBody = DefaultBody
	}
	if config.FallbackScreen == "" {
		config.FallbackScreen = DefaultScreen
	}
	return &Reducer{config: config}
}

// Reduce applies one notification event.
func (r *Reducer) Reduce(state models.AppState, event models.NotificationEvent) (models.AppState, []models.Command) {
	next := state.Clone()
	next.LastNotificationData = models.CopyData(event.Data)

	var commands []models.Command

	switch event.Kind {
	case models.KindForeground:
		next.PendingBadgeCount = state.PendingBadgeCount + 1
		if r.config.NativeModuleAvailable {
			commands = append(commands, models.ShowLocal{LocalNotification: r.localFor(event)})
		}

	case models.KindOpenedFromBackground, models.KindOpenedFromColdStart:
		next.PendingBadgeCount = decrement(state.PendingBadgeCount)
		if screen, ok := event.Screen(); ok {
			commands = append(commands, models.ShowDeepLinkAlert{
				Screen:  screen,
				Data:    models.CopyData(event.Data),
				Initial: event.Kind == models.KindOpenedFromColdStart,
			})
		}

	default:
		// Unknown kinds leave the state untouched.
		return state, nil
	}

	commands = append(commands, models.ScrollToLatest{})
	return next, commands
}

// ClearBadge resets the badge and clears every presented notification.
func (r *Reducer) ClearBadge(state models.AppState) (models.AppState, []models.Command) {
	next := state.Clone()
	next.PendingBadgeCount = 0
	return next, []models.Command{models.ClearAllPresented{}}
}

// SimulatedCall counts a locally generated call alert. lastNotificationData
// is left as is since no remote payload was received.
func (r *Reducer) SimulatedCall(state models.AppState, title, body, screen string) (models.AppState, []models.Command) {
	next := state.Clone()
	next.PendingBadgeCount = state.PendingBadgeCount + 1
	return next, []models.Command{models.ShowCall{LocalNotification: models.LocalNotification{
		Title:      title,
		Body:       body,
		Screen:     screen,
		ChannelID:  r.config.CallChannelID,
		FullScreen: true,
	}}}
}

// WithToken records a registration token.
func (r *Reducer) WithToken(state models.AppState, token string) (models.AppState, []models.Command) {
	next := state.Clone()
	next.RegistrationToken = token
	return next, nil
}

func (r *Reducer) localFor(event models.NotificationEvent) models.LocalNotification {
	n := models.LocalNotification{
		Title:     r.config.FallbackTitle,
		Body:      r.config.FallbackBody,
		Screen:    r.config.FallbackScreen,
		ChannelID: r.config.DefaultChannelID,
	}
	if event.Content != nil {
		if event.Content.Title != "" {
			n.Title = event.Content.Title
		}
		if event.Content.Body != "" {
			n.Body = event.Content.Body
		}
	}
	if screen, ok := event.Screen(); ok {
		n.Screen = screen
	}
	return n
}

func decrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}
