// internal/models/command.go
package models

// CommandType names a presentation side effect.
type CommandType string

const (
	CommandShowLocal         CommandType = "show_local"
	CommandShowCall          CommandType = "show_call"
	CommandScrollToLatest    CommandType = "scroll_to_latest"
	CommandShowDeepLinkAlert CommandType = "show_deep_link_alert"
	CommandClearAllPresented CommandType = "clear_all_presented"
)

// Command is a side effect produced by the reducer and executed once by the
// presentation dispatcher.
type Command interface {
	Type() CommandType
}

// LocalNotification is the tuple handed to the native presentation module.
type LocalNotification struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Screen     string `json:"screen"`
	ChannelID  string `json:"channelId"`
	FullScreen bool   `json:"fullScreen"`
}

// ShowLocal renders an ordinary local notification.
type ShowLocal struct {
	LocalNotification
}

func (ShowLocal) Type() CommandType { return CommandShowLocal }

// ShowCall renders a call-grade alert. FullScreen is always true.
type ShowCall struct {
	LocalNotification
}

func (ShowCall) Type() CommandType { return CommandShowCall }

// ScrollToLatest asks the view to reveal the newest data.
type ScrollToLatest struct{}

func (ScrollToLatest) Type() CommandType { return CommandScrollToLatest }

// ShowDeepLinkAlert tells the user where a tapped notification routes to.
// Initial marks the cold-start variant.
type ShowDeepLinkAlert struct {
	Screen  string            `json:"screen"`
	Data    map[string]string `json:"data"`
	Initial bool              `json:"initial"`
}

func (ShowDeepLinkAlert) Type() CommandType { return CommandShowDeepLinkAlert }

// ClearAllPresented removes every notification the native module shows.
type ClearAllPresented struct{}

func (ClearAllPresented) Type() CommandType { return CommandClearAllPresented }
