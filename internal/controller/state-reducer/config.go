// internal/controller/state-reducer/config.go
package statereducer

const (
	DefaultTitle  = "New Message"
	DefaultBody   = "You have a new message."
	DefaultScreen = "Home"
)

type Config struct {
	// NativeModuleAvailable gates the ShowLocal command for foreground events.
	NativeModuleAvailable bool
	DefaultChannelID      string
	CallChannelID         string
	FallbackTitle         string
	FallbackBody          string
	FallbackScreen        string
}

func LoadConfig(nativeModuleAvailable bool, defaultChannelID, callChannelID string) *Config {
	return &Config{
		NativeModuleAvailable: nativeModuleAvailable,
		DefaultChannelID:      defaultChannelID,
		CallChannelID:         callChannelID,
		FallbackTitle:         DefaultTitle,
		FallbackBody:          DefaultBody,
		FallbackScreen:        DefaultScreen,
	}
}
