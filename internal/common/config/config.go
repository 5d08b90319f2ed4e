// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Push         PushConfig         `mapstructure:"push"`
	Presentation PresentationConfig `mapstructure:"presentation"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	API          APIConfig          `mapstructure:"api"`
	Sender       SenderConfig       `mapstructure:"sender"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PushConfig drives the development push-service adapter.
type PushConfig struct {
	KeyPrefix         string `mapstructure:"key_prefix"`
	DefaultPermission string `mapstructure:"default_permission"`
	RequestTimeout    int    `mapstructure:"request_timeout"` // milliseconds
	ValidatePayloads  bool   `mapstructure:"validate_payloads"`
}

// PresentationConfig describes the native presentation surface.
type PresentationConfig struct {
	// Platform is one of android, ios or headless. The native module only
	// exists on android.
	Platform            string `mapstructure:"platform"`
	DefaultChannelID    string `mapstructure:"default_channel_id"`
	CallChannelID       string `mapstructure:"call_channel_id"`
	ChannelRegistryPath string `mapstructure:"channel_registry_path"`
	DeepLinkScheme      string `mapstructure:"deep_link_scheme"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type APIConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

// SenderConfig is used by the push-sender tool only.
type SenderConfig struct {
	Provider string `mapstructure:"provider"` // sns, fcm or redis
	AWS      struct {
		Region              string `mapstructure:"region"`
		PlatformEndpointARN string `mapstructure:"platform_endpoint_arn"`
	} `mapstructure:"aws"`
	FCM struct {
		CredentialsFile string `mapstructure:"credentials_file"`
	} `mapstructure:"fcm"`
	DeviceToken string `mapstructure:"device_token"`
}

const (
	PlatformAndroid  = "android"
	PlatformIOS      = "ios"
	PlatformHeadless = "headless"
)

// NativeModuleAvailable reports whether the configured platform ships the
// native presentation module.
func (p PresentationConfig) NativeModuleAvailable() bool {
	return p.Platform == PlatformAndroid
}

// RequiresChannels reports whether channels must be declared before use.
func (p PresentationConfig) RequiresChannels() bool {
	return p.Platform == PlatformAndroid
}
