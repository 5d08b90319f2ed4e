// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and lets environment variables override any key (app.name -> APP_NAME).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers every known key so AutomaticEnv overrides also work
// for keys missing from the yaml file.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"app.name", "app.version", "app.environment",
		"logging.level", "logging.format",
		"redis.address", "redis.password", "redis.db",
		"push.key_prefix", "push.default_permission", "push.request_timeout", "push.validate_payloads",
		"presentation.platform", "presentation.default_channel_id", "presentation.call_channel_id",
		"presentation.channel_registry_path", "presentation.deep_link_scheme",
		"metrics.enabled",
		"tracing.jaeger_endpoint",
		"api.address", "api.mode",
		"sender.provider", "sender.aws.region", "sender.aws.platform_endpoint_arn",
		"sender.fcm.credentials_file", "sender.device_token",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "push-lifecycle"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}

	if cfg.Push.KeyPrefix == "" {
		cfg.Push.KeyPrefix = "push"
	}
	if cfg.Push.DefaultPermission == "" {
		cfg.Push.DefaultPermission = "authorized"
	}
	if cfg.Push.RequestTimeout == 0 {
		cfg.Push.RequestTimeout = 10000
	}

	if cfg.Presentation.Platform == "" {
		cfg.Presentation.Platform = PlatformAndroid
	}
	if cfg.Presentation.DefaultChannelID == "" {
		cfg.Presentation.DefaultChannelID = "default_channel_id"
	}
	if cfg.Presentation.CallChannelID == "" {
		cfg.Presentation.CallChannelID = "call_channel_id"
	}
	if cfg.Presentation.DeepLinkScheme == "" {
		cfg.Presentation.DeepLinkScheme = "myapp"
	}

	if cfg.API.Address == "" {
		cfg.API.Address = ":8080"
	}
	if cfg.API.Mode == "" {
		cfg.API.Mode = "release"
	}

	if cfg.Sender.Provider == "" {
		cfg.Sender.Provider = "redis"
	}
	if cfg.Sender.AWS.Region == "" {
		cfg.Sender.AWS.Region = "us-east-1"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Presentation.Platform {
	case PlatformAndroid, PlatformIOS, PlatformHeadless:
	default:
		return fmt.Errorf("presentation.platform must be android, ios or headless, got %q", cfg.Presentation.Platform)
	}

	if cfg.Presentation.DefaultChannelID == cfg.Presentation.CallChannelID {
		return fmt.Errorf("presentation.default_channel_id and presentation.call_channel_id must differ")
	}

	switch cfg.Sender.Provider {
	case "sns", "fcm", "redis":
	default:
		return fmt.Errorf("sender.provider must be sns, fcm or redis, got %q", cfg.Sender.Provider)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
