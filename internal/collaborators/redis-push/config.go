// internal/collaborators/redis-push/config.go
package redispush

import (
	"fmt"
	"time"

	"push-lifecycle/internal/common/config"
	"push-lifecycle/internal/models"
)

type Config struct {
	KeyPrefix         string
	DefaultPermission models.AuthorizationStatus
	ValidatePayloads  bool
	SubscribeTimeout  time.Duration
}

func LoadConfig(cfg config.PushConfig) *Config {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "push"
	}
	return &Config{
		KeyPrefix:         prefix,
		DefaultPermission: models.ParseAuthorizationStatus(cfg.DefaultPermission),
		ValidatePayloads:  cfg.ValidatePayloads,
		SubscribeTimeout:  config.GetDuration(cfg.RequestTimeout),
	}
}

// Keys lists the Redis names the adapter reads and writes.
type Keys struct {
	Foreground string // pub/sub channel
	Opened     string // pub/sub channel
	ColdStart  string // one-shot string key, consumed with GETDEL
	Token      string
	Permission string
}

func (c *Config) Keys() Keys {
	return Keys{
		Foreground: fmt.Sprintf("%s:foreground", c.KeyPrefix),
		Opened:     fmt.Sprintf("%s:opened", c.KeyPrefix),
		ColdStart:  fmt.Sprintf("%s:coldstart", c.KeyPrefix),
		Token:      fmt.Sprintf("%s:token", c.KeyPrefix),
		Permission: fmt.Sprintf("%s:permission", c.KeyPrefix),
	}
}
