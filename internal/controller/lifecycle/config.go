// internal/controller/lifecycle/config.go
package lifecycle

import "time"

const defaultInboxSize = 64

type Config struct {
	// RequiresChannels triggers the one-time ProvisionChannels call at start.
	RequiresChannels bool
	InboxSize        int
	// SubmitTimeout bounds how long a caller waits for its unit to be
	// reduced. Zero means wait for the caller's context only.
	SubmitTimeout time.Duration
}

func (c Config) inboxSize() int {
	if c.InboxSize <= 0 {
		return defaultInboxSize
	}
	return c.InboxSize
}
