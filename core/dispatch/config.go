package dispatch

import "time"

// Default pacing values. The pause keeps the sequence under the remote
// API's rate limit; it is a fixed gap, not a backoff.
const (
	DefaultSendTimeout = 15 * time.Second
	DefaultSendPause   = 400 * time.Millisecond
)

// Config defines orchestrator timing settings.
type Config struct {
	// SendTimeoutSeconds bounds every transport call.
	SendTimeoutSeconds int `json:"send_timeout_seconds"`
	// SendPauseMS is the fixed pause between consecutive sends of a bulk
	// run, applied after every attempt regardless of outcome.
	SendPauseMS int `json:"send_pause_ms"`
}

// SendTimeout returns the configured timeout or the default.
func (c Config) SendTimeout() time.Duration {
	if c.SendTimeoutSeconds <= 0 {
		return DefaultSendTimeout
	}
	return time.Duration(c.SendTimeoutSeconds) * time.Second
}

// SendPause returns the configured pause or the default.
func (c Config) SendPause() time.Duration {
	if c.SendPauseMS <= 0 {
		return DefaultSendPause
	}
	return time.Duration(c.SendPauseMS) * time.Millisecond
}
