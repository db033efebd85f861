package types

import "time"

// ClientConfig holds shared HTTP settings for commands that call the
// HackMD API.
type ClientConfig struct {
	// Timeout is the HTTP request timeout. The original tool specifies no
	// timeout, so a conservative 30s default is applied when zero.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "hackmd-cli/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

const (
	// DefaultTimeout is used when ClientConfig.Timeout is unset.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the CLI to the API.
	DefaultUserAgent = "hackmd-cli/0.1"
)

// WithDefaults returns a copy of c with zero fields filled in.
func (c ClientConfig) WithDefaults() ClientConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
