package catalog

import (
	"net/url"
	"time"
)

// Config for the catalog client
type Config struct {
	// BaseURL of the Fake Store compatible API, without trailing slash
	BaseURL string

	// Timeout bounds a single HTTP attempt
	Timeout time.Duration

	// MaxRetries is how many extra attempts follow an unavailable outcome
	MaxRetries int

	// RetryBaseDelay is the first backoff step
	RetryBaseDelay time.Duration
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidConfig
	}
	if c.Timeout <= 0 || c.MaxRetries < 0 {
		return ErrInvalidConfig
	}
	return nil
}
