package messaging

import "time"

// Config represents the configuration for the message service client.
// It is read-only after startup and shared by every request.
type Config struct {
	// BaseURL is the message service API base URL
	BaseURL string

	// APIKey authenticates this application against the service
	APIKey string

	// TenantID scopes every call to one tenant
	TenantID string

	// Timeout bounds every call; a timeout counts as an unavailable upstream
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	if c.TenantID == "" {
		return ErrInvalidConfig
	}
	return nil
}
