// Package warehouse implements fulfillment.WarehouseClient against the
// fulfillment provider's REST API, plus an in-memory demo backend.
package warehouse

import (
	"errors"
	"strings"
	"time"
)

// DefaultTimeout bounds every warehouse API call
const DefaultTimeout = 30 * time.Second

// Errors for warehouse configuration
var (
	ErrConfigMissingBaseURL = errors.New("warehouse: API base URL is required")
	ErrConfigMissingToken   = errors.New("warehouse: API token is required")
)

// Config holds the warehouse API settings
type Config struct {
	// BaseURL is the API root, e.g. https://wms.example.com/api/v1
	BaseURL string
	// APIToken is sent as a bearer token on every call
	APIToken string
	// WebhookSecret signs webhook deliveries (HMAC-SHA256, hex)
	WebhookSecret string
	Timeout       time.Duration
}

// Validate checks required fields and fills in defaults
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIToken == "" {
		return ErrConfigMissingToken
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
