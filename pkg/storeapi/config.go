package storeapi

import "time"

// Config represents the configuration for the store api client
type Config struct {
	// BaseURL is the api root, e.g. https://ops.example.com/api/v1
	BaseURL string

	// Token is a fallback bearer token used when the context carries none
	Token string

	// Timeout bounds a single HTTP round trip
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
