package gateway

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Config holds HTTP gateway configuration.
type Config struct {
	Bind            string        `yaml:"bind"`
	Auth            AuthConfig    `yaml:"auth"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxWebhookBody caps the size of a pushed update. Default: 1 MiB.
	MaxWebhookBody int64 `yaml:"max_webhook_body"`
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.Bind == "" {
		c.Bind = ":3000"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxWebhookBody <= 0 {
		c.MaxWebhookBody = 1 << 20
	}
	c.Auth.defaults()
}

// Validate checks the bind address.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Bind); err != nil {
		return fmt.Errorf("gateway: invalid bind address %q: %w", c.Bind, err)
	}
	if (c.Auth.BasicUser == "") != (c.Auth.BasicPass == "") {
		return errors.New("gateway: basic_user and basic_pass must be set together")
	}
	return nil
}

// AuthConfig configures authentication for admin endpoints.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	BasicUser   string `yaml:"basic_user"`
	BasicPass   string `yaml:"basic_pass"`

	// MaxAttempts bounds authentication attempts per client address per
	// minute. Default: 30.
	MaxAttempts int `yaml:"max_attempts"`
}

func (a *AuthConfig) defaults() {
	if a.MaxAttempts <= 0 {
		a.MaxAttempts = 30
	}
}

// IsConfigured returns true if any auth method is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}
