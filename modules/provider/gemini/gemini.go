// Package gemini implements provider.Generator on top of the Gemini
// generateContent REST API.
package gemini

import (
	"log/slog"
	"net/http"

	"github.com/flemzord/relaybot/internal/provider"
)

// Compile-time interface guard.
var _ provider.Generator = (*Client)(nil)

// Client calls the Gemini generateContent endpoint. The API key and model
// arrive with each request so one client serves every credential.
type Client struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// New validates cfg, fills defaults and returns a ready client.
// A nil logger discards output.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		config: cfg,
		logger: logger,
		client: &http.Client{Timeout: cfg.parsedTimeout()},
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}
