package telegram

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Delivery modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// WebhookPathPrefix is the gateway route under which updates are pushed.
// The full path is WebhookPathPrefix + token.
const WebhookPathPrefix = "/webhook/"

// Config holds the Telegram channel configuration.
type Config struct {
	Token            string   `yaml:"token"`
	Mode             string   `yaml:"mode"`
	PollingTimeout   int      `yaml:"polling_timeout"`
	WebhookURL       string   `yaml:"webhook_url"`
	WebhookSecret    string   `yaml:"webhook_secret"`
	AllowedUpdates   []string `yaml:"allowed_updates"`
	AllowUsers       []string `yaml:"allow_users"`
	AllowChats       []string `yaml:"allow_chats"`
	MaxMessageLength int      `yaml:"max_message_length"`
	APIURL           string   `yaml:"api_url"`
}

// Defaults applies default values to unset fields.
func (c *Config) Defaults() {
	if c.Mode == "" {
		c.Mode = ModePolling
	}
	if c.PollingTimeout == 0 {
		c.PollingTimeout = 30
	}
	if c.AllowedUpdates == nil {
		c.AllowedUpdates = []string{"message", "edited_message"}
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = 4096
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.telegram.org"
	}
}

// Validate checks configuration field constraints. Called after defaults.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("telegram: token is required")
	}
	if !tokenPattern.MatchString(c.Token) {
		return errors.New("telegram: token format invalid (expected <bot_id>:<hash>)")
	}

	switch c.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.WebhookURL == "" {
			return errors.New("telegram: webhook_url is required when mode is \"webhook\"")
		}
		u, err := url.Parse(c.WebhookURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("telegram: webhook_url must be an absolute https URL, got %q", c.WebhookURL)
		}
	default:
		return fmt.Errorf("telegram: invalid mode %q (must be %q or %q)", c.Mode, ModePolling, ModeWebhook)
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("telegram: api_url must be a valid http/https URL, got %q", c.APIURL)
	}

	if c.PollingTimeout < 0 || c.PollingTimeout > 50 {
		return fmt.Errorf("telegram: polling_timeout must be 0-50, got %d", c.PollingTimeout)
	}

	if c.MaxMessageLength < 1 || c.MaxMessageLength > 4096 {
		return fmt.Errorf("telegram: max_message_length must be 1-4096, got %d", c.MaxMessageLength)
	}

	return nil
}

// webhookEndpoint is the public URL registered with setWebhook.
func (c *Config) webhookEndpoint() string {
	base := c.WebhookURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + WebhookPathPrefix + c.Token
}
