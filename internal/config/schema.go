// Package config assembles the bot's configuration from an optional YAML
// file, .env files and environment variables, and validates the result.
package config

import (
	"time"

	"github.com/flemzord/relaybot/internal/gateway"
	"github.com/flemzord/relaybot/internal/telemetry"
	"github.com/flemzord/relaybot/modules/channel/telegram"
	"github.com/flemzord/relaybot/modules/provider/gemini"
)

// CurrentVersion is the only supported config file format version.
const CurrentVersion = "1"

// Defaults for the bot section.
const (
	DefaultModel            = "gemini-2.5-flash"
	DefaultHistoryCap       = 10
	DefaultContextWindow    = 6
	DefaultIdleTimeout      = time.Hour
	DefaultEvictionSchedule = "*/5 * * * *"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Empty means CurrentVersion.
	Version string `yaml:"version"`

	Telegram  telegram.Config  `yaml:"telegram"`
	Gemini    GeminiConfig     `yaml:"gemini"`
	Bot       BotConfig        `yaml:"bot"`
	Gateway   gateway.Config   `yaml:"gateway"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Log       LogConfig        `yaml:"log"`
}

// GeminiConfig configures the credential ledger, the request controller
// and the HTTP client they drive.
type GeminiConfig struct {
	APIKeys       []string `yaml:"api_keys"`
	Model         string   `yaml:"model"`
	FallbackModel string   `yaml:"fallback_model"`

	// AttemptFactor times len(APIKeys) is the per-message call budget.
	AttemptFactor  int           `yaml:"attempt_factor"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	CoolDown       time.Duration `yaml:"cool_down"`
	RateLimitPause time.Duration `yaml:"rate_limit_pause"`

	Client gemini.Config `yaml:"client"`
}

// BotConfig configures sessions, prompting and the message pipeline.
type BotConfig struct {
	// Persona is inline persona text. PersonaFile, when set, wins and is
	// re-read when it changes.
	Persona     string `yaml:"persona"`
	PersonaFile string `yaml:"persona_file"`

	HistoryCap    int `yaml:"history_cap"`
	ContextWindow int `yaml:"context_window"`

	Workers   int `yaml:"workers"`
	InboxSize int `yaml:"inbox_size"`

	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	EvictionSchedule string        `yaml:"eviction_schedule"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Defaults fills zero values. Component sections apply their own defaults.
func (c *Config) Defaults() {
	if c.Version == "" {
		c.Version = CurrentVersion
	}

	c.Telegram.Defaults()
	c.Gateway.Defaults()
	c.Gemini.Client.Defaults()

	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultModel
	}
	if c.Bot.HistoryCap <= 0 {
		c.Bot.HistoryCap = DefaultHistoryCap
	}
	if c.Bot.ContextWindow <= 0 {
		c.Bot.ContextWindow = min(DefaultContextWindow, c.Bot.HistoryCap)
	}
	if c.Bot.IdleTimeout <= 0 {
		c.Bot.IdleTimeout = DefaultIdleTimeout
	}
	if c.Bot.EvictionSchedule == "" {
		c.Bot.EvictionSchedule = DefaultEvictionSchedule
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Secrets returns every credential value in the config, for log redaction.
func (c *Config) Secrets() []string {
	out := []string{c.Telegram.Token, c.Telegram.WebhookSecret, c.Gateway.Auth.BearerToken, c.Gateway.Auth.BasicPass}
	out = append(out, c.Gemini.APIKeys...)
	return out
}
