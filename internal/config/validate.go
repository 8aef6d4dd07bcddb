package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/flemzord/relaybot/modules/channel/telegram"
)

// ErrMissingCredentials reports a config without a bot token or without
// any generative API key. The process cannot start without both.
var ErrMissingCredentials = errors.New("config: missing credentials")

// Validate checks a defaulted Config. All problems are reported at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: %q)", cfg.Version, CurrentVersion))
	}

	if cfg.Telegram.Token == "" {
		errs = append(errs, fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvBotToken))
	} else if err := cfg.Telegram.Validate(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, validateGemini(&cfg.Gemini)...)
	errs = append(errs, validateBot(&cfg.Bot)...)

	if err := cfg.Gateway.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("config: log.format must be \"text\" or \"json\", got %q", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

func validateGemini(g *GeminiConfig) []error {
	var errs []error

	if len(g.APIKeys) == 0 {
		errs = append(errs, fmt.Errorf("%w: set %s (and optionally %s_2, %s_3 or %s)",
			ErrMissingCredentials, EnvAPIKey, EnvAPIKey, EnvAPIKey, EnvAPIKeys))
	}
	for i, k := range g.APIKeys {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("config: gemini.api_keys[%d] is blank", i))
		}
	}
	if g.FallbackModel != "" && g.FallbackModel == g.Model {
		errs = append(errs, errors.New("config: gemini.fallback_model must differ from gemini.model"))
	}
	if g.AttemptFactor < 0 {
		errs = append(errs, fmt.Errorf("config: gemini.attempt_factor must be positive, got %d", g.AttemptFactor))
	}
	if err := g.Client.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func validateBot(b *BotConfig) []error {
	var errs []error

	if b.ContextWindow > b.HistoryCap {
		errs = append(errs, fmt.Errorf("config: bot.context_window (%d) exceeds bot.history_cap (%d)", b.ContextWindow, b.HistoryCap))
	}
	if b.Workers < 0 || b.InboxSize < 0 {
		errs = append(errs, errors.New("config: bot.workers and bot.inbox_size must not be negative"))
	}
	if _, err := cron.ParseStandard(b.EvictionSchedule); err != nil {
		errs = append(errs, fmt.Errorf("config: bot.eviction_schedule %q: %w", b.EvictionSchedule, err))
	}
	return errs
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", s)
	}
	return level, nil
}

// WebhookMode reports whether updates arrive through the gateway.
func (c *Config) WebhookMode() bool {
	return c.Telegram.Mode == telegram.ModeWebhook
}

func parseRatio(s string) (float64, error) {
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r < 0 || r > 1 {
		return 0, fmt.Errorf("config: invalid ratio %q", s)
	}
	return r, nil
}
