package config

import (
	"net"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvBotToken       = "TELEGRAM_BOT_TOKEN"
	EnvBotTokenAlias  = "BOT_TOKEN"
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvAPIKeys        = "GEMINI_API_KEYS"
	EnvModel          = "GEMINI_MODEL"
	EnvFallbackModel  = "GEMINI_FALLBACK_MODEL"
	EnvPort           = "PORT"
	EnvMode           = "BOT_MODE"
	EnvWebhookURL     = "WEBHOOK_URL"
	EnvWebhookSecret  = "WEBHOOK_SECRET"
	EnvAllowedUsers   = "ALLOWED_USERS"
	EnvPersonaFile    = "PERSONA_FILE"
	EnvAdminToken     = "ADMIN_TOKEN"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPSampleRate = "OTEL_TRACES_SAMPLER_ARG"
)

// numberedKeyVars are read in order after GEMINI_API_KEY.
var numberedKeyVars = []string{"GEMINI_API_KEY_2", "GEMINI_API_KEY_3"}

// ApplyEnv overrides cfg with values from the environment. Unset or blank
// variables leave the config untouched. API keys from the environment
// replace the file's list as a whole.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := get(k); ok {
				*dst = v
				return
			}
		}
	}

	set(&cfg.Telegram.Token, EnvBotToken, EnvBotTokenAlias)
	set(&cfg.Telegram.Mode, EnvMode)
	set(&cfg.Telegram.WebhookURL, EnvWebhookURL)
	set(&cfg.Telegram.WebhookSecret, EnvWebhookSecret)
	if v, ok := get(EnvAllowedUsers); ok {
		cfg.Telegram.AllowUsers = splitList(v)
	}

	if keys := envAPIKeys(get); len(keys) > 0 {
		cfg.Gemini.APIKeys = keys
	}
	set(&cfg.Gemini.Model, EnvModel)
	set(&cfg.Gemini.FallbackModel, EnvFallbackModel)

	if v, ok := get(EnvPort); ok {
		cfg.Gateway.Bind = portToBind(cfg.Gateway.Bind, v)
	}
	set(&cfg.Gateway.Auth.BearerToken, EnvAdminToken)

	set(&cfg.Bot.PersonaFile, EnvPersonaFile)
	set(&cfg.Log.Level, EnvLogLevel)
	set(&cfg.Log.Format, EnvLogFormat)
	set(&cfg.Telemetry.Endpoint, EnvOTLPEndpoint)
	if v, ok := get(EnvOTLPSampleRate); ok {
		if r, err := parseRatio(v); err == nil {
			cfg.Telemetry.SampleRatio = r
		}
	}
}

// envAPIKeys collects GEMINI_API_KEY, GEMINI_API_KEY_2, GEMINI_API_KEY_3
// and the comma-separated GEMINI_API_KEYS, in that order, without
// duplicates.
func envAPIKeys(get func(string) (string, bool)) []string {
	var keys []string
	seen := make(map[string]struct{})
	add := func(k string) {
		if _, dup := seen[k]; dup || k == "" {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, name := range append([]string{EnvAPIKey}, numberedKeyVars...) {
		if v, ok := get(name); ok {
			add(v)
		}
	}
	if v, ok := get(EnvAPIKeys); ok {
		for _, k := range splitList(v) {
			add(k)
		}
	}
	return keys
}

// portToBind keeps the host of the current bind address and swaps the port.
func portToBind(bind, port string) string {
	host := ""
	if h, _, err := net.SplitHostPort(bind); err == nil {
		host = h
	}
	return net.JoinHostPort(host, port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
