// Package app provides the shared entry point for the relaybot binary.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flemzord/relaybot/internal/config"
	"github.com/flemzord/relaybot/internal/telemetry"
)

// ConfigFileName is the optional YAML file searched by ResolveConfigPath.
const ConfigFileName = "relaybot.yaml"

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is consulted; no file at all is fine
	// when the environment carries the required settings.
	ConfigPath string

	// EnvFiles overrides config.DefaultEnvFiles.
	EnvFiles []string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogOutput receives log records. Nil means os.Stderr.
	LogOutput io.Writer
}

// LoadConfig resolves and validates the configuration for params.
func LoadConfig(params RunParams) (*config.Config, error) {
	path := params.ConfigPath
	if path == "" {
		path = ResolveConfigPath()
	}
	cfg, err := config.Resolve(config.Options{
		Path:     path,
		EnvFiles: params.EnvFiles,
	})
	if err != nil {
		return nil, err
	}
	cfg.Telemetry.ServiceVersion = params.Version
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run loads configuration, starts all components, and blocks until ctx
// ends or a shutdown signal is received.
func Run(ctx context.Context, params RunParams) error {
	cfg, err := LoadConfig(params)
	if err != nil {
		return err
	}

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger, err := NewLogger(cfg.Log, cfg.Secrets(), out)
	if err != nil {
		return err
	}
	logger.Info("relaybot starting",
		"version", params.Version,
		"commit", params.Commit,
		"mode", cfg.Telegram.Mode,
		"keys", len(cfg.Gemini.APIKeys),
		"model", cfg.Gemini.Model,
	)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Gateway.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	bot, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	return bot.Run(ctx)
}

// ResolveConfigPath searches for a config file in standard locations and
// returns "" when none exists.
// Search order: $XDG_CONFIG_HOME/relaybot/relaybot.yaml → ~/.config/relaybot/relaybot.yaml → ./relaybot.yaml
func ResolveConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "relaybot", ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "relaybot", ConfigFileName))
	}

	candidates = append(candidates, ConfigFileName)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
