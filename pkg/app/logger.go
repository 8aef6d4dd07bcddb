package app

import (
	"io"
	"log/slog"

	"github.com/flemzord/relaybot/internal/config"
	"github.com/flemzord/relaybot/internal/security"
)

// NewLogger builds the process logger described by cfg. Every record passes
// through a redacting handler seeded with secrets and the default token
// patterns before it reaches w.
func NewLogger(cfg config.LogConfig, secrets []string, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	if cfg.Format == "json" {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}

	redactor := security.NewRedactor()
	redactor.AddLiteral(secrets...)
	return slog.New(security.NewRedactingHandler(inner, redactor)), nil
}
