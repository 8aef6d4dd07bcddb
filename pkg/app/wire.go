package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flemzord/relaybot/internal/config"
	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/internal/cron"
	"github.com/flemzord/relaybot/internal/gateway"
	"github.com/flemzord/relaybot/internal/metrics"
	"github.com/flemzord/relaybot/internal/prompt"
	"github.com/flemzord/relaybot/internal/provider"
	"github.com/flemzord/relaybot/internal/router"
	"github.com/flemzord/relaybot/internal/session"
	"github.com/flemzord/relaybot/modules/channel/telegram"
	"github.com/flemzord/relaybot/modules/provider/gemini"
)

// Module IDs in start order.
const (
	ModuleRouter    core.ModuleID = "router"
	ModuleTelegram  core.ModuleID = "channel.telegram"
	ModuleScheduler core.ModuleID = "cron"
	ModuleGateway   core.ModuleID = "gateway"
)

// Bot holds the wired components. App starts them in dependency order:
// the router before the channel that feeds it, the gateway last so the
// webhook route only opens once the inbox is live.
type Bot struct {
	App        *core.App
	Metrics    *metrics.Metrics
	Ledger     *provider.Ledger
	Controller *provider.Controller
	Store      *session.Store
	Router     *router.Router
	Telegram   *telegram.Telegram
	Scheduler  *cron.Scheduler
	Gateway    *gateway.Gateway
}

// Build constructs every component from a validated config. Nothing is
// started; call b.App.Run or b.App.Start.
func Build(cfg *config.Config, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{Metrics: metrics.New()}

	ledger, err := provider.NewLedger(cfg.Gemini.APIKeys...)
	if err != nil {
		return nil, fmt.Errorf("building credential ledger: %w", err)
	}
	b.Ledger = ledger

	client, err := gemini.New(cfg.Gemini.Client, logger.With("component", "gemini"))
	if err != nil {
		return nil, fmt.Errorf("building gemini client: %w", err)
	}

	b.Controller, err = provider.NewController(provider.ControllerConfig{
		Ledger:         ledger,
		Generator:      client,
		Model:          cfg.Gemini.Model,
		FallbackModel:  cfg.Gemini.FallbackModel,
		AttemptFactor:  cfg.Gemini.AttemptFactor,
		RequestTimeout: cfg.Gemini.RequestTimeout,
		CoolDown:       cfg.Gemini.CoolDown,
		RateLimitPause: cfg.Gemini.RateLimitPause,
		Logger:         logger.With("component", "controller"),
		Metrics:        b.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("building request controller: %w", err)
	}

	b.Store = session.NewStore(cfg.Bot.HistoryCap)

	b.Telegram, err = telegram.New(cfg.Telegram, logger.With("component", "telegram"))
	if err != nil {
		return nil, fmt.Errorf("building telegram channel: %w", err)
	}

	b.Router, err = router.NewRouter(router.Config{
		WorkerCount:   cfg.Bot.Workers,
		InboxSize:     cfg.Bot.InboxSize,
		Store:         b.Store,
		Completer:     b.Controller,
		Sender:        b.Telegram,
		Persona:       personaSource(cfg.Bot),
		ContextWindow: cfg.Bot.ContextWindow,
		Logger:        logger.With("component", "router"),
		Metrics:       b.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("building router: %w", err)
	}
	b.Telegram.SetInbox(b.Router.Submit)

	b.Scheduler = cron.NewScheduler(logger.With("component", "cron"))
	if err := b.Scheduler.RegisterJob(&cron.EvictionJob{
		Store:        b.Store,
		Active:       b.Router.ChatLocks(),
		MaxIdle:      cfg.Bot.IdleTimeout,
		ScheduleExpr: cfg.Bot.EvictionSchedule,
		Logger:       logger.With("component", "eviction"),
		Metrics:      b.Metrics,
	}); err != nil {
		return nil, err
	}

	deps := gateway.Deps{
		Sessions:    b.Store,
		Credentials: ledger,
		Metrics:     b.Metrics.Handler(),
	}
	// A nil *WebhookReceiver must not become a non-nil interface.
	if wh := b.Telegram.Webhook(); wh != nil {
		deps.Webhook = wh
		deps.WebhookToken = cfg.Telegram.Token
	}
	b.Gateway, err = gateway.New(cfg.Gateway, deps, logger.With("component", "gateway"))
	if err != nil {
		return nil, fmt.Errorf("building gateway: %w", err)
	}

	b.App = core.NewApp(logger)
	b.App.Register(ModuleRouter, b.Router)
	b.App.Register(ModuleTelegram, b.Telegram)
	b.App.Register(ModuleScheduler, b.Scheduler)
	b.App.Register(ModuleGateway, b.Gateway)
	return b, nil
}

// personaSource prefers the hot-reloaded file over inline text.
func personaSource(cfg config.BotConfig) prompt.PersonaSource {
	if cfg.PersonaFile != "" {
		return prompt.NewPersonaLoader(cfg.PersonaFile)
	}
	return prompt.StaticPersona(cfg.Persona)
}

// Run starts every component and blocks until ctx ends or the process
// receives SIGINT or SIGTERM.
func (b *Bot) Run(ctx context.Context) error {
	return b.App.Run(ctx)
}
