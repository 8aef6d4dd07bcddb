package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/flemzord/relaybot/internal/channel"
	"github.com/flemzord/relaybot/pkg/message"
)

// Compile-time interface guard.
var _ channel.Channel = (*Telegram)(nil)

// nopHandler is a slog.Handler that discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Telegram implements the Telegram Bot API channel for relaybot.
type Telegram struct {
	config    Config
	client    *Client
	logger    *slog.Logger
	allowList *channel.AllowList
	deliver   *deliverer
	botUser   *User

	// webhook is set at construction in webhook mode; poller during Start
	// in polling mode.
	webhook *WebhookReceiver
	poller  *Poller
}

// New applies defaults, validates cfg and returns an unstarted channel.
func New(cfg Config, logger *slog.Logger) (*Telegram, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	allowList := channel.NewAllowList(cfg.AllowUsers, cfg.AllowChats)
	t := &Telegram{
		config:    cfg,
		client:    NewClient(cfg.Token, cfg.APIURL),
		logger:    logger,
		allowList: allowList,
		deliver:   &deliverer{allowList: allowList, logger: logger},
	}
	if cfg.Mode == ModeWebhook {
		t.webhook = &WebhookReceiver{deliver: t.deliver, secret: cfg.WebhookSecret}
	}
	return t, nil
}

// Config returns the effective configuration, defaults applied.
func (t *Telegram) Config() Config {
	return t.config
}

// Start validates the bot token, then starts either polling or webhook
// mode. In webhook mode updates arrive through Webhook().
func (t *Telegram) Start(ctx context.Context) error {
	if t.deliver.inbox == nil {
		return fmt.Errorf("telegram: %w, call SetInbox before Start", channel.ErrNoInbox)
	}

	user, err := t.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.botUser = user
	t.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)
	if !t.allowList.Restricted() {
		t.logger.Info("telegram allow list empty, bot is public")
	}

	switch t.config.Mode {
	case ModePolling:
		// getUpdates is refused while a webhook is registered.
		if err := t.client.DeleteWebhook(ctx); err != nil {
			t.logger.Warn("telegram: deleteWebhook before polling failed", "error", err)
		}
		t.poller = newPoller(t.client, t.deliver, t.logger, t.config)
		t.poller.Start(context.WithoutCancel(ctx))
		t.logger.Info("telegram polling started",
			"timeout", t.config.PollingTimeout,
		)

	case ModeWebhook:
		if t.config.WebhookSecret == "" {
			t.logger.Warn("telegram webhook running without secret_token; " +
				"consider setting webhook_secret for production deployments")
		}

		if err := t.client.SetWebhook(ctx, SetWebhookRequest{
			URL:            t.config.webhookEndpoint(),
			SecretToken:    t.config.WebhookSecret,
			AllowedUpdates: t.config.AllowedUpdates,
		}); err != nil {
			return fmt.Errorf("telegram: setWebhook failed: %w", err)
		}
		t.logger.Info("telegram webhook configured",
			"base_url", t.config.WebhookURL,
		)
	}

	return nil
}

// Stop halts polling. Webhook registrations are left in place so Telegram
// queues updates across restarts.
func (t *Telegram) Stop(context.Context) error {
	t.logger.Info("telegram channel stopping")
	if t.poller != nil {
		t.poller.Stop()
	}
	return nil
}

// Webhook returns the receiver for pushed updates, or nil outside webhook
// mode.
func (t *Telegram) Webhook() *WebhookReceiver {
	return t.webhook
}

// BotUsername returns the authenticated bot's username, empty before Start.
func (t *Telegram) BotUsername() string {
	if t.botUser == nil {
		return ""
	}
	return t.botUser.Username
}

// Send implements channel.Channel. Long replies are split on line
// boundaries; only the first chunk quotes the original message.
func (t *Telegram) Send(ctx context.Context, msg message.OutboundMessage) error {
	chatID, err := parseChatID(msg.Chat)
	if err != nil {
		return err
	}

	for _, chunk := range channel.SplitMessage(msg, t.config.MaxMessageLength) {
		req := SendMessageRequest{
			ChatID:                   chatID,
			Text:                     chunk.Text,
			DisableWebPagePreview:    true,
			AllowSendingWithoutReply: true,
		}
		if chunk.ReplyToID != "" {
			if id, err := strconv.Atoi(chunk.ReplyToID); err == nil {
				req.ReplyToMessageID = id
			}
		}
		if _, err := t.client.SendMessage(ctx, req); err != nil {
			return fmt.Errorf("telegram: sendMessage: %w", err)
		}
	}
	return nil
}

// SetInbox implements channel.Channel. It must be called before Start and
// before the webhook receiver is exposed.
func (t *Telegram) SetInbox(fn func(msg message.InboundMessage) error) {
	t.deliver.inbox = fn
}

// SendTyping implements channel.Channel.
func (t *Telegram) SendTyping(ctx context.Context, chat message.Chat) error {
	chatID, err := parseChatID(chat)
	if err != nil {
		return err
	}
	return t.client.SendChatAction(ctx, chatID, "typing")
}

func parseChatID(chat message.Chat) (int64, error) {
	if chat.ID == "" {
		return 0, errors.New("telegram: empty chat ID")
	}
	chatID, err := strconv.ParseInt(chat.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram: invalid chat ID %q: %w", chat.ID, err)
	}
	return chatID, nil
}
