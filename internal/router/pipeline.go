package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/flemzord/relaybot/internal/channel"
	"github.com/flemzord/relaybot/internal/metrics"
	"github.com/flemzord/relaybot/internal/prompt"
	"github.com/flemzord/relaybot/internal/provider"
	"github.com/flemzord/relaybot/internal/session"
	"github.com/flemzord/relaybot/pkg/message"
)

// sendTimeout bounds each outbound send so a stuck platform call cannot
// hold a chat's turn forever.
const sendTimeout = 15 * time.Second

// PipelineConfig groups the dependencies for the reply pipeline.
type PipelineConfig struct {
	Store          *session.Store
	Locks          *ChatLocks
	Completer      Completer
	Sender         ResponseSender
	Persona        prompt.PersonaSource
	ContextWindow  int
	TypingInterval time.Duration
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// PipelineResult contains the outcome of pipeline execution.
type PipelineResult struct {
	// Reply is the text sent back, generated or fixed.
	Reply   string
	Error   error
	Skipped bool
}

// Pipeline turns one inbound message into exactly one reply attempt.
type Pipeline struct {
	cfg PipelineConfig
}

// NewPipeline creates a new pipeline with the given configuration.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Locks == nil {
		cfg.Locks = NewChatLocks()
	}
	if cfg.Persona == nil {
		cfg.Persona = prompt.StaticPersona("")
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = session.DefaultContextWindow
	}
	if cfg.TypingInterval <= 0 {
		cfg.TypingInterval = defaultTypingInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{cfg: cfg}
}

// Execute runs the pipeline for a single message. A panic anywhere in the
// flow is recovered and answered with the generic apology.
func (p *Pipeline) Execute(ctx context.Context, env envelope) (result PipelineResult) {
	msg := env.Message
	logger := p.cfg.Logger.With(
		"request_id", env.RequestID,
		"chat_id", msg.Chat.ID,
		"message_id", msg.ID,
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline: panic recovered",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			reply := repliesFor(replyLanguage(p.cfg.Store.Get(msg.Chat.ID), msg.Text)).Apology
			p.send(ctx, logger, message.ReplyTo(msg, reply))
			result = PipelineResult{Reply: reply, Error: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	logger.Info("pipeline: message received", "chat_type", msg.Chat.Type)

	// Non-text payloads get a fixed notice and never reach the session.
	if msg.HasMedia() {
		p.cfg.Metrics.RecordMessage("media")
		reply := repliesFor(replyLanguage(p.cfg.Store.Get(msg.Chat.ID), msg.Text)).TextOnly
		p.send(ctx, logger, message.ReplyTo(msg, reply))
		return PipelineResult{Reply: reply, Skipped: true}
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		p.cfg.Metrics.RecordMessage("empty")
		return PipelineResult{Skipped: true}
	}

	// The turn is taken before the session lookup; eviction skips busy chats.
	p.cfg.Locks.Lock(msg.Chat.ID)
	defer p.cfg.Locks.Unlock(msg.Chat.ID)

	sess, created := p.cfg.Store.GetOrCreate(msg.Chat.ID)
	if created {
		logger.Info("pipeline: new session created")
	}

	if cmd, args, ok := msg.Command(); ok {
		p.cfg.Metrics.RecordMessage("command")
		reply := handleCommand(cmd, args, sess, logger.With("command", cmd))
		p.send(ctx, logger, message.ReplyTo(msg, reply))
		return PipelineResult{Reply: reply}
	}

	p.cfg.Metrics.RecordMessage("text")

	lang := sess.DetectLanguage(text)
	persona, err := p.cfg.Persona.Load()
	if err != nil {
		logger.Warn("pipeline: persona load failed, using default", "error", err)
		persona = prompt.DefaultPersona
	}

	// The prompt carries the prior turns plus the current message, so the
	// user turn is recorded after building it.
	builder := prompt.Builder{Persona: persona, Window: p.cfg.ContextWindow}
	promptText := builder.Build(text, msg.Sender.Name(), sess)
	sess.AddMessage(session.RoleUser, text)

	typingCtx, stopTyping := context.WithCancel(ctx)
	channel.StartTypingLoop(typingCtx, p.cfg.Sender, msg.Chat, p.cfg.TypingInterval)

	start := time.Now()
	reply, err := p.cfg.Completer.Complete(ctx, promptText)
	stopTyping()

	if err != nil {
		r := repliesFor(lang)
		fallback := r.Apology
		// ErrExhausted may wrap a 400 as its last cause; only a direct
		// rejection asks the user to rephrase.
		if errors.Is(err, provider.ErrBadRequest) && !errors.Is(err, provider.ErrExhausted) {
			fallback = r.Rephrase
		}
		logger.Error("pipeline: completion failed",
			"error", err,
			"elapsed", time.Since(start),
		)
		p.send(ctx, logger, message.ReplyTo(msg, fallback))
		return PipelineResult{Reply: fallback, Error: err}
	}

	sess.AddMessage(session.RoleAssistant, reply)
	logger.Info("pipeline: reply ready",
		"language", lang,
		"elapsed", time.Since(start),
		"history_len", sess.Len(),
	)

	p.send(ctx, logger, message.ReplyTo(msg, reply))
	return PipelineResult{Reply: reply}
}

// send delivers out. Failures are logged and counted, never returned: the
// pipeline ends here either way.
func (p *Pipeline) send(ctx context.Context, logger *slog.Logger, out message.OutboundMessage) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := p.cfg.Sender.Send(ctx, out); err != nil {
		p.cfg.Metrics.RecordSendFailure()
		logger.Error("pipeline: failed to send reply", "error", err)
	}
}
