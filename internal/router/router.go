package router

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/flemzord/relaybot/internal/metrics"
	"github.com/flemzord/relaybot/internal/prompt"
	"github.com/flemzord/relaybot/internal/session"
	"github.com/flemzord/relaybot/pkg/message"
)

// DefaultWorkerCount is the number of chats answered concurrently when
// Config.WorkerCount is unset.
const DefaultWorkerCount = 10

const (
	defaultInboxSize      = 256
	defaultTypingInterval = 4 * time.Second
)

// envelope is one queued update tagged with the request ID its log lines
// carry.
type envelope struct {
	Message   message.InboundMessage
	RequestID string
}

// Completer turns a prompt into reply text. *provider.Controller
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ResponseSender delivers replies and typing indicators to the chat
// platform. Every channel.Channel satisfies it.
type ResponseSender interface {
	Send(ctx context.Context, msg message.OutboundMessage) error
	SendTyping(ctx context.Context, chat message.Chat) error
}

// Config holds the configuration for a Router.
type Config struct {
	WorkerCount int
	InboxSize   int

	Store     *session.Store
	Completer Completer
	Sender    ResponseSender

	// Persona supplies the persona text per prompt. Nil uses
	// prompt.DefaultPersona.
	Persona prompt.PersonaSource

	// ContextWindow is the number of turns rendered into each prompt.
	// Zero means session.DefaultContextWindow.
	ContextWindow int

	// TypingInterval is how often "typing" is re-sent while waiting
	// upstream. Telegram shows it for about five seconds.
	TypingInterval time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// withDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.InboxSize <= 0 {
		c.InboxSize = defaultInboxSize
	}
	if c.Persona == nil {
		c.Persona = prompt.StaticPersona("")
	}
	if c.ContextWindow <= 0 {
		c.ContextWindow = session.DefaultContextWindow
	}
	if c.TypingInterval <= 0 {
		c.TypingInterval = defaultTypingInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Router is the central dispatch layer. It queues inbound messages and
// runs them through the pipeline on WorkerCount workers, one turn per chat
// at a time.
type Router struct {
	config   Config
	inbox    chan envelope
	inboxMu  sync.RWMutex
	locks    *ChatLocks
	workers  sync.WaitGroup
	pipeline *Pipeline
	cancel   context.CancelFunc
	stopOnce sync.Once
	logger   *slog.Logger
	stopped  atomic.Bool
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg Config) (*Router, error) {
	cfg = cfg.withDefaults()

	if cfg.Store == nil {
		return nil, ErrNoStore
	}
	if cfg.Completer == nil {
		return nil, ErrNoCompleter
	}
	if cfg.Sender == nil {
		return nil, ErrNoResponseSender
	}

	locks := NewChatLocks()

	pipeline := NewPipeline(PipelineConfig{
		Store:          cfg.Store,
		Locks:          locks,
		Completer:      cfg.Completer,
		Sender:         cfg.Sender,
		Persona:        cfg.Persona,
		ContextWindow:  cfg.ContextWindow,
		TypingInterval: cfg.TypingInterval,
		Logger:         cfg.Logger,
		Metrics:        cfg.Metrics,
	})

	return &Router{
		config:   cfg,
		inbox:    make(chan envelope, cfg.InboxSize),
		locks:    locks,
		pipeline: pipeline,
		logger:   cfg.Logger,
	}, nil
}

// Start launches the workers. They outlive ctx's cancellation; Stop ends
// them once the inbox is drained.
func (r *Router) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.inboxMu.Lock()
	if r.stopped.Load() {
		r.inboxMu.Unlock()
		cancel()
		return ErrRouterStopped
	}
	r.cancel = cancel
	r.inboxMu.Unlock()

	for range r.config.WorkerCount {
		r.workers.Go(func() {
			for env := range r.inbox {
				r.pipeline.Execute(ctx, env)
			}
		})
	}
	r.logger.Info("router: started", "workers", r.config.WorkerCount, "inbox_size", r.config.InboxSize)
	return nil
}

// Submit enqueues an inbound message for processing. It never blocks: if
// the inbox is full, the message is dropped with a warning log.
func (r *Router) Submit(msg message.InboundMessage) error {
	r.inboxMu.RLock()
	defer r.inboxMu.RUnlock()

	if r.stopped.Load() {
		return ErrRouterStopped
	}

	env := envelope{Message: msg, RequestID: uuid.NewString()}

	select {
	case r.inbox <- env:
		return nil
	default:
		r.config.Metrics.RecordMessage("dropped")
		r.logger.Warn("router: inbox full, message dropped",
			"chat_id", msg.Chat.ID,
			"request_id", env.RequestID,
		)
		return ErrInboxFull
	}
}

// Stop gracefully shuts down the router: closes the inbox and drains
// queued messages. When ctx ends first, in-flight work is cancelled and
// ctx's error is returned.
func (r *Router) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		r.logger.Info("router: stopping")

		r.inboxMu.Lock()
		r.stopped.Store(true)
		close(r.inbox)
		cancel := r.cancel
		r.inboxMu.Unlock()

		drained := make(chan struct{})
		go func() {
			r.workers.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-ctx.Done():
			err = ctx.Err()
			r.logger.Warn("router: drain deadline reached, cancelling in-flight messages")
		}
		if cancel != nil {
			cancel()
		}
		<-drained
		r.logger.Info("router: stopped")
	})
	return err
}

// ChatLocks exposes the per-chat turn locks. The eviction sweep uses them
// to spare chats with a turn in progress.
func (r *Router) ChatLocks() *ChatLocks {
	return r.locks
}

// Sessions returns the session store for external inspection.
func (r *Router) Sessions() *session.Store {
	return r.config.Store
}
