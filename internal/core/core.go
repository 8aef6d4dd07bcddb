// Package core runs the bot's long-lived components in dependency order
// and shuts them down in reverse.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout bounds the whole reverse-order shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// ModuleID names a registered module in logs and errors.
type ModuleID string

// App manages the lifecycle of a set of modules.
type App struct {
	modules []moduleInstance
	logger  *slog.Logger

	// ShutdownTimeout bounds Stop when called from Run.
	ShutdownTimeout time.Duration
}

type moduleInstance struct {
	id      ModuleID
	module  any
	started bool
}

// NewApp creates an empty App. A nil logger uses slog.Default.
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		logger:          logger.With("component", "core"),
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Register appends a module. Modules start in registration order, so
// register dependencies first. It panics if the ID is empty or duplicated,
// or if module implements neither Starter nor Stopper.
func (a *App) Register(id ModuleID, module any) {
	if id == "" {
		panic("core: module ID must not be empty")
	}
	_, starts := module.(Starter)
	_, stops := module.(Stopper)
	if !starts && !stops {
		panic(fmt.Sprintf("core: module %s implements neither Starter nor Stopper", id))
	}
	for _, mi := range a.modules {
		if mi.id == id {
			panic(fmt.Sprintf("core: module already registered: %s", id))
		}
	}
	a.modules = append(a.modules, moduleInstance{id: id, module: module})
}

// Modules returns the registered IDs in start order.
func (a *App) Modules() []ModuleID {
	ids := make([]ModuleID, len(a.modules))
	for i, mi := range a.modules {
		ids[i] = mi.id
	}
	return ids
}

// Start starts all registered modules in order. If any Start() fails,
// already-started modules are stopped in reverse order.
func (a *App) Start(ctx context.Context) error {
	for i := range a.modules {
		mi := &a.modules[i]
		// Modules without Start (pure Stoppers) count as started so they
		// are cleaned up.
		if s, ok := mi.module.(Starter); ok {
			a.logger.Info("starting module", "module", string(mi.id))
			if err := s.Start(ctx); err != nil {
				a.logger.Error("module start failed", "module", string(mi.id), "error", err)
				stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.ShutdownTimeout)
				_ = a.stopModules(stopCtx, i-1)
				cancel()
				return fmt.Errorf("starting module %s: %w", mi.id, err)
			}
		}
		mi.started = true
	}
	a.logger.Info("all modules started")
	return nil
}

// Stop stops all started modules in reverse order. Every module gets its
// Stop call even if an earlier one fails; errors are joined.
func (a *App) Stop(ctx context.Context) error {
	return a.stopModules(ctx, len(a.modules)-1)
}

func (a *App) stopModules(ctx context.Context, fromIndex int) error {
	var errs []error
	for i := fromIndex; i >= 0; i-- {
		mi := &a.modules[i]
		if !mi.started {
			continue
		}
		if s, ok := mi.module.(Stopper); ok {
			a.logger.Info("stopping module", "module", string(mi.id))
			if err := s.Stop(ctx); err != nil {
				a.logger.Error("module stop error", "module", string(mi.id), "error", err)
				errs = append(errs, fmt.Errorf("stopping module %s: %w", mi.id, err))
			}
		}
		mi.started = false
	}
	return errors.Join(errs...)
}

// Run starts all modules and blocks until ctx is done or a shutdown
// signal is received, then stops them within ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	<-sigCtx.Done()
	a.logger.Info("shutdown requested", "cause", context.Cause(sigCtx))

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.ShutdownTimeout)
	defer cancel()

	err := a.Stop(stopCtx)
	a.logger.Info("shutdown complete")
	return err
}
