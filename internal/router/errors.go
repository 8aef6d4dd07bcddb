// Package router dispatches inbound chat messages through the reply
// pipeline, serializing work per chat.
package router

import "errors"

// Sentinel errors for router operations.
var (
	// ErrInboxFull indicates the router's message inbox is at capacity
	// and the incoming message was dropped.
	ErrInboxFull = errors.New("router: inbox full, message dropped")

	// ErrRouterStopped indicates the router has been shut down and is
	// no longer accepting messages.
	ErrRouterStopped = errors.New("router: stopped")

	// ErrNoCompleter indicates no reply completer has been configured.
	ErrNoCompleter = errors.New("router: no completer configured")

	// ErrNoResponseSender indicates no response sender has been configured.
	// The router cannot deliver outbound messages without one.
	ErrNoResponseSender = errors.New("router: no response sender configured")

	// ErrNoStore indicates no session store has been configured.
	ErrNoStore = errors.New("router: no session store configured")

	// ErrPanic wraps a recovered panic from the pipeline.
	ErrPanic = errors.New("router: pipeline panic")
)
