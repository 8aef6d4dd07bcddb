// Package provider holds the credential ledger and the request controller
// that spreads generative API calls across a rotating set of API keys.
package provider

import "context"

// Request is a single upstream generation call. The controller fills in
// the credential and model for each attempt.
type Request struct {
	APIKey string
	Model  string
	Prompt string
}

// Response is the result of a successful generation call.
type Response struct {
	Text         string
	FinishReason string
	Usage        TokenUsage
}

// TokenUsage tracks token consumption reported by the upstream.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Generator is the upstream generative API. Concrete implementations live
// in separate packages (e.g., modules/provider/gemini) and must map HTTP
// failures onto the sentinel errors in this package.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
