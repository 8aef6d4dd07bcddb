package provider

import "errors"

// Sentinel errors for provider operations.
var (
	// ErrRateLimited indicates the upstream refused the credential for quota
	// or rate reasons (HTTP 429, or 403 used as a quota signal).
	ErrRateLimited = errors.New("provider rate limited")

	// ErrBadRequest indicates the upstream rejected the request itself
	// (HTTP 400 or a blocked prompt). Rotating credentials cannot fix it.
	ErrBadRequest = errors.New("provider rejected request")

	// ErrTransient indicates a timeout, 5xx, or network failure.
	ErrTransient = errors.New("provider unavailable")

	// ErrExhausted indicates the retry budget was consumed without a success.
	ErrExhausted = errors.New("all credentials exhausted")

	// ErrNoCredentials is returned when a ledger is built without keys.
	ErrNoCredentials = errors.New("at least one credential is required")

	// ErrNoGenerator is returned when a controller has no upstream.
	ErrNoGenerator = errors.New("no generator configured")
)

// Class is the retry classification of an upstream failure.
type Class int

// Class values, ordered from least to most specific.
const (
	ClassTransient Class = iota
	ClassRateLimited
	ClassBadRequest
)

// String returns the label used in logs and metrics.
func (c Class) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassBadRequest:
		return "bad_request"
	default:
		return "transient"
	}
}

// Classify maps an upstream error onto its retry class. Anything that is
// not explicitly rate-limit or bad-request is treated as transient.
func Classify(err error) Class {
	switch {
	case errors.Is(err, ErrRateLimited):
		return ClassRateLimited
	case errors.Is(err, ErrBadRequest):
		return ClassBadRequest
	default:
		return ClassTransient
	}
}
