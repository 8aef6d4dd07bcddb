package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/flemzord/relaybot/internal/provider"
)

// mapHTTPError maps a non-2xx status and its body to a provider sentinel.
func mapHTTPError(statusCode int, body []byte) error {
	msg := gjson.GetBytes(body, "error.message").String()
	if msg == "" {
		msg = string(body)
	}

	switch {
	case statusCode == http.StatusTooManyRequests || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: gemini: HTTP %d: %s", provider.ErrRateLimited, statusCode, msg)
	case statusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: gemini: HTTP %d: %s", provider.ErrBadRequest, statusCode, msg)
	default:
		return fmt.Errorf("%w: gemini: HTTP %d: %s", provider.ErrTransient, statusCode, msg)
	}
}

// mapConnectionError maps transport failures to provider.ErrTransient.
// Context errors pass through unchanged when the caller's context is done.
func mapConnectionError(ctx context.Context, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: gemini: %w", provider.ErrTransient, err)
}
