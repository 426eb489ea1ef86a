package middleware

import (
	"context"
	"time"

	"github.com/leofalp/recall/core/client"
	"github.com/leofalp/recall/providers/ai"
)

// TimeoutName is the middleware name used by NewTimeoutMiddleware.
const TimeoutName = "timeout"

// NewTimeoutMiddleware creates a MiddlewareConfig that enforces a per-request
// deadline on provider calls. The context is wrapped with context.WithTimeout
// and canceled once the provider returns or the deadline expires; an expired
// deadline surfaces as an *ai.TransportError of kind timeout.
//
// If the caller supplies a context that already has a shorter deadline, that
// shorter deadline wins as per normal context semantics.
func NewTimeoutMiddleware(timeout time.Duration) client.MiddlewareConfig {
	return client.MiddlewareConfig{
		Name: TimeoutName,
		Send: buildSendTimeout(timeout),
	}
}

// buildSendTimeout constructs the send middleware that adds a deadline.
func buildSendTimeout(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
