package client

import (
	"context"

	"github.com/leofalp/recall/providers/ai"
)

// SendFunc is a function that sends a chat request to the backend and returns
// the completed response. It is the base unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware intercepts and optionally transforms chat requests and responses.
// Each Middleware receives the next SendFunc in the chain and returns a new SendFunc
// that wraps it.
type Middleware func(next SendFunc) SendFunc

// MiddlewareConfig names a send middleware so a client can refuse to install
// the same interception twice.
type MiddlewareConfig struct {
	// Name identifies the middleware. Required and unique per client.
	Name string

	// Send is the middleware applied to Chat calls. Required.
	Send Middleware
}

// buildSendChain constructs the linear send middleware chain from the slice of
// MiddlewareConfig values. The base function calls the provider directly. Middlewares
// are applied in reverse order so that the first entry in the slice becomes the
// outermost wrapper, i.e. the first to execute on an incoming request.
func buildSendChain(provider ai.Provider, middlewares []MiddlewareConfig) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i].Send(chain)
	}

	return chain
}
