package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leofalp/recall/providers/ai"
)

var (
	// ErrNilProvider is returned by New when no provider is given.
	ErrNilProvider = errors.New("client: provider is nil")

	// ErrDuplicateMiddleware is returned when a middleware with the same name
	// is already installed on the client.
	ErrDuplicateMiddleware = errors.New("client: middleware already installed")
)

// Client issues chat-completion requests against one provider with a default
// model. Interceptors are installed explicitly with [Client.Use]; nothing is
// shared between clients.
type Client struct {
	provider ai.Provider
	model    string

	mu          sync.RWMutex
	middlewares []MiddlewareConfig
	send        SendFunc
}

// Option configures a Client at construction time.
type Option func(*Client) error

// WithMiddleware appends middlewares in order; the first one given is the
// outermost of those (still inside anything added later with Use).
func WithMiddleware(middlewares ...MiddlewareConfig) Option {
	return func(c *Client) error {
		for _, mw := range middlewares {
			if err := c.validate(mw); err != nil {
				return err
			}
			c.middlewares = append(c.middlewares, mw)
		}
		return nil
	}
}

// New creates a client that sends through provider and uses model whenever a
// call does not name one. It performs no network I/O.
func New(provider ai.Provider, model string, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	c := &Client{
		provider: provider,
		model:    model,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.send = buildSendChain(c.provider, c.middlewares)

	return c, nil
}

// Model returns the default model of the client.
func (c *Client) Model() string {
	return c.model
}

// Use installs mw as the outermost middleware, so it observes the final result
// of every inner layer (timeouts, logging) on each Chat call.
func (c *Client) Use(mw MiddlewareConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validate(mw); err != nil {
		return err
	}
	c.middlewares = append([]MiddlewareConfig{mw}, c.middlewares...)
	c.send = buildSendChain(c.provider, c.middlewares)
	return nil
}

// Installed reports whether a middleware with the given name is on the chain.
func (c *Client) Installed(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, mw := range c.middlewares {
		if mw.Name == name {
			return true
		}
	}
	return false
}

// Chat sends messages to the backend and returns the assistant reply. An empty
// model selects the client default. Transport failures come back as
// *ai.TransportError; middlewares may return their own errors alongside a
// non-nil response (see core/session).
func (c *Client) Chat(ctx context.Context, model string, messages []ai.Message) (*ai.ChatResponse, error) {
	if model == "" {
		model = c.model
	}

	c.mu.RLock()
	send := c.send
	c.mu.RUnlock()

	return send(ctx, ai.ChatRequest{
		Model:    model,
		Messages: messages,
	})
}

// validate must be called with c.mu held when the client is already shared.
func (c *Client) validate(mw MiddlewareConfig) error {
	if mw.Send == nil {
		return fmt.Errorf("client: middleware %q has nil Send", mw.Name)
	}
	if mw.Name == "" {
		return errors.New("client: middleware name is empty")
	}
	for _, existing := range c.middlewares {
		if existing.Name == mw.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateMiddleware, mw.Name)
		}
	}
	return nil
}
