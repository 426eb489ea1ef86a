package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leofalp/recall/providers/ai"
)

// ========== Helpers ==========

// makeSendFunc returns a SendFunc that sleeps for the given duration before
// returning, simulating a slow provider.
func makeSendFunc(sleep time.Duration, resp *ai.ChatResponse, err error) func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	return func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		select {
		case <-time.After(sleep):
			return resp, err
		case <-ctx.Done():
			return nil, ai.NewTransportError(ai.TransportNetwork, ctx.Err())
		}
	}
}

// TestTimeoutMiddleware_SendCompletesBeforeTimeout verifies that a fast provider
// returns its response successfully.
func TestTimeoutMiddleware_SendCompletesBeforeTimeout(t *testing.T) {
	fast := makeSendFunc(0, &ai.ChatResponse{Content: "ok", FinishReason: "stop"}, nil)

	chain := NewTimeoutMiddleware(100 * time.Millisecond).Send(fast)

	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected 'ok', got %q", resp.Content)
	}
}

// TestTimeoutMiddleware_SendExceedsTimeout verifies that a slow provider causes
// a timeout TransportError.
func TestTimeoutMiddleware_SendExceedsTimeout(t *testing.T) {
	slow := makeSendFunc(200*time.Millisecond, nil, nil)

	chain := NewTimeoutMiddleware(20 * time.Millisecond).Send(slow)

	_, err := chain(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) || transportErr.Kind != ai.TransportTimeout {
		t.Fatalf("expected timeout TransportError, got %v", err)
	}
}

// TestTimeoutMiddleware_ShorterParentDeadlineWins verifies that an existing
// shorter deadline on the caller context is not extended.
func TestTimeoutMiddleware_ShorterParentDeadlineWins(t *testing.T) {
	var deadline time.Time
	probe := func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		deadline, _ = ctx.Deadline()
		return &ai.ChatResponse{}, nil
	}

	parent, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := NewTimeoutMiddleware(time.Hour).Send(probe)(parent, ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Until(deadline) > time.Second {
		t.Errorf("expected parent deadline to win, got %v", deadline)
	}
}
