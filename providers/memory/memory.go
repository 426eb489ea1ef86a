package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/recall/providers/ai"
)

var (
	ErrInvalidTurn = errors.New("invalid turn")
	ErrClosed      = errors.New("store is closed")
)

// Turn is one recorded conversational unit: the user's message or the
// assistant's reply, ordered within its session by Sequence.
type Turn struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Sequence  int64          `json:"sequence"`
	Role      ai.MessageRole `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store persists turns. Append returns only after the turn is durable (or
// held, for process-local backends); a nil error means the write happened.
type Store interface {
	Append(ctx context.Context, turn Turn) error
	Close() error
}

// Reader is implemented by stores that can read back what they recorded.
type Reader interface {
	// Recent returns up to limit most recent turns of a session, oldest first.
	// A non-positive limit returns every turn.
	Recent(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	Count(ctx context.Context, sessionID string) (int, error)
}

// Prepare fills the ID and CreatedAt defaults and checks the required fields.
// Backends call it before writing.
func Prepare(turn Turn) (Turn, error) {
	if turn.SessionID == "" {
		return Turn{}, fmt.Errorf("%w: empty session id", ErrInvalidTurn)
	}
	if !turn.Role.Valid() {
		return Turn{}, fmt.Errorf("%w: role %q", ErrInvalidTurn, turn.Role)
	}
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	return turn, nil
}
