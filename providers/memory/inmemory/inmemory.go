package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/recall/providers/memory"
)

// Store keeps turns in per-session slices guarded by an RWMutex.
type Store struct {
	mu      sync.RWMutex
	turns   map[string][]memory.Turn
	failErr error
	closed  bool
}

var (
	_ memory.Store  = (*Store)(nil)
	_ memory.Reader = (*Store)(nil)
)

// New returns an empty [Store] ready for use.
func New() *Store {
	return &Store{turns: make(map[string][]memory.Turn)}
}

// FailWith makes every subsequent Append return err. A nil err restores
// normal behavior.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Append stores a copy of turn at the end of its session.
func (s *Store) Append(ctx context.Context, turn memory.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	turn, err := memory.Prepare(turn)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return memory.ErrClosed
	}
	if s.failErr != nil {
		return s.failErr
	}
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return nil
}

// Recent returns the last limit turns of a session in insertion order.
func (s *Store) Recent(_ context.Context, sessionID string, limit int) ([]memory.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.turns[sessionID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]memory.Turn, limit)
	copy(out, all[len(all)-limit:])
	return out, nil
}

func (s *Store) Count(_ context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns[sessionID]), nil
}

// Close marks the store closed; later appends fail with [memory.ErrClosed].
// Recorded turns stay readable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
