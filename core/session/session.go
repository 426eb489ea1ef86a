package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/recall/core/client"
	"github.com/leofalp/recall/providers/ai"
	"github.com/leofalp/recall/providers/memory"
)

// Mode is the ingestion policy a session runs with.
type Mode string

const (
	ModeConscious Mode = "conscious"
	ModeAuto      Mode = "auto"
	ModeNone      Mode = "none"
)

// MiddlewareNamePrefix prefixes the capture middleware installed on the bound
// client; the session ID completes the name.
const MiddlewareNamePrefix = "memory-session:"

// Options configures a Session.
type Options struct {
	// ConsciousIngest writes turns synchronously before Chat returns.
	ConsciousIngest bool

	// AutoIngest writes turns from a background worker. Ignored when
	// ConsciousIngest is set.
	AutoIngest bool

	// Verbose logs lifecycle changes and background ingestion failures.
	Verbose bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *Metrics

	// SessionID scopes the recorded turns. A random UUID is used when empty.
	SessionID string
}

// Session captures the conversation of one client into a store.
type Session struct {
	id      string
	mode    Mode
	store   memory.Store
	logger  *slog.Logger
	metrics *Metrics
	verbose bool

	enabled atomic.Bool
	closed  atomic.Bool

	// mu orders sequence allocation with the write (or enqueue) of the turns
	// it numbered.
	mu  sync.Mutex
	seq int64

	queue     *ingestQueue
	closeOnce sync.Once
	closeErr  error
}

// New binds a session to cl and store. The session starts disabled; call
// Enable to begin recording. Binding the same session ID to a client twice
// fails with client.ErrDuplicateMiddleware.
//
// When opts.SessionID names a session the store already holds and the store
// is a memory.Reader, numbering resumes after its latest turn.
func New(ctx context.Context, store memory.Store, cl *client.Client, opts Options) (*Session, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if cl == nil {
		return nil, ErrNilClient
	}

	s := &Session{
		id:      opts.SessionID,
		mode:    resolveMode(opts),
		store:   store,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		verbose: opts.Verbose,
	}
	if s.id == "" {
		s.id = uuid.NewString()
	} else if err := s.resume(ctx); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if err := cl.Use(client.MiddlewareConfig{Name: MiddlewareNamePrefix + s.id, Send: s.capture}); err != nil {
		return nil, fmt.Errorf("session: bind client: %w", err)
	}

	if s.mode == ModeAuto {
		s.queue = newIngestQueue()
		go s.queue.run(s.writeAsync)
	}

	return s, nil
}

// resume seeds the sequence counter from the latest stored turn.
func (s *Session) resume(ctx context.Context) error {
	reader, ok := s.store.(memory.Reader)
	if !ok {
		return nil
	}
	last, err := reader.Recent(ctx, s.id, 1)
	if err != nil {
		return fmt.Errorf("session: resume %s: %w", s.id, err)
	}
	if len(last) > 0 {
		s.seq = last[len(last)-1].Sequence
	}
	return nil
}

func resolveMode(opts Options) Mode {
	switch {
	case opts.ConsciousIngest:
		return ModeConscious
	case opts.AutoIngest:
		return ModeAuto
	default:
		return ModeNone
	}
}

// ID returns the session identifier stored on every turn.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the resolved ingestion mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Enabled reports whether calls are currently being captured.
func (s *Session) Enabled() bool {
	return s.enabled.Load()
}

// Enable starts capturing. Enabling an enabled session is a no-op; enabling a
// closed one fails with ErrClosed.
func (s *Session) Enable() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.enabled.Swap(true) {
		return nil
	}

	if s.verbose {
		s.logger.Info("memory session enabled", "session_id", s.id, "mode", string(s.mode))
		if s.mode == ModeNone {
			s.logger.Info("no ingestion mode selected, turns will not be recorded", "session_id", s.id)
		}
	}
	return nil
}

// Disable stops capturing. Calls already past the capture check finish
// recording. Disabling a disabled session is a no-op.
func (s *Session) Disable() {
	if !s.enabled.Swap(false) {
		return
	}
	if s.verbose {
		s.logger.Info("memory session disabled", "session_id", s.id)
	}
}

// Close disables the session, waits for queued turns to be written (or ctx
// to end) and closes the store. Subsequent calls return the first result.
//
// If ctx ends before the backlog drains, Close returns the context error and
// the store is closed by the worker once it has written the remaining turns.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.Disable()
		s.closed.Store(true)

		if s.queue != nil {
			if err := s.queue.close(ctx); err != nil {
				s.closeErr = fmt.Errorf("session: drain queue: %w", err)
				go s.closeAfterDrain()
				return
			}
		}
		if err := s.store.Close(); err != nil {
			s.closeErr = fmt.Errorf("session: close store: %w", err)
		}
	})
	return s.closeErr
}

func (s *Session) closeAfterDrain() {
	<-s.queue.done
	if err := s.store.Close(); err != nil {
		s.logger.Warn("memory session close store failed", "session_id", s.id, "error", err)
	}
}

// capture is the middleware installed on the bound client.
func (s *Session) capture(next client.SendFunc) client.SendFunc {
	return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		record := s.enabled.Load() && s.mode != ModeNone

		response, err := next(ctx, request)
		if err != nil || response == nil || !record {
			return response, err
		}

		if ingestErr := s.ingest(ctx, request, response); ingestErr != nil {
			return response, ingestErr
		}
		return response, nil
	}
}

// ingest numbers the exchange and writes or enqueues it.
func (s *Session) ingest(ctx context.Context, request ai.ChatRequest, response *ai.ChatResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]memory.Turn, 0, 2)
	if user := request.LastUserMessage(); user != nil {
		turns = append(turns, s.nextTurn(ai.RoleUser, user.Content))
	}
	turns = append(turns, s.nextTurn(ai.RoleAssistant, response.Content))

	if s.mode == ModeAuto {
		if !s.queue.push(turns...) && s.verbose {
			s.logger.Warn("memory session closed, dropping turns", "session_id", s.id, "turns", len(turns))
		}
		return nil
	}

	for _, turn := range turns {
		if err := s.write(ctx, ModeConscious, turn); err != nil {
			return &IngestionError{Turn: turn, Err: err}
		}
	}
	return nil
}

func (s *Session) nextTurn(role ai.MessageRole, content string) memory.Turn {
	s.seq++
	return memory.Turn{
		ID:        uuid.NewString(),
		SessionID: s.id,
		Sequence:  s.seq,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *Session) write(ctx context.Context, mode Mode, turn memory.Turn) error {
	start := time.Now()
	err := s.store.Append(ctx, turn)
	s.metrics.observe(mode, time.Since(start), err)
	return err
}

// writeAsync is the background worker's write path. It is detached from any
// caller context.
func (s *Session) writeAsync(turn memory.Turn) {
	if err := s.write(context.Background(), ModeAuto, turn); err != nil && s.verbose {
		s.logger.Warn("background ingestion failed",
			"session_id", s.id,
			"sequence", turn.Sequence,
			"role", string(turn.Role),
			"error", err,
		)
	}
}
