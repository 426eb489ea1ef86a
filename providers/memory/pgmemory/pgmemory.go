package pgmemory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leofalp/recall/providers/ai"
	"github.com/leofalp/recall/providers/memory"
)

// defaultTableName is the PostgreSQL table used when no custom name is provided.
const defaultTableName = "recall_turns"

// Querier abstracts the pgx query methods needed by Store.
// Both *pgxpool.Pool and pgx.Tx satisfy this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements [memory.Store] and [memory.Reader] with PostgreSQL
// persistence. Concurrency is handled by the underlying pool.
type Store struct {
	db           Querier
	tableName    string
	rawTableName string
	closeFn      func()
}

var (
	_ memory.Store  = (*Store)(nil)
	_ memory.Reader = (*Store)(nil)
)

// Option configures optional Store behavior.
type Option func(*Store)

// WithTableName overrides the default table name ("recall_turns").
// The name is sanitized via pgx.Identifier since it is interpolated into
// queries with fmt.Sprintf.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.rawTableName = name
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New returns a Store that runs its queries on db. The caller keeps
// ownership of db; Close does not close it.
func New(db Querier, opts ...Option) *Store {
	s := &Store{
		db:           db,
		tableName:    defaultTableName,
		rawTableName: defaultTableName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials a pool for databaseURL, ensures the schema and returns a Store
// that closes the pool on Close.
func Connect(ctx context.Context, databaseURL string, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("pgmemory: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgmemory: ping: %w", err)
	}

	s := New(pool, opts...)
	s.closeFn = pool.Close
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Append inserts turn and returns once the write is committed (or staged, when
// db is a transaction).
func (s *Store) Append(ctx context.Context, turn memory.Turn) error {
	turn, err := memory.Prepare(turn)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, session_id, seq, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, s.tableName)

	_, err = s.db.Exec(ctx, query,
		turn.ID,
		turn.SessionID,
		turn.Sequence,
		string(turn.Role),
		turn.Content,
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("pgmemory: append: %w", err)
	}
	return nil
}

// Count returns the number of turns stored for a session.
func (s *Store) Count(ctx context.Context, sessionID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE session_id = $1`, s.tableName)

	var count int
	if err := s.db.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgmemory: count: %w", err)
	}
	return count, nil
}

// Recent returns the last limit turns of a session in chronological order:
// the newest rows are fetched (ORDER BY seq DESC LIMIT n) and re-ordered
// oldest-first. A non-positive limit returns every turn.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]memory.Turn, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit <= 0 {
		query := fmt.Sprintf(`SELECT id, session_id, seq, role, content, created_at
			FROM %s WHERE session_id = $1 ORDER BY seq ASC`, s.tableName)
		rows, err = s.db.Query(ctx, query, sessionID)
	} else {
		query := fmt.Sprintf(`SELECT id, session_id, seq, role, content, created_at
			FROM (
				SELECT id, session_id, seq, role, content, created_at
				FROM %s WHERE session_id = $1 ORDER BY seq DESC LIMIT $2
			) sub ORDER BY sub.seq ASC`, s.tableName)
		rows, err = s.db.Query(ctx, query, sessionID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("pgmemory: recent: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// Close releases the pool when the Store was created by Connect.
func (s *Store) Close() error {
	if s.closeFn != nil {
		s.closeFn()
		s.closeFn = nil
	}
	return nil
}

// scanTurns reads every row into a Turn. Returns an empty non-nil slice when
// no rows are present.
func scanTurns(rows pgx.Rows) ([]memory.Turn, error) {
	turns := []memory.Turn{}
	for rows.Next() {
		var (
			turn memory.Turn
			role string
		)
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Sequence, &role, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgmemory: scan turn: %w", err)
		}
		turn.Role = ai.MessageRole(role)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgmemory: iterate rows: %w", err)
	}
	return turns, nil
}
