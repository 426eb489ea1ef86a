package sqlitememory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leofalp/recall/providers/ai"
	"github.com/leofalp/recall/providers/memory"
)

// MemoryPath opens a private in-process database.
const MemoryPath = ":memory:"

const busyTimeoutMillis = 5000

const schemaSQL = `
CREATE TABLE IF NOT EXISTS recall_turns (
    id         TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (session_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_recall_turns_session_seq ON recall_turns(session_id, seq);
`

// Store is a SQLite-backed [memory.Store].
type Store struct {
	db   *sql.DB
	path string
}

var (
	_ memory.Store  = (*Store)(nil)
	_ memory.Reader = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and ensures the schema.
// Use [MemoryPath] for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlitememory: empty database path")
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlitememory: open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// pointing at the same database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitememory: init schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func dsn(path string) string {
	if path == MemoryPath {
		return "file::memory:"
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMillis)
}

// Path returns the database path given to Open.
func (s *Store) Path() string {
	return s.path
}

// Append inserts turn. A duplicate (session, sequence) pair is an error.
func (s *Store) Append(ctx context.Context, turn memory.Turn) error {
	turn, err := memory.Prepare(turn)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recall_turns (id, session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		turn.ID,
		turn.SessionID,
		turn.Sequence,
		string(turn.Role),
		turn.Content,
		turn.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlitememory: append: %w", err)
	}
	return nil
}

// Recent returns the last limit turns of a session, oldest first.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]memory.Turn, error) {
	query := `SELECT id, session_id, seq, role, content, created_at FROM (
		SELECT id, session_id, seq, role, content, created_at
		FROM recall_turns WHERE session_id = ? ORDER BY seq DESC LIMIT ?
	) ORDER BY seq ASC`
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlitememory: recent: %w", err)
	}
	defer rows.Close()

	turns := []memory.Turn{}
	for rows.Next() {
		var (
			turn      memory.Turn
			role      string
			createdAt string
		)
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Sequence, &role, &turn.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlitememory: scan turn: %w", err)
		}
		turn.Role = ai.MessageRole(role)
		turn.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlitememory: parse created_at %q: %w", createdAt, err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitememory: iterate turns: %w", err)
	}
	return turns, nil
}

func (s *Store) Count(ctx context.Context, sessionID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recall_turns WHERE session_id = ?`, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlitememory: count: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
