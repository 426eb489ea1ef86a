package pgmemory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// createTableSQL keeps every Turn field. The (session_id, seq) constraint
// rejects a replayed sequence number instead of duplicating the turn.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id         TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    seq        BIGINT NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (session_id, seq)
)`

const createSessionSeqIndexSQL = `CREATE INDEX IF NOT EXISTS %s
    ON %s (session_id, seq)`

// EnsureSchema creates the turns table and its index if they do not already
// exist. Production deployments may prefer migration tooling.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTableSQL, s.tableName)); err != nil {
		return fmt.Errorf("pgmemory: create table: %w", err)
	}

	indexName := pgx.Identifier{"idx_" + s.rawTableName + "_session_seq"}.Sanitize()
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createSessionSeqIndexSQL, indexName, s.tableName)); err != nil {
		return fmt.Errorf("pgmemory: create session_seq index: %w", err)
	}

	return nil
}
