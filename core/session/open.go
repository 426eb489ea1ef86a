package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/recall/providers/memory"
	"github.com/leofalp/recall/providers/memory/inmemory"
	"github.com/leofalp/recall/providers/memory/pgmemory"
	"github.com/leofalp/recall/providers/memory/sqlitememory"
)

// DefaultTarget is the storage target used when none is configured.
const DefaultTarget = "sqlite:///recall.db"

// Open returns a store for target:
//
//	memory://                          process-local, lost on exit
//	sqlite:///relative/path.db         SQLite file relative to the working directory
//	sqlite:////absolute/path.db        SQLite file at an absolute path
//	sqlite:///:memory:                 private in-memory SQLite database
//	postgres://... or postgresql://... PostgreSQL connection string
func Open(ctx context.Context, target string) (memory.Store, error) {
	target = strings.TrimSpace(target)
	scheme, rest, ok := strings.Cut(target, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
	}

	switch strings.ToLower(scheme) {
	case "memory":
		return inmemory.New(), nil
	case "sqlite":
		path, ok := strings.CutPrefix(rest, "/")
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: %q (want sqlite:///path.db)", ErrUnsupportedTarget, target)
		}
		store, err := sqlitememory.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres", "postgresql":
		store, err := pgmemory.Connect(ctx, target)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
	}
}
