// Package pgmemory persists conversation turns in PostgreSQL through pgx.
//
// A [Store] runs its queries against any [Querier], so callers can pass a
// *pgxpool.Pool or scope writes to a pgx.Tx. [Connect] is the convenience
// path: it dials a pool, ensures the schema and hands back a Store that
// owns the pool.
//
// The table defaults to "recall_turns" and can be renamed with
// [WithTableName]; the name is sanitized before it is interpolated into SQL.
package pgmemory
