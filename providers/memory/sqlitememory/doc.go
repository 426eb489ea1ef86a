// Package sqlitememory persists conversation turns in a SQLite database using
// the pure-Go modernc.org/sqlite driver, so no cgo toolchain is needed.
//
// [Open] creates the schema on first use and configures the database for a
// single writer: WAL journaling and a busy timeout on file databases, a
// single shared connection for ":memory:".
package sqlitememory
