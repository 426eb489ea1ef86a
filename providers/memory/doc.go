// Package memory defines the storage contract for recorded conversation
// turns. A [Store] accepts [Turn] values in sequence order; backends that can
// read their contents back also implement [Reader].
//
// Three backends are bundled: an in-process store in
// [github.com/leofalp/recall/providers/memory/inmemory], a SQLite store in
// [github.com/leofalp/recall/providers/memory/sqlitememory] and a PostgreSQL
// store in [github.com/leofalp/recall/providers/memory/pgmemory].
package memory
