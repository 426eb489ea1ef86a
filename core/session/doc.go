// Package session records the conversation flowing through a chat client.
//
// A [Session] binds to exactly one *client.Client: [New] installs a single
// capture middleware on it and nothing else. While the session is enabled,
// every successful Chat call yields two turns (the last outgoing user message
// and the assistant reply) with strictly increasing sequence numbers.
//
// How turns reach the store depends on the ingestion mode:
//
//   - Conscious ingestion writes both turns on the calling path before Chat
//     returns. A storage failure is reported as an [*IngestionError] next to
//     the reply, which is never discarded.
//   - Auto ingestion hands the turns to a single background worker that
//     writes them in order. Failures are counted and, when verbose, logged;
//     they never reach the caller.
//
// Conscious ingestion takes precedence when both are requested. With neither,
// the session passes calls through and records nothing.
//
// [Open] turns a storage target such as "sqlite:///recall.db" or
// "postgres://..." into a ready [memory.Store].
package session
