// Package ai defines the shared, backend-agnostic types used by every chat
// provider in recall. A provider's conversion layer maps these types to its
// own wire format, keeping the client, the memory session and the interactive
// loop decoupled from backend-specific details.
//
// Requests flow through [ChatRequest] and responses come back as
// [ChatResponse]. Transport failures of any kind are reported as
// [*TransportError] so callers can tell a recoverable per-turn failure apart
// from a configuration mistake.
package ai
