// Package client provides the object used to issue chat-completion requests:
// a [Client] bound to one [ai.Provider] and a default model.
//
// Every call flows through a linear chain of named middlewares built from
// [MiddlewareConfig] values. Cross-cutting behavior (logging, timeouts, and the
// memory capture installed by core/session) is attached per client with
// [WithMiddleware] or [Client.Use]; there is no process-wide interception.
package client
