// Package middleware provides built-in middleware implementations for the recall
// client. Each middleware is constructed via a New* function that returns a
// [client.MiddlewareConfig] ready to be passed to [client.WithMiddleware].
//
// # Available Middleware
//
//   - [NewRetryMiddleware]: Retries transient transport failures (network,
//     timeout, HTTP 429 / 5xx) with exponential backoff and jitter.
//
//   - [NewTimeoutMiddleware]: Adds a per-request deadline via context.WithTimeout,
//     ensuring that a stalled backend call does not block the loop indefinitely.
//
//   - [NewLoggingMiddleware]: Emits structured slog log entries before and after
//     every provider call, with three verbosity levels (Minimal, Standard, Verbose).
//
// # Usage
//
//	c, err := client.New(provider, "deepseek-chat",
//	    client.WithMiddleware(
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	        middleware.NewTimeoutMiddleware(60*time.Second),
//	    ),
//	)
//
// Middlewares execute outermost-first. In the example above a request travels
//
//	Logging → Retry → Timeout → Provider
//
// so every retry attempt gets its own deadline and the log line covers all of them.
package middleware
