// Package inmemory provides a concurrency-safe, process-local implementation
// of [memory.Store] and [memory.Reader]. Turns are lost when the process
// exits. [Store.FailWith] injects append failures for exercising error paths.
package inmemory
