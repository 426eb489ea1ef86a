// Package chatloop drives a line-oriented chat conversation.
//
// [Loop.Step] processes a single input line and reports what happened as a
// [Result] with an explicit [Kind]; [Loop.Run] reads lines, renders each
// result and stops on "exit", end of input or context cancellation.
// Transport and ingestion failures are confined to the turn that caused them.
package chatloop
