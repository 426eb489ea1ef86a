// Package logging builds the slog logger used by the recall command.
//
// Two formats are available: compact, a single colored line per record meant
// for an interactive terminal, and json for log collection. The format is
// chosen by flag or by the RECALL_LOG_FORMAT / LOG_FORMAT environment
// variables.
package logging
