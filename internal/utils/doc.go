// Package utils provides internal helpers shared across recall's provider
// packages: a generic JSON POST helper that maps every wire failure onto
// [ai.TransportError], and log-friendly string truncation.
package utils
