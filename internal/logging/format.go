package logging

import (
	"os"
	"strings"
)

// Format is a log output format.
type Format string

const (
	// FormatCompact writes one line per record:
	// 10:40:35 DEBUG llm send model=deepseek-chat messages=1
	FormatCompact Format = "compact"

	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat maps s to a Format, defaulting to FormatCompact.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads RECALL_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	if format := os.Getenv("RECALL_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return ParseFormat(os.Getenv("LOG_FORMAT"))
}

func (f Format) String() string {
	return string(f)
}
