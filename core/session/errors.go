package session

import (
	"errors"
	"fmt"

	"github.com/leofalp/recall/providers/memory"
)

var (
	ErrNilStore          = errors.New("session: store is nil")
	ErrNilClient         = errors.New("session: client is nil")
	ErrClosed            = errors.New("session: closed")
	ErrUnsupportedTarget = errors.New("session: unsupported storage target")
)

// IngestionError reports a turn that conscious ingestion failed to write.
// The chat reply it accompanies is still valid.
type IngestionError struct {
	Turn memory.Turn
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s turn %d: %v", e.Turn.Role, e.Turn.Sequence, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}
