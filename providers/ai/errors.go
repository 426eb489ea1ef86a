package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportErrorKind classifies why a chat call failed on the wire.
type TransportErrorKind string

const (
	TransportNetwork   TransportErrorKind = "network"   // dial, DNS, connection reset
	TransportTimeout   TransportErrorKind = "timeout"   // deadline exceeded before a response
	TransportStatus    TransportErrorKind = "status"    // non-2xx HTTP status
	TransportMalformed TransportErrorKind = "malformed" // body could not be decoded or had no choices
	TransportAuth      TransportErrorKind = "auth"      // credential required but missing
)

// TransportError is returned by providers for any failure of a single chat call.
// It is recoverable: the caller may report it and issue the next request.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int // only set for TransportStatus
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == TransportStatus {
		return fmt.Sprintf("transport %s %d: %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err, picking TransportTimeout over kind when err is a
// deadline or a net timeout.
func NewTransportError(kind TransportErrorKind, err error) *TransportError {
	if isTimeout(err) {
		kind = TransportTimeout
	}
	return &TransportError{Kind: kind, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
