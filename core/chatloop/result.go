package chatloop

// Kind classifies the outcome of one Step.
type Kind int

const (
	// KindSkipped means the line was blank and nothing was sent.
	KindSkipped Kind = iota
	// KindExit means the user asked to leave.
	KindExit
	// KindReplied means the backend answered and the turn was recorded (or
	// recording is not synchronous).
	KindReplied
	// KindTransportFailed means the chat call itself failed.
	KindTransportFailed
	// KindIngestionFailed means the backend answered but the turn could not
	// be recorded. Reply is set.
	KindIngestionFailed
	// KindFailed covers any other error.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindSkipped:
		return "skipped"
	case KindExit:
		return "exit"
	case KindReplied:
		return "replied"
	case KindTransportFailed:
		return "transport_failed"
	case KindIngestionFailed:
		return "ingestion_failed"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one Step.
type Result struct {
	Kind  Kind
	Reply string
	Err   error
}

// Terminal reports whether the loop should stop.
func (r Result) Terminal() bool {
	return r.Kind == KindExit
}
