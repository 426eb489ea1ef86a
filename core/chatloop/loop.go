package chatloop

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leofalp/recall/core/session"
	"github.com/leofalp/recall/providers/ai"
)

const (
	prompt      = "User: "
	exitCommand = "exit"

	maxLineSize = 1 << 20
)

// DefaultIngestionHints are shown after a recording failure when
// Options.IngestionHints is empty.
var DefaultIngestionHints = []string{"Check that the memory database is reachable and writable"}

// Chatter sends a conversation to a backend. *client.Client implements it.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ai.Message) (*ai.ChatResponse, error)
}

// Options configures a Loop.
type Options struct {
	// Model is passed on every call; empty selects the client default.
	Model string

	// SystemPrompt, when set, precedes every user message.
	SystemPrompt string

	// Notice is printed before each backend call, e.g. "Processing...".
	Notice string

	// In defaults to os.Stdin, Out to os.Stdout.
	In  io.Reader
	Out io.Writer

	// Hints follow a failed chat call, IngestionHints a failed recording.
	Hints          []string
	IngestionHints []string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Loop is a single-threaded chat driver: one turn in flight at a time.
type Loop struct {
	chatter Chatter
	opts    Options
	logger  *slog.Logger
}

// New returns a Loop sending through chatter.
func New(chatter Chatter, opts Options) *Loop {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if len(opts.IngestionHints) == 0 {
		opts.IngestionHints = DefaultIngestionHints
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{chatter: chatter, opts: opts, logger: logger}
}

// IsExit reports whether line is the exit command, ignoring case and
// surrounding whitespace.
func IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), exitCommand)
}

// Step processes one input line. Blank lines and the exit command never reach
// the backend. The call runs detached from ctx cancellation so an interrupt
// does not abort a request already in flight.
func (l *Loop) Step(ctx context.Context, line string) Result {
	if strings.TrimSpace(line) == "" {
		return Result{Kind: KindSkipped}
	}
	if IsExit(line) {
		return Result{Kind: KindExit}
	}

	if l.opts.Notice != "" {
		fmt.Fprintln(l.opts.Out, l.opts.Notice)
	}

	response, err := l.chatter.Chat(context.WithoutCancel(ctx), l.opts.Model, l.messages(line))
	result := classify(response, err)
	if err != nil {
		l.logger.DebugContext(ctx, "chat turn failed", "kind", result.Kind.String(), "error", err)
	}
	return result
}

func (l *Loop) messages(line string) []ai.Message {
	messages := make([]ai.Message, 0, 2)
	if l.opts.SystemPrompt != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: l.opts.SystemPrompt})
	}
	return append(messages, ai.Message{Role: ai.RoleUser, Content: line})
}

func classify(response *ai.ChatResponse, err error) Result {
	if err == nil {
		if response == nil {
			return Result{Kind: KindFailed, Err: errors.New("empty response")}
		}
		return Result{Kind: KindReplied, Reply: response.Content}
	}

	var ingestErr *session.IngestionError
	if response != nil && errors.As(err, &ingestErr) {
		return Result{Kind: KindIngestionFailed, Reply: response.Content, Err: err}
	}

	var transportErr *ai.TransportError
	if errors.As(err, &transportErr) {
		return Result{Kind: KindTransportFailed, Err: err}
	}
	return Result{Kind: KindFailed, Err: err}
}

type readResult struct {
	line string
	err  error
}

// Run reads lines until exit, end of input or ctx cancellation, all of which
// return nil. Only a read error is returned.
func (l *Loop) Run(ctx context.Context) error {
	requests := make(chan struct{})
	lines := make(chan readResult)
	stop := make(chan struct{})
	defer close(stop)
	// The reader scans one line per request, so nothing past the last line
	// handled is consumed. It may stay blocked on In after Run returns; the
	// process is expected to exit shortly after.
	go l.read(requests, lines, stop)

	for {
		if ctx.Err() != nil {
			l.println("\nExiting...")
			return nil
		}
		fmt.Fprint(l.opts.Out, prompt)

		select {
		case <-ctx.Done():
			l.println("\nExiting...")
			return nil
		case requests <- struct{}{}:
		}

		var in readResult
		var ok bool
		select {
		case <-ctx.Done():
			l.println("\nExiting...")
			return nil
		case in, ok = <-lines:
		}
		if !ok {
			l.println("\nExiting...")
			return nil
		}
		if in.err != nil {
			return fmt.Errorf("chatloop: read input: %w", in.err)
		}

		result := l.Step(ctx, in.line)
		l.render(result)
		if result.Terminal() {
			return nil
		}
	}
}

func (l *Loop) read(requests <-chan struct{}, lines chan<- readResult, stop <-chan struct{}) {
	defer close(lines)
	send := func(r readResult) bool {
		select {
		case lines <- r:
			return true
		case <-stop:
			return false
		}
	}

	scanner := bufio.NewScanner(l.opts.In)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for {
		select {
		case <-requests:
		case <-stop:
			return
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				send(readResult{err: err})
			}
			return
		}
		if !send(readResult{line: scanner.Text()}) {
			return
		}
	}
}

func (l *Loop) render(result Result) {
	switch result.Kind {
	case KindExit:
		l.println("Goodbye!")
	case KindReplied:
		l.reply(result.Reply)
	case KindIngestionFailed:
		l.reply(result.Reply)
		l.diagnose(result.Err, l.opts.IngestionHints)
	case KindTransportFailed, KindFailed:
		l.diagnose(result.Err, l.opts.Hints)
	}
}

func (l *Loop) reply(text string) {
	l.println("AI: " + text)
	l.println("")
}

func (l *Loop) diagnose(err error, hints []string) {
	l.println("Error: " + err.Error())
	for _, hint := range hints {
		l.println(hint)
	}
}

func (l *Loop) println(s string) {
	fmt.Fprintln(l.opts.Out, s)
}
