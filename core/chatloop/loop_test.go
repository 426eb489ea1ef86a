package chatloop

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/leofalp/recall/core/client"
	"github.com/leofalp/recall/core/session"
	"github.com/leofalp/recall/providers/ai"
	"github.com/leofalp/recall/providers/memory/inmemory"
)

// ========== Mock Types ==========

// scriptedChatter answers "re: <input>" unless an error is queued for the call.
type scriptedChatter struct {
	calls    []ai.ChatRequest
	errs     []error
	ctxErrs  []error
	response func(input string) *ai.ChatResponse
}

func (c *scriptedChatter) Chat(ctx context.Context, model string, messages []ai.Message) (*ai.ChatResponse, error) {
	c.calls = append(c.calls, ai.ChatRequest{Model: model, Messages: messages})
	c.ctxErrs = append(c.ctxErrs, ctx.Err())

	input := messages[len(messages)-1].Content
	var err error
	if len(c.errs) > 0 {
		err, c.errs = c.errs[0], c.errs[1:]
	}
	if err != nil {
		var ingestErr *session.IngestionError
		if errors.As(err, &ingestErr) {
			return &ai.ChatResponse{Content: "re: " + input}, err
		}
		return nil, err
	}
	if c.response != nil {
		return c.response(input), nil
	}
	return &ai.ChatResponse{Content: "re: " + input}, nil
}

// stubProvider feeds a real client for the session-backed tests.
type stubProvider struct{}

func (stubProvider) SendMessage(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	return &ai.ChatResponse{Content: "re: " + req.LastUserMessage().Content}, nil
}

func (p stubProvider) WithAPIKey(string) ai.Provider           { return p }
func (p stubProvider) WithBaseURL(string) ai.Provider          { return p }
func (p stubProvider) WithHttpClient(*http.Client) ai.Provider { return p }

func newLoop(chatter Chatter, input string, out *bytes.Buffer) *Loop {
	return New(chatter, Options{
		Model: "m",
		In:    strings.NewReader(input),
		Out:   out,
		Hints: []string{"Make sure you have set DEEPSEEK_API_KEY environment variable"},
	})
}

// ========== Step ==========

func TestStep_ExitVariants(t *testing.T) {
	for _, line := range []string{"exit", "EXIT", "Exit", "  exit  "} {
		t.Run(line, func(t *testing.T) {
			chatter := &scriptedChatter{}
			var out bytes.Buffer
			result := newLoop(chatter, "", &out).Step(context.Background(), line)
			if result.Kind != KindExit || !result.Terminal() {
				t.Fatalf("expected exit, got %v", result.Kind)
			}
			if len(chatter.calls) != 0 {
				t.Fatalf("expected no provider call, got %d", len(chatter.calls))
			}
		})
	}
}

func TestStep_BlankSkipped(t *testing.T) {
	chatter := &scriptedChatter{}
	var out bytes.Buffer
	for _, line := range []string{"", "   ", "\t"} {
		if result := newLoop(chatter, "", &out).Step(context.Background(), line); result.Kind != KindSkipped {
			t.Fatalf("expected skipped for %q, got %v", line, result.Kind)
		}
	}
	if len(chatter.calls) != 0 {
		t.Fatalf("expected no provider call, got %d", len(chatter.calls))
	}
}

func TestStep_Replied(t *testing.T) {
	chatter := &scriptedChatter{}
	var out bytes.Buffer
	loop := New(chatter, Options{Model: "deepseek-chat", SystemPrompt: "be brief", Out: &out, Notice: "Processing..."})

	result := loop.Step(context.Background(), "hello")
	if result.Kind != KindReplied || result.Reply != "re: hello" {
		t.Fatalf("unexpected result: %+v", result)
	}

	call := chatter.calls[0]
	if call.Model != "deepseek-chat" {
		t.Errorf("expected model deepseek-chat, got %q", call.Model)
	}
	if len(call.Messages) != 2 || call.Messages[0].Role != ai.RoleSystem || call.Messages[1].Role != ai.RoleUser {
		t.Errorf("unexpected messages: %+v", call.Messages)
	}
	if !strings.Contains(out.String(), "Processing...") {
		t.Errorf("expected notice printed, got %q", out.String())
	}
}

func TestStep_Classification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  Kind
		wantReply string
	}{
		{
			name:     "transport",
			err:      &ai.TransportError{Kind: ai.TransportNetwork, Err: errors.New("connection refused")},
			wantKind: KindTransportFailed,
		},
		{
			name:      "ingestion",
			err:       &session.IngestionError{Err: errors.New("database is locked")},
			wantKind:  KindIngestionFailed,
			wantReply: "re: hi",
		},
		{
			name:     "other",
			err:      errors.New("boom"),
			wantKind: KindFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatter := &scriptedChatter{errs: []error{tt.err}}
			var out bytes.Buffer
			result := newLoop(chatter, "", &out).Step(context.Background(), "hi")
			if result.Kind != tt.wantKind {
				t.Fatalf("expected %v, got %v", tt.wantKind, result.Kind)
			}
			if result.Reply != tt.wantReply {
				t.Errorf("expected reply %q, got %q", tt.wantReply, result.Reply)
			}
			if !errors.Is(result.Err, tt.err) {
				t.Errorf("expected error preserved, got %v", result.Err)
			}
		})
	}
}

// TestStep_CallSurvivesCancellation verifies the backend call does not see
// the caller's cancellation.
func TestStep_CallSurvivesCancellation(t *testing.T) {
	chatter := &scriptedChatter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if result := newLoop(chatter, "", &out).Step(ctx, "hello"); result.Kind != KindReplied {
		t.Fatalf("expected reply, got %v", result.Kind)
	}
	if chatter.ctxErrs[0] != nil {
		t.Fatalf("expected call context not cancelled, got %v", chatter.ctxErrs[0])
	}
}

// ========== Run ==========

func TestRun_Transcript(t *testing.T) {
	chatter := &scriptedChatter{}
	var out bytes.Buffer

	if err := newLoop(chatter, "hello\n\nEXIT\nnever sent\n", &out).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "User: AI: re: hello\n\nUser: User: Goodbye!\n"
	if out.String() != want {
		t.Fatalf("unexpected transcript:\n got %q\nwant %q", out.String(), want)
	}
	if len(chatter.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(chatter.calls))
	}
}

func TestRun_TransportErrorContinues(t *testing.T) {
	chatter := &scriptedChatter{errs: []error{
		&ai.TransportError{Kind: ai.TransportNetwork, Err: errors.New("dial tcp: connection refused")},
	}}
	var out bytes.Buffer

	if err := newLoop(chatter, "first\nsecond\nexit\n", &out).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Error: transport network: dial tcp: connection refused\n",
		"Make sure you have set DEEPSEEK_API_KEY environment variable\n",
		"AI: re: second\n",
		"Goodbye!\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Index(got, "Error:") > strings.Index(got, "AI: re: second") {
		t.Errorf("expected diagnostic before the next reply:\n%s", got)
	}
}

func TestRun_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	if err := newLoop(&scriptedChatter{}, "hello\n", &out).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(out.String(), "User: \nExiting...\n") {
		t.Fatalf("expected exit notice, got %q", out.String())
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chatter := &scriptedChatter{}
	var out bytes.Buffer
	if err := newLoop(chatter, "hello\n", &out).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "\nExiting...\n" {
		t.Fatalf("expected immediate exit, got %q", out.String())
	}
	if len(chatter.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(chatter.calls))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("tty gone")
}

func TestRun_ReadError(t *testing.T) {
	var out bytes.Buffer
	loop := New(&scriptedChatter{}, Options{In: failingReader{}, Out: &out})
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("expected read error")
	}
}

// lineReader returns one line per Read, like a terminal, and counts reads.
type lineReader struct {
	lines []string
	reads atomic.Int32
}

func (r *lineReader) Read(p []byte) (int, error) {
	i := int(r.reads.Add(1)) - 1
	if i >= len(r.lines) {
		return 0, io.EOF
	}
	return copy(p, r.lines[i]+"\n"), nil
}

func TestRun_StopsReadingAtExit(t *testing.T) {
	in := &lineReader{lines: []string{"hello", "exit", "not for us"}}
	chatter := &scriptedChatter{}
	var out bytes.Buffer

	loop := New(chatter, Options{Model: "m", In: in, Out: &out})
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := in.reads.Load(); got != 2 {
		t.Fatalf("expected input read up to exit only, got %d reads", got)
	}
	if len(chatter.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(chatter.calls))
	}
}

// ========== With a memory session ==========

func newSessionClient(t *testing.T, store *inmemory.Store, opts session.Options) *client.Client {
	t.Helper()
	c, err := client.New(stubProvider{}, "m")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	s, err := session.New(context.Background(), store, c, opts)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := s.Enable(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return c
}

// TestRun_ConsciousIngestionFailure verifies the reply is shown, then the
// diagnostic, and the loop keeps going.
func TestRun_ConsciousIngestionFailure(t *testing.T) {
	store := inmemory.New()
	store.FailWith(errors.New("database is locked"))
	c := newSessionClient(t, store, session.Options{ConsciousIngest: true})

	var out bytes.Buffer
	if err := newLoop(c, "hello\nagain\nexit\n", &out).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	reply := strings.Index(got, "AI: re: hello")
	diag := strings.Index(got, "Error: ingest user turn 1: database is locked")
	if reply < 0 || diag < 0 || reply > diag {
		t.Fatalf("expected reply then diagnostic, got:\n%s", got)
	}
	if !strings.Contains(got, DefaultIngestionHints[0]) {
		t.Errorf("expected ingestion hint, got:\n%s", got)
	}
	if !strings.Contains(got, "AI: re: again") || !strings.HasSuffix(got, "Goodbye!\n") {
		t.Errorf("expected loop to continue to exit, got:\n%s", got)
	}
}

// TestRun_AutoIngestionFailureSwallowed verifies background failures never
// reach the user.
func TestRun_AutoIngestionFailureSwallowed(t *testing.T) {
	store := inmemory.New()
	store.FailWith(errors.New("database is locked"))
	c := newSessionClient(t, store, session.Options{AutoIngest: true})

	var out bytes.Buffer
	if err := newLoop(c, "hello\nexit\n", &out).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "User: AI: re: hello\n\nUser: Goodbye!\n"
	if out.String() != want {
		t.Fatalf("unexpected transcript:\n got %q\nwant %q", out.String(), want)
	}
}
