package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hrdesk/hrdesk/internal/llm"
	"github.com/hrdesk/hrdesk/internal/session"
)

// echoClient deterministically echoes the last user message.
type echoClient struct {
	mu    sync.Mutex
	calls []llm.ChatRequest
}

func (c *echoClient) record(req llm.ChatRequest) string {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.mu.Unlock()

	last := req.Messages[len(req.Messages)-1]
	return "echo: " + last.Content
}

func (c *echoClient) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Content: c.record(req)}, nil
}

func (c *echoClient) ChatStream(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	text := c.record(req)
	ch := make(chan llm.StreamEvent, 2)
	ch <- llm.StreamEvent{Type: llm.EventText, Text: text}
	ch <- llm.StreamEvent{Type: llm.EventDone, Response: &llm.ChatResponse{Content: text}}
	close(ch)
	return ch, nil
}

func (c *echoClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func newTestAgent(client llm.Client) (*Agent, *session.Store) {
	store := session.NewStore()
	return New("VacationAgent", VacationInstructions, client, store), store
}

func TestProcessMessageRoundTrip(t *testing.T) {
	client := &echoClient{}
	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	resp, err := a.ProcessMessage(context.Background(), "I need time off", "s1")
	if err != nil {
		t.Fatalf("ProcessMessage returned unexpected error: %v", err)
	}
	if resp != "echo: I need time off" {
		t.Errorf("response = %q, want deterministic echo", resp)
	}

	sess, _ := store.Get("s1")
	if len(sess.Turns) != 2 {
		t.Fatalf("session has %d turns, want 2", len(sess.Turns))
	}
	if sess.Turns[0].Role != session.RoleUser || sess.Turns[0].Content != "I need time off" {
		t.Errorf("turn[0] = %+v, want the original user message", sess.Turns[0])
	}
	if sess.Turns[1].Role != session.RoleAssistant || sess.Turns[1].Content != resp {
		t.Errorf("turn[1] = %+v, want the echoed response", sess.Turns[1])
	}
	if sess.Turns[1].AgentName != "VacationAgent" {
		t.Errorf("turn[1].AgentName = %q, want VacationAgent", sess.Turns[1].AgentName)
	}
}

func TestProcessMessagePromptIncludesHistory(t *testing.T) {
	client := &echoClient{}
	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	if _, err := a.ProcessMessage(context.Background(), "first", "s1"); err != nil {
		t.Fatalf("ProcessMessage returned unexpected error: %v", err)
	}
	if _, err := a.ProcessMessage(context.Background(), "second", "s1"); err != nil {
		t.Fatalf("ProcessMessage returned unexpected error: %v", err)
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	// First call: system + new message.
	if n := len(client.calls[0].Messages); n != 2 {
		t.Errorf("first prompt has %d messages, want 2", n)
	}
	// Second call: system + two prior turns + new message.
	if n := len(client.calls[1].Messages); n != 4 {
		t.Errorf("second prompt has %d messages, want 4", n)
	}
	if client.calls[1].Messages[0].Role != llm.RoleSystem {
		t.Errorf("prompt does not start with system instructions")
	}
}

func TestProcessMessageModelFailureKeepsUserTurn(t *testing.T) {
	client := llm.NewMockClient(llm.MockResponse{Error: errors.New("timeout")})
	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	_, err := a.ProcessMessage(context.Background(), "hello?", "s1")
	if err == nil {
		t.Fatal("ProcessMessage should propagate the model failure")
	}

	sess, _ := store.Get("s1")
	if len(sess.Turns) != 1 {
		t.Fatalf("session has %d turns, want 1 (user turn survives the failure)", len(sess.Turns))
	}
	if sess.Turns[0].Role != session.RoleUser {
		t.Errorf("surviving turn role = %q, want user", sess.Turns[0].Role)
	}
}

func TestProcessMessageWithoutSessionIsStateless(t *testing.T) {
	client := &echoClient{}
	a, store := newTestAgent(client)

	// No GetOrCreate: the appends are silent no-ops and no history accrues.
	resp, err := a.ProcessMessage(context.Background(), "hi", "never-created")
	if err != nil {
		t.Fatalf("ProcessMessage returned unexpected error: %v", err)
	}
	if resp == "" {
		t.Error("response is empty")
	}
	if _, ok := store.Get("never-created"); ok {
		t.Error("processing must not create the session")
	}
}

func TestProcessMessageValidatesArguments(t *testing.T) {
	client := &echoClient{}
	a, _ := newTestAgent(client)

	if _, err := a.ProcessMessage(context.Background(), "", "s1"); err == nil {
		t.Error("empty message should be rejected")
	}
	if _, err := a.ProcessMessage(context.Background(), "hi", ""); err == nil {
		t.Error("empty session ID should be rejected")
	}
	if client.callCount() != 0 {
		t.Errorf("model was called %d times for invalid arguments", client.callCount())
	}
}

func TestProcessMessageStreamChunksAndReconciliation(t *testing.T) {
	client := llm.NewMockClient(llm.MockResponse{
		Content: "Hello world",
		Chunks:  []string{"Hello", " ", "world"},
	})
	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	ch, err := a.ProcessMessageStream(context.Background(), "greet me", "s1")
	if err != nil {
		t.Fatalf("ProcessMessageStream returned unexpected error: %v", err)
	}

	var chunks []string
	for c := range ch {
		if c.Err != nil {
			t.Fatalf("unexpected chunk error: %v", c.Err)
		}
		chunks = append(chunks, c.Text)
	}

	want := []string{"Hello", " ", "world"}
	if len(chunks) != len(want) {
		t.Fatalf("received %d chunks, want %d: %v", len(chunks), len(want), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], want[i])
		}
	}

	sess, _ := store.Get("s1")
	if len(sess.Turns) != 2 {
		t.Fatalf("session has %d turns, want 2", len(sess.Turns))
	}
	last := sess.Turns[1]
	if last.Role != session.RoleAssistant || last.Content != "Hello world" {
		t.Errorf("assistant turn = %+v, want concatenated %q", last, "Hello world")
	}
	if last.AgentName != "VacationAgent" {
		t.Errorf("assistant turn AgentName = %q, want VacationAgent", last.AgentName)
	}
}

func TestProcessMessageStreamEmptyStreamAppendsNothing(t *testing.T) {
	client := llm.NewMockClient(llm.MockResponse{Content: "", Chunks: []string{}})
	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	ch, err := a.ProcessMessageStream(context.Background(), "say nothing", "s1")
	if err != nil {
		t.Fatalf("ProcessMessageStream returned unexpected error: %v", err)
	}
	for range ch {
		t.Error("received a chunk from an empty stream")
	}

	sess, _ := store.Get("s1")
	if len(sess.Turns) != 1 {
		t.Errorf("session has %d turns, want only the user turn", len(sess.Turns))
	}
}

// gatedStreamClient hands the test direct control over event delivery.
type gatedStreamClient struct {
	events chan llm.StreamEvent
}

func (c *gatedStreamClient) Chat(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	return nil, errors.New("not implemented")
}

func (c *gatedStreamClient) ChatStream(context.Context, llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	return c.events, nil
}

func TestProcessMessageStreamCancellationDiscardsPartial(t *testing.T) {
	client := &gatedStreamClient{events: make(chan llm.StreamEvent, 2)}
	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := a.ProcessMessageStream(ctx, "greet me", "s1")
	if err != nil {
		t.Fatalf("ProcessMessageStream returned unexpected error: %v", err)
	}

	client.events <- llm.StreamEvent{Type: llm.EventText, Text: "Hello"}
	first := <-ch
	if first.Text != "Hello" {
		t.Fatalf("first chunk = %q, want Hello", first.Text)
	}

	// Cancel before the next chunk is delivered. The reconciler must stop
	// forwarding and must not persist the partial text.
	cancel()
	client.events <- llm.StreamEvent{Type: llm.EventText, Text: " world"}

	var extra []string
	for c := range ch {
		extra = append(extra, c.Text)
	}
	if len(extra) != 0 {
		t.Errorf("received chunks after cancellation: %v", extra)
	}

	sess, _ := store.Get("s1")
	if len(sess.Turns) != 1 {
		t.Errorf("session has %d turns, want only the user turn (no partial assistant turn)", len(sess.Turns))
	}
	close(client.events)
}

func TestProcessMessageStreamErrorAppendsNothing(t *testing.T) {
	client := &gatedStreamClient{events: make(chan llm.StreamEvent, 2)}
	client.events <- llm.StreamEvent{Type: llm.EventText, Text: "partial"}
	client.events <- llm.StreamEvent{Type: llm.EventError, Error: errors.New("connection reset")}
	close(client.events)

	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	ch, err := a.ProcessMessageStream(context.Background(), "greet me", "s1")
	if err != nil {
		t.Fatalf("ProcessMessageStream returned unexpected error: %v", err)
	}

	var texts []string
	var streamErr error
	for c := range ch {
		if c.Err != nil {
			streamErr = c.Err
			continue
		}
		texts = append(texts, c.Text)
	}

	if len(texts) != 1 || texts[0] != "partial" {
		t.Errorf("chunks = %v, want [partial]", texts)
	}
	if streamErr == nil || !strings.Contains(streamErr.Error(), "connection reset") {
		t.Errorf("stream error = %v, want the model failure", streamErr)
	}

	sess, _ := store.Get("s1")
	if len(sess.Turns) != 1 {
		t.Errorf("session has %d turns, want only the user turn after a stream error", len(sess.Turns))
	}
}

func TestProcessMessageStreamUserTurnRecordedBeforeChunks(t *testing.T) {
	client := &gatedStreamClient{events: make(chan llm.StreamEvent)}
	a, store := newTestAgent(client)
	store.GetOrCreate("s1", "u1")

	ch, err := a.ProcessMessageStream(context.Background(), "hello", "s1")
	if err != nil {
		t.Fatalf("ProcessMessageStream returned unexpected error: %v", err)
	}

	// Before any chunk arrives the user turn is already persisted.
	sess, _ := store.Get("s1")
	if len(sess.Turns) != 1 || sess.Turns[0].Role != session.RoleUser {
		t.Errorf("turns before first chunk = %+v, want the user turn", sess.Turns)
	}

	close(client.events)
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not terminate")
		}
	}
}
