// Package agent implements the domain chat agents and the router that
// dispatches messages to them. All three HR agents share one Agent type;
// they differ only in name and instruction text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrdesk/hrdesk/internal/llm"
	"github.com/hrdesk/hrdesk/internal/session"
)

const defaultMaxTokens = 1024

// Agent processes user messages for one HR domain. An Agent holds no
// per-conversation state: one instance serves every session and user,
// distinguished only by the session ID passed per call. Session isolation is
// entirely the session store's job.
type Agent struct {
	name         string
	instructions string
	client       llm.Client
	sessions     *session.Store
	model        string
	maxTokens    int
	logger       *slog.Logger
	usageFn      func(agentName string, usage llm.TokenUsage)
}

// Option configures an Agent.
type Option func(*Agent)

// WithModel sets the model name sent to the chat client.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithMaxTokens sets the response token cap.
func WithMaxTokens(n int) Option {
	return func(a *Agent) { a.maxTokens = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithUsageRecorder registers a callback invoked with the token usage of
// each successful model call.
func WithUsageRecorder(fn func(agentName string, usage llm.TokenUsage)) Option {
	return func(a *Agent) { a.usageFn = fn }
}

// New creates an agent with a fixed display name and instruction text. Both
// are set once and never mutated.
func New(name, instructions string, client llm.Client, sessions *session.Store, opts ...Option) *Agent {
	a := &Agent{
		name:         name,
		instructions: instructions,
		client:       client,
		sessions:     sessions,
		maxTokens:    defaultMaxTokens,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Instructions returns the agent's persona instruction text.
func (a *Agent) Instructions() string { return a.instructions }

func (a *Agent) validate(message, sessionID string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("agent: message must not be empty")
	}
	if sessionID == "" {
		return errors.New("agent: session ID must not be empty")
	}
	return nil
}

// ProcessMessage runs one synchronous chat turn for the given session. The
// incoming user message is recorded before the model call, so on model
// failure the history still reflects the attempt: the user turn stands and no
// assistant turn is added.
func (a *Agent) ProcessMessage(ctx context.Context, message, sessionID string) (string, error) {
	if err := a.validate(message, sessionID); err != nil {
		return "", err
	}

	prompt := a.buildPrompt(message, sessionID)
	a.sessions.AppendTurn(sessionID, session.RoleUser, message, "")

	resp, err := a.client.Chat(ctx, llm.ChatRequest{
		Model:     a.model,
		Messages:  prompt,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("agent %s: chat: %w", a.name, err)
	}

	a.sessions.AppendTurn(sessionID, session.RoleAssistant, resp.Content, a.name)
	if a.usageFn != nil {
		a.usageFn(a.name, resp.Usage)
	}

	a.logger.Debug("message processed",
		"agent", a.name,
		"session_id", sessionID,
		"response_len", len(resp.Content),
	)
	return resp.Content, nil
}

// Chunk is one incremental unit of streamed response text. A terminal chunk
// with Err set reports a mid-stream model failure; no further chunks follow it.
type Chunk struct {
	Text string
	Err  error
}

// ProcessMessageStream runs one streaming chat turn. Each text chunk from the
// model is forwarded to the returned channel as it arrives; the channel is
// unbuffered so chunks reach the caller with no delay beyond the model's own.
// The concatenation of all chunks is appended as a single assistant turn
// after the stream ends: exactly once, only if at least one chunk arrived,
// and never when the stream errors or the context is cancelled mid-stream.
// A cancelled stream discards partial text: persisted turns always represent
// complete model utterances.
func (a *Agent) ProcessMessageStream(ctx context.Context, message, sessionID string) (<-chan Chunk, error) {
	if err := a.validate(message, sessionID); err != nil {
		return nil, err
	}

	prompt := a.buildPrompt(message, sessionID)
	a.sessions.AppendTurn(sessionID, session.RoleUser, message, "")

	events, err := a.client.ChatStream(ctx, llm.ChatRequest{
		Model:     a.model,
		Messages:  prompt,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s: chat stream: %w", a.name, err)
	}

	out := make(chan Chunk)
	go a.reconcileStream(ctx, sessionID, events, out)
	return out, nil
}

// reconcileStream forwards model events to the caller while accumulating the
// full text, then persists the assistant turn at the single terminal point.
func (a *Agent) reconcileStream(ctx context.Context, sessionID string, events <-chan llm.StreamEvent, out chan<- Chunk) {
	defer close(out)

	var full strings.Builder

	finish := func() {
		if full.Len() == 0 || ctx.Err() != nil {
			return
		}
		a.sessions.AppendTurn(sessionID, session.RoleAssistant, full.String(), a.name)
		a.logger.Debug("stream reconciled",
			"agent", a.name,
			"session_id", sessionID,
			"response_len", full.Len(),
		)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				// Producer closed without an explicit done event.
				finish()
				return
			}
			if ctx.Err() != nil {
				return
			}

			switch ev.Type {
			case llm.EventText:
				full.WriteString(ev.Text)
				select {
				case out <- Chunk{Text: ev.Text}:
				case <-ctx.Done():
					return
				}
			case llm.EventError:
				a.logger.Warn("model stream failed",
					"agent", a.name,
					"session_id", sessionID,
					"error", ev.Error,
				)
				select {
				case out <- Chunk{Err: fmt.Errorf("agent %s: stream: %w", a.name, ev.Error)}:
				case <-ctx.Done():
				}
				return
			case llm.EventDone:
				finish()
				return
			}
		}
	}
}

func (a *Agent) buildPrompt(message, sessionID string) []llm.Message {
	var sess *session.Session
	if s, ok := a.sessions.Get(sessionID); ok {
		sess = &s
	}
	return BuildPrompt(a.instructions, sess, message)
}
