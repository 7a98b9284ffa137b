package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- ParseModelString tests (table-driven) ---

func TestParseModelString(t *testing.T) {
	// Unset env vars that could influence provider detection
	t.Setenv("OLLAMA_HOST", "")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name         string
		input        string
		wantProvider Provider
		wantModel    string
	}{
		{
			name:         "anthropic prefix",
			input:        "anthropic/claude-3",
			wantProvider: ProviderAnthropic,
			wantModel:    "claude-3",
		},
		{
			name:         "openai prefix",
			input:        "openai/gpt-4",
			wantProvider: ProviderOpenAI,
			wantModel:    "gpt-4",
		},
		{
			name:         "ollama prefix",
			input:        "ollama/llama2",
			wantProvider: ProviderOllama,
			wantModel:    "llama2",
		},
		{
			name:         "claude model name inferred as anthropic",
			input:        "claude-sonnet-4-20250514",
			wantProvider: ProviderAnthropic,
			wantModel:    "claude-sonnet-4-20250514",
		},
		{
			name:         "gpt model name inferred as openai",
			input:        "gpt-4o",
			wantProvider: ProviderOpenAI,
			wantModel:    "gpt-4o",
		},
		{
			name:         "mock keyword",
			input:        "mock",
			wantProvider: ProviderMock,
			wantModel:    "mock",
		},
		{
			name:         "empty model defaults to mock",
			input:        "",
			wantProvider: ProviderMock,
			wantModel:    "mock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, model := ParseModelString(tt.input)
			if provider != tt.wantProvider {
				t.Errorf("provider = %q, want %q", provider, tt.wantProvider)
			}
			if model != tt.wantModel {
				t.Errorf("model = %q, want %q", model, tt.wantModel)
			}
		})
	}
}

// --- MockClient tests ---

func TestMockClientScriptedResponses(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Content: "first"},
		MockResponse{Content: "second"},
	)
	ctx := context.Background()

	resp, err := mock.Chat(ctx, ChatRequest{Model: "mock"})
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if resp.Content != "first" {
		t.Errorf("first Chat = %q, want %q", resp.Content, "first")
	}

	resp, err = mock.Chat(ctx, ChatRequest{Model: "mock"})
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if resp.Content != "second" {
		t.Errorf("second Chat = %q, want %q", resp.Content, "second")
	}

	// Exhausted responses repeat the last one.
	resp, err = mock.Chat(ctx, ChatRequest{Model: "mock"})
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if resp.Content != "second" {
		t.Errorf("third Chat = %q, want %q", resp.Content, "second")
	}

	if got := len(mock.Calls()); got != 3 {
		t.Errorf("Calls() recorded %d requests, want 3", got)
	}
}

func TestMockClientError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	mock := NewMockClient(MockResponse{Error: wantErr})

	_, err := mock.Chat(context.Background(), ChatRequest{})
	if !errors.Is(err, wantErr) {
		t.Errorf("Chat error = %v, want %v", err, wantErr)
	}
}

func TestMockClientStreamChunks(t *testing.T) {
	mock := NewMockClient(MockResponse{
		Content: "Hello world",
		Chunks:  []string{"Hello", " ", "world"},
	})

	ch, err := mock.ChatStream(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("ChatStream returned unexpected error: %v", err)
	}

	var texts []string
	var done *ChatResponse
	for ev := range ch {
		switch ev.Type {
		case EventText:
			texts = append(texts, ev.Text)
		case EventDone:
			done = ev.Response
		}
	}

	want := []string{"Hello", " ", "world"}
	if len(texts) != len(want) {
		t.Fatalf("received %d text events, want %d", len(texts), len(want))
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
	if done == nil {
		t.Fatal("no done event received")
	}
	if done.Content != "Hello world" {
		t.Errorf("done content = %q, want %q", done.Content, "Hello world")
	}
}

// --- HRMockClient tests ---

func TestHRMockClientKeywordResponses(t *testing.T) {
	mock := NewHRMockClient()
	ctx := context.Background()

	tests := []struct {
		name    string
		system  string
		message string
		want    string
	}{
		{
			name:    "vacation request keyword",
			system:  "You are a helpful HR vacation assistant.",
			message: "I need time off next week",
			want:    "vacation request",
		},
		{
			name:    "vacation policy keyword",
			system:  "You are a helpful HR vacation assistant.",
			message: "what is the policy?",
			want:    "vacation policy",
		},
		{
			name:    "procedure onboarding keyword",
			system:  "You are a knowledgeable HR procedures assistant.",
			message: "how do I onboard?",
			want:    "onboarding process",
		},
		{
			name:    "timesheet submit keyword",
			system:  "You are a helpful timesheet assistant.",
			message: "how do I submit hours?",
			want:    "submit your timesheet",
		},
		{
			name:    "unknown persona echoes message",
			system:  "You are a pirate.",
			message: "ahoy",
			want:    "mock response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := mock.Chat(ctx, ChatRequest{Messages: []Message{
				{Role: RoleSystem, Content: tt.system},
				{Role: RoleUser, Content: tt.message},
			}})
			if err != nil {
				t.Fatalf("Chat returned unexpected error: %v", err)
			}
			if !strings.Contains(resp.Content, tt.want) {
				t.Errorf("response %q does not contain %q", resp.Content, tt.want)
			}
		})
	}
}

func TestHRMockClientDeterministic(t *testing.T) {
	mock := NewHRMockClient()
	req := ChatRequest{Messages: []Message{
		{Role: RoleSystem, Content: "You are a helpful timesheet assistant."},
		{Role: RoleUser, Content: "what is the pay period?"},
	}}

	first, err := mock.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	second, err := mock.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if first.Content != second.Content {
		t.Errorf("responses differ for identical input:\n%q\n%q", first.Content, second.Content)
	}
}

func TestHRMockClientStreamConcatenation(t *testing.T) {
	mock := NewHRMockClient()
	req := ChatRequest{Messages: []Message{
		{Role: RoleSystem, Content: "You are a helpful HR vacation assistant."},
		{Role: RoleUser, Content: "tell me about the policy"},
	}}

	want, err := mock.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}

	ch, err := mock.ChatStream(context.Background(), req)
	if err != nil {
		t.Fatalf("ChatStream returned unexpected error: %v", err)
	}

	var sb strings.Builder
	chunks := 0
	for ev := range ch {
		if ev.Type == EventText {
			sb.WriteString(ev.Text)
			chunks++
		}
	}

	if chunks < 2 {
		t.Errorf("stream produced %d chunks, want several word-sized chunks", chunks)
	}
	if sb.String() != want.Content {
		t.Errorf("concatenated stream = %q, want %q", sb.String(), want.Content)
	}
}

func TestHRMockClientStreamCancellation(t *testing.T) {
	mock := NewHRMockClient()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := mock.ChatStream(ctx, ChatRequest{Messages: []Message{
		{Role: RoleSystem, Content: "You are a helpful HR vacation assistant."},
		{Role: RoleUser, Content: "policy"},
	}})
	if err != nil {
		t.Fatalf("ChatStream returned unexpected error: %v", err)
	}

	// Read one chunk, then cancel. The producer must stop and close the channel.
	<-ch
	cancel()
	for range ch {
	}
}

// --- OpenAIClient tests against a fake endpoint ---

func TestOpenAIClientChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req oaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages not forwarded as-is: %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(oaiResponse{
			Choices: []oaiChoice{{Message: oaiMessage{Role: "assistant", Content: "hi there"}}},
			Usage:   oaiUsage{PromptTokens: 10, CompletionTokens: 3, TotalTokens: 13},
		})
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(srv.URL+"/v1", "test-key")
	resp, err := client.Chat(context.Background(), ChatRequest{
		Model: "test-model",
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hello"},
		},
	})
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if resp.Content != "hi there" {
		t.Errorf("Content = %q, want %q", resp.Content, "hi there")
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 3 {
		t.Errorf("Usage = %+v, want input=10 output=3", resp.Usage)
	}
}

func TestOpenAIClientChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Hel", "lo"} {
			chunk := oaiResponse{Choices: []oaiChoice{{Delta: oaiMessage{Content: delta}}}}
			data, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(srv.URL, "")
	ch, err := client.ChatStream(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("ChatStream returned unexpected error: %v", err)
	}

	var texts []string
	var done *ChatResponse
	for ev := range ch {
		switch ev.Type {
		case EventText:
			texts = append(texts, ev.Text)
		case EventDone:
			done = ev.Response
		case EventError:
			t.Fatalf("unexpected error event: %v", ev.Error)
		}
	}

	if len(texts) != 2 || texts[0] != "Hel" || texts[1] != "lo" {
		t.Errorf("chunks = %v, want [Hel lo]", texts)
	}
	if done == nil || done.Content != "Hello" {
		t.Errorf("done = %+v, want accumulated content Hello", done)
	}
}

func TestOpenAIClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"no such model"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(srv.URL, "")
	_, err := client.Chat(context.Background(), ChatRequest{Model: "nope"})
	if err == nil {
		t.Fatal("Chat should return an error for a non-200 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not mention status 404", err.Error())
	}
}
