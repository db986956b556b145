package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/abhisek/essaylens/internal/errs"
)

// anthropicServer serves one canned Messages API reply and hands the
// decoded request body to inspect.
func anthropicServer(t *testing.T, status int, reply map[string]any, inspect func(body map[string]any)) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func anthropicMessage(stop string, texts ...string) map[string]any {
	blocks := make([]map[string]any, len(texts))
	for i, text := range texts {
		blocks[i] = map[string]any{"type": "text", "text": text}
	}
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     blocks,
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_Structured(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, http.StatusOK,
		anthropicMessage("end_turn", `{"score":0.82,`, `"rationale":"same topic"}`),
		func(b map[string]any) { body = b })

	req := scoreRequest()
	req.System = "You compare two texts."
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"score":0.82,"rationale":"same topic"}` {
		t.Errorf("text blocks not joined: %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 80 || resp.StopReason != StopEnd {
		t.Errorf("unexpected metadata: %+v", resp)
	}

	if body["model"] != "claude-haiku-4-5-20251001" {
		t.Errorf("model alias not resolved: %v", body["model"])
	}
	if body["max_tokens"] != float64(DefaultMaxTokens) {
		t.Errorf("max_tokens = %v, want %d", body["max_tokens"], DefaultMaxTokens)
	}
	if temp, ok := body["temperature"]; !ok || temp != float64(0) {
		t.Errorf("temperature = %v (sent %v), want explicit 0", temp, ok)
	}
	if _, ok := body["system"]; !ok {
		t.Error("system prompt not sent")
	}
}

func TestAnthropicProvider_TruncatedOutput(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage("max_tokens", `{"score":0.82,"rat`), nil)

	_, err := p.Generate(context.Background(), scoreRequest())
	var ir *ErrInvalidResponse
	if !errors.As(err, &ir) || !ir.Truncated {
		t.Fatalf("expected truncated invalid response, got %v", err)
	}
}

func TestAnthropicProvider_NoText(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage("end_turn"), nil)

	_, err := p.Generate(context.Background(), scoreRequest())
	if !IsInvalidResponse(err) {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

func TestAnthropicProvider_HTTPErrors(t *testing.T) {
	apiError := func(kind string) map[string]any {
		return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
	}

	p := anthropicServer(t, http.StatusTooManyRequests, apiError("rate_limit_error"), nil)
	if _, err := p.Generate(context.Background(), scoreRequest()); !IsRateLimited(err) {
		t.Errorf("expected rate limit, got %v", err)
	}

	p = anthropicServer(t, http.StatusInternalServerError, apiError("api_error"), nil)
	_, err := p.Generate(context.Background(), scoreRequest())
	var se *errs.ServiceError
	if !errors.As(err, &se) || se.Op != "anthropic" || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnthropicProvider_NoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-haiku", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(context.Background(), scoreRequest()); err == nil {
		t.Fatal("expected error")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
