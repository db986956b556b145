package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhisek/essaylens/internal/errs"
)

func openaiServer(t *testing.T, status int, reply map[string]any, inspect func(body map[string]any)) *OpenAIProvider {
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

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-mini", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func chatCompletion(finish string, message map[string]any) map[string]any {
	message["role"] = "assistant"
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{"index": 0, "message": message, "finish_reason": finish}},
		"usage":   map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_Structured(t *testing.T) {
	var body map[string]any
	p := openaiServer(t, http.StatusOK,
		chatCompletion("stop", map[string]any{"content": `{"score":0.4,"rationale":"partial overlap"}`}),
		func(b map[string]any) { body = b })

	req := scoreRequest()
	req.System = "You compare two texts."
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 || resp.Usage.TotalTokens != 65 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" || resp.StopReason != StopEnd {
		t.Errorf("unexpected metadata: %+v", resp)
	}

	if body["model"] != "gpt-4o-mini" {
		t.Errorf("model alias not resolved: %v", body["model"])
	}
	if body["max_completion_tokens"] != float64(DefaultMaxTokens) {
		t.Errorf("max_completion_tokens = %v", body["max_completion_tokens"])
	}
	if temp, ok := body["temperature"].(float64); !ok || temp <= 0 || temp > 1e-30 {
		t.Errorf("temperature = %v, want a near-zero value", body["temperature"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v, want system + user", body["messages"])
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Errorf("response_format = %v", body["response_format"])
	}
}

func TestOpenAIProvider_Length(t *testing.T) {
	p := openaiServer(t, http.StatusOK, chatCompletion("length", map[string]any{"content": `{"score":0.4,`}), nil)

	_, err := p.Generate(context.Background(), scoreRequest())
	var ir *ErrInvalidResponse
	if !errors.As(err, &ir) || !ir.Truncated {
		t.Fatalf("expected truncated invalid response, got %v", err)
	}
}

func TestOpenAIProvider_Refusal(t *testing.T) {
	p := openaiServer(t, http.StatusOK,
		chatCompletion("stop", map[string]any{"content": "", "refusal": "I can't help with that."}), nil)

	_, err := p.Generate(context.Background(), scoreRequest())
	if !IsInvalidResponse(err) {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	reply := chatCompletion("stop", map[string]any{})
	reply["choices"] = []any{}
	p := openaiServer(t, http.StatusOK, reply, nil)

	if _, err := p.Generate(context.Background(), scoreRequest()); !IsInvalidResponse(err) {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

func TestOpenAIProvider_HTTPErrors(t *testing.T) {
	apiError := func(kind string) map[string]any {
		return map[string]any{"error": map[string]any{"type": kind, "message": kind}}
	}

	p := openaiServer(t, http.StatusTooManyRequests, apiError("tokens"), nil)
	if _, err := p.Generate(context.Background(), scoreRequest()); !IsRateLimited(err) {
		t.Errorf("expected rate limit, got %v", err)
	}

	p = openaiServer(t, http.StatusInternalServerError, apiError("server_error"), nil)
	_, err := p.Generate(context.Background(), scoreRequest())
	var se *errs.ServiceError
	if !errors.As(err, &se) || se.Op != "openai" || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{BaseURL: "http://localhost:11434/v1"}); err == nil {
		t.Fatal("expected error without API key")
	}
}
