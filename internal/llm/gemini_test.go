package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/abhisek/essaylens/internal/errs"
)

func geminiServer(t *testing.T, status int, reply map[string]any, inspect func(path string, body map[string]any)) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(r.URL.Path, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func geminiReply(finish, text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20},
		"modelVersion":  "gemini-2.5-flash-001",
	}
}

func TestGeminiProvider_Structured(t *testing.T) {
	var path string
	var body map[string]any
	p := geminiServer(t, http.StatusOK, geminiReply("STOP", `{"score":0.7,"rationale":"mostly the same"}`),
		func(p string, b map[string]any) { path, body = p, b })

	req := scoreRequest()
	req.System = "You compare two texts."
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"score":0.7,"rationale":"mostly the same"}` {
		t.Errorf("Content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 20 || resp.Model != "gemini-2.5-flash-001" || resp.StopReason != StopEnd {
		t.Errorf("unexpected metadata: %+v", resp)
	}

	if !strings.Contains(path, "gemini-2.5-flash:generateContent") {
		t.Errorf("request path = %q", path)
	}
	gen, _ := body["generationConfig"].(map[string]any)
	if temp, ok := gen["temperature"]; !ok || temp != float64(0) {
		t.Errorf("temperature = %v (sent %v), want explicit 0", temp, ok)
	}
	if gen["maxOutputTokens"] != float64(DefaultMaxTokens) {
		t.Errorf("maxOutputTokens = %v", gen["maxOutputTokens"])
	}
	if gen["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v", gen["responseMimeType"])
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Error("system instruction not sent")
	}
}

func TestGeminiProvider_MaxTokens(t *testing.T) {
	p := geminiServer(t, http.StatusOK, geminiReply("MAX_TOKENS", `{"score":0.7,"ra`), nil)

	_, err := p.Generate(context.Background(), scoreRequest())
	var ir *ErrInvalidResponse
	if !errors.As(err, &ir) || !ir.Truncated {
		t.Fatalf("expected truncated invalid response, got %v", err)
	}
}

func TestGeminiProvider_HTTPError(t *testing.T) {
	p := geminiServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"},
	}, nil)

	_, err := p.Generate(context.Background(), scoreRequest())
	var se *errs.ServiceError
	if !errors.As(err, &se) || se.Op != "gemini" {
		t.Fatalf("expected gemini ServiceError, got %v", err)
	}
	if !IsRateLimited(err) {
		t.Errorf("expected rate limit, got status %d", se.StatusCode)
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":  map[string]any{"type": "number", "minimum": 0, "maximum": 1.0, "description": "0..1"},
			"label":  map[string]any{"type": "string", "enum": []any{"copy", "thoughtful"}},
			"topics": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"score", "label"},
	})

	if s.Type != genai.TypeObject || len(s.Properties) != 3 {
		t.Fatalf("unexpected object schema: %+v", s)
	}
	score := s.Properties["score"]
	if score.Type != genai.TypeNumber || score.Description != "0..1" {
		t.Errorf("score = %+v", score)
	}
	if score.Minimum == nil || *score.Minimum != 0 || score.Maximum == nil || *score.Maximum != 1 {
		t.Errorf("score bounds = %v, %v", score.Minimum, score.Maximum)
	}
	if got := s.Properties["label"].Enum; len(got) != 2 || got[1] != "thoughtful" {
		t.Errorf("label enum = %v", got)
	}
	if items := s.Properties["topics"].Items; items == nil || items.Type != genai.TypeString {
		t.Errorf("topics items = %+v", items)
	}
	if len(s.Required) != 2 {
		t.Errorf("required = %v", s.Required)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
