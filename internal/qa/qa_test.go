package qa

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/essaylens/internal/embed"
	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/llm"
)

const transcript = "Today we covered binary search trees and AVL rotations."

func embedder(question []float32) *embed.MockEmbedder {
	return &embed.MockEmbedder{Vectors: map[string][]float32{
		transcript:                       {1, 0, 0},
		"What is an AVL rotation?":       {0.9, 0.1, 0},
		"Who won the football match?":    {0, 0, 1},
		"How do rotations keep balance?": question,
	}}
}

func TestAnswerInScope(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"answer":" A local restructuring of the tree. "}`)})
	a := NewAnswerer(embedder(nil), mock, 0)

	got, err := a.Answer(context.Background(), transcript, "What is an AVL rotation?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !got.InScope || got.Text != "A local restructuring of the tree." {
		t.Fatalf("unexpected answer %+v", got)
	}
	if got.Similarity < 0.99 {
		t.Errorf("similarity = %v", got.Similarity)
	}

	req := mock.Calls[0]
	if req.Schema != AnswerSchema {
		t.Error("expected the answer schema")
	}
	if !strings.Contains(req.Messages[0].Content, transcript) || !strings.Contains(req.Messages[0].Content, "What is an AVL rotation?") {
		t.Errorf("prompt is missing transcript or question: %q", req.Messages[0].Content)
	}
}

func TestAnswerOutOfScope(t *testing.T) {
	mock := llm.NewMockProvider()
	a := NewAnswerer(embedder(nil), mock, 0)

	got, err := a.Answer(context.Background(), transcript, "Who won the football match?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got.InScope || got.Text != OutOfScope {
		t.Fatalf("unexpected answer %+v", got)
	}
	if mock.CallCount() != 0 {
		t.Fatal("LLM must not be called for out-of-scope questions")
	}
}

func TestAnswerThreshold(t *testing.T) {
	// cos = 0.5: in scope at the default threshold, out of scope at 0.6.
	e := embedder([]float32{0.5, 0.8660254, 0})
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"answer":"ok"}`)})

	if got, err := NewAnswerer(e, mock, 0).Answer(context.Background(), transcript, "How do rotations keep balance?"); err != nil || !got.InScope {
		t.Fatalf("default threshold: %+v, %v", got, err)
	}
	if got, err := NewAnswerer(e, mock, 0.6).Answer(context.Background(), transcript, "How do rotations keep balance?"); err != nil || got.InScope {
		t.Fatalf("threshold 0.6: %+v, %v", got, err)
	}
}

func TestAnswerErrors(t *testing.T) {
	if _, err := NewAnswerer(embedder(nil), llm.NewMockProvider(), 0).Answer(context.Background(), transcript, "  "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("blank question: got %v", err)
	}

	got, err := NewAnswerer(embedder(nil), llm.NewMockProvider(), 0).Answer(context.Background(), " ", "What is an AVL rotation?")
	if err != nil || got.InScope {
		t.Errorf("blank transcript: %+v, %v", got, err)
	}

	down := &errs.ServiceError{Service: "embedding", Err: errors.New("down")}
	if _, err := NewAnswerer(&embed.MockEmbedder{Err: down}, llm.NewMockProvider(), 0).Answer(context.Background(), transcript, "What is an AVL rotation?"); !errors.Is(err, down) {
		t.Errorf("embedding failure: got %v", err)
	}

	// Empty queue: the provider fails.
	if _, err := NewAnswerer(embedder(nil), llm.NewMockProvider(), 0).Answer(context.Background(), transcript, "What is an AVL rotation?"); !errs.IsService(err) {
		t.Errorf("llm failure: got %v", err)
	}

	bad := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`nope`)})
	if _, err := NewAnswerer(embedder(nil), bad, 0).Answer(context.Background(), transcript, "What is an AVL rotation?"); !errs.IsService(err) {
		t.Errorf("malformed answer: got %v", err)
	}
}
