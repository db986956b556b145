// Package qa answers student questions from a lecture transcript. Questions
// that are not close enough to the transcript are refused without asking
// the LLM.
package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/essaylens/internal/embed"
	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/llm"
	"github.com/abhisek/essaylens/internal/logging"
)

// DefaultThreshold is the minimum transcript/question cosine similarity
// for a question to count as in scope.
const DefaultThreshold = 0.4

// OutOfScope is the answer given to questions below the threshold.
const OutOfScope = "This question appears to be outside the scope of the current lecture."

// maxTranscriptChars bounds the transcript sent to the LLM.
const maxTranscriptChars = 24000

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// AnswerSchema is the structured output the LLM must return.
var AnswerSchema = &llm.Schema{
	Name:        "lecture-answer",
	Description: "An answer to a student's question grounded in a lecture transcript",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "A short answer using only the transcript",
			},
		},
		"required":             []any{"answer"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You are a teaching assistant. Answer the student's question using only the lecture transcript.
Keep the answer short. If the transcript does not contain the answer, say so.`

// Answer is the result of one question.
type Answer struct {
	Text       string  `json:"answer"`
	InScope    bool    `json:"in_scope"`
	Similarity float64 `json:"similarity"`
}

// Answerer gates questions by embedding similarity and answers in-scope
// ones with an LLM.
type Answerer struct {
	embedder  embed.Embedder
	provider  llm.Provider
	threshold float64
}

// NewAnswerer creates an Answerer. A threshold <= 0 uses DefaultThreshold.
func NewAnswerer(e embed.Embedder, p llm.Provider, threshold float64) *Answerer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Answerer{embedder: e, provider: p, threshold: threshold}
}

// Answer answers question from transcript.
func (a *Answerer) Answer(ctx context.Context, transcript, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if strings.TrimSpace(transcript) == "" {
		return &Answer{Text: OutOfScope}, nil
	}

	ctx = logging.WithPurpose(ctx, "qa")
	vecs, err := a.embedder.Embed(ctx, []string{transcript, question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if err := embed.CheckBatch("qa", 2, vecs); err != nil {
		return nil, err
	}

	sim := embed.Cosine(vecs[0], vecs[1])
	if sim < a.threshold {
		return &Answer{Text: OutOfScope, Similarity: sim}, nil
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Transcript: %s\n\nQuestion: %s", truncate(transcript), question),
		}},
		Schema:    AnswerSchema,
		MaxTokens: 512,
	})
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, errs.Malformed("llm", "qa", "decode answer: %v", err)
	}
	return &Answer{Text: strings.TrimSpace(out.Answer), InScope: true, Similarity: sim}, nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxTranscriptChars {
		return s
	}
	return string(r[:maxTranscriptChars])
}
