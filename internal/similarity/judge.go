package similarity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/llm"
)

// maxJudgeChars bounds each text sent to the judge.
const maxJudgeChars = 12000

// ScoreSchema is the structured output the judge must return.
var ScoreSchema = &llm.Schema{
	Name:        "similarity-score",
	Description: "Semantic similarity between a lecture transcript and a student essay",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"description": "Between 0 and 1. 0 means unrelated, 1 means the essay covers the lecture's content closely",
			},
			"rationale": map[string]any{
				"type":        "string",
				"description": "One sentence explaining the score",
			},
		},
		"required":             []any{"score", "rationale"},
		"additionalProperties": false,
	},
}

const judgeSystemPrompt = `You grade how closely a student's essay engages with the content of a lecture.
Compare meaning, not wording. Paraphrase and summary count as close; off-topic writing scores near 0.
Return only the requested JSON.`

// Judge scores pairs by asking an LLM for a 0..1 similarity. It stands in
// for a cross-encoder when none is deployed.
type Judge struct {
	provider llm.Provider
}

// NewJudge creates a Judge over p.
func NewJudge(p llm.Provider) *Judge {
	return &Judge{provider: p}
}

// Score asks the model to rate how closely b restates a, clamped to [0,1].
func (j *Judge) Score(ctx context.Context, a, b string) (float64, error) {
	req := llm.Request{
		System: judgeSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("LECTURE:\n%s\n\nESSAY:\n%s", truncate(a), truncate(b)),
		}},
		Schema:    ScoreSchema,
		MaxTokens: 256,
	}
	resp, err := j.provider.Generate(ctx, req)
	if err != nil {
		return 0, errs.Service("similarity", "llm judge", err)
	}

	var out struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return 0, errs.Malformed("similarity", "llm judge", "decode score: %v", err)
	}
	return min(max(out.Score, 0), 1), nil
}

func (j *Judge) Backend() string { return "llm:" + j.provider.ModelID() }

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxJudgeChars {
		return s
	}
	return string(r[:maxJudgeChars])
}
