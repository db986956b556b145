// Package engagement runs the evaluation pipeline: it gathers the timing,
// stylometry, grammar and topic signals of a submission, classifies the
// typing style and scores the student's engagement with the lecture.
package engagement

import (
	"github.com/abhisek/essaylens/internal/classify"
	"github.com/abhisek/essaylens/internal/grammar"
	"github.com/abhisek/essaylens/internal/stylometry"
	"github.com/abhisek/essaylens/internal/topics"
	"github.com/abhisek/essaylens/internal/typing"
)

// Report is the analysis report of one submission. Field names are a wire
// contract with the dashboards that render it.
type Report struct {
	TypingMetrics    typing.Metrics    `json:"typing_metrics"`
	GrammarReport    grammar.Report    `json:"grammar_report"`
	StylometryReport stylometry.Report `json:"stylometry_report"`
	EngagementScore  Score             `json:"engagement_score"`
	TypingStyle      string            `json:"typing_style"`
	SimilarityScore  float64           `json:"similarity_score"`
}

// Evaluation is a Report plus the intermediate values that produced it.
type Evaluation struct {
	Report   Report
	Features classify.Vector
	Topics   topics.Decision
	// Similarity is the unrounded score the policy decided on.
	Similarity float64
}
