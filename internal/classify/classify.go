// Package classify turns the timing, grammar and stylometry signals of an
// essay into the ordered feature vector the style classifier was trained
// on, and defines the classifier backends.
package classify

import (
	"context"

	"github.com/abhisek/essaylens/internal/grammar"
	"github.com/abhisek/essaylens/internal/stylometry"
	"github.com/abhisek/essaylens/internal/typing"
)

// LabelCopy is the only style label the engagement policy interprets.
const LabelCopy = "copy"

// NumFeatures is the length of a feature vector.
const NumFeatures = 22

// FeatureNames is the training order of the classifier inputs. Changing it
// invalidates every trained bundle.
var FeatureNames = [NumFeatures]string{
	"total_words",
	"total_time_seconds",
	"avg_typing_time_per_word",
	"std_typing_time_per_word",
	"avg_pause_before_word",
	"std_pause_before_word",
	"total_backspaces",
	"avg_backspaces_per_word",
	"typing_speed_wpm",
	"long_thinking_pauses",
	"total_bursts",
	"avg_words_per_burst",
	"longest_burst_length",
	"grammar.total_issues",
	"stylometry.total_sentences",
	"stylometry.avg_sentence_length",
	"stylometry.avg_word_length",
	"stylometry.punctuation_count",
	"stylometry.lexical_diversity",
	"stylometry.drift_score",
	"stylometry.avg_semantic_similarity",
	"stylometry.std_semantic_similarity",
}

// Vector is one classifier input, indexed like FeatureNames.
type Vector [NumFeatures]float64

// Feature is a named vector component.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Features pairs every component with its name, in order.
func (v Vector) Features() []Feature {
	out := make([]Feature, NumFeatures)
	for i, name := range FeatureNames {
		out[i] = Feature{Name: name, Value: v[i]}
	}
	return out
}

// BuildVector assembles the classifier input from the three upstream
// reports.
func BuildVector(m typing.Metrics, g grammar.Report, s stylometry.Report) Vector {
	return Vector{
		float64(m.TotalWords),
		m.TotalTimeSeconds,
		m.AvgTypingTimePerWord,
		m.StdTypingTimePerWord,
		m.AvgPauseBeforeWord,
		m.StdPauseBeforeWord,
		float64(m.TotalBackspaces),
		m.AvgBackspacesPerWord,
		m.TypingSpeedWPM,
		float64(m.LongThinkingPauses),
		float64(m.TypingBursts.TotalBursts),
		m.TypingBursts.AvgWordsPerBurst,
		float64(m.TypingBursts.LongestBurstLength),
		float64(g.TotalIssues),
		float64(s.TotalSentences),
		s.AvgSentenceLength,
		s.AvgWordLength,
		float64(s.PunctuationCount),
		s.LexicalDiversity,
		s.DriftScore,
		s.AvgSemanticSimilarity,
		s.StdSemanticSimilarity,
	}
}

// StyleClassifier maps a feature vector to a typing-style label. The label
// space is defined by the classifier, not by this package.
type StyleClassifier interface {
	Classify(ctx context.Context, v Vector) (string, error)
}

// Named is implemented by classifiers that can identify their backend for
// the call journal.
type Named interface {
	Backend() string
}

// BackendName returns c's backend name, or "custom".
func BackendName(c StyleClassifier) string {
	if n, ok := c.(Named); ok {
		return n.Backend()
	}
	return "custom"
}
