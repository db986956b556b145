package engagement

import (
	"fmt"

	"github.com/abhisek/essaylens/internal/classify"
	"github.com/abhisek/essaylens/internal/stats"
)

// Score is the engagement verdict of one essay.
type Score int

const (
	// NotEvaluated marks a submission that has no report yet. The pipeline
	// never produces it.
	NotEvaluated Score = -2
	NoEngagement Score = -1
	Moderate     Score = 0
	High         Score = 1
)

// Label is the human-readable verdict shown to students and lecturers.
func (s Score) Label() string {
	switch s {
	case NotEvaluated:
		return "Not evaluated"
	case NoEngagement:
		return "No engagement"
	case Moderate:
		return "Moderate engagement"
	case High:
		return "High engagement"
	}
	return fmt.Sprintf("Unknown engagement (%d)", int(s))
}

// Policy turns a style label and similarity into a Score. Thresholds are
// strict lower bounds and must be calibrated to the similarity backend.
type Policy struct {
	High     float64
	Moderate float64
}

// DefaultPolicy returns the thresholds calibrated for a raw cross-encoder.
func DefaultPolicy() Policy {
	return Policy{High: 0.6, Moderate: 0.4}
}

// Validate checks that the thresholds are ordered.
func (p Policy) Validate() error {
	if p.Moderate > p.High {
		return fmt.Errorf("moderate threshold %v exceeds high threshold %v", p.Moderate, p.High)
	}
	return nil
}

// Decide applies the policy. A copy style always scores NoEngagement.
func (p Policy) Decide(style string, similarity float64) Score {
	switch {
	case style == classify.LabelCopy:
		return NoEngagement
	case similarity > p.High:
		return High
	case similarity > p.Moderate:
		return Moderate
	default:
		return NoEngagement
	}
}

// Summary aggregates the scores of a class or session.
type Summary struct {
	Evaluations int     `json:"evaluations"`
	High        int     `json:"high"`
	Moderate    int     `json:"moderate"`
	None        int     `json:"none"`
	Percent     float64 `json:"engagement_percent"`
}

// Summarize weighs High as 1, Moderate as 0.5 and everything else as 0,
// and reports the mean as a percentage rounded to 2 places.
func Summarize(scores []Score) Summary {
	var sum Summary
	var points float64
	for _, s := range scores {
		sum.Evaluations++
		switch s {
		case High:
			sum.High++
			points++
		case Moderate:
			sum.Moderate++
			points += 0.5
		default:
			sum.None++
		}
	}
	sum.Percent = stats.Round(stats.Ratio(points, float64(sum.Evaluations))*100, 2)
	return sum
}
