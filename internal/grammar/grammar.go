// Package grammar normalizes grammar-checker matches into the issue
// report carried by an analysis report. It holds no grammar logic of
// its own.
package grammar

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/abhisek/essaylens/internal/logging"
)

// Match is one issue as reported by the checking service. Offset and
// Length count UTF-16 code units into the checked text.
type Match struct {
	Message      string
	RuleID       string
	IssueType    string
	CategoryID   string
	Offset       int
	Length       int
	Replacements []string
	// Context is the service's excerpt around the issue; ContextOffset
	// locates the issue inside it.
	Context       string
	ContextOffset int
}

// Checker is a grammar-checking service.
type Checker interface {
	Check(ctx context.Context, text string) ([]Match, error)
}

// Issue is a normalized grammar issue.
type Issue struct {
	Message       string   `json:"message"`
	Rule          string   `json:"rule"`
	Category      string   `json:"category"`
	IncorrectText string   `json:"incorrect_text"`
	Suggestions   []string `json:"suggestions"`
	Offset        int      `json:"offset"`
}

// Report is the grammar_report section of an analysis report.
type Report struct {
	Text          string  `json:"text"`
	TotalIssues   int     `json:"total_issues"`
	GrammarIssues []Issue `json:"grammar_issues"`
}

// Adapter calls a Checker once per text and normalizes its matches.
type Adapter struct {
	checker Checker
}

// NewAdapter creates an Adapter over c.
func NewAdapter(c Checker) *Adapter {
	return &Adapter{checker: c}
}

// Check runs the grammar service over text. Blank text yields an empty
// report without calling the service.
func (a *Adapter) Check(ctx context.Context, text string) (*Report, error) {
	text = strings.TrimSpace(text)
	report := &Report{Text: text, GrammarIssues: []Issue{}}
	if text == "" {
		return report, nil
	}

	matches, err := a.checker.Check(logging.WithPurpose(ctx, "grammar"), text)
	if err != nil {
		return nil, fmt.Errorf("check grammar: %w", err)
	}

	units := utf16.Encode([]rune(text))
	for _, m := range matches {
		suggestions := m.Replacements
		if suggestions == nil {
			suggestions = []string{}
		}
		category := m.IssueType
		if category == "" {
			category = m.CategoryID
		}
		report.GrammarIssues = append(report.GrammarIssues, Issue{
			Message:       m.Message,
			Rule:          m.RuleID,
			Category:      category,
			IncorrectText: incorrectText(units, m),
			Suggestions:   suggestions,
			Offset:        m.Offset,
		})
	}
	report.TotalIssues = len(report.GrammarIssues)
	return report, nil
}

// incorrectText slices the flagged span out of the checked text, falling
// back to the service's context excerpt when the offsets do not fit.
func incorrectText(units []uint16, m Match) string {
	if m.Offset >= 0 && m.Length >= 0 && m.Offset+m.Length <= len(units) {
		return string(utf16.Decode(units[m.Offset : m.Offset+m.Length]))
	}
	ctxUnits := utf16.Encode([]rune(m.Context))
	if m.ContextOffset >= 0 && m.Length >= 0 && m.ContextOffset+m.Length <= len(ctxUnits) {
		return string(utf16.Decode(ctxUnits[m.ContextOffset : m.ContextOffset+m.Length]))
	}
	return ""
}
