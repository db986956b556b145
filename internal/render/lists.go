package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/essaylens/internal/engagement"
	"github.com/abhisek/essaylens/internal/llm"
	"github.com/abhisek/essaylens/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// FormatCost renders a USD amount with more precision below one cent.
func FormatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

// Evaluations renders stored evaluations, newest first as given.
func Evaluations(evs []store.Evaluation) string {
	t := newTable("ID", "Time", "Student", "Session", "Style", "Similarity", "Engagement")
	for _, ev := range evs {
		score := engagement.Score(ev.EngagementScore)
		t.Row(
			truncate(ev.ID, 8),
			ev.CreatedAt.Local().Format(timeLayout),
			ev.Student,
			ev.Session,
			ev.TypingStyle,
			fmt.Sprintf("%.3f", ev.SimilarityScore),
			ScoreStyle(score).Render(score.Label()),
		)
	}
	return t.Render()
}

// Summary renders the engagement summary of a set of evaluations.
func Summary(s engagement.Summary) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		Section.Render("Summary"),
		row("Evaluations", fmt.Sprint(s.Evaluations)),
		row("High engagement", fmt.Sprint(s.High)),
		row("Moderate engagement", fmt.Sprint(s.Moderate)),
		row("No engagement", fmt.Sprint(s.None)),
		row("Engagement", fmt.Sprintf("%.2f%%", s.Percent)),
	) + "\n"
}

// EvaluationHeader renders the metadata of a stored evaluation.
func EvaluationHeader(ev *store.Evaluation) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		row("ID", ev.ID),
		row("Time", ev.CreatedAt.Local().Format(timeLayout)),
		row("Student", ev.Student),
		row("Session", ev.Session),
	) + "\n"
}

// Calls renders journal entries.
func Calls(calls []store.ServiceCall) string {
	t := newTable("ID", "Time", "Service", "Backend", "Purpose", "Items", "In", "Out", "Ms", "OK")
	for _, c := range calls {
		t.Row(
			fmt.Sprint(c.ID),
			c.CreatedAt.Local().Format(timeLayout),
			c.Service,
			truncate(c.Backend, 32),
			c.Purpose,
			fmt.Sprint(c.Items),
			fmt.Sprint(c.InputTokens),
			fmt.Sprint(c.OutputTokens),
			fmt.Sprint(c.LatencyMs),
			mark(c.Success),
		)
	}
	return t.Render()
}

// Usage renders aggregated journal usage. LLM rows carry an estimated
// cost when the model is priced.
func Usage(usage []store.ServiceUsage) string {
	t := newTable("Service", "Backend", "Calls", "Failed", "Avg Ms", "In", "Out", "Cost")
	var (
		totalCalls, totalIn, totalOut int
		totalCost                     float64
		unpriced                      []string
	)
	for _, u := range usage {
		cost := ""
		if u.Service == "llm" {
			if c := llm.LookupCost(u.Backend); c != nil {
				usd := c.Cost(u.InputTokens, u.OutputTokens)
				totalCost += usd
				cost = FormatCost(usd)
			} else {
				cost = "?"
				unpriced = append(unpriced, u.Backend)
			}
		}
		t.Row(
			u.Service,
			truncate(u.Backend, 32),
			fmt.Sprint(u.Calls),
			fmt.Sprint(u.Failures),
			fmt.Sprintf("%.0f", u.AvgLatencyMs),
			fmt.Sprint(u.InputTokens),
			fmt.Sprint(u.OutputTokens),
			cost,
		)
		totalCalls += u.Calls
		totalIn += u.InputTokens
		totalOut += u.OutputTokens
	}

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	t.Row(label, "", fmt.Sprint(totalCalls), "", "", fmt.Sprint(totalIn), fmt.Sprint(totalOut), FormatCost(totalCost))

	out := t.Render()
	if len(unpriced) > 0 {
		out += "\n" + Hint.Render("Pricing unavailable for: "+strings.Join(unpriced, ", "))
	}
	return out
}
