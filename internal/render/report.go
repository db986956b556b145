package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/essaylens/internal/classify"
	"github.com/abhisek/essaylens/internal/engagement"
	"github.com/abhisek/essaylens/internal/topics"
)

// maxIssues caps the grammar issues listed in a report.
const maxIssues = 10

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(label), value)
}

func num(f float64) string {
	return fmt.Sprintf("%.3f", f)
}

// Report renders an analysis report section by section.
func Report(r *engagement.Report) string {
	var b strings.Builder

	b.WriteString(Card.Render(lipgloss.JoinVertical(lipgloss.Left,
		Title.Render("Engagement"),
		row("Score", ScoreStyle(r.EngagementScore).Render(fmt.Sprintf("%s (%d)", r.EngagementScore.Label(), int(r.EngagementScore)))),
		row("Typing style", r.TypingStyle),
		row("Lecture similarity", num(r.SimilarityScore)),
	)))
	b.WriteString("\n")

	m := r.TypingMetrics
	b.WriteString(Section.Render("Typing"))
	b.WriteString("\n")
	for _, kv := range [][2]string{
		{"Words", fmt.Sprint(m.TotalWords)},
		{"Total time (s)", num(m.TotalTimeSeconds)},
		{"Speed (wpm)", num(m.TypingSpeedWPM)},
		{"Time per word (s)", fmt.Sprintf("%s ± %s", num(m.AvgTypingTimePerWord), num(m.StdTypingTimePerWord))},
		{"Pause before word (s)", fmt.Sprintf("%s ± %s", num(m.AvgPauseBeforeWord), num(m.StdPauseBeforeWord))},
		{"Backspaces", fmt.Sprintf("%d (%s per word)", m.TotalBackspaces, num(m.AvgBackspacesPerWord))},
		{"Long thinking pauses", fmt.Sprint(m.LongThinkingPauses)},
		{"Bursts", fmt.Sprint(m.TypingBursts.TotalBursts)},
		{"Words per burst", num(m.TypingBursts.AvgWordsPerBurst)},
		{"Longest burst", fmt.Sprint(m.TypingBursts.LongestBurstLength)},
	} {
		b.WriteString(row(kv[0], kv[1]))
		b.WriteString("\n")
	}

	s := r.StylometryReport
	b.WriteString(Section.Render("Stylometry"))
	b.WriteString("\n")
	for _, kv := range [][2]string{
		{"Sentences", fmt.Sprint(s.TotalSentences)},
		{"Words", fmt.Sprint(s.TotalWords)},
		{"Avg sentence length", num(s.AvgSentenceLength)},
		{"Avg word length", num(s.AvgWordLength)},
		{"Punctuation", fmt.Sprint(s.PunctuationCount)},
		{"Lexical diversity", num(s.LexicalDiversity)},
		{"Drift score", num(s.DriftScore)},
		{"Semantic similarity", fmt.Sprintf("%s ± %s", num(s.AvgSemanticSimilarity), num(s.StdSemanticSimilarity))},
	} {
		b.WriteString(row(kv[0], kv[1]))
		b.WriteString("\n")
	}
	if s.Note != "" {
		b.WriteString(Hint.Render(s.Note))
		b.WriteString("\n")
	}

	g := r.GrammarReport
	b.WriteString(Section.Render(fmt.Sprintf("Grammar (%d issues)", g.TotalIssues)))
	b.WriteString("\n")
	for i, issue := range g.GrammarIssues {
		if i == maxIssues {
			b.WriteString(Hint.Render(fmt.Sprintf("... %d more", len(g.GrammarIssues)-maxIssues)))
			b.WriteString("\n")
			break
		}
		line := fmt.Sprintf("%q %s", issue.IncorrectText, issue.Message)
		if len(issue.Suggestions) > 0 {
			line += " → " + strings.Join(issue.Suggestions, ", ")
		}
		b.WriteString(row(issue.Category, line))
		b.WriteString("\n")
	}

	return b.String()
}

// Topics renders the topic gate decision.
func Topics(d topics.Decision) string {
	passed := Failed.Render("blocked")
	if d.Passed {
		passed = ScoreStyle(engagement.High).Render("passed")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		Section.Render("Topic gate"),
		row("Lecture topics", strings.Join(d.LectureTopics, ", ")),
		row("Essay topics", strings.Join(d.EssayTopics, ", ")),
		row("Gate", passed),
	) + "\n"
}

// Features renders the classifier input vector.
func Features(v classify.Vector) string {
	rows := make([][]string, 0, classify.NumFeatures)
	for _, f := range v.Features() {
		rows = append(rows, []string{f.Name, fmt.Sprintf("%.4f", f.Value)})
	}
	return Section.Render("Classifier features") + "\n" + newTable("Feature", "Value").Rows(rows...).Render() + "\n"
}

// Evaluation renders a fresh evaluation: the report, the topic gate and,
// when requested, the classifier features.
func Evaluation(ev *engagement.Evaluation, features bool) string {
	out := Report(&ev.Report) + Topics(ev.Topics)
	if features {
		out += Features(ev.Features)
	}
	return out
}
