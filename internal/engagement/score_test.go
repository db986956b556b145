package engagement

import "testing"

func TestPolicyDecide(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		style      string
		similarity float64
		want       Score
	}{
		{"copy", 0.99, NoEngagement},
		{"copy", 0.5, NoEngagement},
		{"copy", 0, NoEngagement},
		{"thoughtful", 0.65, High},
		{"thoughtful", 0.45, Moderate},
		{"thoughtful", 0.1, NoEngagement},
		{"thoughtful", 0.6, Moderate},
		{"thoughtful", 0.4, NoEngagement},
		{"thoughtful", 0, NoEngagement},
		{"fluent", 3.7, High},
		{"", -2.5, NoEngagement},
	}
	for _, tt := range tests {
		if got := p.Decide(tt.style, tt.similarity); got != tt.want {
			t.Errorf("Decide(%q, %v) = %d, want %d", tt.style, tt.similarity, got, tt.want)
		}
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Errorf("default policy invalid: %v", err)
	}
	if err := (Policy{High: 0.3, Moderate: 0.5}).Validate(); err == nil {
		t.Error("expected error for inverted thresholds")
	}
}

func TestScoreLabel(t *testing.T) {
	tests := []struct {
		s    Score
		want string
	}{
		{NotEvaluated, "Not evaluated"},
		{NoEngagement, "No engagement"},
		{Moderate, "Moderate engagement"},
		{High, "High engagement"},
		{Score(7), "Unknown engagement (7)"},
	}
	for _, tt := range tests {
		if got := tt.s.Label(); got != tt.want {
			t.Errorf("Score(%d).Label() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]Score{High, Moderate, NoEngagement, High, Moderate, NoEngagement})
	want := Summary{Evaluations: 6, High: 2, Moderate: 2, None: 2, Percent: 50}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}

	if got := Summarize([]Score{High, Moderate, NoEngagement}); got.Percent != 50 {
		t.Errorf("Percent = %v, want 50", got.Percent)
	}
	if got := Summarize([]Score{High, NoEngagement, NoEngagement}); got.Percent != 33.33 {
		t.Errorf("Percent = %v, want 33.33", got.Percent)
	}
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}
}
