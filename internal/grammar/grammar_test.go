package grammar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/store"
)

func TestAdapterNormalizes(t *testing.T) {
	m := &MockChecker{Matches: []Match{
		{
			Message:      "Possible spelling mistake found.",
			RuleID:       "MORFOLOGIK_RULE_EN_US",
			IssueType:    "misspelling",
			CategoryID:   "TYPOS",
			Offset:       4,
			Length:       5,
			Replacements: []string{"quick"},
		},
		{
			Message:       "Missing comma.",
			RuleID:        "COMMA_RULE",
			CategoryID:    "PUNCTUATION",
			Offset:        99, // outside the text; use the context excerpt
			Length:        3,
			Context:       "...and fox jumps",
			ContextOffset: 7,
		},
	}}
	r, err := NewAdapter(m).Check(context.Background(), "  The quikc brown fox  ")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if r.Text != "The quikc brown fox" {
		t.Errorf("Text = %q, want trimmed text", r.Text)
	}
	if r.TotalIssues != 2 || len(r.GrammarIssues) != 2 {
		t.Fatalf("TotalIssues = %d, issues = %d", r.TotalIssues, len(r.GrammarIssues))
	}

	first := r.GrammarIssues[0]
	if first.IncorrectText != "quikc" {
		t.Errorf("IncorrectText = %q, want quikc", first.IncorrectText)
	}
	if first.Category != "misspelling" || first.Rule != "MORFOLOGIK_RULE_EN_US" || first.Offset != 4 {
		t.Errorf("first issue = %+v", first)
	}

	second := r.GrammarIssues[1]
	if second.IncorrectText != "fox" {
		t.Errorf("IncorrectText = %q, want fox", second.IncorrectText)
	}
	if second.Category != "PUNCTUATION" {
		t.Errorf("Category = %q, want category id fallback", second.Category)
	}
	if second.Suggestions == nil {
		t.Error("Suggestions should be an empty list, not null")
	}
}

func TestAdapterUTF16Offsets(t *testing.T) {
	// The emoji takes two UTF-16 units, so "teh" starts at unit 3.
	m := &MockChecker{Matches: []Match{{Offset: 3, Length: 3}}}
	r, err := NewAdapter(m).Check(context.Background(), "😀 teh end")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := r.GrammarIssues[0].IncorrectText; got != "teh" {
		t.Errorf("IncorrectText = %q, want teh", got)
	}
}

func TestAdapterBlankText(t *testing.T) {
	m := &MockChecker{}
	r, err := NewAdapter(m).Check(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if r.TotalIssues != 0 || r.GrammarIssues == nil {
		t.Errorf("report = %+v", r)
	}
	if m.CallCount() != 0 {
		t.Error("service must not be called for blank text")
	}
}

func TestAdapterPropagatesServiceError(t *testing.T) {
	m := &MockChecker{Err: &errs.ServiceError{Service: "grammar", Op: "languagetool /v2/check", StatusCode: 503}}
	_, err := NewAdapter(m).Check(context.Background(), "Some text.")
	var se *errs.ServiceError
	if !errors.As(err, &se) || se.StatusCode != 503 {
		t.Fatalf("err = %v, want the ServiceError unchanged", err)
	}
}

func TestLanguageTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/check" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("language") != "en-GB" || r.Form.Get("text") != "Their is a cat." {
			t.Errorf("form = %v", r.Form)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{{
				"message":      "Did you mean \"There\"?",
				"offset":       0,
				"length":       5,
				"replacements": []map[string]any{{"value": "There"}},
				"context":      map[string]any{"text": "Their is a cat.", "offset": 0, "length": 5},
				"rule": map[string]any{
					"id":        "THEIR_IS",
					"issueType": "grammar",
					"category":  map[string]any{"id": "GRAMMAR"},
				},
			}},
		})
	}))
	defer srv.Close()

	matches, err := NewLanguageTool(srv.URL+"/", "en-GB", nil).Check(context.Background(), "Their is a cat.")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches", len(matches))
	}
	m := matches[0]
	if m.RuleID != "THEIR_IS" || m.IssueType != "grammar" || m.CategoryID != "GRAMMAR" {
		t.Errorf("match = %+v", m)
	}
	if len(m.Replacements) != 1 || m.Replacements[0] != "There" {
		t.Errorf("replacements = %v", m.Replacements)
	}
}

func TestLanguageToolDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewAdapter(NewLanguageTool(srv.URL, "", nil)).Check(context.Background(), "text")
	if !errs.IsService(err) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
}

type fakeCallRepo struct {
	mu    sync.Mutex
	calls []store.ServiceCall
}

func (f *fakeCallRepo) AppendServiceCall(_ context.Context, c store.ServiceCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeCallRepo) QueryServiceCalls(context.Context, store.QueryOpts) ([]store.ServiceCall, error) {
	return nil, nil
}

func (f *fakeCallRepo) UsageByService(context.Context) ([]store.ServiceUsage, error) {
	return nil, nil
}

func TestLoggingChecker(t *testing.T) {
	repo := &fakeCallRepo{}
	c := WithLogging(&MockChecker{Matches: []Match{{}, {}}}, "mock", repo, nil)
	if _, err := NewAdapter(c).Check(context.Background(), "text"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(repo.calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(repo.calls))
	}
	got := repo.calls[0]
	if got.Service != "grammar" || got.Purpose != "grammar" || got.Items != 2 || !got.Success {
		t.Errorf("call = %+v", got)
	}
}
