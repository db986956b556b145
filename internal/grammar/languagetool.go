package grammar

import (
	"context"
	"net/http"
	"net/url"

	"github.com/abhisek/essaylens/internal/httpx"
)

// DefaultLanguage is the LanguageTool language code used when none is set.
const DefaultLanguage = "en-US"

// LanguageTool implements Checker against a LanguageTool server
// (POST /v2/check).
type LanguageTool struct {
	client   *httpx.Client
	baseURL  string
	language string
}

// NewLanguageTool creates a LanguageTool checker for the server at
// baseURL, e.g. http://localhost:8010.
func NewLanguageTool(baseURL, language string, hc *http.Client) *LanguageTool {
	if language == "" {
		language = DefaultLanguage
	}
	return &LanguageTool{client: httpx.New("grammar", hc), baseURL: baseURL, language: language}
}

type languageToolResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Context struct {
			Text   string `json:"text"`
			Offset int    `json:"offset"`
			Length int    `json:"length"`
		} `json:"context"`
		Rule struct {
			ID        string `json:"id"`
			IssueType string `json:"issueType"`
			Category  struct {
				ID string `json:"id"`
			} `json:"category"`
		} `json:"rule"`
	} `json:"matches"`
}

// Check posts text to /v2/check and converts each rule match.
func (lt *LanguageTool) Check(ctx context.Context, text string) ([]Match, error) {
	vals := url.Values{}
	vals.Set("language", lt.language)
	vals.Set("text", text)

	var resp languageToolResponse
	if err := lt.client.PostForm(ctx, httpx.Join(lt.baseURL, "/v2/check"), "languagetool /v2/check", vals, &resp); err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		repl := make([]string, 0, len(m.Replacements))
		for _, r := range m.Replacements {
			repl = append(repl, r.Value)
		}
		out = append(out, Match{
			Message:       m.Message,
			RuleID:        m.Rule.ID,
			IssueType:     m.Rule.IssueType,
			CategoryID:    m.Rule.Category.ID,
			Offset:        m.Offset,
			Length:        m.Length,
			Replacements:  repl,
			Context:       m.Context.Text,
			ContextOffset: m.Context.Offset,
		})
	}
	return out, nil
}

func (lt *LanguageTool) Backend() string { return "languagetool" }
