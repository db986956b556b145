package similarity

import (
	"context"
	"strings"
	"unicode"
)

// Lexical scores pairs by the Jaccard overlap of their lowercased word
// sets. It needs no model and is only a rough offline stand-in.
type Lexical struct{}

// Score returns the Jaccard index of the word sets; blank input scores 0.
func (Lexical) Score(_ context.Context, a, b string) (float64, error) {
	sa, sb := wordSet(a), wordSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0, nil
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union), nil
}

func (Lexical) Backend() string { return "lexical" }

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = struct{}{}
	}
	return set
}

// Fixed always returns Value (or Err). Use it in tests and dry runs.
type Fixed struct {
	Value float64
	Err   error
}

// Score returns Value and Err.
func (f Fixed) Score(context.Context, string, string) (float64, error) {
	return f.Value, f.Err
}

func (Fixed) Backend() string { return "fixed" }
