// Package topics extracts key phrases from a text with an embedding model
// and gates the expensive lecture/essay similarity call on topic overlap.
package topics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/essaylens/internal/embed"
	"github.com/abhisek/essaylens/internal/logging"
)

// DefaultTopN is the number of topics kept per text.
const DefaultTopN = 3

// Preprocess lowercases text, collapses whitespace runs to one space and
// trims the ends.
func Preprocess(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Candidates builds the candidate phrases for a preprocessed text: its
// unique tokens in first-occurrence order, paired with their neighbour in
// that sequence.
func Candidates(pre string) []string {
	seen := map[string]struct{}{}
	var uniq []string
	for _, tok := range strings.Fields(pre) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		uniq = append(uniq, tok)
	}
	if len(uniq) < 2 {
		return nil
	}
	out := make([]string, 0, len(uniq)-1)
	for i := 0; i+1 < len(uniq); i++ {
		out = append(out, uniq[i]+" "+uniq[i+1])
	}
	return out
}

// Extractor ranks candidate phrases by similarity to the whole document.
type Extractor struct {
	embedder embed.Embedder
	topN     int
}

// NewExtractor creates an Extractor keeping topN topics (DefaultTopN if
// topN <= 0).
func NewExtractor(e embed.Embedder, topN int) *Extractor {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Extractor{embedder: e, topN: topN}
}

// Extract returns up to topN candidate phrases of text, most similar to
// the document first. Ties keep candidate order. A text with no
// candidates yields no topics and no embedding call.
func (x *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	pre := Preprocess(text)
	cands := Candidates(pre)
	if len(cands) == 0 {
		return []string{}, nil
	}

	inputs := make([]string, 0, len(cands)+1)
	inputs = append(inputs, pre)
	inputs = append(inputs, cands...)
	vecs, err := x.embedder.Embed(logging.WithPurpose(ctx, "topics"), inputs)
	if err != nil {
		return nil, fmt.Errorf("embed topic candidates: %w", err)
	}
	if err := embed.CheckBatch("topics", len(inputs), vecs); err != nil {
		return nil, err
	}

	type scored struct {
		phrase string
		sim    float64
	}
	ranked := make([]scored, len(cands))
	for i, c := range cands {
		ranked[i] = scored{phrase: c, sim: embed.Cosine(vecs[i+1], vecs[0])}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })

	n := min(x.topN, len(ranked))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].phrase
	}
	return out, nil
}

// Overlap reports whether any lecture topic is a substring of any essay
// topic or the other way round. Matching is exact and case-sensitive.
func Overlap(lectureTopics, essayTopics []string) bool {
	for _, lt := range lectureTopics {
		for _, et := range essayTopics {
			if strings.Contains(et, lt) || strings.Contains(lt, et) {
				return true
			}
		}
	}
	return false
}
