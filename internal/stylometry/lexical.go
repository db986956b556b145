package stylometry

import (
	"unicode/utf8"

	"github.com/abhisek/essaylens/internal/stats"
)

// LexicalStats are the surface statistics of a text. TotalWords counts
// tokens and is independent of the typing log's word count.
type LexicalStats struct {
	TotalSentences    int     `json:"total_sentences"`
	TotalWords        int     `json:"total_words"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
	PunctuationCount  int     `json:"punctuation_count"`
	LexicalDiversity  float64 `json:"lexical_diversity"`
}

// Lexical computes LexicalStats. Every field is 0 for empty text.
func Lexical(text string) LexicalStats {
	tokens := Words(text)
	sents := Sentences(text)

	sentLens := make([]int, len(sents))
	for i, s := range sents {
		sentLens[i] = len(Words(s))
	}

	var (
		wordLens []int
		punct    int
		unique   = make(map[string]struct{}, len(tokens))
	)
	for _, tok := range tokens {
		unique[tok] = struct{}{}
		if isAlpha(tok) {
			wordLens = append(wordLens, utf8.RuneCountInString(tok))
		}
		if isPunct(tok) {
			punct++
		}
	}

	return LexicalStats{
		TotalSentences:    len(sents),
		TotalWords:        len(tokens),
		AvgSentenceLength: stats.Mean(sentLens),
		AvgWordLength:     stats.Mean(wordLens),
		PunctuationCount:  punct,
		LexicalDiversity:  stats.Ratio(float64(len(unique)), float64(len(tokens))),
	}
}
