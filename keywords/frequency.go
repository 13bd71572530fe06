package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultTopN is the number of keywords returned when none is configured.
const DefaultTopN = 10

// FrequencyExtractor ranks single-word terms by occurrence count, stopwords
// filtered. Ties resolve to the term seen first, keeping output
// deterministic for identical input.
type FrequencyExtractor struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	topN         int
}

var _ Extractor = (*FrequencyExtractor)(nil)

// Option configures a FrequencyExtractor.
type Option func(*FrequencyExtractor)

// WithTopN sets how many keywords Extract returns.
func WithTopN(n int) Option {
	return func(e *FrequencyExtractor) {
		if n > 0 {
			e.topN = n
		}
	}
}

// WithStopwords replaces the default stopword set.
func WithStopwords(words []string) Option {
	return func(e *FrequencyExtractor) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			m[strings.ToLower(w)] = struct{}{}
		}
		e.stopwords = m
	}
}

// NewFrequencyExtractor creates a frequency-based unigram keyword extractor.
func NewFrequencyExtractor(opts ...Option) *FrequencyExtractor {
	e := &FrequencyExtractor{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
		topN:         DefaultTopN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the topN most frequent non-stopword terms in text,
// lowercased, most frequent first.
func (e *FrequencyExtractor) Extract(text string) ([]string, error) {
	type term struct {
		word  string
		count int
		first int // position of first occurrence, for deterministic ties
	}

	counts := make(map[string]*term)
	var order []*term

	for i, tok := range e.tokens(text) {
		if _, ok := e.stopwords[tok]; ok {
			continue
		}
		if len(tok) < 2 {
			continue
		}
		t, ok := counts[tok]
		if !ok {
			t = &term{word: tok, first: i}
			counts[tok] = t
			order = append(order, t)
		}
		t.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	n := e.topN
	if n > len(order) {
		n = len(order)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = order[i].word
	}
	return out, nil
}

func (e *FrequencyExtractor) tokens(text string) []string {
	return e.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
		"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this",
		"that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than",
		"so", "such", "into", "about", "between", "through", "during", "before", "after", "above",
		"below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now",
		"i", "you", "he", "she", "we", "they", "what", "which", "who", "when", "where", "why", "how",
		"not", "no", "do", "does", "did", "have", "has", "had", "my", "your", "its", "our", "their",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
