// Package mock provides a deterministic token.Codec for tests.
package mock

import (
	"strings"
	"sync"
	"unicode"

	"github.com/poiesic/lorecraft/token"
)

// Codec is a test double for token.Codec. It treats each word together with
// its trailing whitespace as one token, so Decode(Encode(s)) == s exactly and
// token counts are easy to reason about in tests.
type Codec struct {
	mu    sync.Mutex
	ids   map[string]int
	vocab []string
}

var _ token.Codec = (*Codec)(nil)

// NewCodec creates an empty mock codec. Ids are assigned on first sight,
// so a single codec instance must be shared by Encode and Decode callers.
func NewCodec() *Codec {
	return &Codec{
		ids: make(map[string]int),
	}
}

// Encode splits text into word tokens and assigns stable ids.
func (c *Codec) Encode(text string) []int {
	segments := segment(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]int, 0, len(segments))
	for _, s := range segments {
		id, ok := c.ids[s]
		if !ok {
			id = len(c.vocab)
			c.ids[s] = id
			c.vocab = append(c.vocab, s)
		}
		out = append(out, id)
	}
	return out
}

// Decode concatenates the segments the given ids were assigned to.
func (c *Codec) Decode(ids []int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sb strings.Builder
	for _, id := range ids {
		if id >= 0 && id < len(c.vocab) {
			sb.WriteString(c.vocab[id])
		}
	}
	return sb.String()
}

// Count returns the number of word tokens in text.
func (c *Codec) Count(text string) int {
	return len(segment(text))
}

// segment splits text into tokens such that their concatenation reproduces
// the input exactly: each token is a run of non-space runes plus any
// whitespace that follows it. Leading whitespace forms a token of its own.
func segment(text string) []string {
	var segments []string
	runes := []rune(text)

	i := 0
	for i < len(runes) {
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		segments = append(segments, string(runes[start:i]))
	}
	return segments
}
