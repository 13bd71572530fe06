// Package tiktoken provides a token.Codec backed by the tiktoken BPE
// vocabularies used by the OpenAI model family.
package tiktoken

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/poiesic/lorecraft/token"
)

// DefaultEncoding is the vocabulary used when none is specified.
const DefaultEncoding = "cl100k_base"

// Codec implements token.Codec over a tiktoken encoding.
type Codec struct {
	encoding *tiktoken.Tiktoken
	name     string
}

var _ token.Codec = (*Codec)(nil)

// New creates a codec for the named tiktoken encoding.
// The encoding data is fetched and cached by the tiktoken library on first use.
func New(encodingName string) (*Codec, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	return &Codec{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// Name returns the encoding name. Persisted excerpt sets are tied to it.
func (c *Codec) Name() string {
	return c.name
}

// Encode tokenizes text into BPE token ids.
func (c *Codec) Encode(text string) []int {
	return c.encoding.Encode(text, nil, nil)
}

// Decode reassembles text from BPE token ids.
func (c *Codec) Decode(ids []int) string {
	return c.encoding.Decode(ids)
}

// Count returns the number of BPE tokens in text.
func (c *Codec) Count(text string) int {
	return len(c.Encode(text))
}
