// Package token defines the tokenizer collaborator used for chunking.
//
// A Codec must be deterministic and stable: changing the vocabulary changes
// chunk boundaries and offsets for previously generated excerpts, so any
// persisted excerpt set is implicitly tied to a codec version.
package token

// Codec converts between text and token id sequences.
// Implementations must be thread-safe for concurrent use.
type Codec interface {
	// Encode tokenizes text into a sequence of token ids.
	Encode(text string) []int

	// Decode reassembles text from a sequence of token ids.
	// Decode(Encode(s)) must reproduce s for any text the codec accepts,
	// or be consistently lossy in the same way on every call.
	Decode(ids []int) string

	// Count returns the number of tokens in text.
	Count(text string) int
}
