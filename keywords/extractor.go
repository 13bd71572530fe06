// Package keywords extracts representative keywords from text for excerpt
// annotation and question classification.
package keywords

// Extractor produces an ordered sequence of keywords for a text, most
// relevant first. Implementations must be thread-safe for concurrent use.
type Extractor interface {
	Extract(text string) ([]string, error)
}
