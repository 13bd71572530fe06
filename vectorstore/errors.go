package vectorstore

import "errors"

var (
	// ErrEmbedderRequired is returned when a store is constructed
	// without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidQuery is returned for queries with an empty text or a
	// non-positive result count.
	ErrInvalidQuery = errors.New("invalid query")
)
