package excerpt

import "errors"

var (
	// ErrInvalidConfig indicates chunking parameters that cannot produce an
	// advancing token window. This is a caller programming error, not a
	// condition to retry.
	ErrInvalidConfig = errors.New("invalid chunking configuration")

	// ErrNegativeOffset is returned by minimap lookups for offsets < 0.
	ErrNegativeOffset = errors.New("offset must be >= 0")

	// ErrCodecRequired is returned when no token codec is provided.
	ErrCodecRequired = errors.New("token codec required")

	// ErrExtractorRequired is returned when no keyword extractor is provided.
	ErrExtractorRequired = errors.New("keyword extractor required")
)
