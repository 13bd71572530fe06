package excerpt

import (
	"fmt"
	"unicode/utf8"

	"github.com/poiesic/lorecraft/token"
)

// Chunking defaults, expressed in tokens of the configured codec.
const (
	DefaultChunkSize      = 300
	DefaultOverlap        = 0.1
	DefaultMergeThreshold = 0.25
)

// Chunk is a token-window slice of a document's text. Offset is the
// character position of the chunk start in the original text, measured as
// the rune length of the detokenized prefix before the window.
type Chunk struct {
	Text   string
	Offset int
}

// SplitOption configures Split.
type SplitOption func(*splitConfig)

type splitConfig struct {
	chunkSize      int
	overlap        float64
	mergeThreshold float64
}

// SplitChunkSize sets the token window size. Must be > 0.
func SplitChunkSize(size int) SplitOption {
	return func(c *splitConfig) {
		c.chunkSize = size
	}
}

// SplitOverlap sets the fraction of each window repeated in the next,
// in [0, 1].
func SplitOverlap(overlap float64) SplitOption {
	return func(c *splitConfig) {
		c.overlap = overlap
	}
}

// SplitMergeThreshold sets the minimum fractional size (relative to the
// window size) a trailing chunk must have to remain standalone, in [0, 1].
// A smaller trailing chunk is absorbed into its predecessor.
func SplitMergeThreshold(threshold float64) SplitOption {
	return func(c *splitConfig) {
		c.mergeThreshold = threshold
	}
}

func (c *splitConfig) validate() error {
	if c.chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be > 0, got %d", ErrInvalidConfig, c.chunkSize)
	}
	if c.overlap < 0 || c.overlap > 1 {
		return fmt.Errorf("%w: overlap must be in [0, 1], got %v", ErrInvalidConfig, c.overlap)
	}
	if c.mergeThreshold < 0 || c.mergeThreshold > 1 {
		return fmt.Errorf("%w: merge threshold must be in [0, 1], got %v", ErrInvalidConfig, c.mergeThreshold)
	}
	return nil
}

// step is the window advance: chunkSize minus the floored overlap tokens.
func (c *splitConfig) step() int {
	return c.chunkSize - int(c.overlap*float64(c.chunkSize))
}

// Split cuts text into token-bounded, overlapping chunks.
//
// The token sequence is walked in windows of the configured size, advancing
// by chunkSize − floor(overlap×chunkSize) tokens. Each chunk's offset is the
// rune length of the detokenized tokens before its window, so offsets index
// into the original text and are strictly increasing. If the final window
// holds fewer than chunkSize×mergeThreshold tokens and at least one window
// precedes it, its tokens are absorbed into the previous chunk.
//
// Empty text yields no chunks. A window that would not advance (step < 1,
// e.g. overlap of 1 with a small window) yields ErrInvalidConfig rather
// than looping.
func Split(codec token.Codec, text string, opts ...SplitOption) ([]Chunk, error) {
	if codec == nil {
		return nil, ErrCodecRequired
	}

	cfg := splitConfig{
		chunkSize:      DefaultChunkSize,
		overlap:        DefaultOverlap,
		mergeThreshold: DefaultMergeThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	step := cfg.step()
	if step < 1 {
		return nil, fmt.Errorf("%w: overlap %v of chunk size %d leaves a non-advancing window",
			ErrInvalidConfig, cfg.overlap, cfg.chunkSize)
	}

	tokens := codec.Encode(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	type window struct {
		ids    []int
		offset int
	}

	var windows []window
	for i := 0; i < len(tokens); i += step {
		end := i + cfg.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		windows = append(windows, window{
			ids:    tokens[i:end:end],
			offset: utf8.RuneCountInString(codec.Decode(tokens[:i])),
		})
	}

	// Absorb an undersized trailing window into its predecessor. The
	// comparison is strict: a trailing window of exactly
	// chunkSize×mergeThreshold tokens stays standalone.
	if len(windows) > 1 {
		last := windows[len(windows)-1]
		if float64(len(last.ids)) < float64(cfg.chunkSize)*cfg.mergeThreshold {
			prev := &windows[len(windows)-2]
			merged := make([]int, 0, len(prev.ids)+len(last.ids))
			merged = append(merged, prev.ids...)
			merged = append(merged, last.ids...)
			prev.ids = merged
			windows = windows[:len(windows)-1]
		}
	}

	chunks := make([]Chunk, len(windows))
	for i, w := range windows {
		chunks[i] = Chunk{Text: codec.Decode(w.ids), Offset: w.offset}
	}
	return chunks, nil
}
