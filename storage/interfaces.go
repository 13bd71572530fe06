package storage

import (
	"context"

	"github.com/poiesic/lorecraft/core"
)

// MetricsRepository tracks which concepts users ask about and keeps a
// log of the raw questions. Implementations must be safe for
// concurrent use.
type MetricsRepository interface {
	// IncrementConcepts bumps the counter of every given concept,
	// creating counters that don't exist yet.
	IncrementConcepts(ctx context.Context, concepts []string) error

	// ReadMetrics returns all concept counters ordered by count
	// descending, then by concept name for stable output.
	ReadMetrics(ctx context.Context) ([]*core.ConceptMetric, error)

	// RecordQuery stores a raw user question. A missing id is
	// generated; a zero AskedAt is set to now.
	RecordQuery(ctx context.Context, query *core.QueryRecord) error

	// RecentQueries returns up to limit of the most recently asked
	// questions, newest first.
	RecentQueries(ctx context.Context, limit int) ([]*core.QueryRecord, error)

	// Close releases resources held by the repository.
	Close() error
}

// FingerprintRepository remembers the content hash of every indexed
// source document so refresh runs can skip unchanged sources.
type FingerprintRepository interface {
	// GetFingerprint returns the stored fingerprint for a source link.
	// Returns ErrNotFound when the link was never indexed.
	GetFingerprint(ctx context.Context, link string) (*core.Fingerprint, error)

	// PutFingerprint stores or replaces the fingerprint for a link.
	// A zero IndexedAt is set to now.
	PutFingerprint(ctx context.Context, fingerprint *core.Fingerprint) error

	// DeleteFingerprint removes the fingerprint for a link.
	// Returns ErrNotFound when none exists.
	DeleteFingerprint(ctx context.Context, link string) error

	// Close releases resources held by the repository.
	Close() error
}
