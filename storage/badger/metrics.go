package badger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/storage"
)

// MetricsRepository implements storage.MetricsRepository for BadgerDB.
type MetricsRepository struct {
	backend *Backend
}

var _ storage.MetricsRepository = (*MetricsRepository)(nil)

// NewMetricsRepository creates a new MetricsRepository.
func NewMetricsRepository(backend *Backend) (*MetricsRepository, error) {
	return &MetricsRepository{
		backend: backend,
	}, nil
}

// Close releases resources. MetricsRepository has no resources to release.
func (r *MetricsRepository) Close() error {
	return nil
}

// IncrementConcepts bumps the counter of every given concept.
func (r *MetricsRepository) IncrementConcepts(ctx context.Context, concepts []string) error {
	if len(concepts) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, concept := range concepts {
			if concept == "" {
				continue
			}
			key := makeConceptMetricKey(concept)

			metric := &core.ConceptMetric{Concept: concept}
			item, err := tx.Get(key)
			switch {
			case err == nil:
				if err := item.Value(func(val []byte) error {
					existing, err := storage.UnmarshalConceptMetric(val)
					if err != nil {
						return err
					}
					metric = existing
					return nil
				}); err != nil {
					return err
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}

			metric.Count++
			metric.UpdatedAt = now
			if err := tx.Set(key, storage.MarshalConceptMetric(metric)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ReadMetrics returns all concept counters, highest count first.
func (r *MetricsRepository) ReadMetrics(ctx context.Context) ([]*core.ConceptMetric, error) {
	var metrics []*core.ConceptMetric

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(conceptMetricPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				metric, err := storage.UnmarshalConceptMetric(val)
				if err != nil {
					return err
				}
				metrics = append(metrics, metric)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Count != metrics[j].Count {
			return metrics[i].Count > metrics[j].Count
		}
		return metrics[i].Concept < metrics[j].Concept
	})
	return metrics, nil
}

// RecordQuery stores a raw user question.
func (r *MetricsRepository) RecordQuery(ctx context.Context, query *core.QueryRecord) error {
	if query == nil || query.Text == "" {
		return storage.ErrInvalidQuery
	}

	if query.Id == "" {
		query.Id = uuid.NewString()
	}
	if query.AskedAt.IsZero() {
		query.AskedAt = time.Now().UTC()
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeQueryRecordKey(query.AskedAt, query.Id)
		if err := tx.Set(key, storage.MarshalQueryRecord(query)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecentQueries returns up to limit questions, newest first.
func (r *MetricsRepository) RecentQueries(ctx context.Context, limit int) ([]*core.QueryRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var records []*core.QueryRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(queryRecordPrefix + ":")
		// Keys embed the timestamp big-endian, so reverse iteration
		// yields newest first.
		opts.Reverse = true
		it := tx.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the whole prefix range.
		seek := append([]byte(queryRecordPrefix+":"), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

		for it.Seek(seek); it.Valid() && len(records) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalQueryRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}
