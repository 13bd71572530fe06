package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/storage"
)

// FingerprintRepository implements storage.FingerprintRepository for BadgerDB.
type FingerprintRepository struct {
	backend *Backend
}

var _ storage.FingerprintRepository = (*FingerprintRepository)(nil)

// NewFingerprintRepository creates a new FingerprintRepository.
func NewFingerprintRepository(backend *Backend) (*FingerprintRepository, error) {
	return &FingerprintRepository{
		backend: backend,
	}, nil
}

// Close releases resources. FingerprintRepository has no resources to release.
func (r *FingerprintRepository) Close() error {
	return nil
}

// GetFingerprint returns the stored fingerprint for a source link.
func (r *FingerprintRepository) GetFingerprint(ctx context.Context, link string) (*core.Fingerprint, error) {
	if link == "" {
		return nil, storage.ErrInvalidQuery
	}

	var fingerprint *core.Fingerprint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFingerprintKey(link))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			fingerprint, err = storage.UnmarshalFingerprint(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return fingerprint, nil
}

// PutFingerprint stores or replaces the fingerprint for a link.
func (r *FingerprintRepository) PutFingerprint(ctx context.Context, fingerprint *core.Fingerprint) error {
	if fingerprint == nil || fingerprint.Link == "" {
		return storage.ErrInvalidQuery
	}

	if fingerprint.IndexedAt.IsZero() {
		fingerprint.IndexedAt = time.Now().UTC()
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFingerprintKey(fingerprint.Link)
		if err := tx.Set(key, storage.MarshalFingerprint(fingerprint)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteFingerprint removes the fingerprint for a link.
func (r *FingerprintRepository) DeleteFingerprint(ctx context.Context, link string) error {
	if link == "" {
		return storage.ErrInvalidQuery
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFingerprintKey(link)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
