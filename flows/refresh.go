// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/excerpt"
	"github.com/poiesic/lorecraft/loaders"
	"github.com/poiesic/lorecraft/storage"
	"github.com/poiesic/lorecraft/vectorstore"
)

// RefreshStats summarizes a knowledge-base refresh run.
type RefreshStats struct {
	// Loaded is how many source documents the loaders produced.
	Loaded int

	// Skipped is how many sources were unchanged since the last run.
	Skipped int

	// Indexed is how many excerpts were added to the vector store.
	Indexed int
}

// Refresher rebuilds the knowledge base from the configured loaders.
type Refresher struct {
	loader       loaders.Loader
	generator    *excerpt.Generator
	store        vectorstore.Store
	fingerprints storage.FingerprintRepository
	wipe         bool
	logger       *slog.Logger
}

// RefresherOption customizes a Refresher.
type RefresherOption func(*Refresher)

// WithWipe drops the whole collection before indexing, forcing a full
// rebuild. Fingerprint skipping is disabled for the run.
func WithWipe() RefresherOption {
	return func(r *Refresher) { r.wipe = true }
}

// WithFingerprints enables change detection: sources whose content
// hash matches the stored fingerprint are not re-indexed.
func WithFingerprints(repo storage.FingerprintRepository) RefresherOption {
	return func(r *Refresher) { r.fingerprints = repo }
}

// NewRefresher wires a refresh flow over the given collaborators.
func NewRefresher(loader loaders.Loader, generator *excerpt.Generator, store vectorstore.Store, opts ...RefresherOption) *Refresher {
	refresher := &Refresher{
		loader:    loader,
		generator: generator,
		store:     store,
		logger:    slog.Default().With("component", "flows.refresh"),
	}
	for _, opt := range opts {
		opt(refresher)
	}
	return refresher
}

// Run loads all sources, generates excerpts for the changed ones, and
// indexes them. Loader failures don't abort the run; whatever loaded
// is still indexed and the failures are joined into the returned error.
func (r *Refresher) Run(ctx context.Context) (*RefreshStats, error) {
	stats := &RefreshStats{}

	docs, loadErr := r.loader.Load(ctx)
	if loadErr != nil && len(docs) == 0 {
		return stats, loadErr
	}
	stats.Loaded = len(docs)
	r.logger.Info("loaded source documents", "count", len(docs))

	if r.wipe {
		if err := r.store.Reset(ctx); err != nil {
			return stats, fmt.Errorf("failed to reset collection: %w", err)
		}
		r.logger.Info("collection wiped")
	}

	var errs []error
	if loadErr != nil {
		errs = append(errs, loadErr)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		changed, err := r.changed(ctx, doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !changed {
			stats.Skipped++
			continue
		}

		excerpts, err := r.generator.Excerpts(ctx, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to generate excerpts for %s: %w", doc.Metadata.Link, err))
			continue
		}
		if len(excerpts) == 0 {
			continue
		}

		if err := r.store.Add(ctx, excerpts); err != nil {
			errs = append(errs, fmt.Errorf("failed to index %s: %w", doc.Metadata.Link, err))
			continue
		}
		stats.Indexed += len(excerpts)

		if err := r.remember(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}

	r.logger.Info("refresh finished",
		"loaded", stats.Loaded, "skipped", stats.Skipped, "indexed", stats.Indexed)
	return stats, errors.Join(errs...)
}

// changed reports whether doc needs re-indexing. Without a fingerprint
// repository every document counts as changed. A wipe run re-indexes
// everything regardless of fingerprints.
func (r *Refresher) changed(ctx context.Context, doc *core.Document) (bool, error) {
	if r.fingerprints == nil || r.wipe || doc.Metadata.Link == "" {
		return true, nil
	}

	fingerprint, err := r.fingerprints.GetFingerprint(ctx, doc.Metadata.Link)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return fingerprint.Hash != doc.Hash(), nil
}

func (r *Refresher) remember(ctx context.Context, doc *core.Document) error {
	if r.fingerprints == nil || doc.Metadata.Link == "" {
		return nil
	}
	return r.fingerprints.PutFingerprint(ctx, &core.Fingerprint{
		Link: doc.Metadata.Link,
		Hash: doc.Hash(),
	})
}
