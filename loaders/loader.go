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


package loaders

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/lorecraft/core"
)

// Loader fetches documents from an external source.
type Loader interface {
	// Load fetches all documents the loader is configured for.
	Load(ctx context.Context) ([]*core.Document, error)
}

// Multi runs several loaders concurrently and concatenates their results.
// Document order follows the loader order, not completion order.
type Multi struct {
	loaders  []Loader
	poolSize int
	logger   *slog.Logger
}

// MultiOption customizes a Multi loader.
type MultiOption func(*Multi)

// WithConcurrency bounds how many loaders run at once.
func WithConcurrency(n int) MultiOption {
	return func(m *Multi) { m.poolSize = n }
}

// NewMulti creates a loader that fans out over the given loaders.
func NewMulti(loaders []Loader, opts ...MultiOption) *Multi {
	m := &Multi{
		loaders:  loaders,
		poolSize: 5,
		logger:   slog.Default().With("component", "loaders.multi"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load runs every loader on a bounded worker pool. A failing loader
// does not stop the others; all failures are joined into one error.
func (m *Multi) Load(ctx context.Context) ([]*core.Document, error) {
	if len(m.loaders) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(m.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([][]*core.Document, len(m.loaders))
	errs := make([]error, len(m.loaders))

	var wg sync.WaitGroup
	for i, loader := range m.loaders {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}

		wg.Add(1)
		i, loader := i, loader
		submitErr := pool.Submit(func() {
			defer wg.Done()
			docs, err := loader.Load(ctx)
			if err != nil {
				m.logger.Error("loader failed", "index", i, "error", err)
				errs[i] = err
				return
			}
			results[i] = docs
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	var docs []*core.Document
	for _, batch := range results {
		docs = append(docs, batch...)
	}
	return docs, errors.Join(errs...)
}
