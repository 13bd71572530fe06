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


// Package lorecraft wires the knowledge-base components into one
// application object: token codec, excerpt generator, vector store,
// AI provider, and the local metrics/fingerprint storage.
package lorecraft

import (
	"context"
	"log/slog"

	"github.com/poiesic/lorecraft/ai"
	"github.com/poiesic/lorecraft/ai/openai"
	"github.com/poiesic/lorecraft/config"
	"github.com/poiesic/lorecraft/excerpt"
	"github.com/poiesic/lorecraft/keywords"
	"github.com/poiesic/lorecraft/storage"
	storebadger "github.com/poiesic/lorecraft/storage/badger"
	"github.com/poiesic/lorecraft/token/tiktoken"
	"github.com/poiesic/lorecraft/vectorstore"
	"github.com/poiesic/lorecraft/vectorstore/qdrant"
)

// App aggregates the long-lived components of the knowledge base.
type App struct {
	config *config.Config

	backend      *storebadger.Backend
	metrics      storage.MetricsRepository
	fingerprints storage.FingerprintRepository

	provider  ai.Provider
	store     vectorstore.Store
	generator *excerpt.Generator
	extractor keywords.Extractor

	logger *slog.Logger
}

// NewApp builds the application from configuration. It connects to
// Qdrant and opens the local database, so it needs both reachable.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	backend, err := storebadger.OpenBackend(cfg.DBPath, false)
	if err != nil {
		return nil, err
	}

	metrics, err := storebadger.NewMetricsRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	fingerprints, err := storebadger.NewFingerprintRepository(backend)
	if err != nil {
		metrics.Close()
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(ai.NewConfig(
		ai.WithEmbeddingHost(cfg.EmbeddingHost),
		ai.WithChatHost(cfg.ChatHost),
		ai.WithEmbeddingModel(cfg.EmbeddingModel),
		ai.WithChatModel(cfg.ChatModel),
		ai.WithAPIKey(cfg.AIAPIKey),
	))
	if err != nil {
		fingerprints.Close()
		metrics.Close()
		backend.Close()
		return nil, err
	}

	store, err := qdrant.NewStore(ctx, provider.Embedder(),
		qdrant.WithHost(cfg.QdrantHost),
		qdrant.WithPort(cfg.QdrantPort),
		qdrant.WithCollection(cfg.QdrantCollection),
		qdrant.WithVectorSize(cfg.QdrantVectorSize),
	)
	if err != nil {
		provider.Close()
		fingerprints.Close()
		metrics.Close()
		backend.Close()
		return nil, err
	}

	codec, err := tiktoken.New(tiktoken.DefaultEncoding)
	if err != nil {
		store.Close()
		provider.Close()
		fingerprints.Close()
		metrics.Close()
		backend.Close()
		return nil, err
	}

	extractor := keywords.NewFrequencyExtractor()
	generator, err := excerpt.NewGenerator(codec, extractor)
	if err != nil {
		store.Close()
		provider.Close()
		fingerprints.Close()
		metrics.Close()
		backend.Close()
		return nil, err
	}

	return &App{
		config:       cfg,
		backend:      backend,
		metrics:      metrics,
		fingerprints: fingerprints,
		provider:     provider,
		store:        store,
		generator:    generator,
		extractor:    extractor,
		logger:       slog.Default(),
	}, nil
}

// Close releases every component. Errors are logged; the first storage
// error is returned.
func (a *App) Close() error {
	a.generator.Release()

	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing vector store", "err", err)
	}
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.fingerprints.Close(); err != nil {
		a.logger.Error("error closing fingerprint repository", "err", err)
		return err
	}
	if err := a.metrics.Close(); err != nil {
		a.logger.Error("error closing metrics repository", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Store returns the vector store.
func (a *App) Store() vectorstore.Store {
	return a.store
}

// Generator returns the excerpt generator.
func (a *App) Generator() *excerpt.Generator {
	return a.generator
}

// Provider returns the AI provider.
func (a *App) Provider() ai.Provider {
	return a.provider
}

// Extractor returns the keyword extractor.
func (a *App) Extractor() keywords.Extractor {
	return a.extractor
}

// MetricsRepository returns the question-metrics repository.
func (a *App) MetricsRepository() storage.MetricsRepository {
	return a.metrics
}

// FingerprintRepository returns the source-fingerprint repository.
func (a *App) FingerprintRepository() storage.FingerprintRepository {
	return a.fingerprints
}
