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


// Package qdrant implements vectorstore.Store on a Qdrant collection.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"

	"github.com/poiesic/lorecraft/ai"
	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/vectorstore"
)

const (
	// DefaultCollection is the collection name used when none is configured.
	DefaultCollection = "lorecraft"

	// DefaultVectorSize matches the embedding dimension of the default
	// embedding model.
	DefaultVectorSize = 768
)

// payload keys stored alongside each point.
const (
	payloadText   = "text"
	payloadTitle  = "title"
	payloadLink   = "link"
	payloadSource = "source"
	payloadParent = "parent_id"
)

// Config holds connection settings for a Qdrant store.
type Config struct {
	Host       string
	Port       int
	Collection string
	VectorSize int
}

// ConfigOption customizes a Config.
type ConfigOption func(*Config)

// WithHost sets the Qdrant gRPC host.
func WithHost(host string) ConfigOption {
	return func(c *Config) { c.Host = host }
}

// WithPort sets the Qdrant gRPC port.
func WithPort(port int) ConfigOption {
	return func(c *Config) { c.Port = port }
}

// WithCollection sets the collection name.
func WithCollection(name string) ConfigOption {
	return func(c *Config) { c.Collection = name }
}

// WithVectorSize sets the embedding dimension the collection is created with.
func WithVectorSize(size int) ConfigOption {
	return func(c *Config) { c.VectorSize = size }
}

// DefaultConfig returns a config pointing at a local Qdrant instance.
func DefaultConfig() *Config {
	return &Config{
		Host:       "localhost",
		Port:       6334,
		Collection: DefaultCollection,
		VectorSize: DefaultVectorSize,
	}
}

// NewConfig builds a config from defaults plus the given options.
func NewConfig(opts ...ConfigOption) *Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Store is a vectorstore.Store backed by a Qdrant collection.
// Document text is embedded through the configured ai.Embedder.
type Store struct {
	client     *qdrant.Client
	embedder   ai.Embedder
	collection string
	vectorSize int
	logger     *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// NewStore connects to Qdrant and ensures the configured collection
// exists with a cosine-distance vector index.
func NewStore(ctx context.Context, embedder ai.Embedder, opts ...ConfigOption) (*Store, error) {
	if embedder == nil {
		return nil, vectorstore.ErrEmbedderRequired
	}

	config := NewConfig(opts...)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: config.Host,
		Port: config.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &Store{
		client:     client,
		embedder:   embedder,
		collection: config.Collection,
		vectorSize: config.VectorSize,
		logger:     slog.Default().With("component", "vectorstore.qdrant"),
	}

	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	s.logger.Info("creating collection", "collection", s.collection, "vector_size", s.vectorSize)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Add embeds the documents and upserts them as points keyed by
// document id. Re-adding a document overwrites its previous point.
func (s *Store) Add(ctx context.Context, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}
		texts[i] = doc.Text
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(embeddings), len(docs))
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(doc.Id)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(documentPayload(doc)),
		})
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	s.logger.Debug("upserted documents", "collection", s.collection, "count", len(docs))
	return nil
}

// Query embeds the text and returns up to n nearest documents.
func (s *Store) Query(ctx context.Context, text string, n int) ([]vectorstore.Match, error) {
	if text == "" || n <= 0 {
		return nil, vectorstore.ErrInvalidQuery
	}

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := uint64(n)
	scored, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	matches := make([]vectorstore.Match, 0, len(scored))
	for _, point := range scored {
		match := vectorstore.Match{Score: point.Score}
		if point.Id != nil {
			match.Id = core.ID(point.Id.GetNum())
		}
		if point.Payload != nil {
			applyPayload(&match, point.Payload)
		}
		matches = append(matches, match)
	}

	s.logger.Debug("query completed", "collection", s.collection, "n", n, "matches", len(matches))
	return matches, nil
}

// Reset drops the collection and recreates it empty.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return s.ensureCollection(ctx)
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// documentPayload flattens the metadata fields stored with each point.
func documentPayload(doc *core.Document) map[string]any {
	payload := map[string]any{
		payloadText: doc.Text,
	}
	if doc.Metadata.Title != "" {
		payload[payloadTitle] = doc.Metadata.Title
	}
	if doc.Metadata.Link != "" {
		payload[payloadLink] = doc.Metadata.Link
	}
	if doc.Metadata.Source != "" {
		payload[payloadSource] = doc.Metadata.Source
	}
	if doc.ParentDocumentId != 0 {
		// Qdrant integers are signed; the id round-trips through int64.
		payload[payloadParent] = int64(doc.ParentDocumentId)
	}
	return payload
}

// applyPayload restores match fields from a point payload.
func applyPayload(match *vectorstore.Match, payload map[string]*qdrant.Value) {
	for key, value := range payload {
		if value == nil {
			continue
		}
		switch key {
		case payloadText:
			match.Text = value.GetStringValue()
		case payloadTitle:
			match.Metadata.Title = value.GetStringValue()
		case payloadLink:
			match.Metadata.Link = value.GetStringValue()
		case payloadSource:
			match.Metadata.Source = value.GetStringValue()
		case payloadParent:
			match.ParentDocumentId = core.ID(uint64(value.GetIntegerValue()))
		}
	}
}
