// Package mock provides an in-memory vectorstore.Store test double.
package mock

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/poiesic/lorecraft/ai"
	aimock "github.com/poiesic/lorecraft/ai/mock"
	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/vectorstore"
)

// MockStore implements vectorstore.Store in memory using cosine
// similarity over embeddings from the configured embedder.
type MockStore struct {
	// AddFunc overrides Add if set.
	AddFunc func(ctx context.Context, docs []*core.Document) error

	// QueryFunc overrides Query if set.
	QueryFunc func(ctx context.Context, text string, n int) ([]vectorstore.Match, error)

	embedder ai.Embedder

	mu      sync.Mutex
	entries map[core.ID]entry
}

type entry struct {
	doc    *core.Document
	vector []float32
}

var _ vectorstore.Store = (*MockStore)(nil)

// NewMockStore creates an empty in-memory store backed by the mock embedder.
func NewMockStore() *MockStore {
	return NewMockStoreWithEmbedder(aimock.NewMockEmbedder())
}

// NewMockStoreWithEmbedder creates an empty in-memory store that embeds
// with the given embedder.
func NewMockStoreWithEmbedder(embedder ai.Embedder) *MockStore {
	return &MockStore{
		embedder: embedder,
		entries:  make(map[core.ID]entry),
	}
}

// Add embeds and stores the documents, overwriting entries with the same id.
func (s *MockStore) Add(ctx context.Context, docs []*core.Document) error {
	if s.AddFunc != nil {
		return s.AddFunc(ctx, docs)
	}

	for _, doc := range docs {
		vector, err := s.embedder.EmbedText(ctx, doc.Text)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.entries[doc.Id] = entry{doc: doc, vector: vector}
		s.mu.Unlock()
	}
	return nil
}

// Query returns up to n stored documents ranked by cosine similarity.
func (s *MockStore) Query(ctx context.Context, text string, n int) ([]vectorstore.Match, error) {
	if s.QueryFunc != nil {
		return s.QueryFunc(ctx, text, n)
	}
	if text == "" || n <= 0 {
		return nil, vectorstore.ErrInvalidQuery
	}

	query, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	matches := make([]vectorstore.Match, 0, len(s.entries))
	for _, e := range s.entries {
		matches = append(matches, vectorstore.Match{
			Id:               e.doc.Id,
			Score:            cosine(query, e.vector),
			Text:             e.doc.Text,
			Metadata:         e.doc.Metadata,
			ParentDocumentId: e.doc.ParentDocumentId,
		})
	}
	s.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Id < matches[j].Id
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Reset drops all stored documents.
func (s *MockStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.entries = make(map[core.ID]entry)
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the mock store.
func (s *MockStore) Close() error {
	return nil
}

// Len returns the number of stored documents.
func (s *MockStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get returns the stored document for id, or nil.
func (s *MockStore) Get(id core.ID) *core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e.doc
	}
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
