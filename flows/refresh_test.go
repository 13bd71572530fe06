package flows

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/excerpt"
	"github.com/poiesic/lorecraft/keywords"
	"github.com/poiesic/lorecraft/loaders"
	"github.com/poiesic/lorecraft/storage/badger"
	tokenmock "github.com/poiesic/lorecraft/token/mock"
	storemock "github.com/poiesic/lorecraft/vectorstore/mock"
)

type stubLoader struct {
	docs  []*core.Document
	err   error
	calls int
}

func (s *stubLoader) Load(ctx context.Context) ([]*core.Document, error) {
	s.calls++
	return s.docs, s.err
}

func newTestGenerator(t *testing.T) *excerpt.Generator {
	t.Helper()

	generator, err := excerpt.NewGenerator(tokenmock.NewCodec(), keywords.NewFrequencyExtractor(),
		excerpt.WithChunkSize(20),
	)
	require.NoError(t, err)
	t.Cleanup(generator.Release)
	return generator
}

func sourceDoc(t *testing.T, link string, paragraphs int) *core.Document {
	t.Helper()

	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "paragraph %d about workflow orchestration and scheduling. ", i)
	}
	return core.NewDocument(sb.String(), core.Metadata{
		Link:   link,
		Source: "web",
	})
}

func TestRefresher_Run(t *testing.T) {
	doc := sourceDoc(t, "https://example.com/a", 10)
	loader := &stubLoader{docs: []*core.Document{doc}}
	store := storemock.NewMockStore()

	refresher := NewRefresher(loader, newTestGenerator(t), store)

	stats, err := refresher.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Loaded)
	assert.Equal(t, 0, stats.Skipped)
	assert.Greater(t, stats.Indexed, 1, "long document yields several excerpts")
	assert.Equal(t, stats.Indexed, store.Len())
}

func TestRefresher_SkipsUnchangedSources(t *testing.T) {
	_, fingerprints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	doc := sourceDoc(t, "https://example.com/a", 10)
	loader := &stubLoader{docs: []*core.Document{doc}}
	store := storemock.NewMockStore()

	refresher := NewRefresher(loader, newTestGenerator(t), store,
		WithFingerprints(fingerprints),
	)

	ctx := context.Background()
	first, err := refresher.Run(ctx)
	require.NoError(t, err)
	assert.Greater(t, first.Indexed, 0)

	second, err := refresher.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Indexed)
}

func TestRefresher_ReindexesChangedSources(t *testing.T) {
	_, fingerprints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	loader := &stubLoader{docs: []*core.Document{sourceDoc(t, "https://example.com/a", 10)}}
	store := storemock.NewMockStore()
	refresher := NewRefresher(loader, newTestGenerator(t), store,
		WithFingerprints(fingerprints),
	)

	ctx := context.Background()
	_, err = refresher.Run(ctx)
	require.NoError(t, err)

	// Same link, different content.
	loader.docs = []*core.Document{sourceDoc(t, "https://example.com/a", 12)}

	stats, err := refresher.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Skipped)
	assert.Greater(t, stats.Indexed, 0)
}

func TestRefresher_WipeResetsStore(t *testing.T) {
	store := storemock.NewMockStore()
	stale := core.NewDocument("stale entry", core.Metadata{})
	require.NoError(t, store.Add(context.Background(), []*core.Document{stale}))

	loader := &stubLoader{docs: []*core.Document{sourceDoc(t, "https://example.com/a", 10)}}
	refresher := NewRefresher(loader, newTestGenerator(t), store, WithWipe())

	stats, err := refresher.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, store.Get(stale.Id), "stale entries are wiped")
	assert.Greater(t, stats.Indexed, 0)
}

func TestRefresher_LoaderFailureStillIndexes(t *testing.T) {
	healthy := &stubLoader{docs: []*core.Document{sourceDoc(t, "https://example.com/a", 10)}}
	broken := &stubLoader{err: assert.AnError}
	multi := loaders.NewMulti([]loaders.Loader{broken, healthy})

	store := storemock.NewMockStore()
	refresher := NewRefresher(multi, newTestGenerator(t), store)

	stats, err := refresher.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Greater(t, stats.Indexed, 0, "healthy loader output still indexed")
}
