package loaders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorecraft/core"
)

type stubLoader struct {
	docs []*core.Document
	err  error
}

func (s *stubLoader) Load(ctx context.Context) ([]*core.Document, error) {
	return s.docs, s.err
}

func stubDoc(t *testing.T, text string) *core.Document {
	t.Helper()
	return core.NewDocument(text, core.Metadata{Source: "test"})
}

func TestMulti_Load(t *testing.T) {
	a := stubDoc(t, "doc a")
	b := stubDoc(t, "doc b")
	c := stubDoc(t, "doc c")

	multi := NewMulti([]Loader{
		&stubLoader{docs: []*core.Document{a}},
		&stubLoader{docs: []*core.Document{b, c}},
	}, WithConcurrency(2))

	docs, err := multi.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Order follows loader order regardless of completion order.
	assert.Equal(t, []*core.Document{a, b, c}, docs)
}

func TestMulti_PartialFailure(t *testing.T) {
	a := stubDoc(t, "survives")

	multi := NewMulti([]Loader{
		&stubLoader{err: assert.AnError},
		&stubLoader{docs: []*core.Document{a}},
	})

	docs, err := multi.Load(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	require.Len(t, docs, 1, "healthy loaders still contribute")
	assert.Equal(t, a, docs[0])
}

func TestMulti_Empty(t *testing.T) {
	docs, err := NewMulti(nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
