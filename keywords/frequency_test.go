package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyExtractor_RanksByCount(t *testing.T) {
	e := NewFrequencyExtractor()

	got, err := e.Extract("worker pools run tasks. worker pools scale. worker queues drain.")
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, "worker", got[0])
	assert.Equal(t, "pools", got[1])
}

func TestFrequencyExtractor_FiltersStopwords(t *testing.T) {
	e := NewFrequencyExtractor()

	got, err := e.Extract("the the the deployment of the deployment")
	require.NoError(t, err)

	assert.Equal(t, []string{"deployment"}, got)
}

func TestFrequencyExtractor_TopN(t *testing.T) {
	e := NewFrequencyExtractor(WithTopN(2))

	got, err := e.Extract("alpha beta gamma delta epsilon alpha beta gamma alpha beta")
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, got)
}

func TestFrequencyExtractor_EmptyText(t *testing.T) {
	e := NewFrequencyExtractor()

	got, err := e.Extract("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFrequencyExtractor_Deterministic(t *testing.T) {
	e := NewFrequencyExtractor()
	text := "qdrant stores vectors while badger stores counters and qdrant answers queries"

	first, err := e.Extract(text)
	require.NoError(t, err)
	second, err := e.Extract(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
