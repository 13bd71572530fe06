package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorecraft/core"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Empty(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalConceptMetric(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	metric := &core.ConceptMetric{
		Concept:   "deployment",
		Count:     17,
		UpdatedAt: now,
	}

	data := MarshalConceptMetric(metric)
	decoded, err := UnmarshalConceptMetric(data)
	require.NoError(t, err)
	assert.Equal(t, metric, decoded)
}

func TestMarshalUnmarshalQueryRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	record := &core.QueryRecord{
		Id:      uuid.NewString(),
		Text:    "how do I configure retries?",
		AskedAt: now,
	}

	data := MarshalQueryRecord(record)
	decoded, err := UnmarshalQueryRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestMarshalUnmarshalFingerprint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	fingerprint := &core.Fingerprint{
		Link:      "https://example.com/docs/guide.md",
		Hash:      core.IDFromContent("guide body"),
		IndexedAt: now,
	}

	data := MarshalFingerprint(fingerprint)
	decoded, err := UnmarshalFingerprint(data)
	require.NoError(t, err)
	assert.Equal(t, fingerprint, decoded)
}

func TestUnmarshalConceptMetric_Truncated(t *testing.T) {
	metric := &core.ConceptMetric{Concept: "kubernetes", Count: 3, UpdatedAt: time.Now().UTC()}
	data := MarshalConceptMetric(metric)

	_, err := UnmarshalConceptMetric(data[:2])
	assert.Error(t, err)
}
