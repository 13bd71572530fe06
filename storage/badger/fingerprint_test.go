package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/storage"
)

func TestFingerprintRepository_PutGet(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	fingerprint := &core.Fingerprint{
		Link: "https://example.com/docs/guide.md",
		Hash: core.IDFromContent("guide body"),
	}
	require.NoError(t, repo.PutFingerprint(ctx, fingerprint))
	assert.False(t, fingerprint.IndexedAt.IsZero(), "timestamp is set")

	got, err := repo.GetFingerprint(ctx, fingerprint.Link)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Hash, got.Hash)
	assert.Equal(t, fingerprint.Link, got.Link)
}

func TestFingerprintRepository_PutOverwrites(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	link := "https://example.com/page"
	require.NoError(t, repo.PutFingerprint(ctx, &core.Fingerprint{Link: link, Hash: core.IDFromContent("v1")}))
	require.NoError(t, repo.PutFingerprint(ctx, &core.Fingerprint{Link: link, Hash: core.IDFromContent("v2")}))

	got, err := repo.GetFingerprint(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, core.IDFromContent("v2"), got.Hash)
}

func TestFingerprintRepository_GetMissing(t *testing.T) {
	_, repo := newTestRepos(t)

	_, err := repo.GetFingerprint(context.Background(), "https://example.com/unknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFingerprintRepository_Delete(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	link := "https://example.com/gone"
	require.NoError(t, repo.PutFingerprint(ctx, &core.Fingerprint{Link: link, Hash: 1}))
	require.NoError(t, repo.DeleteFingerprint(ctx, link))

	_, err := repo.GetFingerprint(ctx, link)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteFingerprint(ctx, link), storage.ErrNotFound)
}

func TestFingerprintRepository_InvalidArgs(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.GetFingerprint(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	assert.ErrorIs(t, repo.PutFingerprint(ctx, nil), storage.ErrInvalidQuery)
	assert.ErrorIs(t, repo.DeleteFingerprint(ctx, ""), storage.ErrInvalidQuery)
}
