package weaviate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "sitesage/internal/adapter/weaviate"
	"sitesage/internal/indexer"
	"sitesage/internal/testutils"
)

func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	store := adapter.NewStore(s.Weaviate)
	ctx := context.Background()

	err := store.EnsureSchema(ctx)
	require.NoError(t, err)

	// Nothing indexed yet.
	indexed, err := store.IsIndexed(ctx, "https://example.com/docs")
	require.NoError(t, err)
	assert.False(t, indexed)

	passages := []indexer.Passage{
		{URL: "https://example.com/docs", ChunkIndex: 0, Text: "Postgres is a database", Vector: []float32{0.1, 0.1, 0.1}},
		{URL: "https://example.com/docs", ChunkIndex: 1, Text: "Weaviate stores vectors", Vector: []float32{0.2, 0.2, 0.2}},
		{URL: "https://example.com/about", ChunkIndex: 0, Text: "About this site", Vector: []float32{0.9, 0.9, 0.9}},
	}
	for _, p := range passages {
		require.NoError(t, store.StorePassage(ctx, p))
	}

	// Idempotency check sees the stored URL, not others.
	indexed, err = store.IsIndexed(ctx, "https://example.com/docs")
	require.NoError(t, err)
	assert.True(t, indexed)

	indexed, err = store.IsIndexed(ctx, "https://example.com/missing")
	require.NoError(t, err)
	assert.False(t, indexed)

	count, err := store.CountPassages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Nearest neighbour of a vector close to the first passage.
	results, err := store.Search(ctx, []float32{0.1, 0.1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Postgres is a database", results[0].Text)
	assert.Equal(t, "https://example.com/docs", results[0].URL)
	assert.Equal(t, 0, results[0].ChunkIndex)
}
