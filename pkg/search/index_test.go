package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := OpenBleveIndex("")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = idx.Close()
	})
	return idx
}

func TestBleveIndex_UpsertAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := newTestIndex(t)

	doc := &EntityDocument{ID: "author:a-1", PublicID: "a-1", Kind: "author", Name: "Ursula K. Le Guin"}
	require.NoError(t, idx.AddDocuments(ctx, []Document{doc}))
	require.NoError(t, idx.UpdateDocuments(ctx, []Document{doc}))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "upserting the same id twice keeps one document")

	res, err := idx.Search(ctx, match("name", "guin"), 10, 0)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "a-1", res.Hits[0].PublicID)
	assert.Equal(t, "author", res.Hits[0].Kind)

	require.NoError(t, idx.DeleteDocument(ctx, "author:a-1"))
	require.NoError(t, idx.DeleteDocument(ctx, "author:a-1"), "deleting twice is not an error")

	n, err = idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBleveIndex_Reset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.AddDocuments(ctx, []Document{
		&EntityDocument{ID: "genre:g-1", PublicID: "g-1", Kind: "genre", Name: "Horror"},
		&EntityDocument{ID: "genre:g-2", PublicID: "g-2", Kind: "genre", Name: "Romance"},
	}))
	require.NoError(t, idx.Reset(ctx))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBleveIndex_OnDisk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "search.bleve")

	idx, err := OpenBleveIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.AddDocuments(ctx, []Document{
		&EntityDocument{ID: "series:s-1", PublicID: "s-1", Kind: "series", Name: "Earthsea"},
	}))
	require.NoError(t, idx.Close())

	reopened, err := OpenBleveIndex(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, reopened.Reset(ctx))
	n, err = reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBleveIndex_Closed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := newTestIndex(t)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	err := idx.AddDocuments(ctx, []Document{&EntityDocument{ID: "author:a-1"}})
	assert.ErrorIs(t, err, ErrIndexClosed)
	_, err = idx.Search(ctx, bleve.NewMatchAllQuery(), 10, 0)
	assert.ErrorIs(t, err, ErrIndexClosed)
}
