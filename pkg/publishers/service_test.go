package publishers

import (
	"context"
	"testing"

	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreatePublisher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	tor, created, err := svc.FindOrCreatePublisher(ctx, "Tor Books")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.FindOrCreatePublisher(ctx, "tor books")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tor.ID, again.ID)
	assert.Len(t, recorder.OfType(events.TypeCreated), 1)
}

func TestMergePublishers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	target := testutils.InsertPublisher(t, db, &models.Publisher{Name: "Penguin Random House"})
	source := testutils.InsertPublisher(t, db, &models.Publisher{Name: "Random House"})
	book := testutils.InsertBook(t, db, &models.Book{Title: "Beloved", PublisherID: &source.ID})

	require.NoError(t, svc.MergePublishers(ctx, target, source))

	books, err := svc.GetBooks(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)

	_, err = svc.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &source.ID})
	require.Error(t, err)

	updated := recorder.OfType(events.TypeUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, book.PublicID, updated[0].PublicID)
}

func TestDeletePublisher_KeepsBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	publisher := testutils.InsertPublisher(t, db, &models.Publisher{Name: "Gollancz"})
	book := testutils.InsertBook(t, db, &models.Book{Title: "The Lies of Locke Lamora", PublisherID: &publisher.ID})

	require.NoError(t, svc.DeletePublisher(ctx, publisher))

	reloaded := &models.Book{}
	err := db.NewSelect().Model(reloaded).Where("b.id = ?", book.ID).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, reloaded.PublisherID)

	assert.Len(t, recorder.OfType(events.TypeDeleted), 1)
	assert.Len(t, recorder.OfType(events.TypeUpdated), 1)
}

func TestRetrievePublisher_BookCountSkipsDeletedBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, nil, nil)

	publisher := testutils.InsertPublisher(t, db, &models.Publisher{Name: "Orbit"})
	testutils.InsertBook(t, db, &models.Book{Title: "Leviathan Wakes", PublisherID: &publisher.ID})
	gone := testutils.InsertBook(t, db, &models.Book{Title: "Caliban's War", PublisherID: &publisher.ID})
	_, err := db.NewDelete().Model(gone).WherePK().Exec(ctx)
	require.NoError(t, err)

	retrieved, err := svc.RetrievePublisher(ctx, RetrievePublisherOptions{PublicID: &publisher.PublicID})
	require.NoError(t, err)
	assert.Equal(t, 1, retrieved.BookCount)
}
