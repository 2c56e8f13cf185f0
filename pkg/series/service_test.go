package series

import (
	"context"
	"testing"

	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateSeries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, nil, nil)

	s, created, err := svc.FindOrCreateSeries(ctx, "The Expanse")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, s.Enabled)

	again, created, err := svc.FindOrCreateSeries(ctx, "the expanse ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, s.ID, again.ID)

	_, _, err = svc.FindOrCreateSeries(ctx, "")
	require.Error(t, err)
}

func TestRetrieveSeries_BookCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, nil, nil)

	s := testutils.InsertSeries(t, db, &models.Series{Name: "Earthsea"})
	for _, title := range []string{"A Wizard of Earthsea", "The Tombs of Atuan"} {
		book := testutils.InsertBook(t, db, &models.Book{Title: title})
		_, err := db.NewInsert().Model(&models.BookSeries{BookID: book.ID, SeriesID: s.ID}).Exec(ctx)
		require.NoError(t, err)
	}

	retrieved, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{PublicID: &s.PublicID})
	require.NoError(t, err)
	assert.Equal(t, 2, retrieved.BookCount)

	books, err := svc.GetBooks(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "A Wizard of Earthsea", books[0].Title)
}

func TestDeleteAndRestoreSeries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	s := testutils.InsertSeries(t, db, &models.Series{Name: "Wayfarers", Entity: models.Entity{Enabled: true}})
	book := testutils.InsertBook(t, db, &models.Book{Title: "The Long Way to a Small, Angry Planet"})
	_, err := db.NewInsert().Model(&models.BookSeries{BookID: book.ID, SeriesID: s.ID}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSeries(ctx, s))

	_, err = svc.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &s.ID})
	require.Error(t, err)
	deleted, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &s.ID, WithDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, s.PublicID, deleted.PublicID)

	require.Len(t, recorder.OfType(events.TypeDeleted), 1)
	require.Len(t, recorder.OfType(events.TypeUpdated), 1)
	assert.Equal(t, book.PublicID, recorder.OfType(events.TypeUpdated)[0].PublicID)

	recorder.Reset()
	require.NoError(t, svc.RestoreSeries(ctx, s.ID))

	created := recorder.OfType(events.TypeCreated)
	require.Len(t, created, 1)
	assert.Equal(t, s.PublicID, created[0].PublicID)
	assert.True(t, created[0].Enabled)
	assert.Len(t, recorder.OfType(events.TypeUpdated), 1)
}

func TestUpdateSeries_RenameRepublishesBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	s := testutils.InsertSeries(t, db, &models.Series{Name: "Culture"})
	book := testutils.InsertBook(t, db, &models.Book{Title: "Consider Phlebas"})
	_, err := db.NewInsert().Model(&models.BookSeries{BookID: book.ID, SeriesID: s.ID}).Exec(ctx)
	require.NoError(t, err)

	s.Enabled = true
	require.NoError(t, svc.UpdateSeries(ctx, s, UpdateSeriesOptions{Columns: []string{"enabled"}}))
	assert.Len(t, recorder.Events(), 1, "enabling a series leaves its books alone")

	s.Name = "The Culture"
	require.NoError(t, svc.UpdateSeries(ctx, s, UpdateSeriesOptions{Columns: []string{"name"}}))

	evs := recorder.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, events.TypeVisibilityChanged, evs[0].Type)
	assert.Equal(t, events.TypeUpdated, evs[1].Type)
	assert.Equal(t, models.KindSeries, evs[1].Kind)
	assert.Equal(t, models.KindBook, evs[2].Kind)
}
