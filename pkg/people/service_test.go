package people

import (
	"context"
	"testing"

	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateAuthor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, testutils.PublicIDs("author"))

	author, created, err := svc.FindOrCreateAuthor(ctx, "  Terry Pratchett ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Terry Pratchett", author.Name)
	assert.Equal(t, "author-1", author.PublicID)
	assert.False(t, author.Enabled)

	again, created, err := svc.FindOrCreateAuthor(ctx, "terry pratchett")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, author.ID, again.ID)

	_, _, err = svc.FindOrCreateAuthor(ctx, " ")
	require.Error(t, err)

	require.Len(t, recorder.Events(), 1)
	assert.Equal(t, events.TypeCreated, recorder.Events()[0].Type)
	assert.Equal(t, models.KindAuthor, recorder.Events()[0].Kind)
}

func TestUpdateAuthor_EventTypes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	author := testutils.InsertAuthor(t, db, &models.Author{Name: "Ursula K. Le Guin"})

	author.Name = "Ursula Le Guin"
	require.NoError(t, svc.UpdateAuthor(ctx, author, UpdatePersonOptions{Columns: []string{"name"}}))

	author.Enabled = true
	require.NoError(t, svc.UpdateAuthor(ctx, author, UpdatePersonOptions{Columns: []string{"enabled"}}))

	author.Enabled = false
	require.NoError(t, svc.UpdateAuthor(ctx, author, UpdatePersonOptions{Columns: []string{"enabled"}}))

	require.NoError(t, svc.UpdateAuthor(ctx, author, UpdatePersonOptions{}))

	types := []events.Type{}
	for _, e := range recorder.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.Type{events.TypeUpdated, events.TypeVisibilityChanged, events.TypeHidden}, types)
}

func TestEnableNarrator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	narrator := testutils.InsertNarrator(t, db, &models.Narrator{Name: "Rosamund Pike"})

	flipped, err := svc.EnableNarrator(ctx, narrator)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = svc.EnableNarrator(ctx, narrator)
	require.NoError(t, err)
	assert.False(t, flipped)

	reloaded, err := svc.RetrieveNarrator(ctx, RetrievePersonOptions{ID: &narrator.ID})
	require.NoError(t, err)
	assert.True(t, reloaded.Enabled)
	assert.Len(t, recorder.OfType(events.TypeVisibilityChanged), 1)
}

func TestDeleteAuthor_RepublishesCreditedBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	author := testutils.InsertAuthor(t, db, &models.Author{Name: "Neil Gaiman"})
	book := testutils.InsertBook(t, db, &models.Book{Title: "Good Omens", Entity: models.Entity{Enabled: true}})
	other := testutils.InsertBook(t, db, &models.Book{Title: "Mort"})
	credits := []*models.BookAuthor{
		{BookID: book.ID, AuthorID: author.ID, SortOrder: 1},
		{BookID: book.ID, AuthorID: author.ID, SortOrder: 2, Role: strPtr("editor")},
	}
	_, err := db.NewInsert().Model(&credits).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAuthor(ctx, author))

	deleted := recorder.OfType(events.TypeDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, author.PublicID, deleted[0].PublicID)

	updated := recorder.OfType(events.TypeUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, book.PublicID, updated[0].PublicID)
	assert.NotEqual(t, other.PublicID, updated[0].PublicID)

	_, err = svc.RetrieveAuthor(ctx, RetrievePersonOptions{ID: &author.ID})
	require.Error(t, err)

	n, err := db.NewSelect().Model((*models.BookAuthor)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestListAuthors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, nil, nil)

	testutils.InsertAuthor(t, db, &models.Author{Name: "Iain M. Banks", Entity: models.Entity{Enabled: true}})
	testutils.InsertAuthor(t, db, &models.Author{Name: "Iain Banks"})
	testutils.InsertAuthor(t, db, &models.Author{Name: "Ann Leckie", Entity: models.Entity{Enabled: true}})

	search := "Iain"
	authors, total, err := svc.ListAuthorsWithTotal(ctx, ListPeopleOptions{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, authors, 2)

	enabled := true
	authors, err = svc.ListAuthors(ctx, ListPeopleOptions{Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "Iain M. Banks", authors[0].Name)
	assert.Equal(t, "Ann Leckie", authors[1].Name)

	after := authors[0].ID
	authors, err = svc.ListAuthors(ctx, ListPeopleOptions{AfterID: &after})
	require.NoError(t, err)
	assert.Len(t, authors, 2)
}

func TestGetNarratedBooks_OncePerBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, nil, nil)

	narrator := testutils.InsertNarrator(t, db, &models.Narrator{Name: "Kobna Holdbrook-Smith"})
	book := testutils.InsertBook(t, db, &models.Book{Title: "Rivers of London", Type: models.BookTypeAudiobook})
	credits := []*models.BookNarrator{
		{BookID: book.ID, NarratorID: narrator.ID, SortOrder: 1},
		{BookID: book.ID, NarratorID: narrator.ID, SortOrder: 2, Role: strPtr("voices")},
	}
	_, err := db.NewInsert().Model(&credits).Exec(ctx)
	require.NoError(t, err)

	books, err := svc.GetNarratedBooks(ctx, narrator.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)
}

func strPtr(s string) *string {
	return &s
}

func TestUpdateNarrator_RenameRepublishesBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	svc := NewService(db, recorder, nil)

	narrator := testutils.InsertNarrator(t, db, &models.Narrator{Name: "Jim Dale"})
	book := testutils.InsertBook(t, db, &models.Book{Title: "The Night Circus", Type: models.BookTypeAudiobook})
	_, err := db.NewInsert().Model(&models.BookNarrator{BookID: book.ID, NarratorID: narrator.ID, SortOrder: 1}).Exec(ctx)
	require.NoError(t, err)

	description := "Narrator"
	narrator.Description = &description
	require.NoError(t, svc.UpdateNarrator(ctx, narrator, UpdatePersonOptions{Columns: []string{"description"}}))
	assert.Empty(t, recorder.OfType(events.TypeUpdated)[1:])

	narrator.Name = "James Dale"
	require.NoError(t, svc.UpdateNarrator(ctx, narrator, UpdatePersonOptions{Columns: []string{"name"}}))

	updated := recorder.OfType(events.TypeUpdated)
	require.Len(t, updated, 3)
	assert.Equal(t, models.KindNarrator, updated[1].Kind)
	assert.Equal(t, models.KindBook, updated[2].Kind)
	assert.Equal(t, book.PublicID, updated[2].PublicID)
}
