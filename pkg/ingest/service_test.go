package ingest

import (
	"context"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestService(t *testing.T) (*Service, *bun.DB, *events.Recorder) {
	t.Helper()
	db := testutils.NewDB(t)
	store, err := identifiers.NewStore(db, testutils.PublicIDs("ident"), 16)
	require.NoError(t, err)
	recorder := &events.Recorder{}
	return NewService(db, identifiers.NewResolver(db, store), recorder, nil), db, recorder
}

func count(t *testing.T, db *bun.DB, table string) int {
	t.Helper()
	n, err := db.NewSelect().Table(table).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestIngestBook_Creates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	book, created, err := svc.IngestBook(ctx, BookPayload{
		Title:      "Harry Potter and the Philosopher's Stone",
		Type:       models.BookTypeAudiobook,
		Language:   pointerutil.String("en-GB"),
		ReleasedAt: pointerutil.String("1997-06-26"),
		Authors:    []ContributorPayload{{Name: "J. K. Rowling"}},
		Narrators:  []ContributorPayload{{Name: "Stephen Fry", Role: pointerutil.String("narrator")}},
		Series:     []SeriesPayload{{Name: "Harry Potter", Position: pointerutil.String("1")}},
		Genres:     []GenrePayload{{Name: "Fantasy"}, {Name: "fantasy"}, {Name: "wizards", Type: models.GenreTypeTag}},
		Publisher:  pointerutil.String("Bloomsbury"),
		Identifiers: []identifiers.Input{
			identifiers.ByPair(identifiers.TypeISBN13, "978-0-7475-3269-9"),
		},
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, book.Enabled, "ingested books wait to be enabled")

	require.Len(t, book.Authors, 1)
	assert.Equal(t, "J. K. Rowling", book.Authors[0].Author.Name)
	require.Len(t, book.Narrators, 1)
	assert.Equal(t, "narrator", *book.Narrators[0].Role)
	require.Len(t, book.BookSeries, 1)
	assert.Equal(t, "1", *book.BookSeries[0].Position)
	assert.Len(t, book.BookGenres, 2, "genre names match case-insensitively")
	require.NotNil(t, book.Publisher)
	assert.Equal(t, "Bloomsbury", book.Publisher.Name)
	require.Len(t, book.Identifiers, 1)
	assert.Equal(t, "9780747532699", book.Identifiers[0].Value)
	assert.Equal(t, 1997, book.ReleasedAt.Year())

	for _, e := range recorder.Events() {
		assert.Equal(t, events.TypeCreated, e.Type)
		assert.False(t, e.Enabled)
	}
	assert.Len(t, recorder.OfType(events.TypeCreated), 7, "book, author, narrator, series, two genres, publisher")
}

// Placeholder ISBNs must not collapse into one shared identifier and merge
// unrelated books.
func TestIngestBook_RejectsPlaceholderISBN(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, recorder := newTestService(t)

	for _, value := range []string{"N/A", "unknown", "TBD", "978-0-7475-3269-0"} {
		_, _, err := svc.IngestBook(ctx, BookPayload{
			Title:       "Dune",
			Identifiers: []identifiers.Input{identifiers.ByPair(identifiers.TypeISBN13, value)},
		})
		assert.ErrorIs(t, err, identifiers.ErrMalformedInput, value)
	}

	assert.Equal(t, 0, count(t, db, "books"))
	assert.Equal(t, 0, count(t, db, "identifiers"))
	assert.Empty(t, recorder.Events())
}

// A book submitted with an ISBN another book already holds is the same book.
func TestIngestBook_MergesOnSharedIdentifier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	prior := testutils.InsertBook(t, db, &models.Book{Title: "Harry Potter and the Philosopher's Stone"})
	_, err := svc.resolver.Attach(ctx, prior, []identifiers.Input{identifiers.ByPair(identifiers.TypeISBN13, "9780747532699")})
	require.NoError(t, err)

	submission := []identifiers.Input{identifiers.ByPair(identifiers.TypeISBN13, "9780747532699")}
	matches, err := identifiers.ResolveByIdentifiers[*models.Book](ctx, svc.resolver, submission)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, prior.ID, matches[0].ID)

	book, created, err := svc.IngestBook(ctx, BookPayload{
		Title:       "Harry Potter and the Sorcerer's Stone",
		Type:        models.BookTypeBook,
		Identifiers: append(submission, identifiers.ByPair(identifiers.TypeAmazonASIN, "b000bhpsyq")),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, prior.ID, book.ID)
	assert.Equal(t, 1, count(t, db, "books"))
	assert.Equal(t, 2, count(t, db, "identifiers"))
	assert.Len(t, book.Identifiers, 2, "the new ASIN is attached to the prior book")
}

func TestIngestBook_MergesOnExactFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	prior := testutils.InsertBook(t, db, &models.Book{Title: "Piranesi", Type: models.BookTypeBook})

	book, created, err := svc.IngestBook(ctx, BookPayload{Title: "Piranesi", Type: models.BookTypeBook})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, prior.ID, book.ID)

	book, created, err = svc.IngestBook(ctx, BookPayload{Title: "Piranesi", Type: models.BookTypeAudiobook})
	require.NoError(t, err)
	assert.True(t, created, "a different type is a different edition")
	assert.NotEqual(t, prior.ID, book.ID)

	_, created, err = svc.IngestBook(ctx, BookPayload{Title: "Piranesi", Subtitle: pointerutil.String("A Novel"), Type: models.BookTypeBook})
	require.NoError(t, err)
	assert.True(t, created, "a subtitle that differs is not a match")
}

func TestIngestBook_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	_, _, err := svc.IngestBook(ctx, BookPayload{Title: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	_, _, err = svc.IngestBook(ctx, BookPayload{
		Title:       "Jonathan Strange & Mr Norrell",
		Identifiers: []identifiers.Input{{Value: pointerutil.String("0747574111")}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identifier input")

	_, _, err = svc.IngestBook(ctx, BookPayload{Title: "Ladies of Grace Adieu", ReleasedAt: pointerutil.String("2006")})
	require.Error(t, err)

	assert.Equal(t, 0, count(t, db, "books"))
}

func TestIngestAuthor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	asin := []identifiers.Input{identifiers.ByPair(identifiers.TypeAudibleASIN, "B001H6UJO8")}
	author, created, err := svc.IngestAuthor(ctx, PersonPayload{Name: "Susanna Clarke", Identifiers: asin})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, author.Enabled)
	require.Len(t, author.Identifiers, 1)

	again, created, err := svc.IngestAuthor(ctx, PersonPayload{Name: "S. Clarke", Identifiers: asin})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, author.ID, again.ID)

	byName, created, err := svc.IngestAuthor(ctx, PersonPayload{Name: "Susanna Clarke"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, author.ID, byName.ID)

	assert.Equal(t, 1, count(t, db, "authors"))
}

func TestIngestNarrator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first, created, err := svc.IngestNarrator(ctx, PersonPayload{Name: "Chiwetel Ejiofor"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.IngestNarrator(ctx, PersonPayload{Name: "Chiwetel Ejiofor"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestIngestSeries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	en, created, err := svc.IngestSeries(ctx, SeriesIngestPayload{Name: "Discworld", Language: pointerutil.String("en")})
	require.NoError(t, err)
	assert.True(t, created)

	same, created, err := svc.IngestSeries(ctx, SeriesIngestPayload{Name: "Discworld", Language: pointerutil.String("en")})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, en.ID, same.ID)

	de, created, err := svc.IngestSeries(ctx, SeriesIngestPayload{Name: "Discworld", Language: pointerutil.String("de")})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, en.ID, de.ID)
}
