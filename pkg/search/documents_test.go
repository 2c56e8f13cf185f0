package search

import (
	"testing"
	"time"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    *string
		expected *Language
	}{
		{"region", pointerutil.String("en-US"), &Language{Language: "en", Code: pointerutil.String("US")}},
		{"no separator", pointerutil.String("en"), &Language{Language: "en"}},
		{"trailing separator", pointerutil.String("fr-"), &Language{Language: "fr"}},
		{"empty", pointerutil.String(""), nil},
		{"blank", pointerutil.String("  "), nil},
		{"missing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, SplitLanguage(tt.input))
		})
	}
}

func TestDocumentID(t *testing.T) {
	t.Parallel()

	id := DocumentID(models.KindSeries, "abc-123")
	assert.Equal(t, "series:abc-123", id)

	kind, publicID, ok := ParseDocumentID(id)
	require.True(t, ok)
	assert.Equal(t, models.KindSeries, kind)
	assert.Equal(t, "abc-123", publicID)

	_, _, ok = ParseDocumentID("no-separator")
	assert.False(t, ok)
}

func TestBuildBookDocument(t *testing.T) {
	t.Parallel()

	released := time.Date(1997, 6, 26, 0, 0, 0, 0, time.UTC)
	abridged := false
	book := &models.Book{
		Entity:      models.Entity{ID: 7, PublicID: "b-1", Enabled: true},
		Title:       "Harry Potter and the Philosopher's Stone",
		Description: pointerutil.String("<p>A boy &amp; his <em>owl</em>.</p>"),
		Summary:     pointerutil.String("<div></div>"),
		Language:    pointerutil.String("en-GB"),
		Type:        models.BookTypeAudiobook,
		ReleasedAt:  &released,
		IsAbridged:  &abridged,
		Publisher:   &models.Publisher{Name: "Bloomsbury"},
		Authors: []*models.BookAuthor{
			{Author: &models.Author{Name: "J. K. Rowling"}},
		},
		Narrators: []*models.BookNarrator{
			{Narrator: &models.Narrator{Name: "Stephen Fry"}, Role: pointerutil.String("narrator")},
		},
		BookSeries: []*models.BookSeries{
			{Series: &models.Series{Name: "Harry Potter"}, Position: pointerutil.String("1")},
		},
		BookGenres: []*models.BookGenre{
			{Genre: &models.Genre{Name: "Fantasy"}},
		},
	}

	doc := BuildBookDocument(book)

	assert.Equal(t, "book:b-1", doc.DocumentID())
	assert.Equal(t, "b-1", doc.PublicID)
	assert.Equal(t, models.KindBook, doc.Kind)
	assert.Equal(t, "A boy & his owl.", *doc.Description)
	assert.Nil(t, doc.Summary, "markup with no text is absent")
	assert.Equal(t, &Language{Language: "en", Code: pointerutil.String("GB")}, doc.Language)
	assert.Equal(t, []Contributor{{Name: "J. K. Rowling"}}, doc.Authors)
	assert.Equal(t, []Contributor{{Name: "Stephen Fry", Role: pointerutil.String("narrator")}}, doc.Narrators)
	assert.Equal(t, []SeriesEntry{{Name: "Harry Potter", Position: pointerutil.String("1")}}, doc.Series)
	assert.Equal(t, []string{"Fantasy"}, doc.Genres)
	assert.Equal(t, "Bloomsbury", *doc.Publisher)
	assert.Equal(t, &released, doc.ReleasedAt)
}

func TestBuildBookDocument_EmptyRelationsAreNil(t *testing.T) {
	t.Parallel()

	doc := BuildBookDocument(&models.Book{
		Entity:     models.Entity{PublicID: "b-2"},
		Title:      "Standalone",
		Type:       models.BookTypeBook,
		Authors:    []*models.BookAuthor{},
		BookSeries: []*models.BookSeries{},
	})

	assert.Nil(t, doc.Authors)
	assert.Nil(t, doc.Narrators)
	assert.Nil(t, doc.Genres)
	assert.Nil(t, doc.Series)
	assert.Nil(t, doc.Publisher)
	assert.Nil(t, doc.Language)

	fields, err := documentFields(doc)
	require.NoError(t, err)
	assert.Contains(t, fields, "series")
	assert.Nil(t, fields["series"], "serialized as null, not []")
	assert.Nil(t, fields["authors"])
}

func TestBuildEntityDocuments(t *testing.T) {
	t.Parallel()

	series := BuildSeriesDocument(&models.Series{
		Entity:      models.Entity{PublicID: "s-1"},
		Name:        "Discworld",
		Description: pointerutil.String("<b>Turtles</b> all the way down"),
		Language:    pointerutil.String("en"),
	})
	assert.Equal(t, "series:s-1", series.ID)
	assert.Equal(t, "Turtles all the way down", *series.Description)
	assert.Equal(t, &Language{Language: "en"}, series.Language)

	genre := BuildGenreDocument(&models.Genre{Entity: models.Entity{PublicID: "g-1"}, Name: "Horror", Type: models.GenreTypeTag})
	assert.Equal(t, "genre:g-1", genre.ID)
	assert.Equal(t, models.GenreTypeTag, genre.Type)
	assert.Nil(t, genre.Language)

	author := BuildAuthorDocument(&models.Author{Entity: models.Entity{PublicID: "a-1"}, Name: "Terry Pratchett"})
	assert.Equal(t, models.KindAuthor, author.Kind)
	assert.Nil(t, author.Description)

	narrator := BuildNarratorDocument(&models.Narrator{Entity: models.Entity{PublicID: "n-1"}, Name: "Nigel Planer"})
	assert.Equal(t, "narrator:n-1", narrator.ID)

	publisher := BuildPublisherDocument(&models.Publisher{Entity: models.Entity{PublicID: "p-1"}, Name: "Gollancz"})
	assert.Equal(t, "publisher:p-1", publisher.ID)
}
