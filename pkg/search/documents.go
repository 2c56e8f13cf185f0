package search

import (
	"strings"
	"time"

	"github.com/shishobooks/catalog/pkg/htmlutil"
	"github.com/shishobooks/catalog/pkg/models"
)

// Document is anything that can be written to the index.
type Document interface {
	DocumentID() string
}

// DocumentID is the index key of an entity. Internal row ids never reach the
// index.
func DocumentID(kind models.Kind, publicID string) string {
	return string(kind) + ":" + publicID
}

// ParseDocumentID splits an index key back into its kind and public id.
func ParseDocumentID(id string) (models.Kind, string, bool) {
	kind, publicID, ok := strings.Cut(id, ":")
	if !ok || publicID == "" {
		return "", "", false
	}
	return models.Kind(kind), publicID, true
}

type Language struct {
	Language string  `json:"language"`
	Code     *string `json:"code"`
}

type Contributor struct {
	Name string  `json:"name"`
	Role *string `json:"role"`
}

type SeriesEntry struct {
	Name     string  `json:"name"`
	Position *string `json:"position"`
}

// BookDocument is the denormalized projection of a book. Relation slices are
// nil rather than empty when the book has none.
type BookDocument struct {
	ID          string        `json:"id"`
	PublicID    string        `json:"public_id"`
	Kind        models.Kind   `json:"kind"`
	Title       string        `json:"title"`
	Subtitle    *string       `json:"subtitle"`
	Summary     *string       `json:"summary"`
	Description *string       `json:"description"`
	Type        string        `json:"type"`
	Authors     []Contributor `json:"authors"`
	Narrators   []Contributor `json:"narrators"`
	Genres      []string      `json:"genres"`
	Series      []SeriesEntry `json:"series"`
	Publisher   *string       `json:"publisher"`
	Language    *Language     `json:"language"`
	ReleasedAt  *time.Time    `json:"released_at"`
	IsExplicit  bool          `json:"is_explicit"`
	IsAbridged  *bool         `json:"is_abridged"`
}

func (d *BookDocument) DocumentID() string { return d.ID }

// EntityDocument covers every non-book kind. Language is only set for
// series and Type only for genres.
type EntityDocument struct {
	ID          string      `json:"id"`
	PublicID    string      `json:"public_id"`
	Kind        models.Kind `json:"kind"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Language    *Language   `json:"language,omitempty"`
	Type        string      `json:"type,omitempty"`
}

func (d *EntityDocument) DocumentID() string { return d.ID }

// BuildBookDocument projects a book loaded with its authors, narrators,
// genres, series and publisher.
func BuildBookDocument(book *models.Book) *BookDocument {
	doc := &BookDocument{
		ID:          DocumentID(models.KindBook, book.PublicID),
		PublicID:    book.PublicID,
		Kind:        models.KindBook,
		Title:       book.Title,
		Subtitle:    book.Subtitle,
		Summary:     stripped(book.Summary),
		Description: stripped(book.Description),
		Type:        book.Type,
		Language:    SplitLanguage(book.Language),
		ReleasedAt:  book.ReleasedAt,
		IsExplicit:  book.IsExplicit,
		IsAbridged:  book.IsAbridged,
	}

	for _, a := range book.Authors {
		if a.Author != nil {
			doc.Authors = append(doc.Authors, Contributor{Name: a.Author.Name, Role: a.Role})
		}
	}
	for _, n := range book.Narrators {
		if n.Narrator != nil {
			doc.Narrators = append(doc.Narrators, Contributor{Name: n.Narrator.Name, Role: n.Role})
		}
	}
	for _, g := range book.BookGenres {
		if g.Genre != nil {
			doc.Genres = append(doc.Genres, g.Genre.Name)
		}
	}
	for _, s := range book.BookSeries {
		if s.Series != nil {
			doc.Series = append(doc.Series, SeriesEntry{Name: s.Series.Name, Position: s.Position})
		}
	}
	if book.Publisher != nil {
		name := book.Publisher.Name
		doc.Publisher = &name
	}

	return doc
}

func BuildAuthorDocument(author *models.Author) *EntityDocument {
	return entityDocument(models.KindAuthor, &author.Entity, author.Name, author.Description)
}

func BuildNarratorDocument(narrator *models.Narrator) *EntityDocument {
	return entityDocument(models.KindNarrator, &narrator.Entity, narrator.Name, narrator.Description)
}

func BuildSeriesDocument(series *models.Series) *EntityDocument {
	doc := entityDocument(models.KindSeries, &series.Entity, series.Name, series.Description)
	doc.Language = SplitLanguage(series.Language)
	return doc
}

func BuildGenreDocument(genre *models.Genre) *EntityDocument {
	doc := entityDocument(models.KindGenre, &genre.Entity, genre.Name, nil)
	doc.Type = genre.Type
	return doc
}

func BuildPublisherDocument(publisher *models.Publisher) *EntityDocument {
	return entityDocument(models.KindPublisher, &publisher.Entity, publisher.Name, publisher.Description)
}

func entityDocument(kind models.Kind, e *models.Entity, name string, description *string) *EntityDocument {
	return &EntityDocument{
		ID:          DocumentID(kind, e.PublicID),
		PublicID:    e.PublicID,
		Kind:        kind,
		Name:        name,
		Description: stripped(description),
	}
}

// SplitLanguage turns "en-US" into {en, US} and "en" into {en, nil}. An
// empty or missing language yields nil.
func SplitLanguage(lang *string) *Language {
	if lang == nil {
		return nil
	}
	value := strings.TrimSpace(*lang)
	if value == "" {
		return nil
	}
	language, code, ok := strings.Cut(value, "-")
	out := &Language{Language: language}
	if ok && code != "" {
		out.Code = &code
	}
	return out
}

func stripped(s *string) *string {
	if s == nil {
		return nil
	}
	text := htmlutil.StripTags(*s)
	if text == "" {
		return nil
	}
	return &text
}
