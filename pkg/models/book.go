package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookTypeBook      = "book"
	BookTypeAudiobook = "audiobook"
	BookTypePodcast   = "podcast"
	BookTypeEBook     = "e-book"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`
	Entity

	DeletedAt   *time.Time      `bun:",soft_delete" json:"-"`
	Title       string          `bun:",nullzero,notnull" json:"title"`
	Subtitle    *string         `json:"subtitle"`
	Summary     *string         `json:"summary"`
	Description *string         `json:"description"`
	Image       *string         `json:"image"`
	Language    *string         `json:"language"`
	Copyright   *string         `json:"copyright"`
	Pages       *int            `json:"pages"`
	Duration    *int            `json:"duration"`
	ReleasedAt  *time.Time      `json:"released_at"`
	IsExplicit  bool            `bun:",notnull" json:"is_explicit"`
	IsAbridged  *bool           `json:"is_abridged"`
	Type        string          `bun:",nullzero,notnull" json:"type"`
	PublisherID *int            `json:"-"`
	Publisher   *Publisher      `bun:"rel:belongs-to,join:publisher_id=id" json:"publisher,omitempty"`
	Authors     []*BookAuthor   `bun:"rel:has-many,join:id=book_id" json:"authors,omitempty"`
	Narrators   []*BookNarrator `bun:"rel:has-many,join:id=book_id" json:"narrators,omitempty"`
	BookSeries  []*BookSeries   `bun:"rel:has-many,join:id=book_id" json:"series,omitempty"`
	BookGenres  []*BookGenre    `bun:"rel:has-many,join:id=book_id" json:"genres,omitempty"`
	Identifiers []*Identifier   `bun:"m2m:book_identifiers,join:Book=Identifier" json:"identifiers,omitempty"`
}

func (*Book) Kind() Kind { return KindBook }

func (b *Book) OwnerKey() int { return b.ID }

func (*Book) Ownership() Ownership { return BookOwnership }

// BookAuthor is the edge between a book and an author. Role distinguishes
// e.g. "translator" or "illustrator"; NULL means a plain author credit.
type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	ID        int     `bun:",pk,nullzero" json:"-"`
	BookID    int     `bun:",notnull" json:"-"`
	AuthorID  int     `bun:",notnull" json:"-"`
	Author    *Author `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	SortOrder int     `bun:",notnull" json:"sort_order"`
	Role      *string `json:"role"`
}

type BookNarrator struct {
	bun.BaseModel `bun:"table:book_narrators,alias:bn"`

	ID         int       `bun:",pk,nullzero" json:"-"`
	BookID     int       `bun:",notnull" json:"-"`
	NarratorID int       `bun:",notnull" json:"-"`
	Narrator   *Narrator `bun:"rel:belongs-to,join:narrator_id=id" json:"narrator,omitempty"`
	SortOrder  int       `bun:",notnull" json:"sort_order"`
	Role       *string   `json:"role"`
}

// BookSeries is the edge between a book and a series. Position is free-form
// ("1", "2.5", "Prequel").
type BookSeries struct {
	bun.BaseModel `bun:"table:book_series,alias:bs"`

	ID       int     `bun:",pk,nullzero" json:"-"`
	BookID   int     `bun:",notnull" json:"-"`
	SeriesID int     `bun:",notnull" json:"-"`
	Series   *Series `bun:"rel:belongs-to,join:series_id=id" json:"series,omitempty"`
	Position *string `json:"position"`
}

type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	ID      int    `bun:",pk,nullzero" json:"-"`
	BookID  int    `bun:",notnull" json:"-"`
	GenreID int    `bun:",notnull" json:"-"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}
