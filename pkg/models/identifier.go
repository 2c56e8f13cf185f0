package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Identifier struct {
	bun.BaseModel `bun:"table:identifiers,alias:i"`

	ID        int       `bun:",pk,nullzero" json:"-"`
	PublicID  string    `bun:",nullzero,notnull" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Type      string    `bun:",nullzero,notnull" json:"type"`
	Value     string    `bun:",nullzero,notnull" json:"value"`
}

// Ownership describes where an identifier owner's rows and identifier pivot
// rows live.
type Ownership struct {
	Kind       Kind
	Table      string
	Alias      string
	PivotTable string
	ForeignKey string
}

// IdentifierOwner is implemented by every entity kind that carries external
// identifiers. Ownership must not dereference the receiver so it can be called
// on a nil pointer of the concrete type.
type IdentifierOwner interface {
	OwnerKey() int
	Ownership() Ownership
}

var (
	BookOwnership = Ownership{
		Kind:       KindBook,
		Table:      "books",
		Alias:      "b",
		PivotTable: "book_identifiers",
		ForeignKey: "book_id",
	}
	AuthorOwnership = Ownership{
		Kind:       KindAuthor,
		Table:      "authors",
		Alias:      "a",
		PivotTable: "author_identifiers",
		ForeignKey: "author_id",
	}
	NarratorOwnership = Ownership{
		Kind:       KindNarrator,
		Table:      "narrators",
		Alias:      "n",
		PivotTable: "narrator_identifiers",
		ForeignKey: "narrator_id",
	}
	SeriesOwnership = Ownership{
		Kind:       KindSeries,
		Table:      "series",
		Alias:      "s",
		PivotTable: "series_identifiers",
		ForeignKey: "series_id",
	}
)
