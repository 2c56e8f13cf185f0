package models

import (
	"github.com/uptrace/bun"
)

// Pivot rows between identifier owners and identifiers. Each pair is unique.

type BookIdentifier struct {
	bun.BaseModel `bun:"table:book_identifiers,alias:bi"`

	BookID       int         `bun:",pk"`
	Book         *Book       `bun:"rel:belongs-to,join:book_id=id"`
	IdentifierID int         `bun:",pk"`
	Identifier   *Identifier `bun:"rel:belongs-to,join:identifier_id=id"`
}

type AuthorIdentifier struct {
	bun.BaseModel `bun:"table:author_identifiers,alias:ai"`

	AuthorID     int         `bun:",pk"`
	Author       *Author     `bun:"rel:belongs-to,join:author_id=id"`
	IdentifierID int         `bun:",pk"`
	Identifier   *Identifier `bun:"rel:belongs-to,join:identifier_id=id"`
}

type NarratorIdentifier struct {
	bun.BaseModel `bun:"table:narrator_identifiers,alias:ni"`

	NarratorID   int         `bun:",pk"`
	Narrator     *Narrator   `bun:"rel:belongs-to,join:narrator_id=id"`
	IdentifierID int         `bun:",pk"`
	Identifier   *Identifier `bun:"rel:belongs-to,join:identifier_id=id"`
}

type SeriesIdentifier struct {
	bun.BaseModel `bun:"table:series_identifiers,alias:si"`

	SeriesID     int         `bun:",pk"`
	Series       *Series     `bun:"rel:belongs-to,join:series_id=id"`
	IdentifierID int         `bun:",pk"`
	Identifier   *Identifier `bun:"rel:belongs-to,join:identifier_id=id"`
}
