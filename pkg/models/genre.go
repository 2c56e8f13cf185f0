package models

import (
	"github.com/uptrace/bun"
)

const (
	GenreTypeGenre = "genre"
	GenreTypeTag   = "tag"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`
	Entity

	Name      string `bun:",nullzero,notnull" json:"name"`
	Type      string `bun:",nullzero,notnull" json:"type"`
	BookCount int    `bun:",scanonly" json:"book_count"`
}

func (*Genre) Kind() Kind { return KindGenre }
