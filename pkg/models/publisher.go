package models

import (
	"github.com/uptrace/bun"
)

type Publisher struct {
	bun.BaseModel `bun:"table:publishers,alias:pub"`
	Entity

	Name        string  `bun:",nullzero,notnull" json:"name"`
	Description *string `json:"description"`
	BookCount   int     `bun:",scanonly" json:"book_count"`
}

func (*Publisher) Kind() Kind { return KindPublisher }
