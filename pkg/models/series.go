package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`
	Entity

	DeletedAt   *time.Time    `bun:",soft_delete" json:"-"`
	Name        string        `bun:",nullzero,notnull" json:"name"`
	Description *string       `json:"description"`
	Language    *string       `json:"language"`
	Identifiers []*Identifier `bun:"m2m:series_identifiers,join:Series=Identifier" json:"identifiers,omitempty"`
	BookCount   int           `bun:",scanonly" json:"book_count"`
}

func (*Series) Kind() Kind { return KindSeries }

func (s *Series) OwnerKey() int { return s.ID }

func (*Series) Ownership() Ownership { return SeriesOwnership }
