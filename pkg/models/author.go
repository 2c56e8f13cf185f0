package models

import (
	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`
	Entity

	Name        string        `bun:",nullzero,notnull" json:"name"`
	Description *string       `json:"description"`
	Image       *string       `json:"image"`
	Identifiers []*Identifier `bun:"m2m:author_identifiers,join:Author=Identifier" json:"identifiers,omitempty"`
}

func (*Author) Kind() Kind { return KindAuthor }

func (a *Author) OwnerKey() int { return a.ID }

func (*Author) Ownership() Ownership { return AuthorOwnership }
