package models

import (
	"github.com/uptrace/bun"
)

type Narrator struct {
	bun.BaseModel `bun:"table:narrators,alias:n"`
	Entity

	Name        string        `bun:",nullzero,notnull" json:"name"`
	Description *string       `json:"description"`
	Image       *string       `json:"image"`
	Identifiers []*Identifier `bun:"m2m:narrator_identifiers,join:Narrator=Identifier" json:"identifiers,omitempty"`
}

func (*Narrator) Kind() Kind { return KindNarrator }

func (n *Narrator) OwnerKey() int { return n.ID }

func (*Narrator) Ownership() Ownership { return NarratorOwnership }
