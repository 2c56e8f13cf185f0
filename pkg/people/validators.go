package people

import "github.com/shishobooks/catalog/pkg/identifiers"

type ListPeopleQuery struct {
	Limit   int     `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset  int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Enabled *bool   `query:"enabled" json:"enabled,omitempty"`
	Search  *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

// UpdatePersonPayload changes an author or narrator. An empty description or
// image clears it. Identifiers are attached, RemoveIdentifiers detached.
type UpdatePersonPayload struct {
	Name              *string             `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description       *string             `json:"description,omitempty"`
	Image             *string             `json:"image,omitempty" validate:"omitempty,url"`
	Enabled           *bool               `json:"enabled,omitempty"`
	Identifiers       []identifiers.Input `json:"identifiers,omitempty" validate:"omitempty,dive"`
	RemoveIdentifiers []identifiers.Input `json:"remove_identifiers,omitempty" validate:"omitempty,dive"`
}
