package series

import "github.com/shishobooks/catalog/pkg/identifiers"

type ListSeriesQuery struct {
	Limit   int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset  int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Enabled *bool   `query:"enabled" json:"enabled,omitempty"`
	Search  *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

// UpdateSeriesPayload changes a series. An empty description or language
// clears it.
type UpdateSeriesPayload struct {
	Name              *string             `json:"name,omitempty" validate:"omitempty,min=1,max=300"`
	Description       *string             `json:"description,omitempty" validate:"omitempty,max=2000"`
	Language          *string             `json:"language,omitempty" validate:"omitempty,max=255"`
	Enabled           *bool               `json:"enabled,omitempty"`
	Identifiers       []identifiers.Input `json:"identifiers,omitempty" validate:"omitempty,dive"`
	RemoveIdentifiers []identifiers.Input `json:"remove_identifiers,omitempty" validate:"omitempty,dive"`
}
