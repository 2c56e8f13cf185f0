package books

import "github.com/shishobooks/catalog/pkg/identifiers"

type ListBooksQuery struct {
	Limit   int   `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset  int   `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Enabled *bool `query:"enabled" json:"enabled,omitempty"`
}

// CreditInput credits an existing author or narrator by public id.
type CreditInput struct {
	ID   string  `json:"id" validate:"required,max=64"`
	Role *string `json:"role,omitempty" validate:"omitempty,max=255"`
}

// SeriesInput places the book in an existing series by public id.
type SeriesInput struct {
	ID       string  `json:"id" validate:"required,max=64"`
	Position *string `json:"position,omitempty" validate:"omitempty,max=32"`
}

// UpdateBookPayload changes a book. Nil fields are left alone. A relation
// list that is present, even empty, replaces the current one. An empty
// publisher clears it.
type UpdateBookPayload struct {
	Title             *string             `json:"title,omitempty" validate:"omitempty,min=1,max=1023"`
	Subtitle          *string             `json:"subtitle,omitempty" validate:"omitempty,max=1023"`
	Summary           *string             `json:"summary,omitempty"`
	Description       *string             `json:"description,omitempty"`
	Image             *string             `json:"image,omitempty" validate:"omitempty,url"`
	Language          *string             `json:"language,omitempty" validate:"omitempty,max=255"`
	Copyright         *string             `json:"copyright,omitempty" validate:"omitempty,max=1023"`
	Pages             *int                `json:"pages,omitempty" validate:"omitempty,min=0"`
	Duration          *int                `json:"duration,omitempty" validate:"omitempty,min=0"`
	ReleasedAt        *string             `json:"released_at,omitempty" validate:"omitempty,date"`
	IsExplicit        *bool               `json:"is_explicit,omitempty"`
	IsAbridged        *bool               `json:"is_abridged,omitempty"`
	Type              *string             `json:"type,omitempty" validate:"omitempty,oneof=book audiobook podcast e-book"`
	Enabled           *bool               `json:"enabled,omitempty"`
	Authors           []CreditInput       `json:"authors,omitempty" validate:"omitempty,dive"`
	Narrators         []CreditInput       `json:"narrators,omitempty" validate:"omitempty,dive"`
	Series            []SeriesInput       `json:"series,omitempty" validate:"omitempty,dive"`
	Genres            []string            `json:"genres,omitempty" validate:"omitempty,dive,max=64"`
	Publisher         *string             `json:"publisher,omitempty" validate:"omitempty,max=64"`
	Identifiers       []identifiers.Input `json:"identifiers,omitempty" validate:"omitempty,dive"`
	RemoveIdentifiers []identifiers.Input `json:"remove_identifiers,omitempty" validate:"omitempty,dive"`
}

type MergeBooksPayload struct {
	SourceID string `json:"source_id" validate:"required"`
}
