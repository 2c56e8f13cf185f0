package ingest

import (
	"github.com/shishobooks/catalog/pkg/identifiers"
)

type ContributorPayload struct {
	Name string  `json:"name" mod:"trim" validate:"required,max=255"`
	Role *string `json:"role" validate:"omitempty,max=255"`
}

type SeriesPayload struct {
	Name     string  `json:"name" mod:"trim" validate:"required,max=255"`
	Position *string `json:"position" validate:"omitempty,max=32"`
}

type GenrePayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=255"`
	Type string `json:"type" validate:"omitempty,oneof=genre tag"`
}

// BookPayload is a book as submitted for ingestion. Related entities are named
// rather than referenced and are found or created by name.
type BookPayload struct {
	Title       string               `json:"title" mod:"trim" validate:"required,max=1023"`
	Subtitle    *string              `json:"subtitle" validate:"omitempty,max=1023"`
	Summary     *string              `json:"summary"`
	Description *string              `json:"description"`
	Image       *string              `json:"image" validate:"omitempty,url"`
	Language    *string              `json:"language" validate:"omitempty,max=255"`
	Copyright   *string              `json:"copyright" validate:"omitempty,max=1023"`
	Pages       *int                 `json:"pages" validate:"omitempty,min=0"`
	Duration    *int                 `json:"duration" validate:"omitempty,min=0"`
	ReleasedAt  *string              `json:"released_at" validate:"omitempty,date"`
	IsExplicit  bool                 `json:"is_explicit"`
	IsAbridged  *bool                `json:"is_abridged"`
	Type        string               `json:"type" default:"book" validate:"oneof=book audiobook podcast e-book"`
	Authors     []ContributorPayload `json:"authors" validate:"dive"`
	Narrators   []ContributorPayload `json:"narrators" validate:"dive"`
	Series      []SeriesPayload      `json:"series" validate:"dive"`
	Genres      []GenrePayload       `json:"genres" validate:"dive"`
	Publisher   *string              `json:"publisher" validate:"omitempty,max=255"`
	Identifiers []identifiers.Input  `json:"identifiers" validate:"dive"`
}

// PersonPayload is an author or narrator submitted for ingestion.
type PersonPayload struct {
	Name        string              `json:"name" mod:"trim" validate:"required,max=255"`
	Description *string             `json:"description"`
	Image       *string             `json:"image" validate:"omitempty,url"`
	Identifiers []identifiers.Input `json:"identifiers" validate:"dive"`
}

type SeriesIngestPayload struct {
	Name        string              `json:"name" mod:"trim" validate:"required,max=255"`
	Description *string             `json:"description"`
	Language    *string             `json:"language" validate:"omitempty,max=255"`
	Identifiers []identifiers.Input `json:"identifiers" validate:"dive"`
}

// Response wraps whatever was ingested with whether it was newly created or
// merged into an existing entity.
type Response struct {
	Created bool `json:"created"`
	Entity  any  `json:"entity"`
}
