package search

import (
	"github.com/shishobooks/catalog/pkg/models"
)

const bookPageSize = 10

// BookQuery is the filter set for book search. Text fields are matched
// against the analyzed document; the rest are exact filters.
type BookQuery struct {
	Title          string `query:"title" json:"title,omitempty" mod:"trim" validate:"omitempty,min=3,max=1023"`
	Subtitle       string `query:"subtitle" json:"subtitle,omitempty" mod:"trim" validate:"omitempty,min=3,max=1023"`
	Author         string `query:"author" json:"author,omitempty" mod:"trim" validate:"omitempty,min=3,max=1023"`
	Narrator       string `query:"narrator" json:"narrator,omitempty" mod:"trim" validate:"omitempty,min=3,max=1023"`
	Keywords       string `query:"keywords" json:"keywords,omitempty" mod:"trim" validate:"omitempty,min=3,max=1023"`
	Publisher      string `query:"publisher" json:"publisher,omitempty" mod:"trim" validate:"omitempty,max=1023"`
	Language       string `query:"language" json:"language,omitempty" mod:"trim" validate:"omitempty,max=255"`
	ReleasedAfter  string `query:"released_after" json:"released_after,omitempty" validate:"omitempty,date"`
	ReleasedBefore string `query:"released_before" json:"released_before,omitempty" validate:"omitempty,date"`
	IsExplicit     *bool  `query:"is_explicit" json:"is_explicit,omitempty"`
	IsAbridged     *bool  `query:"is_abridged" json:"is_abridged,omitempty"`
	Type           string `query:"type" json:"type,omitempty" validate:"omitempty,oneof=book audiobook podcast e-book"`
	Page           int    `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
}

// KindQuery searches one non-book kind by name and description.
type KindQuery struct {
	Kind  models.Kind `query:"kind" json:"kind" validate:"required,oneof=author narrator series genre publisher"`
	Query string      `query:"q" json:"q" mod:"trim" validate:"required,min=1,max=100"`
	Limit int         `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=50"`
}

type BookSearchResponse struct {
	Books []*models.Book `json:"books"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
}

type KindSearchResult struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Score float64 `json:"score"`
}

type KindSearchResponse struct {
	Results []KindSearchResult `json:"results"`
	Total   int                `json:"total"`
}

type RebuildResponse struct {
	Documents int `json:"documents"`
}
