package genres

type ListGenresQuery struct {
	Limit   int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset  int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Enabled *bool   `query:"enabled" json:"enabled,omitempty"`
	Type    *string `query:"type" json:"type,omitempty" validate:"omitempty,oneof=genre tag"`
	Search  *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type CreateGenrePayload struct {
	Name    string `json:"name" mod:"trim" validate:"required,max=255"`
	Type    string `json:"type" default:"genre" validate:"oneof=genre tag"`
	Enabled bool   `json:"enabled"`
}

type UpdateGenrePayload struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Type    *string `json:"type,omitempty" validate:"omitempty,oneof=genre tag"`
	Enabled *bool   `json:"enabled,omitempty"`
}

type MergeGenresPayload struct {
	SourceID string `json:"source_id" validate:"required"`
}
