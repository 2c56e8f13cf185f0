package publishers

type ListPublishersQuery struct {
	Limit   int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset  int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Enabled *bool   `query:"enabled" json:"enabled,omitempty"`
	Search  *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type CreatePublisherPayload struct {
	Name        string  `json:"name" mod:"trim" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Enabled     bool    `json:"enabled"`
}

// UpdatePublisherPayload changes a publisher. An empty description clears it.
type UpdatePublisherPayload struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

type MergePublishersPayload struct {
	SourceID string `json:"source_id" validate:"required"`
}
