package identifiers

// LookupQuery is the query string accepted by the single identifier lookup
// routes. Unlike Input it may carry a bare value with no type.
type LookupQuery struct {
	ID    *string `query:"id" json:"id,omitempty" validate:"omitempty,max=64"`
	Type  *string `query:"type" json:"type,omitempty" validate:"omitempty,identifier_type"`
	Value *string `query:"value" json:"value,omitempty" validate:"omitempty,max=255"`
}

func (q LookupQuery) Input() Input {
	return Input{ID: q.ID, Type: q.Type, Value: q.Value}
}

// ResolveManyPayload is the body of the bulk identifier lookup routes.
type ResolveManyPayload struct {
	Identifiers []Input `json:"identifiers" validate:"required,min=1,max=100,dive"`
}
