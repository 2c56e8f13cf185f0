package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Kind names an entity kind. It is used in lifecycle events and search
// document ids.
type Kind string

const (
	KindBook      Kind = "book"
	KindAuthor    Kind = "author"
	KindNarrator  Kind = "narrator"
	KindSeries    Kind = "series"
	KindGenre     Kind = "genre"
	KindPublisher Kind = "publisher"
)

// Kinds lists every entity kind in the order the search index is rebuilt.
var Kinds = []Kind{KindBook, KindAuthor, KindNarrator, KindSeries, KindGenre, KindPublisher}

// PublicIDFunc generates the opaque identifier exposed to API callers.
type PublicIDFunc func() (string, error)

// NewPublicID is the default PublicIDFunc.
func NewPublicID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return id.String(), nil
}

// RegisterModels registers the join models bun needs for m2m relations. It
// must be called on every *bun.DB before querying.
func RegisterModels(db *bun.DB) {
	db.RegisterModel(
		(*BookIdentifier)(nil),
		(*AuthorIdentifier)(nil),
		(*NarratorIdentifier)(nil),
		(*SeriesIdentifier)(nil),
	)
}

// Entity holds the columns every catalog entity shares. The integer key never
// leaves the service; PublicID is what callers see as "id".
type Entity struct {
	ID        int       `bun:",pk,nullzero" json:"-"`
	PublicID  string    `bun:",nullzero,notnull" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Enabled   bool      `bun:",notnull" json:"enabled"`
}

func (e *Entity) Base() *Entity { return e }

// Stamp fills in the public id and timestamps of a row about to be inserted.
func (e *Entity) Stamp(newID PublicIDFunc) error {
	if e.PublicID == "" {
		if newID == nil {
			newID = NewPublicID
		}
		id, err := newID()
		if err != nil {
			return err
		}
		e.PublicID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.UpdatedAt = e.CreatedAt
	return nil
}

// Record is implemented by every entity model through its embedded Entity.
type Record interface {
	Base() *Entity
	Kind() Kind
}
