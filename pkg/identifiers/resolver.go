package identifiers

import (
	"context"
	"reflect"
	"sort"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

// Resolver attaches identifiers to entities and finds entities by identifier.
// Absence is never an error: lookups return nil.
type Resolver struct {
	db    bun.IDB
	store *Store
}

func NewResolver(db bun.IDB, store *Store) *Resolver {
	return &Resolver{db: db, store: store}
}

// Lookup resolves a single input to its Identifier using the precedence
// public id > (type, value) > bare value.
func (r *Resolver) Lookup(ctx context.Context, in Input) (*models.Identifier, error) {
	ref, err := in.resolve(true)
	if err != nil {
		return nil, err
	}
	switch ref.mode {
	case refByPublicID:
		return r.store.RetrieveByPublicID(ctx, ref.publicID)
	case refByPair:
		return r.store.RetrieveByPair(ctx, ref.typ, ref.value)
	default:
		return r.store.RetrieveByValue(ctx, ref.value)
	}
}

// Attach resolves every input and associates the resulting set with owner.
// Public id references that don't resolve are skipped; type/value pairs are
// found or created. Already associated identifiers are left as they are.
func (r *Resolver) Attach(ctx context.Context, owner models.IdentifierOwner, inputs []Input) ([]*models.Identifier, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	log := logger.FromContext(ctx)
	resolved := make([]*models.Identifier, 0, len(inputs))
	seen := make(map[int]bool)
	for _, in := range inputs {
		ref, err := in.resolve(false)
		if err != nil {
			return nil, err
		}

		var ident *models.Identifier
		switch ref.mode {
		case refByPublicID:
			ident, err = r.store.RetrieveByPublicID(ctx, ref.publicID)
			if err != nil {
				return nil, err
			}
			if ident == nil {
				log.Debug("skipping unknown identifier reference", logger.Data{"identifier_id": ref.publicID})
				continue
			}
		case refByPair:
			ident, err = r.store.FindOrCreate(ctx, ref.typ, ref.value)
			if err != nil {
				return nil, err
			}
		}

		if !seen[ident.ID] {
			seen[ident.ID] = true
			resolved = append(resolved, ident)
		}
	}

	if err := r.associate(ctx, owner, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *Resolver) associate(ctx context.Context, owner models.IdentifierOwner, idents []*models.Identifier) error {
	if len(idents) == 0 {
		return nil
	}
	own := owner.Ownership()
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, ident := range idents {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO ? (?, identifier_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
				bun.Ident(own.PivotTable), bun.Ident(own.ForeignKey), owner.OwnerKey(), ident.ID,
			)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	})
}

// Detach removes the association between owner and the identifiers the inputs
// resolve to. The identifier rows themselves are kept.
func (r *Resolver) Detach(ctx context.Context, owner models.IdentifierOwner, inputs []Input) error {
	own := owner.Ownership()
	for _, in := range inputs {
		ident, err := r.Lookup(ctx, in)
		if err != nil {
			return err
		}
		if ident == nil {
			continue
		}
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM ? WHERE ? = ? AND identifier_id = ?`,
			bun.Ident(own.PivotTable), bun.Ident(own.ForeignKey), owner.OwnerKey(), ident.ID,
		)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func ownershipOf[T models.IdentifierOwner]() models.Ownership {
	var zero T
	return zero.Ownership()
}

// ResolveByIdentifier finds the identifier named by the query and returns every
// entity of kind T associated with it, identifiers loaded. It returns nil when
// the identifier doesn't exist.
func ResolveByIdentifier[T models.IdentifierOwner](ctx context.Context, r *Resolver, query Input) ([]T, error) {
	ident, err := r.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, nil
	}

	own := ownershipOf[T]()
	owners := []T{}
	err = r.db.NewSelect().
		Model(&owners).
		Relation("Identifiers").
		Where("?.id IN (SELECT ? FROM ? WHERE identifier_id = ?)",
			bun.Ident(own.Alias), bun.Ident(own.ForeignKey), bun.Ident(own.PivotTable), ident.ID).
		OrderExpr("?.id ASC", bun.Ident(own.Alias)).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return owners, nil
}

// ResolveByIdentifiers returns every entity of kind T associated with any of
// the inputs. Each entity appears once. It returns nil for an empty input list.
func ResolveByIdentifiers[T models.IdentifierOwner](ctx context.Context, r *Resolver, inputs []Input) ([]T, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	refs := make([]ref, 0, len(inputs))
	for _, in := range inputs {
		ref, err := in.resolve(false)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	matching := r.db.NewSelect().
		TableExpr("identifiers AS i").
		ColumnExpr("i.id").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, ref := range refs {
				if ref.mode == refByPublicID {
					q = q.WhereOr("i.public_id = ?", ref.publicID)
				} else {
					q = q.WhereOr("(i.type = ? AND i.value = ?)", string(ref.typ), ref.value)
				}
			}
			return q
		})

	own := ownershipOf[T]()
	owners := []T{}
	err := r.db.NewSelect().
		Model(&owners).
		Relation("Identifiers").
		Where("?.id IN (SELECT ? FROM ? WHERE identifier_id IN (?))",
			bun.Ident(own.Alias), bun.Ident(own.ForeignKey), bun.Ident(own.PivotTable), matching).
		OrderExpr("?.id ASC", bun.Ident(own.Alias)).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return owners, nil
}

// Fields is an exact-match filter over scalar columns. Nil values, including
// typed nil pointers, are ignored.
type Fields map[string]any

// FindDuplicateCandidate returns the oldest row of model T whose columns equal
// every non-absent field, or the zero T if there is none. A filter with no
// present fields matches nothing.
func FindDuplicateCandidate[T any](ctx context.Context, db bun.IDB, fields Fields) (T, error) {
	var zero T

	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if !isAbsent(v) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return zero, nil
	}
	sort.Strings(keys)

	rows := []T{}
	q := db.NewSelect().Model(&rows)
	for _, k := range keys {
		q = q.Where("? = ?", bun.Ident(k), deref(fields[k]))
	}
	err := q.OrderExpr("id ASC").Limit(1).Scan(ctx)
	if err != nil {
		return zero, errors.WithStack(err)
	}
	if len(rows) == 0 {
		return zero, nil
	}
	return rows[0], nil
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.Elem().Interface()
	}
	return v
}
