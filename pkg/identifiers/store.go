package identifiers

import (
	"context"
	"database/sql"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

type pairKey struct {
	typ   Type
	value string
}

// Store is the durable (type, value) -> Identifier mapping. Identifier rows are
// immutable and never deleted, so lookups are cached without invalidation.
type Store struct {
	db    bun.IDB
	newID models.PublicIDFunc

	byPair     *lru.Cache[pairKey, models.Identifier]
	byPublicID *lru.Cache[string, models.Identifier]
}

// NewStore creates a Store. A cacheSize of zero or less disables caching.
func NewStore(db bun.IDB, newID models.PublicIDFunc, cacheSize int) (*Store, error) {
	if newID == nil {
		newID = models.NewPublicID
	}
	s := &Store{db: db, newID: newID}
	if cacheSize > 0 {
		var err error
		s.byPair, err = lru.New[pairKey, models.Identifier](cacheSize)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		s.byPublicID, err = lru.New[string, models.Identifier](cacheSize)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return s, nil
}

// FindOrCreate returns the identifier for the exact (type, value) pair,
// inserting it if needed. Concurrent callers converge on the same row through
// the unique index; there is no check-then-insert window.
func (s *Store) FindOrCreate(ctx context.Context, t Type, value string) (*models.Identifier, error) {
	if ident, ok := s.cachedPair(t, value); ok {
		return ident, nil
	}

	publicID, err := s.newID()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	now := time.Now()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO identifiers (public_id, created_at, updated_at, type, value)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (type, value) DO NOTHING`,
		publicID, now, now, string(t), value,
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ident, err := s.RetrieveByPair(ctx, t, value)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, errors.Errorf("identifier %s:%s missing after upsert", t, value)
	}
	return ident, nil
}

// RetrieveByPublicID returns nil without an error when nothing matches.
func (s *Store) RetrieveByPublicID(ctx context.Context, publicID string) (*models.Identifier, error) {
	if s.byPublicID != nil {
		if ident, ok := s.byPublicID.Get(publicID); ok {
			return &ident, nil
		}
	}
	return s.retrieve(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("i.public_id = ?", publicID)
	})
}

// RetrieveByPair returns nil without an error when nothing matches.
func (s *Store) RetrieveByPair(ctx context.Context, t Type, value string) (*models.Identifier, error) {
	if ident, ok := s.cachedPair(t, value); ok {
		return ident, nil
	}
	return s.retrieve(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("i.type = ?", string(t)).Where("i.value = ?", value)
	})
}

// RetrieveByValue matches on value alone and returns the oldest match. The
// same value may exist under several types; callers accept the ambiguity.
func (s *Store) RetrieveByValue(ctx context.Context, value string) (*models.Identifier, error) {
	return s.retrieve(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("i.value = ?", value)
	})
}

func (s *Store) retrieve(ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery) (*models.Identifier, error) {
	ident := &models.Identifier{}
	err := apply(s.db.NewSelect().Model(ident)).
		Order("i.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	s.remember(ident)
	return ident, nil
}

func (s *Store) cachedPair(t Type, value string) (*models.Identifier, bool) {
	if s.byPair == nil {
		return nil, false
	}
	ident, ok := s.byPair.Get(pairKey{t, value})
	if !ok {
		return nil, false
	}
	return &ident, true
}

func (s *Store) remember(ident *models.Identifier) {
	if s.byPair == nil {
		return
	}
	s.byPair.Add(pairKey{Type(ident.Type), ident.Value}, *ident)
	s.byPublicID.Add(ident.PublicID, *ident)
}
