// Package lifecycle persists catalog entities and publishes the matching
// lifecycle event once the write has committed.
package lifecycle

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

// TxFunc runs extra writes inside the same transaction as the entity row.
type TxFunc func(ctx context.Context, tx bun.Tx) error

// Writer is shared by the entity services.
type Writer struct {
	db        *bun.DB
	publisher events.Publisher
	newID     models.PublicIDFunc
}

func NewWriter(db *bun.DB, publisher events.Publisher, newID models.PublicIDFunc) *Writer {
	return &Writer{db: db, publisher: publisher, newID: newID}
}

func (w *Writer) DB() *bun.DB {
	return w.db
}

// Insert stamps and inserts rec, runs after in the same transaction, then
// publishes created.
func (w *Writer) Insert(ctx context.Context, rec models.Record, after TxFunc) error {
	if err := rec.Base().Stamp(w.newID); err != nil {
		return errors.WithStack(err)
	}

	err := w.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(rec).
			Returning("*").
			Exec(ctx)
		if err != nil {
			if isUniqueViolation(err) {
				return errcodes.Conflict(resourceName(rec.Kind()))
			}
			return errors.WithStack(err)
		}
		if after != nil {
			return after(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return err
	}

	events.Emit(ctx, w.publisher, events.TypeCreated, rec)
	return nil
}

// Update writes columns (plus updated_at) and whatever extra does, then
// publishes updated, visibility_changed, or hidden depending on how enabled
// moved. An update with nothing to write is a no-op.
func (w *Writer) Update(ctx context.Context, rec models.Record, columns []string, extra TxFunc) error {
	if len(columns) == 0 && extra == nil {
		return nil
	}
	base := rec.Base()

	var wasEnabled bool
	err := w.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(rec).
			Column("enabled").
			Where("id = ?", base.ID).
			Scan(ctx, &wasEnabled)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound(resourceName(rec.Kind()))
			}
			return errors.WithStack(err)
		}
		if !slices.Contains(columns, "enabled") {
			// The caller's copy may be stale; the row keeps its visibility.
			base.Enabled = wasEnabled
		}

		if extra != nil {
			if err := extra(ctx, tx); err != nil {
				return err
			}
		}

		base.UpdatedAt = time.Now()
		cols := append(append([]string{}, columns...), "updated_at")
		_, err = tx.
			NewUpdate().
			Model(rec).
			Column(cols...).
			WherePK().
			Exec(ctx)
		if err != nil {
			if isUniqueViolation(err) {
				return errcodes.Conflict(resourceName(rec.Kind()))
			}
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	events.Emit(ctx, w.publisher, events.UpdateType(wasEnabled, base.Enabled), rec)
	return nil
}

// Enable sets enabled on rec if it isn't already and reports whether it
// flipped. An already enabled entity is left untouched and nothing is
// published.
func (w *Writer) Enable(ctx context.Context, rec models.Record) (bool, error) {
	base := rec.Base()
	if base.Enabled {
		return false, nil
	}
	base.Enabled = true
	if err := w.Update(ctx, rec, []string{"enabled"}, nil); err != nil {
		base.Enabled = false
		return false, err
	}
	return true, nil
}

// Delete removes rec (soft-deleting models that support it) and publishes
// deleted.
func (w *Writer) Delete(ctx context.Context, rec models.Record) error {
	res, err := w.db.
		NewDelete().
		Model(rec).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound(resourceName(rec.Kind()))
	}

	events.Emit(ctx, w.publisher, events.TypeDeleted, rec)
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func resourceName(k models.Kind) string {
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Publish emits an event for a write the caller performed itself.
func (w *Writer) Publish(ctx context.Context, t events.Type, rec models.Record) {
	events.Emit(ctx, w.publisher, t, rec)
}

// TouchBooks publishes updated for the books with the given ids. It is used
// after writes to shared entities that change what those books' documents
// contain, such as merges.
func (w *Writer) TouchBooks(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	books := []*models.Book{}
	err := w.db.NewSelect().
		Model(&books).
		Where("b.id IN (?)", bun.In(ids)).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	for _, book := range books {
		events.Emit(ctx, w.publisher, events.TypeUpdated, book)
	}
	return nil
}
