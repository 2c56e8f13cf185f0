package books

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

// mergedEdges lists the tables whose rows move from the source book to the
// target on a merge. Rows the target already has are dropped.
var mergedEdges = []string{"book_identifiers", "book_authors", "book_narrators", "book_series", "book_genres"}

// MergeBooks folds source into target. Identifiers and relation edges move to
// target, target keeps its own scalar columns (taking source's publisher only
// if it has none), and source is soft-deleted. Two books sharing an
// identifier are the usual reason to merge.
func (svc *Service) MergeBooks(ctx context.Context, target, source *models.Book) error {
	if target.ID == source.ID {
		return errcodes.ValidationError("Can't merge a book into itself.")
	}
	log := logger.FromContext(ctx)

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range mergedEdges {
			// UPDATE OR IGNORE leaves rows that would collide with the
			// target's unique indexes behind; they're removed below.
			_, err := tx.ExecContext(ctx,
				`UPDATE OR IGNORE ? SET book_id = ? WHERE book_id = ?`,
				bun.Ident(table), target.ID, source.ID,
			)
			if err != nil {
				return errors.WithStack(err)
			}
			_, err = tx.ExecContext(ctx, `DELETE FROM ? WHERE book_id = ?`, bun.Ident(table), source.ID)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		if target.PublisherID == nil && source.PublisherID != nil {
			target.PublisherID = source.PublisherID
			_, err := tx.NewUpdate().
				Model(target).
				Column("publisher_id").
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := svc.writer.Delete(ctx, source); err != nil {
		return err
	}
	svc.writer.Publish(ctx, events.TypeUpdated, target)

	log.Info("merged books", logger.Data{"target_id": target.PublicID, "source_id": source.PublicID})
	return nil
}
