package books

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/lifecycle"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID       *int
	PublicID *string
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	Enabled   *bool
	PublicIDs []string
	// AfterID pages by primary key, used by the index rebuild.
	AfterID *int

	includeTotal bool
}

// UpdateBookOptions names what changed. Columns are scalar columns on the
// books row; the Update* flags replace the corresponding edges with what's set
// on the book.
type UpdateBookOptions struct {
	Columns         []string
	UpdateAuthors   bool
	UpdateNarrators bool
	UpdateSeries    bool
	UpdateGenres    bool
}

func (opts UpdateBookOptions) empty() bool {
	return len(opts.Columns) == 0 && !opts.UpdateAuthors && !opts.UpdateNarrators && !opts.UpdateSeries && !opts.UpdateGenres
}

type Service struct {
	db     *bun.DB
	writer *lifecycle.Writer
}

func NewService(db *bun.DB, publisher events.Publisher, newID models.PublicIDFunc) *Service {
	return &Service{db, lifecycle.NewWriter(db, publisher, newID)}
}

// CreateBook inserts the book together with whatever edges are set on it.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	return svc.writer.Insert(ctx, book, func(ctx context.Context, tx bun.Tx) error {
		return replaceEdges(ctx, tx, book, UpdateBookOptions{
			UpdateAuthors:   len(book.Authors) > 0,
			UpdateNarrators: len(book.Narrators) > 0,
			UpdateSeries:    len(book.BookSeries) > 0,
			UpdateGenres:    len(book.BookGenres) > 0,
		})
	})
}

// RetrieveBook loads a book with every relation the API and the search index
// need.
func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := withRelations(svc.db.NewSelect().Model(book))

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.PublicID != nil {
		q = q.Where("b.public_id = ?", *opts.PublicID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) RetrieveBookByPublicID(ctx context.Context, publicID string) (*models.Book, error) {
	return svc.RetrieveBook(ctx, RetrieveBookOptions{PublicID: &publicID})
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := withRelations(svc.db.NewSelect().Model(&books)).
		Order("b.id ASC")

	if opts.Enabled != nil {
		q = q.Where("b.enabled = ?", *opts.Enabled)
	}
	if len(opts.PublicIDs) > 0 {
		q = q.Where("b.public_id IN (?)", bun.In(opts.PublicIDs))
	}
	if opts.AfterID != nil {
		q = q.Where("b.id > ?", *opts.AfterID)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// UpdateBook persists the changed columns and edges, then publishes one event
// whose type reflects any change to enabled.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if opts.empty() {
		return nil
	}
	return svc.writer.Update(ctx, book, opts.Columns, func(ctx context.Context, tx bun.Tx) error {
		return replaceEdges(ctx, tx, book, opts)
	})
}

// DeleteBook soft-deletes a book. Its edges stay so a restore is lossless.
func (svc *Service) DeleteBook(ctx context.Context, book *models.Book) error {
	return svc.writer.Delete(ctx, book)
}

// EnableBook flips enabled to true if needed and reports whether it did.
func (svc *Service) EnableBook(ctx context.Context, book *models.Book) (bool, error) {
	return svc.writer.Enable(ctx, book)
}

func withRelations(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Publisher").
		Relation("Authors", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("ba.sort_order ASC")
		}).
		Relation("Authors.Author").
		Relation("Narrators", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("bn.sort_order ASC")
		}).
		Relation("Narrators.Narrator").
		Relation("BookSeries", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("bs.id ASC")
		}).
		Relation("BookSeries.Series").
		Relation("BookGenres", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("bg.id ASC")
		}).
		Relation("BookGenres.Genre").
		Relation("Identifiers", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("i.id ASC")
		})
}

// replaceEdges deletes and reinserts each edge set flagged in opts.
func replaceEdges(ctx context.Context, tx bun.Tx, book *models.Book, opts UpdateBookOptions) error {
	if opts.UpdateAuthors {
		for i, a := range book.Authors {
			a.ID = 0
			a.BookID = book.ID
			if a.AuthorID == 0 && a.Author != nil {
				a.AuthorID = a.Author.ID
			}
			if a.SortOrder == 0 {
				a.SortOrder = i + 1
			}
		}
		if err := replace(ctx, tx, (*models.BookAuthor)(nil), book.ID, &book.Authors, len(book.Authors)); err != nil {
			return err
		}
	}
	if opts.UpdateNarrators {
		for i, n := range book.Narrators {
			n.ID = 0
			n.BookID = book.ID
			if n.NarratorID == 0 && n.Narrator != nil {
				n.NarratorID = n.Narrator.ID
			}
			if n.SortOrder == 0 {
				n.SortOrder = i + 1
			}
		}
		if err := replace(ctx, tx, (*models.BookNarrator)(nil), book.ID, &book.Narrators, len(book.Narrators)); err != nil {
			return err
		}
	}
	if opts.UpdateSeries {
		for _, s := range book.BookSeries {
			s.ID = 0
			s.BookID = book.ID
			if s.SeriesID == 0 && s.Series != nil {
				s.SeriesID = s.Series.ID
			}
		}
		if err := replace(ctx, tx, (*models.BookSeries)(nil), book.ID, &book.BookSeries, len(book.BookSeries)); err != nil {
			return err
		}
	}
	if opts.UpdateGenres {
		for _, g := range book.BookGenres {
			g.ID = 0
			g.BookID = book.ID
			if g.GenreID == 0 && g.Genre != nil {
				g.GenreID = g.Genre.ID
			}
		}
		if err := replace(ctx, tx, (*models.BookGenre)(nil), book.ID, &book.BookGenres, len(book.BookGenres)); err != nil {
			return err
		}
	}
	return nil
}

func replace(ctx context.Context, tx bun.Tx, model interface{}, bookID int, rows interface{}, n int) error {
	_, err := tx.
		NewDelete().
		Model(model).
		Where("book_id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return nil
	}
	_, err = tx.
		NewInsert().
		Model(rows).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}
