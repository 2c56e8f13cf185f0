package series

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/lifecycle"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveSeriesOptions struct {
	ID       *int
	PublicID *string
	Name     *string
	// WithDeleted includes soft-deleted series.
	WithDeleted bool
}

type ListSeriesOptions struct {
	Limit     *int
	Offset    *int
	Enabled   *bool
	PublicIDs []string
	Search    *string
	AfterID   *int

	includeTotal bool
}

type UpdateSeriesOptions struct {
	Columns []string
}

type Service struct {
	db     *bun.DB
	writer *lifecycle.Writer
}

func NewService(db *bun.DB, publisher events.Publisher, newID models.PublicIDFunc) *Service {
	return &Service{db, lifecycle.NewWriter(db, publisher, newID)}
}

func (svc *Service) CreateSeries(ctx context.Context, series *models.Series) error {
	return svc.writer.Insert(ctx, series, nil)
}

func (svc *Service) RetrieveSeries(ctx context.Context, opts RetrieveSeriesOptions) (*models.Series, error) {
	series := &models.Series{}

	q := svc.db.
		NewSelect().
		Model(series).
		ColumnExpr("s.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_series WHERE book_series.series_id = s.id) AS book_count").
		Relation("Identifiers", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("i.id ASC")
		})

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}
	if opts.PublicID != nil {
		q = q.Where("s.public_id = ?", *opts.PublicID)
	}
	if opts.Name != nil {
		// Case-insensitive match
		q = q.Where("LOWER(s.name) = LOWER(?)", *opts.Name).Order("s.id ASC").Limit(1)
	}
	if opts.WithDeleted {
		q = q.WhereAllWithDeleted()
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}

	return series, nil
}

// FindOrCreateSeries finds an existing series by name (case-insensitive) or
// creates a disabled one. The bool reports whether it was created.
func (svc *Service) FindOrCreateSeries(ctx context.Context, name string) (*models.Series, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errcodes.ValidationError("Series name can't be empty.")
	}

	series, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{Name: &name})
	if err == nil {
		return series, false, nil
	}
	if !errors.Is(err, errcodes.NotFound("Series")) {
		return nil, false, err
	}

	series = &models.Series{Name: name}
	if err := svc.CreateSeries(ctx, series); err != nil {
		return nil, false, err
	}
	return series, true, nil
}

func (svc *Service) ListSeries(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, error) {
	s, _, err := svc.listSeriesWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	opts.includeTotal = true
	return svc.listSeriesWithTotal(ctx, opts)
}

func (svc *Service) listSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	var series []*models.Series
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&series).
		ColumnExpr("s.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_series WHERE book_series.series_id = s.id) AS book_count").
		Order("s.id ASC")

	if opts.Enabled != nil {
		q = q.Where("s.enabled = ?", *opts.Enabled)
	}
	if len(opts.PublicIDs) > 0 {
		q = q.Where("s.public_id IN (?)", bun.In(opts.PublicIDs))
	}
	if opts.Search != nil && strings.TrimSpace(*opts.Search) != "" {
		q = q.Where("s.name LIKE ?", "%"+strings.TrimSpace(*opts.Search)+"%")
	}
	if opts.AfterID != nil {
		q = q.Where("s.id > ?", *opts.AfterID)
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

	return series, total, nil
}

// UpdateSeries writes the changed columns. A rename republishes the series'
// books.
func (svc *Service) UpdateSeries(ctx context.Context, series *models.Series, opts UpdateSeriesOptions) error {
	if err := svc.writer.Update(ctx, series, opts.Columns, nil); err != nil {
		return err
	}
	if !slices.Contains(opts.Columns, "name") {
		return nil
	}
	bookIDs, err := svc.bookIDs(ctx, series.ID)
	if err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

// DeleteSeries soft-deletes a series. Book edges are kept for a restore, but
// the books are republished without it.
func (svc *Service) DeleteSeries(ctx context.Context, series *models.Series) error {
	bookIDs, err := svc.bookIDs(ctx, series.ID)
	if err != nil {
		return err
	}
	if err := svc.writer.Delete(ctx, series); err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

// RestoreSeries restores a soft-deleted series and republishes it as created
// so the index picks it back up if it's enabled.
func (svc *Service) RestoreSeries(ctx context.Context, seriesID int) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Series)(nil)).
		Set("deleted_at = NULL").
		Where("id = ?", seriesID).
		WhereAllWithDeleted().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	series, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &seriesID})
	if err != nil {
		return err
	}
	svc.writer.Publish(ctx, events.TypeCreated, series)

	bookIDs, err := svc.bookIDs(ctx, seriesID)
	if err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

func (svc *Service) EnableSeries(ctx context.Context, series *models.Series) (bool, error) {
	return svc.writer.Enable(ctx, series)
}

// GetBooks returns the books in a series ordered by title.
func (svc *Service) GetBooks(ctx context.Context, seriesID int) ([]*models.Book, error) {
	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		Where("b.id IN (SELECT book_id FROM book_series WHERE series_id = ?)", seriesID).
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

func (svc *Service) bookIDs(ctx context.Context, seriesID int) ([]int, error) {
	var ids []int
	err := svc.db.NewSelect().
		Model((*models.BookSeries)(nil)).
		Column("book_id").
		Where("series_id = ?", seriesID).
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}
