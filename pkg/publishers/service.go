package publishers

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

type RetrievePublisherOptions struct {
	ID       *int
	PublicID *string
	Name     *string
}

type ListPublishersOptions struct {
	Limit     *int
	Offset    *int
	Enabled   *bool
	PublicIDs []string
	Search    *string
	AfterID   *int

	includeTotal bool
}

type UpdatePublisherOptions struct {
	Columns []string
}

type Service struct {
	db     *bun.DB
	writer *lifecycle.Writer
}

func NewService(db *bun.DB, publisher events.Publisher, newID models.PublicIDFunc) *Service {
	return &Service{db, lifecycle.NewWriter(db, publisher, newID)}
}

func (svc *Service) CreatePublisher(ctx context.Context, publisher *models.Publisher) error {
	return svc.writer.Insert(ctx, publisher, nil)
}

func (svc *Service) RetrievePublisher(ctx context.Context, opts RetrievePublisherOptions) (*models.Publisher, error) {
	publisher := &models.Publisher{}

	q := svc.db.
		NewSelect().
		Model(publisher).
		ColumnExpr("pub.*").
		ColumnExpr("(SELECT COUNT(*) FROM books WHERE books.publisher_id = pub.id AND books.deleted_at IS NULL) AS book_count")

	if opts.ID != nil {
		q = q.Where("pub.id = ?", *opts.ID)
	}
	if opts.PublicID != nil {
		q = q.Where("pub.public_id = ?", *opts.PublicID)
	}
	if opts.Name != nil {
		// Case-insensitive match
		q = q.Where("LOWER(pub.name) = LOWER(?)", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Publisher")
		}
		return nil, errors.WithStack(err)
	}

	return publisher, nil
}

// FindOrCreatePublisher finds a publisher by name (case-insensitive) or
// creates a disabled one. The bool reports whether it was created.
func (svc *Service) FindOrCreatePublisher(ctx context.Context, name string) (*models.Publisher, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errcodes.ValidationError("Publisher name can't be empty.")
	}

	opts := RetrievePublisherOptions{Name: &name}
	publisher, err := svc.RetrievePublisher(ctx, opts)
	if err == nil {
		return publisher, false, nil
	}
	if !errors.Is(err, errcodes.NotFound("Publisher")) {
		return nil, false, err
	}

	publisher = &models.Publisher{Name: name}
	err = svc.CreatePublisher(ctx, publisher)
	if err != nil {
		// Lost a race with a concurrent create of the same name.
		if errors.Is(err, errcodes.Conflict("Publisher")) {
			publisher, err = svc.RetrievePublisher(ctx, opts)
			return publisher, false, err
		}
		return nil, false, err
	}
	return publisher, true, nil
}

func (svc *Service) ListPublishers(ctx context.Context, opts ListPublishersOptions) ([]*models.Publisher, error) {
	p, _, err := svc.listPublishersWithTotal(ctx, opts)
	return p, errors.WithStack(err)
}

func (svc *Service) ListPublishersWithTotal(ctx context.Context, opts ListPublishersOptions) ([]*models.Publisher, int, error) {
	opts.includeTotal = true
	return svc.listPublishersWithTotal(ctx, opts)
}

func (svc *Service) listPublishersWithTotal(ctx context.Context, opts ListPublishersOptions) ([]*models.Publisher, int, error) {
	var publishers []*models.Publisher
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&publishers).
		ColumnExpr("pub.*").
		ColumnExpr("(SELECT COUNT(*) FROM books WHERE books.publisher_id = pub.id AND books.deleted_at IS NULL) AS book_count").
		Order("pub.id ASC")

	if opts.Enabled != nil {
		q = q.Where("pub.enabled = ?", *opts.Enabled)
	}
	if len(opts.PublicIDs) > 0 {
		q = q.Where("pub.public_id IN (?)", bun.In(opts.PublicIDs))
	}
	if opts.Search != nil && strings.TrimSpace(*opts.Search) != "" {
		q = q.Where("pub.name LIKE ?", "%"+strings.TrimSpace(*opts.Search)+"%")
	}
	if opts.AfterID != nil {
		q = q.Where("pub.id > ?", *opts.AfterID)
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

	return publishers, total, nil
}

// UpdatePublisher writes the changed columns. A rename republishes the
// publisher's books.
func (svc *Service) UpdatePublisher(ctx context.Context, publisher *models.Publisher, opts UpdatePublisherOptions) error {
	if err := svc.writer.Update(ctx, publisher, opts.Columns, nil); err != nil {
		return err
	}
	if !slices.Contains(opts.Columns, "name") {
		return nil
	}
	bookIDs, err := svc.bookIDs(ctx, publisher.ID)
	if err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

func (svc *Service) EnablePublisher(ctx context.Context, publisher *models.Publisher) (bool, error) {
	return svc.writer.Enable(ctx, publisher)
}

// DeletePublisher deletes a publisher. Its books keep existing with no
// publisher (ON DELETE SET NULL) and are republished.
func (svc *Service) DeletePublisher(ctx context.Context, publisher *models.Publisher) error {
	bookIDs, err := svc.bookIDs(ctx, publisher.ID)
	if err != nil {
		return err
	}
	if err := svc.writer.Delete(ctx, publisher); err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

// MergePublishers moves every book from source to target and deletes source.
func (svc *Service) MergePublishers(ctx context.Context, target, source *models.Publisher) error {
	if target.ID == source.ID {
		return errcodes.ValidationError("Can't merge a publisher into itself.")
	}
	bookIDs, err := svc.bookIDs(ctx, source.ID)
	if err != nil {
		return err
	}

	_, err = svc.db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("publisher_id = ?", target.ID).
		Where("publisher_id = ?", source.ID).
		WhereAllWithDeleted().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := svc.writer.Delete(ctx, source); err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

func (svc *Service) bookIDs(ctx context.Context, publisherID int) ([]int, error) {
	var ids []int
	err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Column("id").
		Where("publisher_id = ?", publisherID).
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

// GetBooks returns the books from a publisher ordered by title.
func (svc *Service) GetBooks(ctx context.Context, publisherID int) ([]*models.Book, error) {
	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		Where("b.publisher_id = ?", publisherID).
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}
