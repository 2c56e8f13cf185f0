package people

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

// Authors and narrators are stored in separate tables with the same shape, so
// one service covers both.

type RetrievePersonOptions struct {
	ID       *int
	PublicID *string
	Name     *string
}

type ListPeopleOptions struct {
	Limit     *int
	Offset    *int
	Enabled   *bool
	PublicIDs []string
	Search    *string
	AfterID   *int

	includeTotal bool
}

type UpdatePersonOptions struct {
	Columns []string
}

type Service struct {
	db     *bun.DB
	writer *lifecycle.Writer
}

func NewService(db *bun.DB, publisher events.Publisher, newID models.PublicIDFunc) *Service {
	return &Service{db, lifecycle.NewWriter(db, publisher, newID)}
}

type person[E any] interface {
	*E
	models.Record
	models.IdentifierOwner
}

func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author) error {
	return svc.writer.Insert(ctx, author, nil)
}

func (svc *Service) CreateNarrator(ctx context.Context, narrator *models.Narrator) error {
	return svc.writer.Insert(ctx, narrator, nil)
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrievePersonOptions) (*models.Author, error) {
	return retrieve[models.Author](ctx, svc.db, opts)
}

func (svc *Service) RetrieveNarrator(ctx context.Context, opts RetrievePersonOptions) (*models.Narrator, error) {
	return retrieve[models.Narrator](ctx, svc.db, opts)
}

func (svc *Service) ListAuthors(ctx context.Context, opts ListPeopleOptions) ([]*models.Author, error) {
	a, _, err := list[models.Author](ctx, svc.db, opts)
	return a, err
}

func (svc *Service) ListAuthorsWithTotal(ctx context.Context, opts ListPeopleOptions) ([]*models.Author, int, error) {
	opts.includeTotal = true
	return list[models.Author](ctx, svc.db, opts)
}

func (svc *Service) ListNarrators(ctx context.Context, opts ListPeopleOptions) ([]*models.Narrator, error) {
	n, _, err := list[models.Narrator](ctx, svc.db, opts)
	return n, err
}

func (svc *Service) ListNarratorsWithTotal(ctx context.Context, opts ListPeopleOptions) ([]*models.Narrator, int, error) {
	opts.includeTotal = true
	return list[models.Narrator](ctx, svc.db, opts)
}

// UpdateAuthor writes the changed columns. A rename republishes the credited
// books since their documents carry the name.
func (svc *Service) UpdateAuthor(ctx context.Context, author *models.Author, opts UpdatePersonOptions) error {
	return svc.update(ctx, author, opts, "book_authors", "author_id")
}

func (svc *Service) UpdateNarrator(ctx context.Context, narrator *models.Narrator, opts UpdatePersonOptions) error {
	return svc.update(ctx, narrator, opts, "book_narrators", "narrator_id")
}

func (svc *Service) update(ctx context.Context, rec models.Record, opts UpdatePersonOptions, table, column string) error {
	if err := svc.writer.Update(ctx, rec, opts.Columns, nil); err != nil {
		return err
	}
	if !slices.Contains(opts.Columns, "name") {
		return nil
	}
	bookIDs, err := svc.creditedBookIDs(ctx, rec, table, column)
	if err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

// DeleteAuthor removes the author. Book credits and identifier links go with
// it through ON DELETE CASCADE and the credited books are republished.
func (svc *Service) DeleteAuthor(ctx context.Context, author *models.Author) error {
	return svc.deleteCredited(ctx, author, "book_authors", "author_id")
}

func (svc *Service) DeleteNarrator(ctx context.Context, narrator *models.Narrator) error {
	return svc.deleteCredited(ctx, narrator, "book_narrators", "narrator_id")
}

func (svc *Service) deleteCredited(ctx context.Context, rec models.Record, table, column string) error {
	bookIDs, err := svc.creditedBookIDs(ctx, rec, table, column)
	if err != nil {
		return err
	}
	if err := svc.writer.Delete(ctx, rec); err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

func (svc *Service) creditedBookIDs(ctx context.Context, rec models.Record, table, column string) ([]int, error) {
	var ids []int
	err := svc.db.NewSelect().
		Table(table).
		Column("book_id").
		Where("? = ?", bun.Ident(column), rec.Base().ID).
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

func (svc *Service) EnableAuthor(ctx context.Context, author *models.Author) (bool, error) {
	return svc.writer.Enable(ctx, author)
}

func (svc *Service) EnableNarrator(ctx context.Context, narrator *models.Narrator) (bool, error) {
	return svc.writer.Enable(ctx, narrator)
}

// FindOrCreateAuthor matches on name case-insensitively and otherwise creates
// a disabled author.
func (svc *Service) FindOrCreateAuthor(ctx context.Context, name string) (*models.Author, bool, error) {
	return findOrCreate(ctx, name, svc.RetrieveAuthor, func(name string) (*models.Author, error) {
		author := &models.Author{Name: name}
		return author, svc.CreateAuthor(ctx, author)
	})
}

func (svc *Service) FindOrCreateNarrator(ctx context.Context, name string) (*models.Narrator, bool, error) {
	return findOrCreate(ctx, name, svc.RetrieveNarrator, func(name string) (*models.Narrator, error) {
		narrator := &models.Narrator{Name: name}
		return narrator, svc.CreateNarrator(ctx, narrator)
	})
}

// GetAuthoredBooks returns the books crediting the author, once each even
// when the author holds several roles on a book.
func (svc *Service) GetAuthoredBooks(ctx context.Context, authorID int) ([]*models.Book, error) {
	return svc.creditedBooks(ctx, "book_authors", "author_id", authorID)
}

func (svc *Service) GetNarratedBooks(ctx context.Context, narratorID int) ([]*models.Book, error) {
	return svc.creditedBooks(ctx, "book_narrators", "narrator_id", narratorID)
}

func (svc *Service) creditedBooks(ctx context.Context, table, column string, id int) ([]*models.Book, error) {
	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		Where("b.id IN (SELECT book_id FROM ? WHERE ? = ?)", bun.Ident(table), bun.Ident(column), id).
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

func retrieve[E any, T person[E]](ctx context.Context, db bun.IDB, opts RetrievePersonOptions) (T, error) {
	var zero T
	rec := T(new(E))
	own := rec.Ownership()

	q := db.NewSelect().
		Model(rec).
		Relation("Identifiers", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("i.id ASC")
		})

	if opts.ID != nil {
		q = q.Where("?.id = ?", bun.Ident(own.Alias), *opts.ID)
	}
	if opts.PublicID != nil {
		q = q.Where("?.public_id = ?", bun.Ident(own.Alias), *opts.PublicID)
	}
	if opts.Name != nil {
		q = q.Where("LOWER(?.name) = LOWER(?)", bun.Ident(own.Alias), *opts.Name).
			OrderExpr("?.id ASC", bun.Ident(own.Alias)).
			Limit(1)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, errcodes.NotFound(resourceName(rec.Kind()))
		}
		return zero, errors.WithStack(err)
	}
	return rec, nil
}

func list[E any, T person[E]](ctx context.Context, db bun.IDB, opts ListPeopleOptions) ([]T, int, error) {
	var zero T
	own := zero.Ownership()
	alias := bun.Ident(own.Alias)

	people := []T{}
	var total int
	var err error

	q := db.NewSelect().
		Model(&people).
		OrderExpr("?.id ASC", alias)

	if opts.Enabled != nil {
		q = q.Where("?.enabled = ?", alias, *opts.Enabled)
	}
	if len(opts.PublicIDs) > 0 {
		q = q.Where("?.public_id IN (?)", alias, bun.In(opts.PublicIDs))
	}
	if opts.Search != nil && strings.TrimSpace(*opts.Search) != "" {
		q = q.Where("?.name LIKE ?", alias, "%"+strings.TrimSpace(*opts.Search)+"%")
	}
	if opts.AfterID != nil {
		q = q.Where("?.id > ?", alias, *opts.AfterID)
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
	return people, total, nil
}

func findOrCreate[T models.Record](
	ctx context.Context,
	name string,
	retrieve func(context.Context, RetrievePersonOptions) (T, error),
	create func(name string) (T, error),
) (T, bool, error) {
	var zero T
	name = strings.TrimSpace(name)
	if name == "" {
		return zero, false, errcodes.ValidationError("Name can't be empty.")
	}

	existing, err := retrieve(ctx, RetrievePersonOptions{Name: &name})
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, errcodes.NotFound(resourceName(zero.Kind()))) {
		return zero, false, err
	}

	created, err := create(name)
	if err != nil {
		return zero, false, err
	}
	return created, true, nil
}

func resourceName(k models.Kind) string {
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}
