package genres

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

type RetrieveGenreOptions struct {
	ID       *int
	PublicID *string
	Name     *string
	Type     *string
}

type ListGenresOptions struct {
	Limit     *int
	Offset    *int
	Enabled   *bool
	Type      *string
	PublicIDs []string
	Search    *string
	AfterID   *int

	includeTotal bool
}

type UpdateGenreOptions struct {
	Columns []string
}

type Service struct {
	db     *bun.DB
	writer *lifecycle.Writer
}

func NewService(db *bun.DB, publisher events.Publisher, newID models.PublicIDFunc) *Service {
	return &Service{db, lifecycle.NewWriter(db, publisher, newID)}
}

func (svc *Service) CreateGenre(ctx context.Context, genre *models.Genre) error {
	if genre.Type == "" {
		genre.Type = models.GenreTypeGenre
	}
	return svc.writer.Insert(ctx, genre, nil)
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}

	q := svc.db.
		NewSelect().
		Model(genre).
		ColumnExpr("g.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_genres WHERE book_genres.genre_id = g.id) AS book_count")

	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.PublicID != nil {
		q = q.Where("g.public_id = ?", *opts.PublicID)
	}
	if opts.Name != nil {
		// Case-insensitive match
		q = q.Where("LOWER(g.name) = LOWER(?)", *opts.Name)
	}
	if opts.Type != nil {
		q = q.Where("g.type = ?", *opts.Type)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Genre")
		}
		return nil, errors.WithStack(err)
	}

	return genre, nil
}

// FindOrCreateGenre finds a genre by name and type (case-insensitive) or
// creates a disabled one. The bool reports whether it was created.
func (svc *Service) FindOrCreateGenre(ctx context.Context, name, genreType string) (*models.Genre, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errcodes.ValidationError("Genre name can't be empty.")
	}
	if genreType == "" {
		genreType = models.GenreTypeGenre
	}

	opts := RetrieveGenreOptions{Name: &name, Type: &genreType}
	genre, err := svc.RetrieveGenre(ctx, opts)
	if err == nil {
		return genre, false, nil
	}
	if !errors.Is(err, errcodes.NotFound("Genre")) {
		return nil, false, err
	}

	genre = &models.Genre{Name: name, Type: genreType}
	err = svc.CreateGenre(ctx, genre)
	if err != nil {
		// Another request created the same genre between our retrieve and
		// create.
		if errors.Is(err, errcodes.Conflict("Genre")) {
			genre, err = svc.RetrieveGenre(ctx, opts)
			return genre, false, err
		}
		return nil, false, err
	}
	return genre, true, nil
}

func (svc *Service) ListGenres(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, error) {
	g, _, err := svc.listGenresWithTotal(ctx, opts)
	return g, errors.WithStack(err)
}

func (svc *Service) ListGenresWithTotal(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	opts.includeTotal = true
	return svc.listGenresWithTotal(ctx, opts)
}

func (svc *Service) listGenresWithTotal(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	var genres []*models.Genre
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&genres).
		ColumnExpr("g.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_genres WHERE book_genres.genre_id = g.id) AS book_count").
		Order("g.id ASC")

	if opts.Enabled != nil {
		q = q.Where("g.enabled = ?", *opts.Enabled)
	}
	if opts.Type != nil {
		q = q.Where("g.type = ?", *opts.Type)
	}
	if len(opts.PublicIDs) > 0 {
		q = q.Where("g.public_id IN (?)", bun.In(opts.PublicIDs))
	}
	if opts.Search != nil && strings.TrimSpace(*opts.Search) != "" {
		q = q.Where("g.name LIKE ?", "%"+strings.TrimSpace(*opts.Search)+"%")
	}
	if opts.AfterID != nil {
		q = q.Where("g.id > ?", *opts.AfterID)
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

	return genres, total, nil
}

// UpdateGenre writes the changed columns. A rename republishes the
// genre's books.
func (svc *Service) UpdateGenre(ctx context.Context, genre *models.Genre, opts UpdateGenreOptions) error {
	if err := svc.writer.Update(ctx, genre, opts.Columns, nil); err != nil {
		return err
	}
	if !slices.Contains(opts.Columns, "name") {
		return nil
	}
	bookIDs, err := svc.bookIDs(ctx, genre.ID)
	if err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

func (svc *Service) EnableGenre(ctx context.Context, genre *models.Genre) (bool, error) {
	return svc.writer.Enable(ctx, genre)
}

// DeleteGenre deletes a genre. Book associations go with it through ON DELETE
// CASCADE and the affected books are republished.
func (svc *Service) DeleteGenre(ctx context.Context, genre *models.Genre) error {
	bookIDs, err := svc.bookIDs(ctx, genre.ID)
	if err != nil {
		return err
	}
	if err := svc.writer.Delete(ctx, genre); err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

// GetBooks returns the books tagged with a genre.
func (svc *Service) GetBooks(ctx context.Context, genreID int) ([]*models.Book, error) {
	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		Where("b.id IN (SELECT book_id FROM book_genres WHERE genre_id = ?)", genreID).
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

// MergeGenres merges source into target: books move over, source is deleted.
func (svc *Service) MergeGenres(ctx context.Context, target, source *models.Genre) error {
	if target.ID == source.ID {
		return errcodes.ValidationError("Can't merge a genre into itself.")
	}
	bookIDs, err := svc.bookIDs(ctx, source.ID)
	if err != nil {
		return err
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Skip books already tagged with target to avoid unique constraint
		// violations.
		_, err := tx.NewRaw(`
			UPDATE book_genres
			SET genre_id = ?
			WHERE genre_id = ?
			AND book_id NOT IN (SELECT book_id FROM book_genres WHERE genre_id = ?)
		`, target.ID, source.ID, target.ID).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("genre_id = ?", source.ID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return err
	}

	if err := svc.writer.Delete(ctx, source); err != nil {
		return err
	}
	return svc.writer.TouchBooks(ctx, bookIDs)
}

func (svc *Service) bookIDs(ctx context.Context, genreID int) ([]int, error) {
	var ids []int
	err := svc.db.NewSelect().
		Model((*models.BookGenre)(nil)).
		Column("book_id").
		Where("genre_id = ?", genreID).
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}
