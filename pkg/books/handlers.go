package books

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/genres"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/people"
	"github.com/shishobooks/catalog/pkg/publishers"
	"github.com/shishobooks/catalog/pkg/series"
)

const dateLayout = "2006-01-02"

type handler struct {
	bookService      *Service
	personService    *people.Service
	seriesService    *series.Service
	genreService     *genres.Service
	publisherService *publishers.Service
	resolver         *identifiers.Resolver
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBookByPublicID(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		Enabled: params.Enabled,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the book.
	book, err := h.bookService.RetrieveBookByPublicID(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateBookOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	for column, change := range map[string]struct {
		value   *string
		current **string
	}{
		"subtitle":    {params.Subtitle, &book.Subtitle},
		"summary":     {params.Summary, &book.Summary},
		"description": {params.Description, &book.Description},
		"image":       {params.Image, &book.Image},
		"language":    {params.Language, &book.Language},
		"copyright":   {params.Copyright, &book.Copyright},
	} {
		if setOptional(change.current, change.value) {
			opts.Columns = append(opts.Columns, column)
		}
	}
	if params.Pages != nil && !sameInt(book.Pages, *params.Pages) {
		book.Pages = params.Pages
		opts.Columns = append(opts.Columns, "pages")
	}
	if params.Duration != nil && !sameInt(book.Duration, *params.Duration) {
		book.Duration = params.Duration
		opts.Columns = append(opts.Columns, "duration")
	}
	if params.ReleasedAt != nil {
		var releasedAt *time.Time
		if *params.ReleasedAt != "" {
			t, err := time.Parse(dateLayout, *params.ReleasedAt)
			if err != nil {
				return errcodes.ValidationError(`"released_at" should be in the format of YYYY-MM-DD`)
			}
			releasedAt = &t
		}
		book.ReleasedAt = releasedAt
		opts.Columns = append(opts.Columns, "released_at")
	}
	if params.IsExplicit != nil && *params.IsExplicit != book.IsExplicit {
		book.IsExplicit = *params.IsExplicit
		opts.Columns = append(opts.Columns, "is_explicit")
	}
	if params.IsAbridged != nil {
		book.IsAbridged = params.IsAbridged
		opts.Columns = append(opts.Columns, "is_abridged")
	}
	if params.Type != nil && *params.Type != book.Type {
		book.Type = *params.Type
		opts.Columns = append(opts.Columns, "type")
	}
	if params.Enabled != nil && *params.Enabled != book.Enabled {
		book.Enabled = *params.Enabled
		opts.Columns = append(opts.Columns, "enabled")
	}

	if err := h.applyRelations(c, book, params, &opts); err != nil {
		return err
	}

	// Update the model.
	if err := h.bookService.UpdateBook(ctx, book, opts); err != nil {
		return errors.WithStack(err)
	}
	if err := h.resolver.Sync(ctx, book, params.Identifiers, params.RemoveIdentifiers); err != nil {
		return errors.WithStack(err)
	}

	// Reload the model.
	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

// applyRelations resolves the public ids in the payload's relation lists and
// sets the replacement edges on book.
func (h *handler) applyRelations(c echo.Context, book *models.Book, params UpdateBookPayload, opts *UpdateBookOptions) error {
	ctx := c.Request().Context()

	if params.Authors != nil {
		book.Authors = make([]*models.BookAuthor, 0, len(params.Authors))
		for _, credit := range params.Authors {
			author, err := h.personService.RetrieveAuthor(ctx, people.RetrievePersonOptions{PublicID: &credit.ID})
			if err != nil {
				return errors.WithStack(err)
			}
			book.Authors = append(book.Authors, &models.BookAuthor{AuthorID: author.ID, Role: credit.Role})
		}
		opts.UpdateAuthors = true
	}
	if params.Narrators != nil {
		book.Narrators = make([]*models.BookNarrator, 0, len(params.Narrators))
		for _, credit := range params.Narrators {
			narrator, err := h.personService.RetrieveNarrator(ctx, people.RetrievePersonOptions{PublicID: &credit.ID})
			if err != nil {
				return errors.WithStack(err)
			}
			book.Narrators = append(book.Narrators, &models.BookNarrator{NarratorID: narrator.ID, Role: credit.Role})
		}
		opts.UpdateNarrators = true
	}
	if params.Series != nil {
		book.BookSeries = make([]*models.BookSeries, 0, len(params.Series))
		for _, entry := range params.Series {
			s, err := h.seriesService.RetrieveSeries(ctx, series.RetrieveSeriesOptions{PublicID: &entry.ID})
			if err != nil {
				return errors.WithStack(err)
			}
			book.BookSeries = append(book.BookSeries, &models.BookSeries{SeriesID: s.ID, Position: entry.Position})
		}
		opts.UpdateSeries = true
	}
	if params.Genres != nil {
		book.BookGenres = make([]*models.BookGenre, 0, len(params.Genres))
		for _, id := range params.Genres {
			genre, err := h.genreService.RetrieveGenre(ctx, genres.RetrieveGenreOptions{PublicID: &id})
			if err != nil {
				return errors.WithStack(err)
			}
			book.BookGenres = append(book.BookGenres, &models.BookGenre{GenreID: genre.ID})
		}
		opts.UpdateGenres = true
	}
	if params.Publisher != nil {
		var publisherID *int
		if *params.Publisher != "" {
			publisher, err := h.publisherService.RetrievePublisher(ctx, publishers.RetrievePublisherOptions{PublicID: params.Publisher})
			if err != nil {
				return errors.WithStack(err)
			}
			publisherID = &publisher.ID
		}
		book.PublisherID = publisherID
		opts.Columns = append(opts.Columns, "publisher_id")
	}
	return nil
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBookByPublicID(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.bookService.DeleteBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// merge folds the book named in the body into the one in the path.
func (h *handler) merge(c echo.Context) error {
	ctx := c.Request().Context()

	params := MergeBooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	target, err := h.bookService.RetrieveBookByPublicID(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}
	source, err := h.bookService.RetrieveBookByPublicID(ctx, params.SourceID)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookService.MergeBooks(ctx, target, source); err != nil {
		return errors.WithStack(err)
	}

	target, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &target.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, target))
}

// setOptional applies a clearable string field and reports whether it
// changed. An empty value clears it.
func setOptional(current **string, value *string) bool {
	if value == nil {
		return false
	}
	if *current == nil && *value == "" {
		return false
	}
	if *current != nil && **current == *value {
		return false
	}
	if *value == "" {
		*current = nil
	} else {
		v := *value
		*current = &v
	}
	return true
}

func sameInt(current *int, v int) bool {
	return current != nil && *current == v
}
