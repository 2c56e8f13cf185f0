package genres

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/models"
)

type handler struct {
	genreService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListGenresQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genres, total, err := h.genreService.ListGenresWithTotal(ctx, ListGenresOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		Enabled: params.Enabled,
		Type:    params.Type,
		Search:  params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Genres []*models.Genre `json:"genres"`
		Total  int             `json:"total"`
	}{genres, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genre := &models.Genre{Name: params.Name, Type: params.Type}
	genre.Enabled = params.Enabled
	if err := h.genreService.CreateGenre(ctx, genre); err != nil {
		return errors.WithStack(err)
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &genre.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, genre))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := UpdateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateGenreOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != genre.Name {
		genre.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Type != nil && *params.Type != genre.Type {
		genre.Type = *params.Type
		opts.Columns = append(opts.Columns, "type")
	}
	if params.Enabled != nil && *params.Enabled != genre.Enabled {
		genre.Enabled = *params.Enabled
		opts.Columns = append(opts.Columns, "enabled")
	}

	if err := h.genreService.UpdateGenre(ctx, genre, opts); err != nil {
		return errors.WithStack(err)
	}

	genre, err = h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &genre.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) books(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.genreService.GetBooks(ctx, genre.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

// merge folds the genre named in the body into the one in the path.
func (h *handler) merge(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := MergeGenresPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	target, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	source, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{PublicID: &params.SourceID})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.genreService.MergeGenres(ctx, target, source); err != nil {
		return errors.WithStack(err)
	}

	target, err = h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &target.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, target))
}

func (h *handler) deleteGenre(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.genreService.DeleteGenre(ctx, genre); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
