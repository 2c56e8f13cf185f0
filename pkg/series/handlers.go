package series

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
)

type handler struct {
	seriesService *Service
	resolver      *identifiers.Resolver
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListSeriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, total, err := h.seriesService.ListSeriesWithTotal(ctx, ListSeriesOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		Enabled: params.Enabled,
		Search:  params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Series []*models.Series `json:"series"`
		Total  int              `json:"total"`
	}{series, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := UpdateSeriesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateSeriesOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != series.Name {
		series.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Description != nil && !sameOptional(series.Description, *params.Description) {
		series.Description = optional(*params.Description)
		opts.Columns = append(opts.Columns, "description")
	}
	if params.Language != nil && !sameOptional(series.Language, *params.Language) {
		series.Language = optional(*params.Language)
		opts.Columns = append(opts.Columns, "language")
	}
	if params.Enabled != nil && *params.Enabled != series.Enabled {
		series.Enabled = *params.Enabled
		opts.Columns = append(opts.Columns, "enabled")
	}

	if err := h.seriesService.UpdateSeries(ctx, series, opts); err != nil {
		return errors.WithStack(err)
	}
	if err := h.resolver.Sync(ctx, series, params.Identifiers, params.RemoveIdentifiers); err != nil {
		return errors.WithStack(err)
	}

	series, err = h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &series.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) deleteSeries(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.seriesService.DeleteSeries(ctx, series); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) restore(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{PublicID: &id, WithDeleted: true})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.seriesService.RestoreSeries(ctx, series.ID); err != nil {
		return errors.WithStack(err)
	}

	series, err = h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &series.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) seriesBooks(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.seriesService.GetBooks(ctx, series.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sameOptional(current *string, s string) bool {
	if current == nil {
		return s == ""
	}
	return *current == s
}
