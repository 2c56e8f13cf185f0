package ingest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	ingestService *Service
}

func respond(c echo.Context, entity any, created bool) error {
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return errors.WithStack(c.JSON(status, &Response{Created: created, Entity: entity}))
}

func (h *handler) book(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, created, err := h.ingestService.IngestBook(ctx, params)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond(c, book, created)
}

func (h *handler) author(c echo.Context) error {
	ctx := c.Request().Context()

	params := PersonPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, created, err := h.ingestService.IngestAuthor(ctx, params)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond(c, author, created)
}

func (h *handler) narrator(c echo.Context) error {
	ctx := c.Request().Context()

	params := PersonPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	narrator, created, err := h.ingestService.IngestNarrator(ctx, params)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond(c, narrator, created)
}

func (h *handler) series(c echo.Context) error {
	ctx := c.Request().Context()

	params := SeriesIngestPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, created, err := h.ingestService.IngestSeries(ctx, params)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond(c, series, created)
}
