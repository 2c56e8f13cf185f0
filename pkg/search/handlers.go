package search

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/models"
)

type handler struct {
	searchService *Service
	bookService   *books.Service
	synchronizer  *Synchronizer
}

func (h *handler) books(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	res, err := h.searchService.SearchBooks(ctx, params)
	if err != nil {
		return errors.WithStack(err)
	}

	// The index can lag behind, so only books that are still enabled are
	// returned.
	found := []*models.Book{}
	if ids := res.PublicIDs(); len(ids) > 0 {
		enabled := true
		bs, err := h.bookService.ListBooks(ctx, books.ListBooksOptions{
			PublicIDs: ids,
			Enabled:   &enabled,
		})
		if err != nil {
			return errors.WithStack(err)
		}
		byID := make(map[string]*models.Book, len(bs))
		for _, b := range bs {
			byID[b.PublicID] = b
		}
		for _, id := range ids {
			if b, ok := byID[id]; ok {
				found = append(found, b)
			}
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, &BookSearchResponse{
		Books: found,
		Total: res.Total,
		Page:  params.Page,
	}))
}

func (h *handler) kind(c echo.Context) error {
	ctx := c.Request().Context()

	params := KindQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	res, err := h.searchService.SearchKind(ctx, params.Kind, params.Query, params.Limit)
	if err != nil {
		return errors.WithStack(err)
	}

	results := make([]KindSearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, KindSearchResult{ID: hit.PublicID, Kind: hit.Kind, Score: hit.Score})
	}

	return errors.WithStack(c.JSON(http.StatusOK, &KindSearchResponse{
		Results: results,
		Total:   res.Total,
	}))
}

func (h *handler) rebuild(c echo.Context) error {
	ctx := c.Request().Context()

	n, err := h.synchronizer.RebuildAll(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, &RebuildResponse{Documents: n}))
}
