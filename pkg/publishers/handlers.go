package publishers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/models"
)

type handler struct {
	publisherService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, publisher))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListPublishersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publishers, total, err := h.publisherService.ListPublishersWithTotal(ctx, ListPublishersOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		Enabled: params.Enabled,
		Search:  params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Publishers []*models.Publisher `json:"publishers"`
		Total      int                 `json:"total"`
	}{publishers, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreatePublisherPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publisher := &models.Publisher{Name: params.Name, Description: params.Description}
	publisher.Enabled = params.Enabled
	if err := h.publisherService.CreatePublisher(ctx, publisher); err != nil {
		return errors.WithStack(err)
	}

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &publisher.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, publisher))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := UpdatePublisherPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdatePublisherOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != publisher.Name {
		publisher.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Description != nil {
		current := ""
		if publisher.Description != nil {
			current = *publisher.Description
		}
		if *params.Description != current {
			publisher.Description = params.Description
			if *params.Description == "" {
				publisher.Description = nil
			}
			opts.Columns = append(opts.Columns, "description")
		}
	}
	if params.Enabled != nil && *params.Enabled != publisher.Enabled {
		publisher.Enabled = *params.Enabled
		opts.Columns = append(opts.Columns, "enabled")
	}

	if err := h.publisherService.UpdatePublisher(ctx, publisher, opts); err != nil {
		return errors.WithStack(err)
	}

	publisher, err = h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &publisher.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, publisher))
}

func (h *handler) books(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.publisherService.GetBooks(ctx, publisher.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

// merge folds the publisher named in the body into the one in the path.
func (h *handler) merge(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := MergePublishersPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	target, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	source, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{PublicID: &params.SourceID})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.publisherService.MergePublishers(ctx, target, source); err != nil {
		return errors.WithStack(err)
	}

	target, err = h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{ID: &target.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, target))
}

func (h *handler) deletePublisher(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	publisher, err := h.publisherService.RetrievePublisher(ctx, RetrievePublisherOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.publisherService.DeletePublisher(ctx, publisher); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
