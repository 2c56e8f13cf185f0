package people

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
)

type handler struct {
	personService *Service
	resolver      *identifiers.Resolver
}

// changes applies the payload to the shared person columns and returns the
// columns that changed.
func (params UpdatePersonPayload) changes(name *string, description, image **string, entity *models.Entity) []string {
	columns := []string{}
	if params.Name != nil && *params.Name != *name {
		*name = *params.Name
		columns = append(columns, "name")
	}
	if params.Description != nil && !equalOptional(*description, *params.Description) {
		*description = optional(*params.Description)
		columns = append(columns, "description")
	}
	if params.Image != nil && !equalOptional(*image, *params.Image) {
		*image = optional(*params.Image)
		columns = append(columns, "image")
	}
	if params.Enabled != nil && *params.Enabled != entity.Enabled {
		entity.Enabled = *params.Enabled
		columns = append(columns, "enabled")
	}
	return columns
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func equalOptional(current *string, s string) bool {
	if current == nil {
		return s == ""
	}
	return *current == s
}

func (h *handler) retrieveAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	author, err := h.personService.RetrieveAuthor(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) retrieveNarrator(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	narrator, err := h.personService.RetrieveNarrator(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, narrator))
}

func (h *handler) listOptions(c echo.Context) (ListPeopleOptions, error) {
	params := ListPeopleQuery{}
	if err := c.Bind(&params); err != nil {
		return ListPeopleOptions{}, errors.WithStack(err)
	}
	return ListPeopleOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		Enabled: params.Enabled,
		Search:  params.Search,
	}, nil
}

func (h *handler) listAuthors(c echo.Context) error {
	ctx := c.Request().Context()

	opts, err := h.listOptions(c)
	if err != nil {
		return err
	}

	authors, total, err := h.personService.ListAuthorsWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Authors []*models.Author `json:"authors"`
		Total   int              `json:"total"`
	}{authors, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) listNarrators(c echo.Context) error {
	ctx := c.Request().Context()

	opts, err := h.listOptions(c)
	if err != nil {
		return err
	}

	narrators, total, err := h.personService.ListNarratorsWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Narrators []*models.Narrator `json:"narrators"`
		Total     int                `json:"total"`
	}{narrators, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) updateAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := UpdatePersonPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.personService.RetrieveAuthor(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := params.changes(&author.Name, &author.Description, &author.Image, &author.Entity)
	if err := h.personService.UpdateAuthor(ctx, author, UpdatePersonOptions{Columns: columns}); err != nil {
		return errors.WithStack(err)
	}
	if err := h.resolver.Sync(ctx, author, params.Identifiers, params.RemoveIdentifiers); err != nil {
		return errors.WithStack(err)
	}

	author, err = h.personService.RetrieveAuthor(ctx, RetrievePersonOptions{ID: &author.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) updateNarrator(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := UpdatePersonPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	narrator, err := h.personService.RetrieveNarrator(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := params.changes(&narrator.Name, &narrator.Description, &narrator.Image, &narrator.Entity)
	if err := h.personService.UpdateNarrator(ctx, narrator, UpdatePersonOptions{Columns: columns}); err != nil {
		return errors.WithStack(err)
	}
	if err := h.resolver.Sync(ctx, narrator, params.Identifiers, params.RemoveIdentifiers); err != nil {
		return errors.WithStack(err)
	}

	narrator, err = h.personService.RetrieveNarrator(ctx, RetrievePersonOptions{ID: &narrator.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, narrator))
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	author, err := h.personService.RetrieveAuthor(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.personService.DeleteAuthor(ctx, author); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) deleteNarrator(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	narrator, err := h.personService.RetrieveNarrator(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.personService.DeleteNarrator(ctx, narrator); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) authoredBooks(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	author, err := h.personService.RetrieveAuthor(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.personService.GetAuthoredBooks(ctx, author.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) narratedBooks(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	narrator, err := h.personService.RetrieveNarrator(ctx, RetrievePersonOptions{PublicID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.personService.GetNarratedBooks(ctx, narrator.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}
