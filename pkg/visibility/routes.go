package visibility

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the enable route on the books group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, publisher events.Publisher) {
	h := &handler{enabler: NewEnabler(db, publisher)}

	g.POST("/:id/enable", h.enable)
}

type handler struct {
	enabler *Enabler
}

func (h *handler) enable(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.enabler.EnableByPublicID(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}
