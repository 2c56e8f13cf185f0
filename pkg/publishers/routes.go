package publishers

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers publisher routes on a pre-configured
// group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, publisher events.Publisher) {
	h := &handler{
		publisherService: NewService(db, publisher, nil),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/books", h.books)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.deletePublisher)
	g.POST("/:id/merge", h.merge)
}
