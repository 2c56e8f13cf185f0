package series

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers series routes on a pre-configured group.
// Creation lives with ingestion.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, resolver *identifiers.Resolver, publisher events.Publisher) {
	h := &handler{
		seriesService: NewService(db, publisher, nil),
		resolver:      resolver,
	}

	g.GET("", h.list)
	g.GET("/identifier", identifiers.LookupHandler[*models.Series](resolver))
	g.POST("/identifiers", identifiers.ResolveManyHandler[*models.Series](resolver))
	g.GET("/:id", h.retrieve)
	g.GET("/:id/books", h.seriesBooks)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.deleteSeries)
	g.POST("/:id/restore", h.restore)
}
