package ingest

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the creation routes on a group mounted at
// the API root. Each route merges into an existing entity when it can.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, resolver *identifiers.Resolver, publisher events.Publisher) {
	h := &handler{
		ingestService: NewService(db, resolver, publisher, nil),
	}

	g.POST("/books", h.book)
	g.POST("/authors", h.author)
	g.POST("/narrators", h.narrator)
	g.POST("/series", h.series)
}
