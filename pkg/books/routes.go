package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/genres"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/people"
	"github.com/shishobooks/catalog/pkg/publishers"
	"github.com/shishobooks/catalog/pkg/series"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
// Creation lives with ingestion and enabling with visibility, which mount on
// the same prefix.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, resolver *identifiers.Resolver, publisher events.Publisher) {
	h := &handler{
		bookService:      NewService(db, publisher, nil),
		personService:    people.NewService(db, publisher, nil),
		seriesService:    series.NewService(db, publisher, nil),
		genreService:     genres.NewService(db, publisher, nil),
		publisherService: publishers.NewService(db, publisher, nil),
		resolver:         resolver,
	}

	g.GET("", h.list)
	g.GET("/identifier", identifiers.LookupHandler[*models.Book](resolver))
	g.POST("/identifiers", identifiers.ResolveManyHandler[*models.Book](resolver))
	g.GET("/:id", h.retrieve)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.deleteBook)
	g.POST("/:id/merge", h.merge)
}
