package people

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

func newHandler(db *bun.DB, resolver *identifiers.Resolver, publisher events.Publisher) *handler {
	return &handler{
		personService: NewService(db, publisher, nil),
		resolver:      resolver,
	}
}

// RegisterAuthorRoutesWithGroup registers author routes on a pre-configured
// group. Creation lives with ingestion.
func RegisterAuthorRoutesWithGroup(g *echo.Group, db *bun.DB, resolver *identifiers.Resolver, publisher events.Publisher) {
	h := newHandler(db, resolver, publisher)

	g.GET("", h.listAuthors)
	g.GET("/identifier", identifiers.LookupHandler[*models.Author](resolver))
	g.POST("/identifiers", identifiers.ResolveManyHandler[*models.Author](resolver))
	g.GET("/:id", h.retrieveAuthor)
	g.GET("/:id/books", h.authoredBooks)
	g.PATCH("/:id", h.updateAuthor)
	g.DELETE("/:id", h.deleteAuthor)
}

// RegisterNarratorRoutesWithGroup registers narrator routes on a
// pre-configured group.
func RegisterNarratorRoutesWithGroup(g *echo.Group, db *bun.DB, resolver *identifiers.Resolver, publisher events.Publisher) {
	h := newHandler(db, resolver, publisher)

	g.GET("", h.listNarrators)
	g.GET("/identifier", identifiers.LookupHandler[*models.Narrator](resolver))
	g.POST("/identifiers", identifiers.ResolveManyHandler[*models.Narrator](resolver))
	g.GET("/:id", h.retrieveNarrator)
	g.GET("/:id/books", h.narratedBooks)
	g.PATCH("/:id", h.updateNarrator)
	g.DELETE("/:id", h.deleteNarrator)
}
