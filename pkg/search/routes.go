package search

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers search routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, index Index, synchronizer *Synchronizer) {
	h := &handler{
		searchService: NewService(index),
		bookService:   books.NewService(db, nil, nil),
		synchronizer:  synchronizer,
	}

	g.GET("", h.kind)
	g.GET("/books", h.books)
	g.POST("/rebuild", h.rebuild)
}
