package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/genres"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/ingest"
	"github.com/shishobooks/catalog/pkg/people"
	"github.com/shishobooks/catalog/pkg/publishers"
	"github.com/shishobooks/catalog/pkg/search"
	"github.com/shishobooks/catalog/pkg/series"
	"github.com/shishobooks/catalog/pkg/visibility"
	"github.com/uptrace/bun"
)

// Dependencies are the long-lived collaborators shared by every route group.
type Dependencies struct {
	Publisher    events.Publisher
	Index        search.Index
	Synchronizer *search.Synchronizer
}

func New(cfg *config.Config, db *bun.DB, deps Dependencies) (*http.Server, error) {
	e, err := newEcho(cfg, db, deps)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, deps Dependencies) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	config.RegisterRoutes(e, cfg)

	store, err := identifiers.NewStore(db, nil, cfg.IdentifierCacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resolver := identifiers.NewResolver(db, store)

	registerRoutes(e, db, resolver, deps)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func registerRoutes(e *echo.Echo, db *bun.DB, resolver *identifiers.Resolver, deps Dependencies) {
	// Creation goes through ingest, which merges into existing entities, so
	// POST /books, /authors, /narrators and /series live at the root.
	ingest.RegisterRoutesWithGroup(e.Group(""), db, resolver, deps.Publisher)

	// Books routes
	booksGroup := e.Group("/books")
	books.RegisterRoutesWithGroup(booksGroup, db, resolver, deps.Publisher)
	visibility.RegisterRoutesWithGroup(booksGroup, db, deps.Publisher)

	// People routes
	people.RegisterAuthorRoutesWithGroup(e.Group("/authors"), db, resolver, deps.Publisher)
	people.RegisterNarratorRoutesWithGroup(e.Group("/narrators"), db, resolver, deps.Publisher)

	// Series routes
	series.RegisterRoutesWithGroup(e.Group("/series"), db, resolver, deps.Publisher)

	// Genres and publishers carry no identifiers.
	genres.RegisterRoutesWithGroup(e.Group("/genres"), db, deps.Publisher)
	publishers.RegisterRoutesWithGroup(e.Group("/publishers"), db, deps.Publisher)

	// Search routes
	search.RegisterRoutesWithGroup(e.Group("/search"), db, deps.Index, deps.Synchronizer)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
