// Package visibility makes a book and everything it directly relates to
// visible at once.
package visibility

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/genres"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/people"
	"github.com/shishobooks/catalog/pkg/publishers"
	"github.com/shishobooks/catalog/pkg/series"
	"github.com/uptrace/bun"
)

type Enabler struct {
	books      *books.Service
	people     *people.Service
	series     *series.Service
	genres     *genres.Service
	publishers *publishers.Service
}

func NewEnabler(db *bun.DB, publisher events.Publisher) *Enabler {
	return &Enabler{
		books:      books.NewService(db, publisher, nil),
		people:     people.NewService(db, publisher, nil),
		series:     series.NewService(db, publisher, nil),
		genres:     genres.NewService(db, publisher, nil),
		publishers: publishers.NewService(db, publisher, nil),
	}
}

// EnableEntityAndRelations enables the book, then each of its authors,
// narrators, genres, series and publisher that is still disabled. Every flip
// publishes its own visibility_changed event; entities that are already
// enabled are left alone. Relations of relations are not followed.
func (e *Enabler) EnableEntityAndRelations(ctx context.Context, bookID int) (*models.Book, error) {
	log := logger.FromContext(ctx)

	book, err := e.books.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return nil, err
	}
	if _, err := e.books.EnableBook(ctx, book); err != nil {
		return nil, err
	}

	// Re-read so relations reflect what's committed now.
	book, err = e.books.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return nil, err
	}

	enabled := 0
	track := func(flipped bool, err error) error {
		if flipped {
			enabled++
		}
		return err
	}
	// The same person can be credited twice under different roles.
	seen := map[models.Kind]map[int]bool{}
	first := func(rec models.Record) bool {
		ids := seen[rec.Kind()]
		if ids == nil {
			ids = map[int]bool{}
			seen[rec.Kind()] = ids
		}
		id := rec.Base().ID
		if ids[id] {
			return false
		}
		ids[id] = true
		return true
	}

	for _, a := range book.Authors {
		if a.Author == nil || !first(a.Author) {
			continue
		}
		if err := track(e.people.EnableAuthor(ctx, a.Author)); err != nil {
			return nil, errors.Wrap(err, "failed to enable author")
		}
	}
	for _, n := range book.Narrators {
		if n.Narrator == nil || !first(n.Narrator) {
			continue
		}
		if err := track(e.people.EnableNarrator(ctx, n.Narrator)); err != nil {
			return nil, errors.Wrap(err, "failed to enable narrator")
		}
	}
	for _, g := range book.BookGenres {
		if g.Genre == nil {
			continue
		}
		if err := track(e.genres.EnableGenre(ctx, g.Genre)); err != nil {
			return nil, errors.Wrap(err, "failed to enable genre")
		}
	}
	for _, s := range book.BookSeries {
		if s.Series == nil {
			continue
		}
		if err := track(e.series.EnableSeries(ctx, s.Series)); err != nil {
			return nil, errors.Wrap(err, "failed to enable series")
		}
	}
	if book.Publisher != nil {
		if err := track(e.publishers.EnablePublisher(ctx, book.Publisher)); err != nil {
			return nil, errors.Wrap(err, "failed to enable publisher")
		}
	}

	log.Debug("enabled book and relations", logger.Data{"book_id": book.PublicID, "relations_enabled": enabled})
	return book, nil
}

// EnableByPublicID is EnableEntityAndRelations for callers that only know the
// public id.
func (e *Enabler) EnableByPublicID(ctx context.Context, publicID string) (*models.Book, error) {
	book, err := e.books.RetrieveBookByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return e.EnableEntityAndRelations(ctx, book.ID)
}
