package search

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/genres"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/people"
	"github.com/shishobooks/catalog/pkg/publishers"
	"github.com/shishobooks/catalog/pkg/series"
	"github.com/shishobooks/catalog/pkg/worker"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

const rebuildBatchSize = 200

// Synchronizer keeps the index in step with entity lifecycle events. It
// never blocks the publisher: every index call is handed to the dispatcher,
// and failures are logged and dropped.
type Synchronizer struct {
	index      Index
	dispatcher worker.Dispatcher

	books      *books.Service
	people     *people.Service
	series     *series.Service
	genres     *genres.Service
	publishers *publishers.Service
}

func NewSynchronizer(db *bun.DB, index Index, dispatcher worker.Dispatcher) *Synchronizer {
	// The services are only read from here, so they publish nothing.
	return &Synchronizer{
		index:      index,
		dispatcher: dispatcher,
		books:      books.NewService(db, nil, nil),
		people:     people.NewService(db, nil, nil),
		series:     series.NewService(db, nil, nil),
		genres:     genres.NewService(db, nil, nil),
		publishers: publishers.NewService(db, nil, nil),
	}
}

func (s *Synchronizer) HandleEvent(ctx context.Context, event events.Event) {
	switch event.Type {
	case events.TypeDeleted, events.TypeHidden:
		s.dispatch(ctx, event, func(ctx context.Context) error {
			return s.index.DeleteDocument(ctx, DocumentID(event.Kind, event.PublicID))
		})
	case events.TypeCreated, events.TypeUpdated, events.TypeVisibilityChanged:
		if !event.Enabled {
			return
		}
		s.dispatch(ctx, event, func(ctx context.Context) error {
			return s.upsert(ctx, event)
		})
	}
}

func (s *Synchronizer) dispatch(ctx context.Context, event events.Event, fn worker.Func) {
	name := "search_sync:" + string(event.Type) + ":" + string(event.Kind)
	s.dispatcher.Dispatch(ctx, name, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			logger.FromContext(ctx).Err(err).Warn("search index sync failed", logger.Data{
				"event":     event.Type,
				"kind":      event.Kind,
				"public_id": event.PublicID,
			})
		}
		return nil
	})
}

// upsert re-reads the entity so the document reflects what's committed, not
// what the event carried.
func (s *Synchronizer) upsert(ctx context.Context, event events.Event) error {
	doc, enabled, err := s.load(ctx, event.Kind, event.EntityID)
	if err != nil {
		if errcodes.IsNotFound(err) {
			logger.FromContext(ctx).Debug("entity gone before sync", logger.Data{"kind": event.Kind, "public_id": event.PublicID})
			return nil
		}
		return err
	}
	if !enabled {
		return s.index.DeleteDocument(ctx, doc.DocumentID())
	}
	if event.Type == events.TypeCreated {
		return s.index.AddDocuments(ctx, []Document{doc})
	}
	return s.index.UpdateDocuments(ctx, []Document{doc})
}

func (s *Synchronizer) load(ctx context.Context, kind models.Kind, id int) (Document, bool, error) {
	switch kind {
	case models.KindBook:
		book, err := s.books.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &id})
		if err != nil {
			return nil, false, err
		}
		return BuildBookDocument(book), book.Enabled, nil
	case models.KindAuthor:
		author, err := s.people.RetrieveAuthor(ctx, people.RetrievePersonOptions{ID: &id})
		if err != nil {
			return nil, false, err
		}
		return BuildAuthorDocument(author), author.Enabled, nil
	case models.KindNarrator:
		narrator, err := s.people.RetrieveNarrator(ctx, people.RetrievePersonOptions{ID: &id})
		if err != nil {
			return nil, false, err
		}
		return BuildNarratorDocument(narrator), narrator.Enabled, nil
	case models.KindSeries:
		ser, err := s.series.RetrieveSeries(ctx, series.RetrieveSeriesOptions{ID: &id})
		if err != nil {
			return nil, false, err
		}
		return BuildSeriesDocument(ser), ser.Enabled, nil
	case models.KindGenre:
		genre, err := s.genres.RetrieveGenre(ctx, genres.RetrieveGenreOptions{ID: &id})
		if err != nil {
			return nil, false, err
		}
		return BuildGenreDocument(genre), genre.Enabled, nil
	case models.KindPublisher:
		publisher, err := s.publishers.RetrievePublisher(ctx, publishers.RetrievePublisherOptions{ID: &id})
		if err != nil {
			return nil, false, err
		}
		return BuildPublisherDocument(publisher), publisher.Enabled, nil
	}
	return nil, false, errors.Errorf("unknown entity kind %q", kind)
}

// RebuildAll drops the index and re-indexes every enabled entity. Kinds are
// loaded concurrently. It returns the number of documents written.
func (s *Synchronizer) RebuildAll(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	if err := s.index.Reset(ctx); err != nil {
		return 0, errors.WithStack(err)
	}

	counts := make([]int, len(models.Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range models.Kinds {
		g.Go(func() error {
			n, err := s.rebuildKind(gctx, kind)
			counts[i] = n
			return errors.Wrapf(err, "failed to rebuild %s documents", kind)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for i, kind := range models.Kinds {
		total += counts[i]
		log.Debug("rebuilt search documents", logger.Data{"kind": kind, "count": counts[i]})
	}
	log.Info("search index rebuilt", logger.Data{"documents": total})
	return total, nil
}

func (s *Synchronizer) rebuildKind(ctx context.Context, kind models.Kind) (int, error) {
	enabled := true
	limit := rebuildBatchSize
	after := 0
	total := 0

	for {
		docs, lastID, err := s.page(ctx, kind, &enabled, &limit, &after)
		if err != nil {
			return total, err
		}
		if len(docs) == 0 {
			return total, nil
		}
		if err := s.index.AddDocuments(ctx, docs); err != nil {
			return total, err
		}
		total += len(docs)
		if len(docs) < limit {
			return total, nil
		}
		after = lastID
	}
}

// page loads one batch of enabled entities of kind with ids above after.
func (s *Synchronizer) page(ctx context.Context, kind models.Kind, enabled *bool, limit, after *int) ([]Document, int, error) {
	switch kind {
	case models.KindBook:
		rows, err := s.books.ListBooks(ctx, books.ListBooksOptions{Enabled: enabled, Limit: limit, AfterID: after})
		return collect(rows, err, BuildBookDocument)
	case models.KindAuthor:
		rows, err := s.people.ListAuthors(ctx, people.ListPeopleOptions{Enabled: enabled, Limit: limit, AfterID: after})
		return collect(rows, err, BuildAuthorDocument)
	case models.KindNarrator:
		rows, err := s.people.ListNarrators(ctx, people.ListPeopleOptions{Enabled: enabled, Limit: limit, AfterID: after})
		return collect(rows, err, BuildNarratorDocument)
	case models.KindSeries:
		rows, err := s.series.ListSeries(ctx, series.ListSeriesOptions{Enabled: enabled, Limit: limit, AfterID: after})
		return collect(rows, err, BuildSeriesDocument)
	case models.KindGenre:
		rows, err := s.genres.ListGenres(ctx, genres.ListGenresOptions{Enabled: enabled, Limit: limit, AfterID: after})
		return collect(rows, err, BuildGenreDocument)
	case models.KindPublisher:
		rows, err := s.publishers.ListPublishers(ctx, publishers.ListPublishersOptions{Enabled: enabled, Limit: limit, AfterID: after})
		return collect(rows, err, BuildPublisherDocument)
	}
	return nil, 0, errors.Errorf("unknown entity kind %q", kind)
}

func collect[T models.Record, D Document](rows []T, err error, build func(T) D) ([]Document, int, error) {
	if err != nil {
		return nil, 0, err
	}
	docs := make([]Document, 0, len(rows))
	lastID := 0
	for _, row := range rows {
		docs = append(docs, build(row))
		lastID = row.Base().ID
	}
	return docs, lastID, nil
}
