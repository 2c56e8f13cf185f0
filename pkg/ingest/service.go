// Package ingest adds entities to the catalog without duplicating ones it
// already has. A submission that shares an identifier with, or exactly
// matches the key fields of, an existing entity is merged into it.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/genres"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/people"
	"github.com/shishobooks/catalog/pkg/publishers"
	"github.com/shishobooks/catalog/pkg/series"
	"github.com/uptrace/bun"
)

const dateLayout = "2006-01-02"

type Service struct {
	db         *bun.DB
	resolver   *identifiers.Resolver
	books      *books.Service
	people     *people.Service
	series     *series.Service
	genres     *genres.Service
	publishers *publishers.Service
}

func NewService(db *bun.DB, resolver *identifiers.Resolver, publisher events.Publisher, newID models.PublicIDFunc) *Service {
	return &Service{
		db:         db,
		resolver:   resolver,
		books:      books.NewService(db, publisher, newID),
		people:     people.NewService(db, publisher, newID),
		series:     series.NewService(db, publisher, newID),
		genres:     genres.NewService(db, publisher, newID),
		publishers: publishers.NewService(db, publisher, newID),
	}
}

// owner is an entity that can carry identifiers.
type owner interface {
	models.IdentifierOwner
	models.Record
}

// dedupe looks for an existing T first by shared identifier, then by exact
// key fields. On a match the submitted identifiers are attached to it.
func dedupe[T owner](ctx context.Context, svc *Service, inputs []identifiers.Input, fields identifiers.Fields) (T, bool, error) {
	var zero T
	log := logger.FromContext(ctx)

	matches, err := identifiers.ResolveByIdentifiers[T](ctx, svc.resolver, inputs)
	if err != nil {
		return zero, false, identifiers.AsValidationError(err)
	}

	existing := zero
	switch {
	case len(matches) > 0:
		existing = matches[0]
		if len(matches) > 1 {
			ids := make([]string, 0, len(matches))
			for _, m := range matches {
				ids = append(ids, m.Base().PublicID)
			}
			log.Warn("identifiers match several entities", logger.Data{"kind": existing.Kind(), "public_ids": ids})
		}
	default:
		existing, err = identifiers.FindDuplicateCandidate[T](ctx, svc.db, fields)
		if err != nil {
			return zero, false, err
		}
	}

	if isNil(existing) {
		return zero, false, nil
	}

	if _, err := svc.resolver.Attach(ctx, existing, inputs); err != nil {
		return zero, false, identifiers.AsValidationError(err)
	}
	log.Info("merged submission into existing entity", logger.Data{"kind": existing.Kind(), "public_id": existing.Base().PublicID})
	return existing, true, nil
}

func isNil[T owner](v T) bool {
	var zero T
	return any(v) == any(zero)
}

// IngestBook returns the existing book the payload duplicates, with the new
// identifiers attached, or creates a disabled book together with its related
// entities. The bool reports whether a book was created.
func (svc *Service) IngestBook(ctx context.Context, payload BookPayload) (*models.Book, bool, error) {
	bookType := payload.Type
	if bookType == "" {
		bookType = models.BookTypeBook
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, false, errcodes.ValidationError(`"title" is required`)
	}

	existing, found, err := dedupe[*models.Book](ctx, svc, payload.Identifiers, identifiers.Fields{
		"title":    title,
		"type":     bookType,
		"subtitle": payload.Subtitle,
	})
	if err != nil {
		return nil, false, err
	}
	if found {
		book, err := svc.books.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &existing.ID})
		return book, false, err
	}

	book := &models.Book{
		Title:       title,
		Subtitle:    payload.Subtitle,
		Summary:     payload.Summary,
		Description: payload.Description,
		Image:       payload.Image,
		Language:    payload.Language,
		Copyright:   payload.Copyright,
		Pages:       payload.Pages,
		Duration:    payload.Duration,
		IsExplicit:  payload.IsExplicit,
		IsAbridged:  payload.IsAbridged,
		Type:        bookType,
	}
	if payload.ReleasedAt != nil && *payload.ReleasedAt != "" {
		t, err := time.Parse(dateLayout, *payload.ReleasedAt)
		if err != nil {
			return nil, false, errcodes.ValidationError(`"released_at" should be in the format of YYYY-MM-DD`)
		}
		book.ReleasedAt = &t
	}

	if err := svc.attachRelations(ctx, book, payload); err != nil {
		return nil, false, err
	}

	if err := svc.books.CreateBook(ctx, book); err != nil {
		return nil, false, err
	}
	if _, err := svc.resolver.Attach(ctx, book, payload.Identifiers); err != nil {
		return nil, false, identifiers.AsValidationError(err)
	}

	book, err = svc.books.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &book.ID})
	return book, true, err
}

// attachRelations finds or creates every named relation and sets the edges on
// book.
func (svc *Service) attachRelations(ctx context.Context, book *models.Book, payload BookPayload) error {
	for _, c := range payload.Authors {
		author, _, err := svc.people.FindOrCreateAuthor(ctx, c.Name)
		if err != nil {
			return errors.Wrap(err, "failed to find or create author")
		}
		book.Authors = append(book.Authors, &models.BookAuthor{Author: author, Role: c.Role})
	}
	for _, c := range payload.Narrators {
		narrator, _, err := svc.people.FindOrCreateNarrator(ctx, c.Name)
		if err != nil {
			return errors.Wrap(err, "failed to find or create narrator")
		}
		book.Narrators = append(book.Narrators, &models.BookNarrator{Narrator: narrator, Role: c.Role})
	}
	seenSeries := map[int]bool{}
	for _, s := range payload.Series {
		ser, _, err := svc.series.FindOrCreateSeries(ctx, s.Name)
		if err != nil {
			return errors.Wrap(err, "failed to find or create series")
		}
		if seenSeries[ser.ID] {
			continue
		}
		seenSeries[ser.ID] = true
		book.BookSeries = append(book.BookSeries, &models.BookSeries{Series: ser, Position: s.Position})
	}
	seenGenres := map[int]bool{}
	for _, g := range payload.Genres {
		genre, _, err := svc.genres.FindOrCreateGenre(ctx, g.Name, g.Type)
		if err != nil {
			return errors.Wrap(err, "failed to find or create genre")
		}
		if seenGenres[genre.ID] {
			continue
		}
		seenGenres[genre.ID] = true
		book.BookGenres = append(book.BookGenres, &models.BookGenre{Genre: genre})
	}
	if payload.Publisher != nil && strings.TrimSpace(*payload.Publisher) != "" {
		publisher, _, err := svc.publishers.FindOrCreatePublisher(ctx, *payload.Publisher)
		if err != nil {
			return errors.Wrap(err, "failed to find or create publisher")
		}
		book.PublisherID = &publisher.ID
		book.Publisher = publisher
	}
	return nil
}

func (svc *Service) IngestAuthor(ctx context.Context, payload PersonPayload) (*models.Author, bool, error) {
	name := strings.TrimSpace(payload.Name)
	existing, found, err := dedupe[*models.Author](ctx, svc, payload.Identifiers, identifiers.Fields{"name": name})
	if err != nil {
		return nil, false, err
	}
	if found {
		author, err := svc.people.RetrieveAuthor(ctx, people.RetrievePersonOptions{ID: &existing.ID})
		return author, false, err
	}

	author := &models.Author{Name: name, Description: payload.Description, Image: payload.Image}
	if err := svc.people.CreateAuthor(ctx, author); err != nil {
		return nil, false, err
	}
	if _, err := svc.resolver.Attach(ctx, author, payload.Identifiers); err != nil {
		return nil, false, identifiers.AsValidationError(err)
	}
	author, err = svc.people.RetrieveAuthor(ctx, people.RetrievePersonOptions{ID: &author.ID})
	return author, true, err
}

func (svc *Service) IngestNarrator(ctx context.Context, payload PersonPayload) (*models.Narrator, bool, error) {
	name := strings.TrimSpace(payload.Name)
	existing, found, err := dedupe[*models.Narrator](ctx, svc, payload.Identifiers, identifiers.Fields{"name": name})
	if err != nil {
		return nil, false, err
	}
	if found {
		narrator, err := svc.people.RetrieveNarrator(ctx, people.RetrievePersonOptions{ID: &existing.ID})
		return narrator, false, err
	}

	narrator := &models.Narrator{Name: name, Description: payload.Description, Image: payload.Image}
	if err := svc.people.CreateNarrator(ctx, narrator); err != nil {
		return nil, false, err
	}
	if _, err := svc.resolver.Attach(ctx, narrator, payload.Identifiers); err != nil {
		return nil, false, identifiers.AsValidationError(err)
	}
	narrator, err = svc.people.RetrieveNarrator(ctx, people.RetrievePersonOptions{ID: &narrator.ID})
	return narrator, true, err
}

func (svc *Service) IngestSeries(ctx context.Context, payload SeriesIngestPayload) (*models.Series, bool, error) {
	name := strings.TrimSpace(payload.Name)
	existing, found, err := dedupe[*models.Series](ctx, svc, payload.Identifiers, identifiers.Fields{
		"name":     name,
		"language": payload.Language,
	})
	if err != nil {
		return nil, false, err
	}
	if found {
		s, err := svc.series.RetrieveSeries(ctx, series.RetrieveSeriesOptions{ID: &existing.ID})
		return s, false, err
	}

	s := &models.Series{Name: name, Description: payload.Description, Language: payload.Language}
	if err := svc.series.CreateSeries(ctx, s); err != nil {
		return nil, false, err
	}
	if _, err := svc.resolver.Attach(ctx, s, payload.Identifiers); err != nil {
		return nil, false, identifiers.AsValidationError(err)
	}
	s, err = svc.series.RetrieveSeries(ctx, series.RetrieveSeriesOptions{ID: &s.ID})
	return s, true, err
}
