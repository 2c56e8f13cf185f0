package search

import (
	"context"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
)

const dateLayout = "2006-01-02"

// keywordFields are the book fields a keywords search looks at.
var keywordFields = []string{
	"title",
	"subtitle",
	"summary",
	"description",
	"authors.name",
	"narrators.name",
	"series.name",
	"genres",
	"publisher",
}

type Service struct {
	index Index
}

func NewService(index Index) *Service {
	return &Service{index}
}

// SearchBooks returns one page of matching book ids in rank order.
func (svc *Service) SearchBooks(ctx context.Context, q BookQuery) (*Results, error) {
	bq, err := buildBookQuery(q)
	if err != nil {
		return nil, err
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	res, err := svc.index.Search(ctx, bq, bookPageSize, (page-1)*bookPageSize)
	return res, errors.WithStack(err)
}

// SearchKind matches text against the name and description of one entity
// kind.
func (svc *Service) SearchKind(ctx context.Context, kind models.Kind, text string, limit int) (*Results, error) {
	text = SanitizeQuery(text)
	if text == "" {
		return &Results{}, nil
	}
	q := bleve.NewConjunctionQuery(
		term("kind", string(kind)),
		bleve.NewDisjunctionQuery(match("name", text), match("description", text)),
	)
	res, err := svc.index.Search(ctx, q, limit, 0)
	return res, errors.WithStack(err)
}

func buildBookQuery(q BookQuery) (query.Query, error) {
	must := []query.Query{term("kind", string(models.KindBook))}

	texts := []struct {
		field string
		value string
	}{
		{"title", q.Title},
		{"subtitle", q.Subtitle},
		{"authors.name", q.Author},
		{"narrators.name", q.Narrator},
		{"publisher", q.Publisher},
	}
	for _, t := range texts {
		if v := SanitizeQuery(t.value); v != "" {
			must = append(must, match(t.field, v))
		}
	}

	if v := SanitizeQuery(q.Keywords); v != "" {
		anyOf := make([]query.Query, 0, len(keywordFields))
		for _, f := range keywordFields {
			anyOf = append(anyOf, match(f, v))
		}
		must = append(must, bleve.NewDisjunctionQuery(anyOf...))
	}

	if lang := SplitLanguage(&q.Language); lang != nil {
		must = append(must, term("language.language", lang.Language))
		if lang.Code != nil {
			must = append(must, term("language.code", *lang.Code))
		}
	}

	after, err := parseDate("released_after", q.ReleasedAfter)
	if err != nil {
		return nil, err
	}
	before, err := parseDate("released_before", q.ReleasedBefore)
	if err != nil {
		return nil, err
	}
	if !after.IsZero() || !before.IsZero() {
		rq := bleve.NewDateRangeQuery(after, before)
		rq.SetField("released_at")
		must = append(must, rq)
	}

	if q.IsExplicit != nil {
		bq := bleve.NewBoolFieldQuery(*q.IsExplicit)
		bq.SetField("is_explicit")
		must = append(must, bq)
	}
	if q.IsAbridged != nil {
		bq := bleve.NewBoolFieldQuery(*q.IsAbridged)
		bq.SetField("is_abridged")
		must = append(must, bq)
	}
	if q.Type != "" {
		must = append(must, term("type", q.Type))
	}

	return bleve.NewConjunctionQuery(must...), nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errcodes.ValidationError(`"` + field + `" should be in the format of YYYY-MM-DD`)
	}
	return t, nil
}

func term(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

// match requires every analyzed term of text to appear in field.
func match(field, text string) query.Query {
	q := bleve.NewMatchQuery(text)
	q.SetField(field)
	q.SetOperator(query.MatchQueryOperatorAnd)
	return q
}
