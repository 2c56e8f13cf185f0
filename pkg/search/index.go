package search

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// ErrIndexClosed is returned by every BleveIndex call made after Close.
var ErrIndexClosed = errors.New("search index is closed")

// Index is the full-text index the catalog mirrors enabled entities into.
// Upserts and deletes are idempotent.
type Index interface {
	AddDocuments(ctx context.Context, docs []Document) error
	UpdateDocuments(ctx context.Context, docs []Document) error
	DeleteDocument(ctx context.Context, id string) error
	Search(ctx context.Context, q query.Query, size, from int) (*Results, error)
	// Reset drops every document.
	Reset(ctx context.Context) error
	Close() error
}

type Hit struct {
	ID       string
	Kind     string
	PublicID string
	Score    float64
}

type Results struct {
	Total int
	Hits  []Hit
}

// PublicIDs returns the public ids of the hits in rank order.
func (r *Results) PublicIDs() []string {
	ids := make([]string, 0, len(r.Hits))
	for _, h := range r.Hits {
		ids = append(ids, h.PublicID)
	}
	return ids
}

// BleveIndex is an Index backed by bleve. An empty path keeps the index in
// memory.
type BleveIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

func OpenBleveIndex(path string) (*BleveIndex, error) {
	idx, err := openBleve(path)
	if err != nil {
		return nil, err
	}
	return &BleveIndex{index: idx, path: path}, nil
}

func openBleve(path string) (bleve.Index, error) {
	m := newIndexMapping()
	if path == "" {
		idx, err := bleve.NewMemOnly(m)
		return idx, errors.WithStack(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.WithStack(err)
	}
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, m)
	}
	return idx, errors.Wrapf(err, "failed to open search index at %s", path)
}

// newIndexMapping keeps filter fields out of the analyzer so that term
// queries on them match exactly. Everything else is mapped dynamically with
// the standard analyzer.
func newIndexMapping() *mapping.IndexMappingImpl {
	keyword := bleve.NewKeywordFieldMapping()
	boolean := bleve.NewBooleanFieldMapping()
	datetime := bleve.NewDateTimeFieldMapping()

	language := bleve.NewDocumentMapping()
	language.AddFieldMappingsAt("language", keyword)
	language.AddFieldMappingsAt("code", keyword)

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("public_id", keyword)
	doc.AddFieldMappingsAt("type", keyword)
	doc.AddFieldMappingsAt("released_at", datetime)
	doc.AddFieldMappingsAt("is_explicit", boolean)
	doc.AddFieldMappingsAt("is_abridged", boolean)
	doc.AddSubDocumentMapping("language", language)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

func (b *BleveIndex) AddDocuments(ctx context.Context, docs []Document) error {
	return b.upsert(docs)
}

// UpdateDocuments replaces whole documents, so it is the same write as
// AddDocuments.
func (b *BleveIndex) UpdateDocuments(ctx context.Context, docs []Document) error {
	return b.upsert(docs)
}

func (b *BleveIndex) upsert(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrIndexClosed
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		fields, err := documentFields(doc)
		if err != nil {
			return err
		}
		if err := batch.Index(doc.DocumentID(), fields); err != nil {
			return errors.Wrapf(err, "failed to index document %s", doc.DocumentID())
		}
	}
	return errors.WithStack(b.index.Batch(batch))
}

// DeleteDocument removes a document. Deleting an unknown id is not an error.
func (b *BleveIndex) DeleteDocument(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrIndexClosed
	}
	return errors.WithStack(b.index.Delete(id))
}

func (b *BleveIndex) Search(ctx context.Context, q query.Query, size, from int) (*Results, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrIndexClosed
	}

	req := bleve.NewSearchRequestOptions(q, size, from, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	out := &Results{Total: int(res.Total), Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		kind, publicID, ok := ParseDocumentID(h.ID)
		if !ok {
			continue
		}
		out.Hits = append(out.Hits, Hit{ID: h.ID, Kind: string(kind), PublicID: publicID, Score: h.Score})
	}
	return out, nil
}

// Count returns the number of indexed documents.
func (b *BleveIndex) Count() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, ErrIndexClosed
	}
	n, err := b.index.DocCount()
	return int(n), errors.WithStack(err)
}

func (b *BleveIndex) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrIndexClosed
	}
	if err := b.index.Close(); err != nil {
		return errors.WithStack(err)
	}
	if b.path != "" {
		if err := os.RemoveAll(b.path); err != nil {
			return errors.WithStack(err)
		}
	}
	idx, err := openBleve(b.path)
	if err != nil {
		b.closed = true
		return err
	}
	b.index = idx
	return nil
}

func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return errors.WithStack(b.index.Close())
}

// documentFields flattens a document into the generic shape bleve walks.
// Times become RFC 3339 strings, which the datetime mapping parses.
func documentFields(doc Document) (map[string]interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.WithStack(err)
	}
	return fields, nil
}
