package search

import (
	"context"
	"sync"
)

type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type Call struct {
	Op Op
	ID string
}

// RecordingIndex wraps an Index and keeps a log of every write made through
// it. It is mostly useful in tests.
type RecordingIndex struct {
	Index

	mu    sync.Mutex
	calls []Call
}

func NewRecordingIndex(idx Index) *RecordingIndex {
	return &RecordingIndex{Index: idx}
}

func (r *RecordingIndex) AddDocuments(ctx context.Context, docs []Document) error {
	r.record(OpAdd, docs...)
	return r.Index.AddDocuments(ctx, docs)
}

func (r *RecordingIndex) UpdateDocuments(ctx context.Context, docs []Document) error {
	r.record(OpUpdate, docs...)
	return r.Index.UpdateDocuments(ctx, docs)
}

func (r *RecordingIndex) DeleteDocument(ctx context.Context, id string) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: OpDelete, ID: id})
	r.mu.Unlock()
	return r.Index.DeleteDocument(ctx, id)
}

func (r *RecordingIndex) record(op Op, docs ...Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range docs {
		r.calls = append(r.calls, Call{Op: op, ID: d.DocumentID()})
	}
}

func (r *RecordingIndex) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Upserts returns the add and update calls for the given document id.
func (r *RecordingIndex) Upserts(id string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.ID == id && (c.Op == OpAdd || c.Op == OpUpdate) {
			out = append(out, c)
		}
	}
	return out
}

func (r *RecordingIndex) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
	return r.Index.Reset(ctx)
}
