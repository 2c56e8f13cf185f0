// Package events carries entity lifecycle events from repositories to their
// subscribers. Repositories publish after a mutation has been persisted;
// subscribers must not assume they run inside the mutation's transaction.
package events

import (
	"context"
	"sync"

	"github.com/shishobooks/catalog/pkg/models"
)

type Type string

const (
	TypeCreated Type = "created"
	TypeUpdated Type = "updated"
	TypeDeleted Type = "deleted"
	// TypeVisibilityChanged is raised instead of TypeUpdated when an update
	// flips enabled from false to true.
	TypeVisibilityChanged Type = "visibility_changed"
	// TypeHidden is raised instead of TypeUpdated when an update flips enabled
	// from true to false.
	TypeHidden Type = "hidden"
)

type Event struct {
	Type     Type
	Kind     models.Kind
	EntityID int
	PublicID string
	// Enabled is the entity's visibility flag as persisted by the mutation.
	Enabled bool
}

// Publisher is what repositories depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type Handler interface {
	HandleEvent(ctx context.Context, event Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event)

func (f HandlerFunc) HandleEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

// Bus fans events out to subscribers synchronously, in subscription order.
// Subscribers that do I/O are expected to hand work off to a background
// worker themselves.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.HandleEvent(ctx, event)
	}
}

// For builds the event describing a mutation of rec.
func For(t Type, rec models.Record) Event {
	base := rec.Base()
	return Event{
		Type:     t,
		Kind:     rec.Kind(),
		EntityID: base.ID,
		PublicID: base.PublicID,
		Enabled:  base.Enabled,
	}
}

// Emit publishes the event for rec. A nil publisher drops it.
func Emit(ctx context.Context, p Publisher, t Type, rec models.Record) {
	if p == nil {
		return
	}
	p.Publish(ctx, For(t, rec))
}

// UpdateType picks the event type for an update given the visibility flag
// before and after the write.
func UpdateType(wasEnabled, enabled bool) Type {
	switch {
	case !wasEnabled && enabled:
		return TypeVisibilityChanged
	case wasEnabled && !enabled:
		return TypeHidden
	default:
		return TypeUpdated
	}
}

// Recorder is a Publisher that keeps every event. It is safe for concurrent
// use and is mostly useful in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
