package worker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/config"
)

var processID = randStringBytes(8)

// Func is a unit of background work.
type Func func(ctx context.Context) error

// Dispatcher hands work off to run outside the caller's request.
type Dispatcher interface {
	// Dispatch queues fn and returns immediately. It reports whether the task
	// was accepted.
	Dispatch(ctx context.Context, name string, fn Func) bool
}

type task struct {
	name string
	ctx  context.Context
	fn   Func
}

// Pool runs dispatched tasks on a fixed number of goroutines reading from a
// bounded queue. Tasks that don't fit in the queue are dropped.
type Pool struct {
	log     logger.Logger
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan task
	wg     sync.WaitGroup
}

func New(cfg *config.Config) *Pool {
	return NewPool(cfg.SearchSyncWorkers, cfg.SearchSyncQueueSize, cfg.SearchSyncTimeout)
}

func NewPool(workers, queueSize int, timeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		log:     logger.New(),
		workers: workers,
		timeout: timeout,
		queue:   make(chan task, queueSize),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.process()
	}
}

// Dispatch queues fn to run with a context detached from ctx's cancellation
// but carrying its values (the request logger in particular).
func (p *Pool) Dispatch(ctx context.Context, name string, fn Func) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	log := logger.FromContext(ctx)
	if p.closed {
		log.Warn("worker pool is shut down, dropping task", logger.Data{"task": name})
		return false
	}

	select {
	case p.queue <- task{name: name, ctx: context.WithoutCancel(ctx), fn: fn}:
		return true
	default:
		log.Warn("worker queue is full, dropping task", logger.Data{"task": name, "queue_size": cap(p.queue)})
		return false
	}
}

func (p *Pool) process() {
	defer p.wg.Done()
	for t := range p.queue {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	id, err := uuid.NewRandom()
	if err != nil {
		p.log.Err(err).Error("new uuid error")
		return
	}
	log := logger.FromContext(t.ctx).ID(id.String()).Root(logger.Data{"task": t.name, "process_id": processID})
	ctx := log.WithContext(t.ctx)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", logger.Data{"panic": r})
		}
	}()

	if err := t.fn(ctx); err != nil {
		log.Err(err).Warn("task error")
	}
}

// Shutdown stops accepting tasks, then waits for every queued task to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// Inline runs every task synchronously on the caller's goroutine. It is used
// where deterministic ordering matters more than latency, such as tests and
// one-off commands.
type Inline struct{}

func (Inline) Dispatch(ctx context.Context, name string, fn Func) bool {
	if err := fn(context.WithoutCancel(ctx)); err != nil {
		logger.FromContext(ctx).Err(err).Warn("task error", logger.Data{"task": name})
	}
	return true
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
