package report

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/ports"
)

var (
	// ErrQueueFull is returned when a queued sink is too far behind to take another event.
	ErrQueueFull = errors.New("sink queue full")
	// ErrQueueClosed is returned for events published after Close.
	ErrQueueClosed = errors.New("sink queue closed")
)

// Queue hands events to a slow sink from its own goroutine so the caller never waits on it.
type Queue struct {
	sink   ports.EventSink
	log    *zap.Logger
	events chan domain.Event
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var _ ports.EventSink = (*Queue)(nil)

// NewQueue starts a worker that delivers up to size pending events to sink.
func NewQueue(name string, sink ports.EventSink, size int, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		sink:   sink,
		log:    logger.With(zap.String("sink", name)),
		events: make(chan domain.Event, size),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go q.work()
	return q
}

func (q *Queue) work() {
	defer close(q.done)
	for evt := range q.events {
		if err := q.sink.Notify(q.ctx, evt); err != nil {
			q.log.Warn("queued sink failed", zap.String("kind", string(evt.Kind)), zap.Error(err))
		}
	}
}

// Notify enqueues evt without blocking.
func (q *Queue) Notify(_ context.Context, evt domain.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the backlog to drain until ctx is done.
// On ctx expiry the in-flight delivery is cancelled and Close returns without waiting for it.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}
