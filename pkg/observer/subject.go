// Package observer provides a small generic fan-out of events to named observers.
package observer

import (
	"context"
	"sync"
)

// Observer defines the callback contract for receiving published events of type T.
type Observer[T any] interface {
	Notify(context.Context, T) error
}

// ObserverFunc adapts a standalone function into an Observer.
//
//revive:disable-next-line:exported
type ObserverFunc[T any] func(context.Context, T) error

// Notify executes the wrapped function.
func (f ObserverFunc[T]) Notify(ctx context.Context, evt T) error {
	if f == nil {
		return nil
	}
	return f(ctx, evt)
}

type entry[T any] struct {
	name string
	obs  Observer[T]
}

// Subject delivers every published event to its observers in registration order.
// A failing observer never prevents delivery to the rest.
type Subject[T any] struct {
	mu      sync.RWMutex
	entries []entry[T]
	onError func(name string, err error)
}

// NewSubject constructs an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Publish invokes every observer with the provided event.
func (s *Subject[T]) Publish(ctx context.Context, evt T) {
	if s == nil {
		return
	}

	s.mu.RLock()
	entries := append([]entry[T](nil), s.entries...)
	errHandler := s.onError
	s.mu.RUnlock()

	for _, e := range entries {
		if err := e.obs.Notify(ctx, evt); err != nil && errHandler != nil {
			errHandler(e.name, err)
		}
	}
}

// Attach registers an observer under a name used when reporting its failures.
// Nil observers are ignored.
func (s *Subject[T]) Attach(name string, obs Observer[T]) {
	if s == nil || obs == nil {
		return
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry[T]{name: name, obs: obs})
	s.mu.Unlock()
}

// Names lists registered observers in delivery order.
func (s *Subject[T]) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.name)
	}
	return out
}

// SetErrorHandler configures a callback for observer failures.
func (s *Subject[T]) SetErrorHandler(fn func(name string, err error)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}
