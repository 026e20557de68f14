// Package ginserver exposes the monitor's latest progress over HTTP.
package ginserver

import (
	"context"
	"sync"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/ports"
)

// Board remembers the most recent event and the most recent successful sample.
type Board struct {
	mu         sync.RWMutex
	last       *domain.Event
	lastSample *domain.Event
	events     uint64
	failures   uint64
}

var _ ports.EventSink = (*Board)(nil)

// NewBoard returns an empty Board.
func NewBoard() *Board {
	return &Board{}
}

// Notify records evt.
func (b *Board) Notify(_ context.Context, evt domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := evt
	b.last = &e
	b.events++
	switch evt.Kind {
	case domain.EventSample:
		b.lastSample = &e
	case domain.EventFailure:
		b.failures++
	default:
	}
	return nil
}

// Status is the JSON document served at /status.
type Status struct {
	Last       *domain.Event `json:"last,omitempty"`
	LastSample *domain.Event `json:"last_sample,omitempty"`
	Events     uint64        `json:"events"`
	Failures   uint64        `json:"failures"`
	Stopped    bool          `json:"stopped"`
}

// Status returns a copy of the board state.
func (b *Board) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st := Status{Events: b.events, Failures: b.failures}
	if b.last != nil {
		e := *b.last
		st.Last = &e
		st.Stopped = e.Kind == domain.EventStopped
	}
	if b.lastSample != nil {
		e := *b.lastSample
		st.LastSample = &e
	}
	return st
}
