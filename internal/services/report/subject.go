// Package report wires monitor events to their sinks.
package report

import (
	"go.uber.org/zap"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/ports"
	"github.com/vshulcz/ingestmon/pkg/observer"
)

// SinkFunc adapts a plain function to an event sink.
type SinkFunc = observer.ObserverFunc[domain.Event]

// Subject fans out monitor events to registered sinks.
type Subject = observer.Subject[domain.Event]

var _ ports.EventPublisher = (*Subject)(nil)

// NewSubject creates a subject whose sink failures are logged as warnings.
func NewSubject(logger *zap.Logger) *Subject {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := observer.NewSubject[domain.Event]()
	s.SetErrorHandler(func(name string, err error) {
		logger.Warn("report sink failed", zap.String("sink", name), zap.Error(err))
	})
	return s
}

// Attach registers sink under name. A nil sink is skipped.
func Attach(s *Subject, name string, sink ports.EventSink) {
	if sink == nil {
		return
	}
	s.Attach(name, sink)
}
