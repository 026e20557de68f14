package ports

import (
	"context"

	"github.com/vshulcz/ingestmon/internal/domain"
)

// DocumentCounter reads the current document count of the monitored resource.
type DocumentCounter interface {
	Count(ctx context.Context) (int64, error)
}

// EventSink receives every event the monitor produces.
type EventSink interface {
	Notify(ctx context.Context, evt domain.Event) error
}

// EventPublisher fans a monitor event out to all registered sinks.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event)
}
