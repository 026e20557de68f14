// Package monitor implements the ingestion rate monitor loop.
package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/ports"
)

// DefaultStopTimeout bounds how long the final summary may take to reach the sinks.
const DefaultStopTimeout = 3 * time.Second

// ErrBadInterval is returned by Run when the poll interval is not positive.
var ErrBadInterval = errors.New("poll interval must be positive")

// Service polls a document counter at a fixed interval and publishes
// one event per cycle plus a final stop event.
type Service struct {
	counter     ports.DocumentCounter
	pub         ports.EventPublisher
	log         *zap.Logger
	now         func() time.Time
	resource    string
	interval    time.Duration
	stopTimeout time.Duration
}

// New wires a counter and an event publisher together.
func New(resource string, interval time.Duration, c ports.DocumentCounter, p ports.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		counter:     c,
		pub:         p,
		log:         logger,
		now:         time.Now,
		resource:    resource,
		interval:    interval,
		stopTimeout: DefaultStopTimeout,
	}
}

// ComputeRate returns the ingestion rate between prev and cur in documents per second.
// The divisor is the nominal poll interval, not the time elapsed between the samples.
// With no previous sample the rate is unavailable. Decreasing counts give a negative rate.
func ComputeRate(prev *domain.Sample, cur domain.Sample, interval time.Duration) domain.Rate {
	if prev == nil || interval <= 0 {
		return domain.Rate{}
	}
	return domain.Rate{
		PerSecond: float64(cur.Count-prev.Count) / interval.Seconds(),
		Available: true,
	}
}

// session is the state a single Run owns.
type session struct {
	start time.Time
	last  *domain.Sample
}

// Run polls until ctx is done, then publishes the final summary and returns nil.
// Sinks get at most the stop timeout to take the summary; Run does not wait longer.
func (s *Service) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return ErrBadInterval
	}
	st := session{start: s.now()}

	defer s.publishStop(ctx, &st)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.cycle(ctx, &st)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Service) cycle(ctx context.Context, st *session) {
	sample, err := s.poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("poll failed", zap.String("resource", s.resource), zap.Error(err))
		s.publish(ctx, domain.Event{
			Kind:       domain.EventFailure,
			Resource:   s.resource,
			ObservedAt: s.now(),
			Elapsed:    s.now().Sub(st.start),
			Error:      err.Error(),
		})
		return
	}

	rate := ComputeRate(st.last, sample, s.interval)
	s.publish(ctx, domain.Event{
		Kind:       domain.EventSample,
		Resource:   s.resource,
		ObservedAt: sample.ObservedAt,
		Count:      sample.Count,
		Rate:       rate,
		Elapsed:    sample.ObservedAt.Sub(st.start),
	})
	st.last = &sample
}

func (s *Service) poll(ctx context.Context) (domain.Sample, error) {
	n, err := s.counter.Count(ctx)
	if err != nil {
		return domain.Sample{}, err
	}
	return domain.Sample{ObservedAt: s.now(), Count: n}, nil
}

func (s *Service) stopEvent(st session) domain.Event {
	now := s.now()
	evt := domain.Event{
		Kind:       domain.EventStopped,
		Resource:   s.resource,
		ObservedAt: now,
		Elapsed:    now.Sub(st.start),
	}
	if st.last != nil {
		evt.Count = st.last.Count
	}
	return evt
}

func (s *Service) publishStop(ctx context.Context, st *session) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.stopTimeout)
	defer cancel()

	evt := s.stopEvent(*st)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.publish(stopCtx, evt)
	}()

	select {
	case <-done:
	case <-stopCtx.Done():
		s.log.Warn("final summary not delivered to every sink",
			zap.String("resource", s.resource), zap.Duration("timeout", s.stopTimeout))
	}
}

func (s *Service) publish(ctx context.Context, evt domain.Event) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ctx, evt)
}
