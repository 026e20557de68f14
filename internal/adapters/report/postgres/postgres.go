// Package postgres stores monitor events in Postgres for later inspection.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/misc"
	"github.com/vshulcz/ingestmon/internal/ports"
)

// Sink inserts one row per monitor event.
type Sink struct {
	db     *sql.DB
	log    *zap.Logger
	delays []time.Duration
}

var _ ports.EventSink = (*Sink)(nil)

var retryablePGCodes = map[string]struct{}{
	pgerrcode.ConnectionException:                           {},
	pgerrcode.ConnectionDoesNotExist:                        {},
	pgerrcode.ConnectionFailure:                             {},
	pgerrcode.SQLClientUnableToEstablishSQLConnection:       {},
	pgerrcode.SQLServerRejectedEstablishmentOfSQLConnection: {},
	pgerrcode.TransactionResolutionUnknown:                  {},
	pgerrcode.SerializationFailure:                          {},
	pgerrcode.DeadlockDetected:                              {},
	pgerrcode.LockNotAvailable:                              {},
	pgerrcode.TooManyConnections:                            {},
	pgerrcode.AdminShutdown:                                 {},
	pgerrcode.CrashShutdown:                                 {},
	pgerrcode.CannotConnectNow:                              {},
}

const insertEvent = `
INSERT INTO ingest_events (resource, kind, observed_at, doc_count, rate, elapsed_ms, error)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// New returns a sink over an already migrated database.
func New(db *sql.DB, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{db: db, log: logger, delays: misc.DefaultBackoff}
}

// Open connects to dsn, waits for the database with retries and migrates the schema.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := New(db, logger)
	op := func() error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		return Migrate(db)
	}
	if err := misc.RetryNotify(ctx, s.delays, IsRetryable, op, s.logRetry("connect")); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	return s, nil
}

// Notify records evt. Unavailable rates and empty errors are stored as NULL.
func (s *Sink) Notify(ctx context.Context, evt domain.Event) error {
	var rate sql.NullFloat64
	if evt.Rate.Available {
		rate = sql.NullFloat64{Float64: evt.Rate.PerSecond, Valid: true}
	}
	var errText sql.NullString
	if evt.Error != "" {
		errText = sql.NullString{String: evt.Error, Valid: true}
	}
	op := func() error {
		_, err := s.db.ExecContext(ctx, insertEvent,
			evt.Resource, string(evt.Kind), evt.ObservedAt, evt.Count, rate, evt.Elapsed.Milliseconds(), errText)
		return err
	}
	if err := misc.RetryNotify(ctx, s.delays, IsRetryable, op, s.logRetry("insert")); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

func (s *Sink) logRetry(op string) func(int, error, time.Duration) {
	return func(attempt int, err error, wait time.Duration) {
		s.log.Warn("postgres retry",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
}

// IsRetryable reports whether err is a transient connection or concurrency failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		return isRetryablePGCode(string(pqe.Code))
	}
	return false
}

func isRetryablePGCode(code string) bool {
	if _, ok := retryablePGCodes[code]; ok {
		return true
	}
	// class 08: connection exception, class 40: transaction rollback
	return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "40")
}
