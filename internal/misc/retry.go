package misc

import (
	"context"
	"time"
)

// DefaultBackoff is the delay schedule used between storage retries.
var DefaultBackoff = []time.Duration{
	1 * time.Second,
	3 * time.Second,
	5 * time.Second,
}

// RetryNotify runs op until it succeeds, returns an error isRetryable rejects,
// or the delays run out. notify, if set, is called before each wait; attempt
// counts from 1 and refers to the failed call.
func RetryNotify(
	ctx context.Context,
	delays []time.Duration,
	isRetryable func(error) bool,
	op func() error,
	notify func(attempt int, err error, wait time.Duration),
) error {
	var err error
	for i := 0; ; i++ {
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i >= len(delays) || !isRetryable(err) {
			return err
		}
		if notify != nil {
			notify(i+1, err, delays[i])
		}
		t := time.NewTimer(delays[i])
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
