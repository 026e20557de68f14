// Package console renders monitor events as human-readable progress lines.
package console

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/ports"
)

// Printer writes one line per poll cycle and a short summary on stop.
type Printer struct {
	w  io.Writer
	mu sync.Mutex
}

var _ ports.EventSink = (*Printer)(nil)

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Banner prints the header shown before the first poll.
func (p *Printer) Banner(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "Monitoring ingestion progress of %s\n%s\nPress Ctrl+C to stop monitoring\n\n",
		url, "============================================================")
	return err
}

// Notify formats evt and writes it.
func (p *Printer) Notify(_ context.Context, evt domain.Event) error {
	line := Format(evt)
	if line == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.w, line); err != nil {
		return fmt.Errorf("write console: %w", err)
	}
	return nil
}

// Format renders evt, including the trailing newline.
func Format(evt domain.Event) string {
	switch evt.Kind {
	case domain.EventSample:
		return fmt.Sprintf("Count: %s | Rate: %s | Elapsed: %s\n",
			humanize.Comma(evt.Count), formatRate(evt.Rate), formatElapsed(evt.Elapsed))
	case domain.EventFailure:
		return fmt.Sprintf("Error: %s\n", evt.Error)
	case domain.EventStopped:
		return fmt.Sprintf("\n\nMonitoring stopped\nFinal count: %s documents\n", humanize.Comma(evt.Count))
	default:
		return ""
	}
}

func formatRate(r domain.Rate) string {
	if !r.Available {
		return "unavailable"
	}
	return humanize.Comma(int64(math.Round(r.PerSecond))) + " docs/sec"
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.0fs", d.Seconds())
}
