// Package file appends monitor events to a newline-delimited JSON log.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vshulcz/ingestmon/internal/domain"
	"github.com/vshulcz/ingestmon/internal/ports"
)

// Writer appends every event as one JSON line to a file.
type Writer struct {
	path string
	mu   sync.Mutex
}

var _ ports.EventSink = (*Writer)(nil)

// New creates a Writer for path. The parent directory is created on first write.
func New(path string) *Writer {
	return &Writer{path: path}
}

// Notify marshals evt and appends it under the writer's lock.
func (w *Writer) Notify(_ context.Context, evt domain.Event) (retErr error) {
	if w == nil || w.path == "" {
		return nil
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	if _, err := f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write events file: %w", err)
	}
	return nil
}
