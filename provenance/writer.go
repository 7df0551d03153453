package provenance

import (
	"context"
	"log/slog"
	"sync"
)

// Writer is the provenance sink's write interface. append(event) -> ().
// Only the event shape and this interface matter; storage is an external
// collaborator.
type Writer interface {
	Append(ctx context.Context, event Event) error
}

// MemoryWriter is the in-memory default Writer: an append-only slice
// guarded by a mutex.
type MemoryWriter struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryWriter returns an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter { return &MemoryWriter{} }

func (w *MemoryWriter) Append(_ context.Context, event Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event)
	return nil
}

// Events returns a snapshot of all appended events, in append order.
func (w *MemoryWriter) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

// AddEventWithLogging appends event to w and logs (rather than returns) any
// write failure: provenance writes are fire-and-forget from the caller's
// perspective.
func AddEventWithLogging(ctx context.Context, w Writer, logger *slog.Logger, event Event) {
	if w == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := w.Append(ctx, event); err != nil {
		logger.Warn("provenance write failed", "event_type", event.Type, "error", err)
	}
}
