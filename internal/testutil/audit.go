package testutil

import (
	"context"
	"sync"

	"github.com/dalemusser/tenanthub/internal/app/store/audit"
)

// AuditRecorder collects audit events in memory.
type AuditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
	Err    error // returned from every Log call when set
}

func (a *AuditRecorder) Log(_ context.Context, event audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.events = append(a.events, event)
	return nil
}

// EventTypes returns the recorded event types in order.
func (a *AuditRecorder) EventTypes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = e.EventType
	}
	return out
}

// Events returns a copy of the recorded events.
func (a *AuditRecorder) Events() []audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Event(nil), a.events...)
}
