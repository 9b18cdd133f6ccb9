package reconciliation

import (
	"sync"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// DefaultEventLogCapacity is how many webhook events are kept for inspection
const DefaultEventLogCapacity = 100

// EventLog is a bounded ring buffer of recent webhook events. When full, each
// insert evicts the oldest event.
type EventLog struct {
	mu     sync.RWMutex
	events []fulfillment.WebhookEvent
	next   int
	size   int
}

// NewEventLog creates an event log; a non-positive capacity uses the default
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultEventLogCapacity
	}
	return &EventLog{events: make([]fulfillment.WebhookEvent, capacity)}
}

// Add records an event
func (l *EventLog) Add(event fulfillment.WebhookEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events[l.next] = event
	l.next = (l.next + 1) % len(l.events)
	if l.size < len(l.events) {
		l.size++
	}
}

// Recent returns up to n events, newest first. A non-positive n returns all.
func (l *EventLog) Recent(n int) []fulfillment.WebhookEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > l.size {
		n = l.size
	}
	out := make([]fulfillment.WebhookEvent, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.events)) % len(l.events)
		out = append(out, l.events[idx])
	}
	return out
}

// Len returns the number of events retained
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Capacity returns the maximum number of events retained
func (l *EventLog) Capacity() int {
	return len(l.events)
}
