package memory

import (
	"context"
	"sync"

	"staybook/internal/app/outbox"
)

// Outbox buffers event records in memory. Dev mode drains nothing; it
// exists so command handlers have somewhere to record events.
type Outbox struct {
	mu      sync.Mutex
	records []outbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

var _ outbox.Outbox = (*Outbox)(nil)

// Records returns a snapshot of everything added so far.
func (o *Outbox) Records() []outbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]outbox.EventRecord(nil), o.records...)
}
