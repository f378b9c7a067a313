// Package events is an in-process status-change pub/sub, standing in for
// the host notification system spec.md §6 names as optional and ambient.
// It implements collab.EventPublisher: every SetStatus call the
// orchestrator makes can be mirrored here as a status-change event, fanned
// out to any number of subscriber channels (cmd/jobsched subscribes none),
// the same channel-fan-out shape as the teacher's
// events.ConnectionManager, minus the WebSocket/Postgres-NOTIFY transport
// that package layers on top.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StatusChange is the payload delivered to subscribers.
type StatusChange struct {
	JobID     int64
	OldMajor  string
	OldMinor  string
	NewMajor  string
	NewMinor  string
	Timestamp time.Time
}

// Manager fans out status-change events to in-process subscribers. The
// zero value is not usable; construct with NewManager.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]chan StatusChange
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{subscribers: make(map[string]chan StatusChange)}
}

// Subscribe registers a new subscriber and returns its delivery channel and
// an unsubscribe function. The channel is buffered; a slow subscriber never
// blocks PublishStatusChange — events are dropped for it instead.
func (m *Manager) Subscribe(id string, buffer int) (<-chan StatusChange, func()) {
	ch := make(chan StatusChange, buffer)
	m.mu.Lock()
	m.subscribers[id] = ch
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(existing)
		}
	}
}

// PublishStatusChange implements collab.EventPublisher. It never blocks:
// subscribers that can't keep up miss events instead of stalling the
// orchestrator.
func (m *Manager) PublishStatusChange(_ context.Context, jid int64, oldMajor, oldMinor, newMajor, newMinor string) {
	change := StatusChange{
		JobID: jid, OldMajor: oldMajor, OldMinor: oldMinor,
		NewMajor: newMajor, NewMinor: newMinor, Timestamp: time.Now(),
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, ch := range m.subscribers {
		select {
		case ch <- change:
		default:
			slog.Warn("events: dropping status change, subscriber buffer full", "subscriber", id, "job_id", jid)
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}
