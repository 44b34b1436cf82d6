// Package messenger broadcasts typed notifications to subscribers over
// bounded channels. Publishing never blocks: a subscriber whose buffer is
// full misses the message and the drop is counted.
package messenger

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// DefaultCapacity is the per-subscriber buffer size.
const DefaultCapacity = 100

// Message types published by the server.
const (
	TypeCommit = "commit"
	TypeQuery  = "query"
)

// Message is a (type, value) notification.
type Message struct {
	Type  string
	Value string
}

// Messenger fans messages out to its subscribers.
type Messenger struct {
	mu          sync.RWMutex
	subscribers map[int]chan Message
	nextID      int
	capacity    int
	closed      bool
	dropped     atomic.Int64
}

// New returns a messenger buffering capacity messages per subscriber;
// non-positive values use DefaultCapacity.
func New(capacity int) *Messenger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Messenger{
		subscribers: make(map[int]chan Message),
		capacity:    capacity,
	}
}

// Subscribe returns a channel receiving every message published from now
// on, and a function that unsubscribes and closes it. On a closed
// messenger the channel is already closed.
func (m *Messenger) Subscribe() (<-chan Message, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Message, m.capacity)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextID
	m.nextID++
	m.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subscribers[id]; ok {
				delete(m.subscribers, id)
				close(sub)
			}
		})
	}
}

// Publish sends a message to every subscriber and returns how many
// received it.
func (m *Messenger) Publish(typ, value string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0
	}
	msg := Message{Type: typ, Value: value}
	delivered := 0
	for id, ch := range m.subscribers {
		select {
		case ch <- msg:
			delivered++
		default:
			m.dropped.Add(1)
			log.Warnf("Subscriber %d is full, dropping %s message", id, typ)
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions.
func (m *Messenger) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}

// Dropped returns the number of messages lost to full buffers.
func (m *Messenger) Dropped() int64 { return m.dropped.Load() }

// Close closes every subscription. Later publishes are ignored.
func (m *Messenger) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, ch := range m.subscribers {
		delete(m.subscribers, id)
		close(ch)
	}
}
