// Package alerts is the in-process event bus that surfaces transient chat
// alerts to whatever UI layer is listening. Emission is fire-and-forget;
// nobody listening is not an error.
package alerts

import (
	"sync"

	"github.com/google/uuid"

	"github.com/echoverse/synccore/internal/channels"
)

// Alert is one transient chat notification bubble.
type Alert struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	Message string    `json:"message"`
	Avatar  string    `json:"avatar,omitempty"`
	Meta    AlertMeta `json:"meta"`
}

// AlertMeta carries enough context for the UI to open the right chat.
type AlertMeta struct {
	PeerID        string `json:"peerId"`
	PeerNumericID int64  `json:"peerNumericId"`
	UnreadCount   int    `json:"unreadCount"`
}

// Bus fans alerts out to all current subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Alert)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Alert))}
}

// Subscribe registers a handler and returns an idempotent cancel.
// The handler is called synchronously on the emitter's goroutine.
func (b *Bus) Subscribe(fn func(Alert)) channels.CancelFunc {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return channels.Once(func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	})
}

// Emit delivers the alert to every current subscriber, assigning an id if
// the caller did not.
func (b *Bus) Emit(alert Alert) {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}

	b.mu.Lock()
	handlers := make([]func(Alert), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(alert)
	}
}
