// Package watcher maintains one live message-feed subscription per known
// peer and turns genuinely new inbound messages into alerts. History that
// was already present when a subscription is established never alerts, and
// neither do the user's own messages.
package watcher

import (
	"sync"

	"go.uber.org/zap"

	"github.com/echoverse/synccore/internal/alerts"
	"github.com/echoverse/synccore/internal/channels"
	"github.com/echoverse/synccore/internal/logger"
	"github.com/echoverse/synccore/internal/models"
)

// Sink consumes alert events. *alerts.Bus satisfies it.
type Sink interface {
	Emit(alerts.Alert)
}

// entry is the per-peer watcher state: a live subscription plus the cursor
// used to detect new arrivals.
type entry struct {
	peerID      string
	numericID   int64
	cancel      channels.CancelFunc
	lastSeenID  string
	initialized bool
	unread      int
}

// Registry owns the set of per-peer watchers. It is rebuilt wholesale
// whenever identity or the peer roster changes; Teardown resets everything
// and is idempotent.
type Registry struct {
	messages channels.MessageChannel
	sink     Sink

	mu        sync.Mutex
	active    bool
	selfID    int64
	directory models.PeerDirectory
	entries   map[string]*entry
}

func NewRegistry(messages channels.MessageChannel, sink Sink) *Registry {
	return &Registry{
		messages:  messages,
		sink:      sink,
		directory: models.PeerDirectory{},
		entries:   make(map[string]*entry),
	}
}

// Start binds the registry to an identity. A registry that was already
// started for a different identity must be torn down first; Start on a
// live registry is a no-op.
func (r *Registry) Start(selfID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active || selfID == 0 {
		return
	}
	r.active = true
	r.selfID = selfID
}

// SetDirectory replaces the peer directory wholesale and reconciles the
// watcher set against the new roster: peers that appeared are subscribed,
// peers that disappeared are canceled, existing watchers are left alone.
func (r *Registry) SetDirectory(peers []models.PeerSummary) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}

	directory := make(models.PeerDirectory, len(peers))
	for _, p := range peers {
		if p.ID == "" {
			continue
		}
		directory[p.ID] = p
	}
	r.directory = directory
	r.reconcileLocked(directory)
	r.mu.Unlock()
}

// reconcileLocked diffs the desired peer set against the live entries,
// canceling removals and subscribing additions. Registration is idempotent:
// a peer with a live entry is never re-subscribed.
func (r *Registry) reconcileLocked(desired models.PeerDirectory) {
	for peerID, e := range r.entries {
		if _, ok := desired[peerID]; !ok {
			e.cancel()
			delete(r.entries, peerID)
		}
	}

	for peerID, peer := range desired {
		if _, ok := r.entries[peerID]; ok {
			continue
		}
		if peer.NumericID == 0 {
			logger.Warn("skipping peer without numeric id", zap.String("peer_id", peerID))
			continue
		}

		id := peerID
		cancel, err := r.messages.Watch(r.selfID, peer.NumericID, func(msgs []models.Message) {
			r.handleUpdate(id, msgs)
		})
		if err != nil {
			logger.Warn("failed to watch peer messages",
				zap.String("peer_id", peerID), zap.Error(err))
			continue
		}
		r.entries[peerID] = &entry{
			peerID:    peerID,
			numericID: peer.NumericID,
			cancel:    cancel,
		}
	}
}

// handleUpdate processes one full message snapshot for a peer. The first
// snapshot only records the baseline cursor; afterwards a changed final
// message id from someone else produces exactly one alert.
func (r *Registry) handleUpdate(peerID string, msgs []models.Message) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	e, ok := r.entries[peerID]
	if !ok || len(msgs) == 0 {
		r.mu.Unlock()
		return
	}

	last := msgs[len(msgs)-1]
	if last.ID == "" {
		r.mu.Unlock()
		return
	}

	if !e.initialized {
		e.initialized = true
		e.lastSeenID = last.ID
		r.mu.Unlock()
		return
	}

	if last.ID == e.lastSeenID {
		r.mu.Unlock()
		return
	}
	e.lastSeenID = last.ID

	if last.SenderID == r.selfID {
		r.mu.Unlock()
		return
	}

	e.unread++
	peer := r.directory[peerID]
	alert := alerts.Alert{
		From:    r.directory.DisplayName(peerID),
		Message: last.DisplayBody(),
		Avatar:  peer.Avatar,
		Meta: alerts.AlertMeta{
			PeerID:        peerID,
			PeerNumericID: e.numericID,
			UnreadCount:   e.unread,
		},
	}
	r.mu.Unlock()

	// Emit outside the lock: sink handlers may call back into the registry.
	r.sink.Emit(alert)
}

// UnreadCount reports the pending alert count for a peer.
func (r *Registry) UnreadCount(peerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[peerID]; ok {
		return e.unread
	}
	return 0
}

// ClearUnread resets a peer's unread counter, e.g. when the UI opens that
// chat.
func (r *Registry) ClearUnread(peerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[peerID]; ok {
		e.unread = 0
	}
}

// Teardown cancels every live subscription exactly once and clears all
// state. It runs on identity loss, channel unreadiness, and shutdown, and
// is safe to call repeatedly.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	for _, e := range r.entries {
		e.cancel()
	}
	r.entries = make(map[string]*entry)
	r.directory = models.PeerDirectory{}
	r.active = false
	r.selfID = 0
}
