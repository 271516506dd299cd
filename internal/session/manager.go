// Package session ties identity resolution to the lifecycle of the three
// sync modules. Everything is inert until an identity is bound; flipping
// identity tears the whole core down and rebuilds it, so no subscription
// leaks across users.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/echoverse/synccore/internal/logger"
	"github.com/echoverse/synccore/internal/models"
	"github.com/echoverse/synccore/internal/notify"
	"github.com/echoverse/synccore/internal/presence"
	"github.com/echoverse/synccore/internal/watcher"
)

// FriendsSource is the one-shot peer directory fetch.
type FriendsSource interface {
	GetFriends(ctx context.Context, userID int64) ([]models.PeerSummary, error)
}

// Manager coordinates start/stop of the presence controller, watcher
// registry, and notification aggregator for the current identity.
type Manager struct {
	presence *presence.Controller
	watchers *watcher.Registry
	feed     *notify.Aggregator
	friends  FriendsSource

	mu     sync.Mutex
	userID int64
	// epoch invalidates in-flight friend fetches: a result only applies if
	// the epoch it was started under is still current.
	epoch int
}

func NewManager(p *presence.Controller, w *watcher.Registry, f *notify.Aggregator, friends FriendsSource) *Manager {
	return &Manager{
		presence: p,
		watchers: w,
		feed:     f,
		friends:  friends,
	}
}

// Start binds an identity and brings the core up. Re-binding the same
// identity is a no-op; a different identity resets everything first.
func (m *Manager) Start(userID int64) {
	if userID == 0 {
		return
	}

	m.mu.Lock()
	if m.userID == userID {
		m.mu.Unlock()
		return
	}
	if m.userID != 0 {
		m.stopLocked()
	}
	m.userID = userID
	m.epoch++
	epoch := m.epoch

	// Bring the modules up under the lock: a concurrent Stop must either
	// run before any of them started or tear all of them down afterwards,
	// never interleave.
	logger.Info("starting sync core", zap.Int64("user_id", userID))
	m.presence.Start(userID)
	m.watchers.Start(userID)
	m.feed.Start(userID)
	m.mu.Unlock()

	go m.loadFriends(userID, epoch)
}

// Stop tears the core down and releases the identity. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.userID == 0 {
		return
	}
	logger.Info("stopping sync core", zap.Int64("user_id", m.userID))
	m.userID = 0
	m.epoch++
	m.presence.Shutdown()
	m.watchers.Teardown()
	m.feed.Teardown()
}

// SetVisible forwards a page-visibility change to the presence controller.
func (m *Manager) SetVisible(visible bool) {
	m.presence.SetVisible(visible)
}

// UserID reports the currently bound identity, zero when none.
func (m *Manager) UserID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

// loadFriends fetches the roster and applies it, unless the session changed
// while the fetch was in flight.
func (m *Manager) loadFriends(userID int64, epoch int) {
	peers, err := m.friends.GetFriends(context.Background(), userID)
	if err != nil {
		logger.Warn("failed to load friends", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	m.mu.Lock()
	stale := m.epoch != epoch
	m.mu.Unlock()
	if stale {
		logger.Debug("discarding stale friends result", zap.Int64("user_id", userID))
		return
	}

	m.watchers.SetDirectory(peers)
	logger.Info("peer directory loaded", zap.Int64("user_id", userID), zap.Int("peers", len(peers)))
}
