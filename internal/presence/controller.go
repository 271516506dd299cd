// Package presence keeps the presence channel's view of "am I online"
// truthful with minimal chatter. Page visibility is the trust signal: a
// hidden client is pushed offline eagerly and emits no heartbeat, a visible
// client is online and pings on an interval.
package presence

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/echoverse/synccore/internal/channels"
	"github.com/echoverse/synccore/internal/logger"
	"github.com/echoverse/synccore/internal/models"
)

// DefaultHeartbeatInterval is how often an active client refreshes its
// presence.
const DefaultHeartbeatInterval = 15 * time.Second

// Controller owns the local user's online/offline lifecycle and the
// heartbeat timer. All channel calls are fire-and-forget: failures are
// logged and never retried.
type Controller struct {
	channel  channels.PresenceChannel
	interval time.Duration

	mu      sync.Mutex
	userID  int64
	phase   models.PresencePhase
	visible bool
	// stop is non-nil exactly while a heartbeat timer is armed. Arming a
	// new timer always closes the previous one first, so at most one is
	// ever live.
	stop chan struct{}
}

func NewController(channel channels.PresenceChannel, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &Controller{
		channel:  channel,
		interval: interval,
		phase:    models.PhaseOffline,
	}
}

// Start announces the user online and arms the heartbeat. It is a no-op
// without an identity or when already started.
func (c *Controller) Start(userID int64) {
	c.mu.Lock()
	if userID == 0 || c.phase != models.PhaseOffline {
		c.mu.Unlock()
		return
	}
	c.userID = userID
	c.phase = models.PhaseActive
	c.visible = true
	c.armHeartbeatLocked()
	c.mu.Unlock()

	c.setOnline(userID)
}

// SetVisible applies a page-visibility change. Hiding cancels the heartbeat
// and pushes offline; showing restores online, re-arms the heartbeat, and
// fires one immediate out-of-band ping.
func (c *Controller) SetVisible(visible bool) {
	c.mu.Lock()
	if c.phase == models.PhaseOffline {
		c.mu.Unlock()
		return
	}

	userID := c.userID
	if !visible {
		if c.phase == models.PhaseHidden {
			c.mu.Unlock()
			return
		}
		c.visible = false
		c.phase = models.PhaseHidden
		c.disarmHeartbeatLocked()
		c.mu.Unlock()

		c.setOffline(userID)
		return
	}

	if c.phase == models.PhaseActive {
		c.mu.Unlock()
		return
	}
	c.visible = true
	c.phase = models.PhaseActive
	c.armHeartbeatLocked()
	c.mu.Unlock()

	c.setOnline(userID)
	// Do not wait for the next tick after coming back.
	c.ping(userID)
}

// Shutdown forces offline and releases the heartbeat. Safe to call more
// than once and on a controller that never started.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.phase == models.PhaseOffline {
		c.mu.Unlock()
		return
	}
	userID := c.userID
	c.phase = models.PhaseOffline
	c.userID = 0
	c.disarmHeartbeatLocked()
	c.mu.Unlock()

	c.setOffline(userID)
}

// Phase reports the current lifecycle phase.
func (c *Controller) Phase() models.PresencePhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) armHeartbeatLocked() {
	if c.stop != nil {
		close(c.stop)
	}
	stop := make(chan struct{})
	c.stop = stop
	go c.runHeartbeat(stop, c.userID)
}

func (c *Controller) disarmHeartbeatLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Controller) runHeartbeat(stop chan struct{}, userID int64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Re-check per tick: a hide can race an in-flight tick.
			c.mu.Lock()
			ok := c.stop == stop && c.phase == models.PhaseActive && c.visible
			c.mu.Unlock()
			if ok {
				c.ping(userID)
			}
		}
	}
}

func (c *Controller) setOnline(userID int64) {
	if err := c.channel.SetOnline(context.Background(), userID); err != nil {
		logger.Warn("failed to set presence online", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (c *Controller) setOffline(userID int64) {
	if err := c.channel.SetOffline(context.Background(), userID); err != nil {
		logger.Warn("failed to set presence offline", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (c *Controller) ping(userID int64) {
	if err := c.channel.Ping(context.Background(), userID); err != nil {
		logger.Warn("presence ping failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
