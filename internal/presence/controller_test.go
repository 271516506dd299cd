package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoverse/synccore/internal/models"
)

// fakePresenceChannel counts channel calls so tests can observe heartbeat
// behavior without a real backend.
type fakePresenceChannel struct {
	mu       sync.Mutex
	onlines  int
	offlines int
	pings    int
}

func (f *fakePresenceChannel) SetOnline(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onlines++
	return nil
}

func (f *fakePresenceChannel) SetOffline(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offlines++
	return nil
}

func (f *fakePresenceChannel) Ping(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return nil
}

func (f *fakePresenceChannel) counts() (onlines, offlines, pings int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onlines, f.offlines, f.pings
}

func TestController_StartGoesActiveAndAnnouncesOnline(t *testing.T) {
	ch := &fakePresenceChannel{}
	c := NewController(ch, time.Hour)

	c.Start(42)

	onlines, _, _ := ch.counts()
	assert.Equal(t, 1, onlines)
	assert.Equal(t, models.PhaseActive, c.Phase())

	c.Shutdown()
}

func TestController_StartWithoutIdentityIsInert(t *testing.T) {
	ch := &fakePresenceChannel{}
	c := NewController(ch, time.Hour)

	c.Start(0)

	onlines, offlines, pings := ch.counts()
	assert.Zero(t, onlines+offlines+pings)
	assert.Equal(t, models.PhaseOffline, c.Phase())

	// Teardown on a controller that never started must be safe.
	c.Shutdown()
	_, offlines, _ = ch.counts()
	assert.Zero(t, offlines)
}

func TestController_HeartbeatTicksWhileActive(t *testing.T) {
	ch := &fakePresenceChannel{}
	c := NewController(ch, 10*time.Millisecond)

	c.Start(42)
	defer c.Shutdown()

	require.Eventually(t, func() bool {
		_, _, pings := ch.counts()
		return pings >= 3
	}, time.Second, 5*time.Millisecond, "heartbeat should ping repeatedly while active")
}

// TestController_HiddenStopsHeartbeat verifies hiding cancels the timer and
// pushes offline eagerly, and that the canceled timer stays dead.
func TestController_HiddenStopsHeartbeat(t *testing.T) {
	ch := &fakePresenceChannel{}
	c := NewController(ch, 10*time.Millisecond)

	c.Start(42)
	c.SetVisible(false)

	_, offlines, _ := ch.counts()
	assert.Equal(t, 1, offlines)
	assert.Equal(t, models.PhaseHidden, c.Phase())

	_, _, before := ch.counts()
	time.Sleep(60 * time.Millisecond)
	_, _, after := ch.counts()
	assert.Equal(t, before, after, "no pings may arrive while hidden")

	c.Shutdown()
}

// TestController_VisibleRestartsHeartbeatWithImmediatePing covers the
// hidden-to-visible transition: online is re-announced, one out-of-band
// ping fires without waiting for the next tick, and the heartbeat resumes.
func TestController_VisibleRestartsHeartbeatWithImmediatePing(t *testing.T) {
	ch := &fakePresenceChannel{}
	c := NewController(ch, time.Hour) // interval long enough that ticks never fire

	c.Start(42)
	c.SetVisible(false)
	c.SetVisible(true)

	onlines, offlines, pings := ch.counts()
	assert.Equal(t, 2, onlines, "online announced on start and on show")
	assert.Equal(t, 1, offlines)
	assert.Equal(t, 1, pings, "exactly the immediate out-of-band ping")
	assert.Equal(t, models.PhaseActive, c.Phase())

	c.Shutdown()
}

// TestController_HeartbeatExclusivity simulates hidden/visible flapping and
// verifies at most one heartbeat timer is armed at any instant: after the
// final hide, no timer survives to keep pinging.
func TestController_HeartbeatExclusivity(t *testing.T) {
	ch := &fakePresenceChannel{}
	c := NewController(ch, 10*time.Millisecond)

	c.Start(42)
	for i := 0; i < 3; i++ {
		c.SetVisible(false)
		c.SetVisible(true)
	}
	c.SetVisible(false)

	c.mu.Lock()
	armed := c.stop != nil
	c.mu.Unlock()
	assert.False(t, armed, "no timer may remain armed while hidden")

	_, _, before := ch.counts()
	time.Sleep(60 * time.Millisecond)
	_, _, after := ch.counts()
	assert.Equal(t, before, after, "a leaked timer would keep pinging")

	// Back to visible: exactly one timer resumes.
	c.SetVisible(true)
	require.Eventually(t, func() bool {
		_, _, pings := ch.counts()
		return pings > after
	}, time.Second, 5*time.Millisecond)

	c.Shutdown()
}

func TestController_ShutdownIsIdempotent(t *testing.T) {
	ch := &fakePresenceChannel{}
	c := NewController(ch, time.Hour)

	c.Start(42)
	c.Shutdown()
	c.Shutdown()

	_, offlines, _ := ch.counts()
	assert.Equal(t, 1, offlines, "offline must be sent exactly once")
	assert.Equal(t, models.PhaseOffline, c.Phase())

	// Visibility changes after teardown are no-ops.
	c.SetVisible(true)
	onlines, _, _ := ch.counts()
	assert.Equal(t, 1, onlines)
}
