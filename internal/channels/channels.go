// Package channels defines the external push-capable channels the sync core
// consumes. Implementations live in subpackages; the core only sees these
// interfaces.
package channels

import (
	"context"
	"sync"

	"github.com/echoverse/synccore/internal/models"
)

// CancelFunc releases a live subscription. Implementations must be
// idempotent: calling it more than once releases the subscription exactly
// once.
type CancelFunc func()

// Once wraps a cancel function so repeated calls are safe.
func Once(cancel func()) CancelFunc {
	var once sync.Once
	return func() {
		once.Do(cancel)
	}
}

// PresenceChannel reports the local user's online state to other clients.
// Calls are fire-and-forget from the core's perspective: errors are logged
// by the caller and never retried.
type PresenceChannel interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64) error
	Ping(ctx context.Context, userID int64) error
}

// MessageChannel delivers the full current ordered message list for a user
// pair on every change. The handler receives a snapshot, not a delta, and
// invocations for one pair arrive in delivery order.
type MessageChannel interface {
	Watch(selfID, peerID int64, fn func([]models.Message)) (CancelFunc, error)
}

// NotificationChannel delivers the full current notification list for a
// user on every change.
type NotificationChannel interface {
	Watch(userID int64, fn func([]models.Notification)) (CancelFunc, error)
}
