// Package natschan implements the message and notification channels over
// NATS. The server side publishes full snapshots: every message on a
// subject carries the complete current list, never a delta, so a late
// subscriber only needs the next publication to be consistent.
package natschan

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/echoverse/synccore/internal/channels"
	"github.com/echoverse/synccore/internal/logger"
	"github.com/echoverse/synccore/internal/models"
)

// MessageStream watches per-pair chat message snapshots.
type MessageStream struct {
	nc *nats.Conn
}

func NewMessageStream(nc *nats.Conn) *MessageStream {
	return &MessageStream{nc: nc}
}

// Watch subscribes to the message snapshot subject for the given pair. The
// handler runs on the subscription's delivery goroutine, so invocations for
// one pair arrive in publish order.
func (s *MessageStream) Watch(selfID, peerID int64, fn func([]models.Message)) (channels.CancelFunc, error) {
	subject := "chat." + RoomKey(selfID, peerID) + ".messages"

	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		var messages []models.Message
		if err := json.Unmarshal(msg.Data, &messages); err != nil {
			logger.Warn("dropping malformed message snapshot",
				zap.String("subject", subject), zap.Error(err))
			return
		}
		fn(messages)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	return channels.Once(func() {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("failed to unsubscribe", zap.String("subject", subject), zap.Error(err))
		}
	}), nil
}

// NotificationStream watches per-user notification feed snapshots.
type NotificationStream struct {
	nc *nats.Conn
}

func NewNotificationStream(nc *nats.Conn) *NotificationStream {
	return &NotificationStream{nc: nc}
}

func (s *NotificationStream) Watch(userID int64, fn func([]models.Notification)) (channels.CancelFunc, error) {
	subject := fmt.Sprintf("notifications.%d", userID)

	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		var records []models.Notification
		if err := json.Unmarshal(msg.Data, &records); err != nil {
			logger.Warn("dropping malformed notification snapshot",
				zap.String("subject", subject), zap.Error(err))
			return
		}
		fn(records)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	return channels.Once(func() {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("failed to unsubscribe", zap.String("subject", subject), zap.Error(err))
		}
	}), nil
}

// RoomKey builds the canonical chat room key for a user pair. The smaller
// id always comes first so both sides watch the same subject.
func RoomKey(userID1, userID2 int64) string {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return fmt.Sprintf("%d_%d", userID1, userID2)
}
