package redischan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/echoverse/synccore/internal/models"
)

const (
	presenceKeyPrefix = "presence:"
	presenceTTL       = 60 * time.Second // Presence expires after 60 seconds without a ping
)

// PresenceChannel reports online state through Redis. A user is online
// while their presence key exists; the key carries a TTL so a crashed
// client goes offline on its own once pings stop.
type PresenceChannel struct {
	client *redis.Client
}

func NewPresenceChannel(client *redis.Client) *PresenceChannel {
	return &PresenceChannel{client: client}
}

// SetOnline writes the presence key with a fresh TTL.
func (c *PresenceChannel) SetOnline(ctx context.Context, userID int64) error {
	presence := models.Presence{
		UserID:   userID,
		Online:   true,
		LastSeen: time.Now(),
	}

	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}

	if err := c.client.Set(ctx, presenceKey(userID), data, presenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}

	return nil
}

// SetOffline deletes the presence key. Absence of the key is offline.
func (c *PresenceChannel) SetOffline(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete presence: %w", err)
	}
	return nil
}

// Ping refreshes the TTL. If the key already expired the user briefly
// looked offline, so Ping rewrites it instead of only extending.
func (c *PresenceChannel) Ping(ctx context.Context, userID int64) error {
	refreshed, err := c.client.Expire(ctx, presenceKey(userID), presenceTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh presence: %w", err)
	}
	if !refreshed {
		return c.SetOnline(ctx, userID)
	}
	return nil
}

// GetPresence reads another user's presence. A missing key means offline.
func (c *PresenceChannel) GetPresence(ctx context.Context, userID int64) (*models.Presence, error) {
	data, err := c.client.Get(ctx, presenceKey(userID)).Result()
	if err == redis.Nil {
		return &models.Presence{UserID: userID, Online: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	var presence models.Presence
	if err := json.Unmarshal([]byte(data), &presence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence: %w", err)
	}

	return &presence, nil
}

// Helper: build Redis key for presence
func presenceKey(userID int64) string {
	return fmt.Sprintf("%s%d", presenceKeyPrefix, userID)
}
