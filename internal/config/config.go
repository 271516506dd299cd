package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort        string
	RedisURL          string
	NATSURL           string
	FriendsAPIURL     string
	ServiceSecret     string
	SnapshotPath      string
	HeartbeatInterval time.Duration
	UserID            int64 // optional: auto-start the session on boot
}

func LoadConfig() (*Config, error) {
	heartbeatStr := getEnv("HEARTBEAT_INTERVAL", "15s")
	heartbeat, err := time.ParseDuration(heartbeatStr)
	if err != nil {
		return nil, errors.New("invalid HEARTBEAT_INTERVAL format")
	}

	var userID int64
	if raw := os.Getenv("USER_ID"); raw != "" {
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("invalid USER_ID format")
		}
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		RedisURL:          os.Getenv("REDIS_URL"),
		NATSURL:           getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		FriendsAPIURL:     os.Getenv("FRIENDS_API_URL"),
		ServiceSecret:     os.Getenv("SERVICE_SECRET"),
		SnapshotPath:      getEnv("SNAPSHOT_PATH", "syncd.db"),
		HeartbeatInterval: heartbeat,
		UserID:            userID,
	}

	// Validate required fields
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.FriendsAPIURL == "" {
		return nil, errors.New("FRIENDS_API_URL is required")
	}
	if cfg.ServiceSecret == "" {
		return nil, errors.New("SERVICE_SECRET is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
