package models

import "time"

// Presence is the payload written to the presence channel for a user.
type Presence struct {
	UserID   int64     `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// PresencePhase is the local user's lifecycle phase as tracked by the
// presence controller. Offline is terminal on teardown.
type PresencePhase string

const (
	PhaseOffline PresencePhase = "offline"
	PhaseActive  PresencePhase = "active"
	PhaseHidden  PresencePhase = "hidden"
)
