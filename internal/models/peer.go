package models

// PeerSummary is the display metadata for one friend, as returned by the
// friends API. NumericID is the peer's user id; ID is the roster key (the
// friend relationship falls back to it when no user id is present).
type PeerSummary struct {
	ID        string `json:"id"`
	NumericID int64  `json:"numericId"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar,omitempty"`
}

// PeerDirectory maps peer id to display metadata. Replaced wholesale on
// each successful friends fetch, never mutated in place.
type PeerDirectory map[string]PeerSummary

// DisplayName resolves a peer's name for alert display, falling back to the
// username and then a generic placeholder for peers missing from the
// directory.
func (d PeerDirectory) DisplayName(peerID string) string {
	peer, ok := d[peerID]
	if !ok {
		return "Someone"
	}
	if peer.Name != "" {
		return peer.Name
	}
	if peer.Username != "" {
		return peer.Username
	}
	return "Someone"
}
