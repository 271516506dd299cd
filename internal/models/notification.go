package models

type NotificationType string

const (
	TypeMessage               NotificationType = "MESSAGE"
	TypeShare                 NotificationType = "SHARE"
	TypeInvite                NotificationType = "INVITE"
	TypeInviteAccepted        NotificationType = "INVITE_ACCEPTED"
	TypeInviteRejected        NotificationType = "INVITE_REJECTED"
	TypeFriendRequest         NotificationType = "FRIEND_REQUEST"
	TypeFriendRequestAccepted NotificationType = "FRIEND_REQUEST_ACCEPTED"
)

// Notification is one record in a user's notification feed. Immutable from
// the client's perspective except for Read, which the server may flip.
type Notification struct {
	ID           string                 `json:"id"`
	Type         NotificationType       `json:"type"`
	Title        string                 `json:"title,omitempty"`
	Body         string                 `json:"body,omitempty"`
	SenderID     int64                  `json:"senderId,omitempty"`
	SenderName   string                 `json:"senderName,omitempty"`
	SenderAvatar string                 `json:"senderAvatar,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    Timestamp              `json:"createdAt"`
	Read         bool                   `json:"read"`
}

// MetaString returns a string field from the notification metadata blob.
func (n Notification) MetaString(key string) string {
	if n.Metadata == nil {
		return ""
	}
	if v, ok := n.Metadata[key].(string); ok {
		return v
	}
	return ""
}
