package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/echoverse/synccore/internal/models"
)

// ActionKind says what affordance the UI renders for a notification. This
// is presentational metadata, not control flow.
type ActionKind string

const (
	ActionNone   ActionKind = "none"
	ActionButton ActionKind = "button" // actionable: accept/decline pending
	ActionBadge  ActionKind = "badge"  // static status
	ActionLink   ActionKind = "link"   // navigational
)

// fallbackSenderName labels system-originated notifications.
const fallbackSenderName = "EchoVerse"

// ActionFor maps a notification type to its UI affordance.
func ActionFor(t models.NotificationType) ActionKind {
	switch t {
	case models.TypeFriendRequest:
		return ActionButton
	case models.TypeFriendRequestAccepted, models.TypeInviteAccepted, models.TypeInviteRejected:
		return ActionBadge
	case models.TypeInvite, models.TypeShare:
		return ActionLink
	default:
		return ActionNone
	}
}

// Describe builds the sentence shown next to the sender name.
func Describe(n models.Notification) string {
	switch n.Type {
	case models.TypeFriendRequest:
		return "sent you a friend request"
	case models.TypeFriendRequestAccepted:
		return "accepted your friend request"
	case models.TypeInvite:
		return fmt.Sprintf("invited you to collaborate on %q", playlistName(n))
	case models.TypeInviteAccepted:
		return fmt.Sprintf("accepted your invite to collaborate on %q", playlistName(n))
	case models.TypeInviteRejected:
		return fmt.Sprintf("declined your invite to collaborate on %q", playlistName(n))
	case models.TypeShare:
		title := firstNonEmpty(
			n.MetaString("playlistName"),
			n.MetaString("songName"),
			n.MetaString("albumName"),
			n.Title,
			"some content",
		)
		return fmt.Sprintf("shared %q with you", title)
	default:
		if fallback := strings.TrimSpace(firstNonEmpty(n.Body, n.Title)); fallback != "" {
			return fallback
		}
		return "sent you a notification"
	}
}

// SenderName resolves the display name, with the system fallback.
func SenderName(n models.Notification) string {
	if n.SenderName != "" {
		return n.SenderName
	}
	return fallbackSenderName
}

// RouteFor resolves the navigation target for a clicked notification.
func RouteFor(n models.Notification) string {
	switch n.Type {
	case models.TypeFriendRequest, models.TypeFriendRequestAccepted,
		models.TypeInvite, models.TypeInviteAccepted, models.TypeInviteRejected:
		return "/social?tab=friends"
	case models.TypeShare:
		if roomID := n.MetaString("roomId"); roomID != "" {
			return "/social?chat=" + roomID
		}
		return "/social"
	default:
		return "/social"
	}
}

// RelativeTime renders an age for display. Beyond a week it falls back to
// the date.
func RelativeTime(now time.Time, ts models.Timestamp) string {
	if !ts.Known() {
		return "just now"
	}
	diff := now.Sub(ts.Resolve(now))
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return ts.Resolve(now).Format("02/01/2006")
	}
}

func playlistName(n models.Notification) string {
	if name := n.MetaString("playlistName"); name != "" {
		return name
	}
	return "a playlist"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
