package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/echoverse/synccore/internal/models"
)

func TestActionFor(t *testing.T) {
	assert.Equal(t, ActionButton, ActionFor(models.TypeFriendRequest))
	assert.Equal(t, ActionBadge, ActionFor(models.TypeFriendRequestAccepted))
	assert.Equal(t, ActionBadge, ActionFor(models.TypeInviteAccepted))
	assert.Equal(t, ActionBadge, ActionFor(models.TypeInviteRejected))
	assert.Equal(t, ActionLink, ActionFor(models.TypeInvite))
	assert.Equal(t, ActionLink, ActionFor(models.TypeShare))
	assert.Equal(t, ActionNone, ActionFor(models.NotificationType("SOMETHING_ELSE")))
}

func TestRouteFor(t *testing.T) {
	assert.Equal(t, "/social?tab=friends", RouteFor(models.Notification{Type: models.TypeFriendRequest}))
	assert.Equal(t, "/social?tab=friends", RouteFor(models.Notification{Type: models.TypeInvite}))

	share := models.Notification{
		Type:     models.TypeShare,
		Metadata: map[string]interface{}{"roomId": "1_2"},
	}
	assert.Equal(t, "/social?chat=1_2", RouteFor(share))
	assert.Equal(t, "/social", RouteFor(models.Notification{Type: models.TypeShare}))
	assert.Equal(t, "/social", RouteFor(models.Notification{Type: "UNKNOWN"}))
}

func TestDescribe(t *testing.T) {
	invite := models.Notification{
		Type:     models.TypeInvite,
		Metadata: map[string]interface{}{"playlistName": "Road Trip"},
	}
	assert.Equal(t, `invited you to collaborate on "Road Trip"`, Describe(invite))

	assert.Equal(t, `invited you to collaborate on "a playlist"`,
		Describe(models.Notification{Type: models.TypeInvite}))

	share := models.Notification{
		Type:     models.TypeShare,
		Metadata: map[string]interface{}{"songName": "Midnight Sun"},
	}
	assert.Equal(t, `shared "Midnight Sun" with you`, Describe(share))

	fallback := models.Notification{Type: "UNKNOWN", Body: "  something happened  "}
	assert.Equal(t, "something happened", Describe(fallback))

	assert.Equal(t, "sent you a notification", Describe(models.Notification{Type: "UNKNOWN"}))
}

func TestSenderName(t *testing.T) {
	assert.Equal(t, "Alice", SenderName(models.Notification{SenderName: "Alice"}))
	assert.Equal(t, "EchoVerse", SenderName(models.Notification{}))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   models.Timestamp
		want string
	}{
		{"unknown", models.Timestamp{}, "just now"},
		{"seconds ago", models.NewTimestamp(now.Add(-30 * time.Second)), "just now"},
		{"minutes ago", models.NewTimestamp(now.Add(-5 * time.Minute)), "5m ago"},
		{"hours ago", models.NewTimestamp(now.Add(-3 * time.Hour)), "3h ago"},
		{"days ago", models.NewTimestamp(now.Add(-2 * 24 * time.Hour)), "2d ago"},
		{"beyond a week", models.NewTimestamp(now.Add(-10 * 24 * time.Hour)), "31/05/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now, tt.ts))
		})
	}
}
