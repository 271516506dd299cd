package friends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetFriends(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 10, "friendId": 42, "friendName": "Alice", "friendEmail": "Alice@Example.com", "friendAvatar": "/files/a.png"},
			{"id": 11, "friendName": "No UserID"},
			{"friendId": 43, "friendEmail": "bob@x.dev"},
			{}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-secret")
	peers, err := client.GetFriends(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "/friends/7", gotPath)
	require.True(t, strings.HasPrefix(gotAuth, "Bearer "), "expected a bearer token, got %q", gotAuth)

	// The service token must be a valid HS256 JWT for the requesting user.
	token, err := jwt.Parse(strings.TrimPrefix(gotAuth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "7", sub)

	// The empty DTO has no usable id and is skipped.
	require.Len(t, peers, 3)

	assert.Equal(t, "42", peers[0].ID)
	assert.Equal(t, int64(42), peers[0].NumericID)
	assert.Equal(t, "Alice", peers[0].Name)
	assert.Equal(t, "@alice", peers[0].Username)
	assert.Equal(t, server.URL+"/files/a.png", peers[0].Avatar)

	// Relationship id is the fallback roster key when no user id exists.
	assert.Equal(t, "11", peers[1].ID)
	assert.Equal(t, int64(0), peers[1].NumericID)

	assert.Equal(t, "User 43", peers[2].Name)
	assert.Equal(t, "@bob", peers[2].Username)
}

func TestClient_GetFriendsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-secret")
	_, err := client.GetFriends(context.Background(), 7)

	assert.Error(t, err)
}

func TestResolveAssetURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		u    string
		want string
	}{
		{"empty", "http://host/api", "", ""},
		{"already absolute", "http://host/api", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"absolute uppercase scheme", "http://host/api", "HTTP://cdn.example.com/a.png", "HTTP://cdn.example.com/a.png"},
		{"api prefix collapsed", "http://host/api", "/api/files/a.png", "http://host/api/files/a.png"},
		{"rooted path", "http://host/api", "/files/a.png", "http://host/api/files/a.png"},
		{"relative path", "http://host/api", "files/a.png", "http://host/api/files/a.png"},
		{"trailing slash base", "http://host/api/", "/files/a.png", "http://host/api/files/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAssetURL(tt.base, tt.u))
		})
	}
}
