// Package friends is the one-shot client for the peer directory source.
package friends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/echoverse/synccore/internal/models"
)

const (
	requestTimeout   = 10 * time.Second
	serviceTokenTTL  = 2 * time.Minute
	serviceTokenType = "sync-core"
)

// apiFriendDTO is the friends API wire shape. FriendID is the peer's user
// id; ID is the friendship relationship id.
type apiFriendDTO struct {
	ID           *int64 `json:"id"`
	FriendID     *int64 `json:"friendId"`
	FriendName   string `json:"friendName"`
	FriendEmail  string `json:"friendEmail"`
	FriendAvatar string `json:"friendAvatar"`
}

// Client fetches the friend roster over HTTP, authenticating with a
// short-lived HS256 service token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	jwtSecret  string
}

func NewClient(baseURL, jwtSecret string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		jwtSecret:  jwtSecret,
	}
}

// GetFriends fetches and maps the roster for a user. Failures are returned
// to the caller, which treats them as transient and does not retry.
func (c *Client) GetFriends(ctx context.Context, userID int64) ([]models.PeerSummary, error) {
	url := fmt.Sprintf("%s/friends/%d", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build friends request: %w", err)
	}

	token, err := c.serviceToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("friends request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("friends request returned status %d", resp.StatusCode)
	}

	var dtos []apiFriendDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("failed to decode friends response: %w", err)
	}

	peers := make([]models.PeerSummary, 0, len(dtos))
	for _, dto := range dtos {
		if peer, ok := mapFriend(c.baseURL, dto); ok {
			peers = append(peers, peer)
		}
	}
	return peers, nil
}

func (c *Client) serviceToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"typ": serviceTokenType,
		"iat": now.Unix(),
		"exp": now.Add(serviceTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.jwtSecret))
}

// mapFriend converts one DTO, deriving the roster key, display name,
// username, and an absolute avatar URL.
func mapFriend(baseURL string, dto apiFriendDTO) (models.PeerSummary, bool) {
	var numericID int64
	if dto.FriendID != nil {
		numericID = *dto.FriendID
	}

	id := ""
	switch {
	case dto.FriendID != nil:
		id = fmt.Sprintf("%d", *dto.FriendID)
	case dto.ID != nil:
		id = fmt.Sprintf("%d", *dto.ID)
	}
	if id == "" {
		return models.PeerSummary{}, false
	}

	name := dto.FriendName
	if name == "" {
		name = fmt.Sprintf("User %s", id)
	}

	username := fmt.Sprintf("@user%s", id)
	if dto.FriendEmail != "" {
		if local := strings.SplitN(dto.FriendEmail, "@", 2)[0]; local != "" {
			username = "@" + strings.ToLower(local)
		}
	}

	return models.PeerSummary{
		ID:        id,
		NumericID: numericID,
		Name:      name,
		Username:  username,
		Avatar:    ResolveAssetURL(baseURL, dto.FriendAvatar),
	}, true
}

var absoluteURLPattern = regexp.MustCompile(`(?i)^https?://`)

// ResolveAssetURL turns a possibly-relative asset path into an absolute
// URL. When the API base already ends in /api and the path repeats it, the
// duplicate prefix is collapsed.
func ResolveAssetURL(base, u string) string {
	if u == "" {
		return ""
	}
	if absoluteURLPattern.MatchString(u) {
		return u
	}
	base = strings.TrimRight(base, "/")
	if strings.HasPrefix(u, "/api/") && strings.HasSuffix(base, "/api") {
		return strings.TrimSuffix(base, "/api") + u
	}
	if strings.HasPrefix(u, "/") {
		return base + u
	}
	return base + "/" + u
}
