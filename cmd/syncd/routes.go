package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/echoverse/synccore/internal/alerts"
	"github.com/echoverse/synccore/internal/logger"
	"github.com/echoverse/synccore/internal/models"
	"github.com/echoverse/synccore/internal/notify"
	"github.com/echoverse/synccore/internal/session"
	"github.com/echoverse/synccore/internal/watcher"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
	alertBuffer    = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local-only surface; the UI process connects from its own origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// presenceReader is the read side of the presence channel, for rendering
// peer online state. *redischan.PresenceChannel satisfies it.
type presenceReader interface {
	GetPresence(ctx context.Context, userID int64) (*models.Presence, error)
}

type api struct {
	manager  *session.Manager
	feed     *notify.Aggregator
	registry *watcher.Registry
	bus      *alerts.Bus
	presence presenceReader
}

func newAPI(manager *session.Manager, feed *notify.Aggregator, registry *watcher.Registry, bus *alerts.Bus, presence presenceReader) *api {
	return &api{manager: manager, feed: feed, registry: registry, bus: bus, presence: presence}
}

func (a *api) Routes(router chi.Router) {
	router.Post("/session", a.startSession)
	router.Delete("/session", a.endSession)
	router.Post("/visibility", a.setVisibility)

	router.Get("/notifications", a.getNotifications)
	router.Post("/notifications/{id}/read", a.markRead)
	router.Post("/notifications/show-more", a.showMore)
	router.Post("/notifications/collapse", a.collapse)

	router.Post("/chats/{peerID}/opened", a.chatOpened)
	router.Get("/presence/{userID}", a.getPresence)
	router.Get("/ws/alerts", a.streamAlerts)
}

func (a *api) startSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID int64 `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == 0 {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	a.manager.Start(body.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) endSession(w http.ResponseWriter, r *http.Request) {
	a.manager.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) setVisibility(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Visible bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "visible is required", http.StatusBadRequest)
		return
	}
	a.manager.SetVisible(body.Visible)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) getNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.feed.View())
}

func (a *api) markRead(w http.ResponseWriter, r *http.Request) {
	a.feed.MarkRead(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) showMore(w http.ResponseWriter, r *http.Request) {
	a.feed.ShowMore()
	writeJSON(w, a.feed.View())
}

func (a *api) collapse(w http.ResponseWriter, r *http.Request) {
	a.feed.Collapse()
	writeJSON(w, a.feed.View())
}

func (a *api) chatOpened(w http.ResponseWriter, r *http.Request) {
	a.registry.ClearUnread(chi.URLParam(r, "peerID"))
	w.WriteHeader(http.StatusNoContent)
}

// getPresence reads another user's online state for display. A missing
// presence key is a normal offline answer, not an error.
func (a *api) getPresence(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID == 0 {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	p, err := a.presence.GetPresence(r.Context(), userID)
	if err != nil {
		logger.Warn("failed to read presence", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "presence unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, p)
}

// streamAlerts pushes alert events to the UI over a websocket. Alerts are
// ephemeral: a slow consumer loses events rather than blocking emitters.
func (a *api) streamAlerts(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events := make(chan alerts.Alert, alertBuffer)
	cancel := a.bus.Subscribe(func(alert alerts.Alert) {
		select {
		case events <- alert:
		default:
		}
	})
	defer cancel()

	// Reader: only to observe the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case alert := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(alert); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}
