// Package notify aggregates a user's notification feed into a stable,
// time-grouped, paginated view. The feed survives view teardown/remount
// through a last-known-good cache, and the user can mark items read locally
// ahead of server confirmation.
package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/echoverse/synccore/internal/channels"
	"github.com/echoverse/synccore/internal/logger"
	"github.com/echoverse/synccore/internal/models"
)

// PageSize is the initial and incremental number of visible notifications.
const PageSize = 6

// SnapshotStore persists the last-known-good feed so a restarted client
// rehydrates instead of flashing empty. Optional.
type SnapshotStore interface {
	Load(ctx context.Context, userID int64) ([]models.Notification, []string, error)
	Save(ctx context.Context, userID int64, records []models.Notification, readIDs []string) error
}

// Aggregator owns the raw record list, the local read overlay, and the
// pagination state for one user's feed.
type Aggregator struct {
	channel channels.NotificationChannel
	store   SnapshotStore
	now     func() time.Time

	mu     sync.Mutex
	active bool
	userID int64
	cancel channels.CancelFunc
	// live is the authoritative list from the last channel emission; cache
	// is the last non-empty list and outlives the subscription. Reads see
	// live when non-empty, cache otherwise.
	live    []models.Notification
	cache   []models.Notification
	overlay map[string]bool
	// revealed flips on the first zero-to-nonzero transition; visibleCount
	// is never reset by later pushes, only by explicit actions.
	revealed     bool
	visibleCount int
	prevTotal    int
}

func NewAggregator(channel channels.NotificationChannel, store SnapshotStore) *Aggregator {
	return &Aggregator{
		channel:      channel,
		store:        store,
		now:          time.Now,
		overlay:      make(map[string]bool),
		visibleCount: PageSize,
	}
}

// Start subscribes the aggregator to the user's notification feed. Cached
// records from a previous subscription for the same user are kept; a
// different identity resets everything. No-op while already started.
func (a *Aggregator) Start(userID int64) {
	a.mu.Lock()
	if a.active || userID == 0 {
		a.mu.Unlock()
		return
	}
	if userID != a.userID {
		a.live = nil
		a.cache = nil
		a.overlay = make(map[string]bool)
		a.revealed = false
		a.visibleCount = PageSize
		a.prevTotal = 0
	}
	a.active = true
	a.userID = userID
	a.mu.Unlock()

	a.loadSnapshot(userID)

	cancel, err := a.channel.Watch(userID, a.handleUpdate)
	if err != nil {
		// The cache still serves reads; the feed just will not refresh.
		logger.Warn("failed to watch notifications", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	a.mu.Lock()
	if !a.active {
		// Torn down while subscribing.
		a.mu.Unlock()
		cancel()
		return
	}
	a.cancel = cancel
	a.mu.Unlock()
}

// Teardown releases the subscription. The cache and overlay survive so a
// remount for the same user rehydrates. Idempotent.
func (a *Aggregator) Teardown() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.active = false
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// handleUpdate replaces the raw record list wholesale. Chat-message records
// are the watcher registry's concern and are filtered out here.
func (a *Aggregator) handleUpdate(records []models.Notification) {
	filtered := make([]models.Notification, 0, len(records))
	for _, n := range records {
		if n.Type == models.TypeMessage {
			continue
		}
		filtered = append(filtered, n)
	}

	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}

	a.live = filtered
	if len(filtered) > 0 {
		a.cache = filtered
	}

	current := a.recordsLocked()
	total := len(current)

	// Prune overlay ids that no longer exist, so local read marks cannot
	// grow without bound.
	ids := make(map[string]bool, total)
	for _, n := range current {
		ids[n.ID] = true
	}
	for id := range a.overlay {
		if !ids[id] {
			delete(a.overlay, id)
		}
	}

	if !a.revealed && total > 0 {
		a.revealed = true
		a.visibleCount = PageSize
	}
	if total < a.prevTotal && total < a.visibleCount {
		a.visibleCount = min(PageSize, total)
	}
	a.prevTotal = total

	userID := a.userID
	var snapshot []models.Notification
	var readIDs []string
	if a.store != nil && len(filtered) > 0 {
		snapshot = append([]models.Notification(nil), filtered...)
		readIDs = a.overlayIDsLocked()
	}
	a.mu.Unlock()

	if snapshot != nil {
		a.saveSnapshot(userID, snapshot, readIDs)
	}
}

// MarkRead records a local read mark ahead of server confirmation. It is
// never sent to the server by this module.
func (a *Aggregator) MarkRead(id string) {
	if id == "" {
		return
	}
	a.mu.Lock()
	a.overlay[id] = true
	userID := a.userID
	var snapshot []models.Notification
	var readIDs []string
	if a.store != nil && len(a.cache) > 0 {
		snapshot = append([]models.Notification(nil), a.cache...)
		readIDs = a.overlayIDsLocked()
	}
	a.mu.Unlock()

	if snapshot != nil {
		a.saveSnapshot(userID, snapshot, readIDs)
	}
}

// ShowMore reveals one more page, capped at the total.
func (a *Aggregator) ShowMore() {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := len(a.recordsLocked())
	next := a.visibleCount + PageSize
	if next > total {
		next = total
	}
	if next > a.visibleCount {
		a.visibleCount = next
	}
}

// Collapse resets the visible window back to one page.
func (a *Aggregator) Collapse() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visibleCount = min(PageSize, len(a.recordsLocked()))
	if a.visibleCount == 0 {
		a.visibleCount = PageSize
	}
}

// recordsLocked is the read view: live when non-empty, cache otherwise.
func (a *Aggregator) recordsLocked() []models.Notification {
	if len(a.live) > 0 {
		return a.live
	}
	return a.cache
}

func (a *Aggregator) overlayIDsLocked() []string {
	ids := make([]string, 0, len(a.overlay))
	for id := range a.overlay {
		ids = append(ids, id)
	}
	return ids
}

func (a *Aggregator) loadSnapshot(userID int64) {
	if a.store == nil {
		return
	}
	records, readIDs, err := a.store.Load(context.Background(), userID)
	if err != nil {
		logger.Warn("failed to load feed snapshot", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}

	a.mu.Lock()
	if len(a.cache) == 0 {
		a.cache = records
		for _, id := range readIDs {
			a.overlay[id] = true
		}
	}
	a.mu.Unlock()
}

func (a *Aggregator) saveSnapshot(userID int64, records []models.Notification, readIDs []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.Save(ctx, userID, records, readIDs); err != nil {
		logger.Warn("failed to save feed snapshot", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Item is one notification prepared for display.
type Item struct {
	Record      models.Notification `json:"record"`
	Read        bool                `json:"read"`
	Sender      string              `json:"sender"`
	Description string              `json:"description"`
	Action      ActionKind          `json:"action"`
	Route       string              `json:"route"`
	TimeAgo     string              `json:"timeAgo"`
}

// Section is one non-empty time bucket, in fixed display order.
type Section struct {
	Label BucketLabel `json:"label"`
	Items []Item      `json:"items"`
}

// ViewModel is the derived, never-persisted presentation of the feed.
type ViewModel struct {
	Total        int       `json:"total"`
	VisibleCount int       `json:"visibleCount"`
	HasMore      bool      `json:"hasMore"`
	Sections     []Section `json:"sections"`
}

// View recomputes the grouped, paginated view model: sort descending by
// creation time (missing timestamps count as now), slice the visible
// window, then bucket.
func (a *Aggregator) View() ViewModel {
	a.mu.Lock()
	records := append([]models.Notification(nil), a.recordsLocked()...)
	overlay := make(map[string]bool, len(a.overlay))
	for id := range a.overlay {
		overlay[id] = true
	}
	visibleCount := a.visibleCount
	a.mu.Unlock()

	now := a.now()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Resolve(now).After(records[j].CreatedAt.Resolve(now))
	})

	limit := visibleCount
	if limit > len(records) {
		limit = len(records)
	}
	visible := records[:limit]

	buckets := make(map[BucketLabel][]Item, len(bucketOrder))
	for _, n := range visible {
		label := BucketFor(now, n.CreatedAt.Resolve(now))
		buckets[label] = append(buckets[label], Item{
			Record:      n,
			Read:        overlay[n.ID] || n.Read,
			Sender:      SenderName(n),
			Description: Describe(n),
			Action:      ActionFor(n.Type),
			Route:       RouteFor(n),
			TimeAgo:     RelativeTime(now, n.CreatedAt),
		})
	}

	sections := make([]Section, 0, len(bucketOrder))
	for _, label := range bucketOrder {
		if items := buckets[label]; len(items) > 0 {
			sections = append(sections, Section{Label: label, Items: items})
		}
	}

	return ViewModel{
		Total:        len(records),
		VisibleCount: visibleCount,
		HasMore:      len(records) > limit,
		Sections:     sections,
	}
}
