package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoverse/synccore/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_LoadMissingUser(t *testing.T) {
	s := newTestStore(t)

	records, readIDs, err := s.Load(context.Background(), 1)

	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Nil(t, readIDs)
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []models.Notification{
		{
			ID:         "n1",
			Type:       models.TypeFriendRequest,
			SenderName: "Alice",
			CreatedAt:  models.NewTimestamp(time.UnixMilli(1718020800000).UTC()),
		},
		{ID: "n2", Type: models.TypeShare, Read: true},
	}

	require.NoError(t, s.Save(ctx, 1, records, []string{"n1"}))

	got, readIDs, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, models.TypeFriendRequest, got[0].Type)
	assert.Equal(t, "Alice", got[0].SenderName)
	assert.True(t, got[0].CreatedAt.Known())
	assert.Equal(t, []string{"n1"}, readIDs)
}

func TestSQLiteStore_SaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 1, []models.Notification{{ID: "n1"}}, nil))
	require.NoError(t, s.Save(ctx, 1, []models.Notification{{ID: "n2"}, {ID: "n3"}}, []string{"n2"}))

	got, readIDs, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n2", got[0].ID)
	assert.Equal(t, []string{"n2"}, readIDs)
}

func TestSQLiteStore_UsersAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 1, []models.Notification{{ID: "n1"}}, nil))

	got, _, err := s.Load(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}
