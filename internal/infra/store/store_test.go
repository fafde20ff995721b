package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Preferences(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LoadPreferences(ctx)
	assert.ErrorIs(t, err, ErrNoPreferences)

	fixed := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.SavePreferences(ctx, Preferences{Volume: 0.4, Repeat: "all", LastIndex: 3, LastTrackID: "t4"}))
	require.NoError(t, s.SavePreferences(ctx, Preferences{Volume: 0.6, Repeat: "one", LastIndex: 1, LastTrackID: "t2"}))

	p, err := s.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.6, p.Volume)
	assert.Equal(t, "one", p.Repeat)
	assert.Equal(t, 1, p.LastIndex)
	assert.Equal(t, "t2", p.LastTrackID)
	assert.True(t, fixed.Equal(p.UpdatedAt))
}

func TestStore_History(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		e, err := s.AppendHistory(ctx, HistoryEntry{
			TrackID:  id,
			Outcome:  "ended",
			Position: 90 * time.Second,
			PlayedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
	}

	entries, err := s.RecentHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t3", entries[0].TrackID)
	assert.Equal(t, "t2", entries[1].TrackID)
	assert.Equal(t, 90*time.Second, entries[0].Position)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SavePreferences(ctx, Preferences{Volume: 0.25, Repeat: "none", LastIndex: 2}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.25, p.Volume)
	assert.Equal(t, 2, p.LastIndex)
}
