package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallens/internal/domain/content"
)

func newTestStore(t *testing.T) *SQLiteSnapshotStore {
	t.Helper()

	store, err := NewSQLiteSnapshotStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func snapshot(id, location string, createdAt time.Time, items int) content.Snapshot {
	result := content.Result{
		ID:       id,
		Location: location,
		Analytics: content.Analytics{
			Categories: map[string]int{"general": items},
			Sentiment:  map[content.Sentiment]int{content.SentimentNeutral: items},
		},
		SearchTermsUsed: []string{"baltimore"},
		GeneratedAt:     createdAt,
	}
	for i := 0; i < items; i++ {
		result.Items = append(result.Items, content.Item{Title: "story", URL: "https://news.example/" + id})
	}

	return content.Snapshot{
		ID:        id,
		Location:  location,
		ItemCount: items,
		CreatedAt: createdAt,
		Result:    result,
	}
}

func TestSQLiteSnapshotStore_SaveAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveSnapshot(ctx, snapshot("a", "Baltimore, MD", base, 2)))
	require.NoError(t, store.SaveSnapshot(ctx, snapshot("b", "Baltimore, MD", base.Add(time.Hour), 3)))
	require.NoError(t, store.SaveSnapshot(ctx, snapshot("c", "Towson, MD", base.Add(2*time.Hour), 1)))

	snaps, err := store.RecentSnapshots(ctx, "baltimore,md", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, "b", snaps[0].ID)
	assert.Equal(t, "a", snaps[1].ID)
	assert.Equal(t, 3, snaps[0].ItemCount)
	assert.True(t, base.Add(time.Hour).Equal(snaps[0].CreatedAt))
	assert.Len(t, snaps[0].Result.Items, 3)
	assert.Equal(t, 3, snaps[0].Result.Analytics.Sentiment[content.SentimentNeutral])

	limited, err := store.RecentSnapshots(ctx, "Baltimore, MD", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteSnapshotStore_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveSnapshot(ctx, snapshot("a", "Baltimore, MD", now, 1)))
	require.NoError(t, store.SaveSnapshot(ctx, snapshot("a", "Baltimore, MD", now, 4)))

	snaps, err := store.RecentSnapshots(ctx, "Baltimore, MD", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 4, snaps[0].ItemCount)
}

func TestSQLiteSnapshotStore_Empty(t *testing.T) {
	snaps, err := newTestStore(t).RecentSnapshots(context.Background(), "Nowhere", 5)
	require.NoError(t, err)
	assert.Empty(t, snaps)
	assert.NotNil(t, snaps)
}

func TestSQLiteSnapshotStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	store, err := NewSQLiteSnapshotStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(context.Background(), snapshot("a", "Baltimore, MD", time.Now(), 1)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteSnapshotStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	snaps, err := reopened.RecentSnapshots(context.Background(), "Baltimore, MD", 5)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "baltimore,md", locationKey("Baltimore, MD"))
	assert.Equal(t, "baltimore,md", locationKey("  baltimore ,md "))
	assert.Equal(t, "springfield", locationKey("Springfield"))
}
