package boltstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"agora/internal/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *GuardStore {
	t.Helper()
	store, err := Open(Options{Path: filepath.Join(t.TempDir(), "throttle.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store.GuardStore()
}

func TestSumActive(t *testing.T) {
	gs := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// Two open windows and one already closed
	for _, rec := range []guard.Record{
		{ActorID: "alice", Action: guard.ActionCreateTopic, WindowStart: now.Add(-50 * time.Minute), WindowEnd: now.Add(10 * time.Minute), Count: 1},
		{ActorID: "alice", Action: guard.ActionCreateTopic, WindowStart: now.Add(-30 * time.Minute), WindowEnd: now.Add(30 * time.Minute), Count: 1},
		{ActorID: "alice", Action: guard.ActionCreateTopic, WindowStart: now.Add(-2 * time.Hour), WindowEnd: now.Add(-time.Hour), Count: 1},
	} {
		require.NoError(t, gs.AppendRecord(ctx, rec))
	}
	// Different actor and different action must not count
	require.NoError(t, gs.AppendRecord(ctx, guard.Record{
		ActorID: "bob", Action: guard.ActionCreateTopic, WindowStart: now, WindowEnd: now.Add(time.Hour), Count: 1,
	}))
	require.NoError(t, gs.AppendRecord(ctx, guard.Record{
		ActorID: "alice", Action: guard.ActionCreatePost, WindowStart: now, WindowEnd: now.Add(time.Hour), Count: 1,
	}))

	sum, expiry, err := gs.SumActive(ctx, "alice", guard.ActionCreateTopic, now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, sum)
	assert.Equal(t, now.Add(10*time.Minute), expiry.UTC())
}

func TestSumActive_PurgesStaleRecords(t *testing.T) {
	gs := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, gs.AppendRecord(ctx, guard.Record{
		ActorID: "alice", Action: guard.ActionCreateTopic,
		WindowStart: now.Add(-4 * time.Hour), WindowEnd: now.Add(-3 * time.Hour), Count: 1,
	}))

	sum, _, err := gs.SumActive(ctx, "alice", guard.ActionCreateTopic, now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)

	// Purged: even a scan with an infinite lookback finds nothing
	sum, _, err = gs.SumActive(ctx, "alice", guard.ActionCreateTopic, now, 100*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func TestLastCreation(t *testing.T) {
	gs := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	last, err := gs.LastCreation(ctx, "alice", guard.ActionCreatePost)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	require.NoError(t, gs.RecordCreation(ctx, "alice", guard.ActionCreatePost, now, "fp1"))
	last, err = gs.LastCreation(ctx, "alice", guard.ActionCreatePost)
	require.NoError(t, err)
	assert.Equal(t, now, last.UTC())

	// A later creation overwrites
	require.NoError(t, gs.RecordCreation(ctx, "alice", guard.ActionCreatePost, now.Add(time.Minute), "fp2"))
	last, err = gs.LastCreation(ctx, "alice", guard.ActionCreatePost)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), last.UTC())
}

func TestSeenFingerprint(t *testing.T) {
	gs := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, gs.RecordCreation(ctx, "alice", guard.ActionCreatePost, now, "fp1"))

	seen, err := gs.SeenFingerprint(ctx, "alice", guard.ActionCreatePost, "fp1", now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.True(t, seen)

	// Outside the window
	seen, err = gs.SeenFingerprint(ctx, "alice", guard.ActionCreatePost, "fp1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, seen)

	// Different actor
	seen, err = gs.SeenFingerprint(ctx, "bob", guard.ActionCreatePost, "fp1", now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, seen)

	// Unknown fingerprint
	seen, err = gs.SeenFingerprint(ctx, "alice", guard.ActionCreatePost, "fp9", now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRecordCreation_GarbageCollectsOldFingerprints(t *testing.T) {
	gs := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, gs.RecordCreation(ctx, "alice", guard.ActionCreatePost, now.Add(-26*time.Hour), "stale"))
	require.NoError(t, gs.RecordCreation(ctx, "alice", guard.ActionCreatePost, now, "fresh"))

	seen, err := gs.SeenFingerprint(ctx, "alice", guard.ActionCreatePost, "stale", time.Time{})
	require.NoError(t, err)
	assert.False(t, seen, "stale fingerprint should be gone after the next write")
}
