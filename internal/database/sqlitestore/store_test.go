package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"agora/internal/forum"
	"agora/internal/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "agora.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, fs *ForumStore, id string) {
	t.Helper()
	require.NoError(t, fs.CreateUser(context.Background(), &forum.User{
		ID:        id,
		Role:      forum.RoleMember,
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func seedTopic(t *testing.T, fs *ForumStore, id, authorID string) *forum.Topic {
	t.Helper()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	topic := &forum.Topic{
		ID:         id,
		CategoryID: "math101",
		AuthorID:   authorID,
		Title:      "Week 3 homework help",
		Body:       "a body well above the minimum length for a topic",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, fs.CreateTopic(context.Background(), topic))
	return topic
}

func TestUserRoundTrip(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ctx := context.Background()

	until := time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)
	bannedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fs.CreateUser(ctx, &forum.User{
		ID:          "alice",
		Handle:      "alice.example",
		Role:        forum.RoleModerator,
		CreatedAt:   bannedAt.Add(-30 * 24 * time.Hour),
		IsBanned:    true,
		BannedAt:    &bannedAt,
		BannedUntil: &until,
		BannedBy:    "root",
		BanReason:   "spam",
	}))

	got, err := fs.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, forum.RoleModerator, got.Role)
	assert.True(t, got.IsBanned)
	require.NotNil(t, got.BannedUntil)
	assert.Equal(t, until, got.BannedUntil.UTC())
	assert.Equal(t, "root", got.BannedBy)

	missing, err := fs.GetUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteTopicCascadesPosts(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ctx := context.Background()

	seedUser(t, fs, "alice")
	topic := seedTopic(t, fs, "t1", "alice")
	require.NoError(t, fs.CreatePost(ctx, &forum.Post{
		ID: "p1", TopicID: topic.ID, AuthorID: "alice", Body: "a reply long enough",
		CreatedAt: topic.CreatedAt, UpdatedAt: topic.CreatedAt,
	}))

	require.NoError(t, fs.DeleteTopic(ctx, topic.ID, topic.CreatedAt.Add(time.Hour)))

	post, err := fs.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestDeleteTopic_SupersedesReports(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ms := store.ModerationStore()
	ctx := context.Background()

	seedUser(t, fs, "alice")
	seedUser(t, fs, "bob")
	topic := seedTopic(t, fs, "t1", "alice")
	require.NoError(t, fs.CreatePost(ctx, &forum.Post{
		ID: "p1", TopicID: topic.ID, AuthorID: "alice", Body: "a reply long enough",
		CreatedAt: topic.CreatedAt, UpdatedAt: topic.CreatedAt,
	}))

	postRef := forum.ContentRef{Kind: forum.KindPost, ID: "p1"}
	for i, target := range []forum.ContentRef{topic.Ref(), postRef} {
		require.NoError(t, ms.CreateReport(ctx, &moderation.Report{
			ID:             "r" + string(rune('1'+i)),
			ReporterID:     "bob",
			Target:         target,
			TargetAuthorID: "alice",
			Reason:         moderation.ReasonSpam,
			Status:         moderation.ReportStatusPending,
			CreatedAt:      topic.CreatedAt,
		}))
	}

	deletedAt := topic.CreatedAt.Add(time.Hour)
	require.NoError(t, fs.DeleteTopic(ctx, topic.ID, deletedAt))

	// Reports on the topic and on its cascaded posts are closed, not orphaned
	n, err := ms.CountPendingReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, id := range []string{"r1", "r2"} {
		report, err := ms.GetReport(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, moderation.ReportStatusDismissed, report.Status)
		assert.Equal(t, moderation.AutomodActor, report.ResolvedBy)
		require.NotNil(t, report.ResolvedAt)
		assert.Equal(t, deletedAt, report.ResolvedAt.UTC())
	}
}

func TestDeletePost_SupersedesReports(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ms := store.ModerationStore()
	ctx := context.Background()

	seedUser(t, fs, "alice")
	seedUser(t, fs, "bob")
	topic := seedTopic(t, fs, "t1", "alice")
	require.NoError(t, fs.CreatePost(ctx, &forum.Post{
		ID: "p1", TopicID: topic.ID, AuthorID: "alice", Body: "a reply long enough",
		CreatedAt: topic.CreatedAt, UpdatedAt: topic.CreatedAt,
	}))
	require.NoError(t, ms.CreateReport(ctx, &moderation.Report{
		ID:             "r1",
		ReporterID:     "bob",
		Target:         forum.ContentRef{Kind: forum.KindPost, ID: "p1"},
		TargetAuthorID: "alice",
		Reason:         moderation.ReasonSpam,
		Status:         moderation.ReportStatusPending,
		CreatedAt:      topic.CreatedAt,
	}))

	require.NoError(t, fs.DeletePost(ctx, "p1", topic.CreatedAt.Add(time.Hour)))

	n, err := ms.CountPendingReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestListTopics_HiddenFilterAndPinOrder(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ms := store.ModerationStore()
	ctx := context.Background()

	seedUser(t, fs, "alice")
	seedTopic(t, fs, "t1", "alice")
	t2 := seedTopic(t, fs, "t2", "alice")
	t3 := seedTopic(t, fs, "t3", "alice")
	require.NoError(t, ms.SetContentHidden(ctx, t2.Ref(), true))
	require.NoError(t, ms.SetTopicPinned(ctx, t3.ID, true))

	visible, err := fs.ListTopics(ctx, forum.ListTopicsOptions{CategoryID: "math101"})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "t3", visible[0].ID, "pinned topics list first")

	all, err := fs.ListTopics(ctx, forum.ListTopicsOptions{CategoryID: "math101", IncludeHidden: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestVoteUniquePerActorAndTarget(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ctx := context.Background()

	seedUser(t, fs, "alice")
	seedUser(t, fs, "bob")
	topic := seedTopic(t, fs, "t1", "alice")
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, fs.InsertVote(ctx, &forum.Vote{
		ID: "v1", ActorID: "bob", Target: topic.Ref(), Value: 1, CreatedAt: now,
	}))
	// Second row for the same (actor, target) violates the unique constraint
	err := fs.InsertVote(ctx, &forum.Vote{
		ID: "v2", ActorID: "bob", Target: topic.Ref(), Value: -1, CreatedAt: now,
	})
	assert.Error(t, err)

	require.NoError(t, fs.InsertVote(ctx, &forum.Vote{
		ID: "v3", ActorID: "alice", Target: topic.Ref(), Value: -1, CreatedAt: now,
	}))

	total, err := fs.SumVotes(ctx, topic.Ref())
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	require.NoError(t, fs.UpdateVoteValue(ctx, "v3", 1))
	total, err = fs.SumVotes(ctx, topic.Ref())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestApplyDeleteAndBan_Atomic(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ms := store.ModerationStore()
	ctx := context.Background()

	seedUser(t, fs, "alice")
	seedUser(t, fs, "bob")
	topic := seedTopic(t, fs, "t1", "alice")
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ms.CreateReport(ctx, &moderation.Report{
		ID:             "r1",
		ReporterID:     "bob",
		Target:         topic.Ref(),
		TargetAuthorID: "alice",
		Reason:         moderation.ReasonSpam,
		Status:         moderation.ReportStatusPending,
		CreatedAt:      now.Add(-time.Hour),
	}))

	ref := topic.Ref()
	err := ms.ApplyDeleteAndBan(ctx, ref, "alice",
		moderation.BanState{BannedAt: now, BannedBy: "mod", Reason: "spam"},
		[]*moderation.Action{
			{ID: "a1", Type: moderation.ActionDeleteTopic, ModeratorID: "mod", TargetUserID: "alice", Target: &ref, CreatedAt: now},
			{ID: "a2", Type: moderation.ActionBan, ModeratorID: "mod", TargetUserID: "alice", Target: &ref, BanDuration: moderation.BanPermanent, CreatedAt: now},
		})
	require.NoError(t, err)

	gone, err := fs.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	banned, err := fs.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, banned.IsBanned)

	actions, err := ms.ListActions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	// The pending report on the deleted topic is closed in the same transaction
	pending, err := ms.CountPendingReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	report, err := ms.GetReport(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportStatusDismissed, report.Status)
	assert.Equal(t, moderation.AutomodActor, report.ResolvedBy)
}

func TestReportListingAndStatsQueries(t *testing.T) {
	store := openTestStore(t)
	fs := store.ForumStore()
	ms := store.ModerationStore()
	ctx := context.Background()

	seedUser(t, fs, "alice")
	seedUser(t, fs, "bob")
	topic := seedTopic(t, fs, "t1", "alice")
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	for i, reason := range []moderation.ReportReason{moderation.ReasonSpam, moderation.ReasonSpam, moderation.ReasonOther} {
		require.NoError(t, ms.CreateReport(ctx, &moderation.Report{
			ID:             "r" + string(rune('1'+i)),
			ReporterID:     "bob",
			Target:         topic.Ref(),
			TargetAuthorID: "alice",
			Reason:         reason,
			Status:         moderation.ReportStatusPending,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	n, err := ms.CountReportsForTarget(ctx, topic.Ref())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, ms.ResolveReport(ctx, "r1", moderation.ReportStatusResolved, "mod", base.Add(time.Hour)))

	// A closed report cannot be closed again, even racing past the service
	err = ms.ResolveReport(ctx, "r1", moderation.ReportStatusDismissed, "mod2", base.Add(2*time.Hour))
	assert.Equal(t, forum.CodeConflict, forum.CodeOf(err))
	closed, err := ms.GetReport(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportStatusResolved, closed.Status)
	assert.Equal(t, "mod", closed.ResolvedBy)

	pending, err := ms.ListReports(ctx, moderation.ReportStatusPending, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	all, err := ms.ListReports(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].ID, "newest first")

	byReason, err := ms.ReportsByReasonSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, byReason[moderation.ReasonSpam])
	assert.Equal(t, 1, byReason[moderation.ReasonOther])

	// Period cutoff excludes earlier rows
	recent, err := ms.CountReportsSince(ctx, base.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, recent)
}
