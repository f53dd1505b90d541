package moderation_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agora/internal/clock"
	"agora/internal/database/sqlitestore"
	"agora/internal/forum"
	"agora/internal/moderation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc   *moderation.Service
	store *sqlitestore.ModerationStore
	forum *sqlitestore.ForumStore
	clk   *clock.Fixed
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	content, err := sqlitestore.Open(filepath.Join(t.TempDir(), "agora.db"))
	require.NoError(t, err)
	t.Cleanup(func() { content.Close() })

	clk := &clock.Fixed{T: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	forumStore := content.ForumStore()
	modStore := content.ModerationStore()
	return &testEnv{
		svc:   moderation.NewService(modStore, forumStore, forumStore, clk),
		store: modStore,
		forum: forumStore,
		clk:   clk,
	}
}

func (e *testEnv) createUser(t *testing.T, id string, role forum.Role) *forum.User {
	t.Helper()
	user := &forum.User{
		ID:        id,
		Handle:    id + ".example",
		Role:      role,
		CreatedAt: e.clk.T.Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, e.forum.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createTopic(t *testing.T, authorID string) *forum.Topic {
	t.Helper()
	topic := &forum.Topic{
		ID:         uuid.NewString(),
		CategoryID: "math101",
		AuthorID:   authorID,
		Title:      "Week 3 homework help",
		Body:       strings.Repeat("substantive content ", 5),
		CreatedAt:  e.clk.T,
		UpdatedAt:  e.clk.T,
	}
	require.NoError(t, e.forum.CreateTopic(context.Background(), topic))
	return topic
}

func TestSubmitReport_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	bob := env.createUser(t, "bob", forum.RoleMember)
	topic := env.createTopic(t, alice.ID)

	_, err := env.svc.SubmitReport(ctx, bob, topic.Ref(), "nonsense", "")
	assert.Equal(t, forum.CodeValidation, forum.CodeOf(err))

	_, err = env.svc.SubmitReport(ctx, bob, forum.ContentRef{Kind: forum.KindTopic, ID: "missing"}, moderation.ReasonSpam, "")
	assert.Equal(t, forum.CodeNotFound, forum.CodeOf(err))

	// Reporting your own content is rejected
	_, err = env.svc.SubmitReport(ctx, alice, topic.Ref(), moderation.ReasonSpam, "")
	assert.Equal(t, forum.CodeValidation, forum.CodeOf(err))

	// Over-long details are rejected, not truncated
	_, err = env.svc.SubmitReport(ctx, bob, topic.Ref(), moderation.ReasonSpam, strings.Repeat("x", moderation.MaxReportDetailsLen+1))
	assert.Equal(t, forum.CodeValidation, forum.CodeOf(err))

	report, err := env.svc.SubmitReport(ctx, bob, topic.Ref(), moderation.ReasonSpam, "copied from a spam site")
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportStatusPending, report.Status)
	assert.Equal(t, alice.ID, report.TargetAuthorID)
}

func TestSubmitReport_EscalationAtThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	topic := env.createTopic(t, alice.ID)

	reporters := []struct {
		id     string
		reason moderation.ReportReason
	}{
		{"bob", moderation.ReasonSpam},
		{"carol", moderation.ReasonSpam},
		{"dave", moderation.ReasonOther},
	}

	for i, r := range reporters {
		reporter := env.createUser(t, r.id, forum.RoleMember)
		_, err := env.svc.SubmitReport(ctx, reporter, topic.Ref(), r.reason, "")
		require.NoError(t, err)

		meta, err := env.store.GetContentMeta(ctx, topic.Ref())
		require.NoError(t, err)
		if i < 2 {
			assert.False(t, meta.Hidden, "content must stay visible below the threshold")
		} else {
			assert.True(t, meta.Hidden, "third report must hide the content")
		}
	}

	// The hide is recorded in the ledger under the automod actor
	actions, err := env.store.ListActions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, moderation.ActionHideTopic, actions[0].Type)
	assert.Equal(t, moderation.AutomodActor, actions[0].ModeratorID)
	assert.Equal(t, alice.ID, actions[0].TargetUserID)

	// All three reports stay pending for human review
	n, err := env.store.CountPendingReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// A fourth report does not double-hide
	eve := env.createUser(t, "eve", forum.RoleMember)
	_, err = env.svc.SubmitReport(ctx, eve, topic.Ref(), moderation.ReasonSpam, "")
	require.NoError(t, err)
	actions, err = env.store.ListActions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, actions, 1)
}

func TestReportStateMachine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	bob := env.createUser(t, "bob", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)
	topic := env.createTopic(t, alice.ID)

	report, err := env.svc.SubmitReport(ctx, bob, topic.Ref(), moderation.ReasonHarassment, "")
	require.NoError(t, err)

	// Members cannot touch reports
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(env.svc.ResolveReport(ctx, bob, report.ID)))

	require.NoError(t, env.svc.ResolveReport(ctx, mod, report.ID))

	got, err := env.store.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportStatusResolved, got.Status)
	assert.Equal(t, mod.ID, got.ResolvedBy)
	require.NotNil(t, got.ResolvedAt)

	// Terminal states cannot transition again
	assert.Equal(t, forum.CodeConflict, forum.CodeOf(env.svc.DismissReport(ctx, mod, report.ID)))
	assert.Equal(t, forum.CodeConflict, forum.CodeOf(env.svc.ResolveReport(ctx, mod, report.ID)))

	assert.Equal(t, forum.CodeNotFound, forum.CodeOf(env.svc.ResolveReport(ctx, mod, "missing")))
}

func TestBanAndUnban(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)
	admin := env.createUser(t, "root", forum.RoleAdmin)

	assert.Equal(t, forum.CodeValidation, forum.CodeOf(env.svc.BanUser(ctx, mod, alice.ID, "")))
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(env.svc.BanUser(ctx, alice, mod.ID, "revenge")))
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(env.svc.BanUser(ctx, mod, admin.ID, "nope")))

	require.NoError(t, env.svc.BanUser(ctx, mod, alice.ID, "repeated spam"))

	banned, err := env.forum.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, banned.IsBanned)
	assert.Nil(t, banned.BannedUntil)
	assert.Equal(t, mod.ID, banned.BannedBy)
	assert.True(t, banned.BannedNow(env.clk.T))

	// Banned users cannot file reports
	topic := env.createTopic(t, mod.ID)
	_, err = env.svc.SubmitReport(ctx, banned, topic.Ref(), moderation.ReasonSpam, "")
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(err))

	// Unban is admin-only
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(env.svc.UnbanUser(ctx, mod, alice.ID)))
	require.NoError(t, env.svc.UnbanUser(ctx, admin, alice.ID))

	cleared, err := env.forum.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, cleared.IsBanned)
	assert.Nil(t, cleared.BannedAt)

	assert.Equal(t, forum.CodeConflict, forum.CodeOf(env.svc.UnbanUser(ctx, admin, alice.ID)))
}

func TestModeratorRoleChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)
	admin := env.createUser(t, "root", forum.RoleAdmin)

	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(env.svc.AddModerator(ctx, mod, alice.ID)))
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(env.svc.AddModerator(ctx, admin, admin.ID)))

	require.NoError(t, env.svc.AddModerator(ctx, admin, alice.ID))
	promoted, err := env.forum.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.RoleModerator, promoted.Role)

	assert.Equal(t, forum.CodeConflict, forum.CodeOf(env.svc.AddModerator(ctx, admin, alice.ID)))

	require.NoError(t, env.svc.RemoveModerator(ctx, admin, alice.ID))
	demoted, err := env.forum.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.RoleMember, demoted.Role)

	assert.Equal(t, forum.CodeConflict, forum.CodeOf(env.svc.RemoveModerator(ctx, admin, alice.ID)))
}

func TestDeleteAndBan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	bob := env.createUser(t, "bob", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)
	topic := env.createTopic(t, alice.ID)

	_, err := env.svc.SubmitReport(ctx, bob, topic.Ref(), moderation.ReasonSpam, "")
	require.NoError(t, err)

	// Author mismatch is rejected before anything happens
	err = env.svc.DeleteAndBan(ctx, mod, mod.ID, topic.Ref(), "spam", moderation.BanOneWeek)
	assert.Equal(t, forum.CodeValidation, forum.CodeOf(err))

	require.NoError(t, env.svc.DeleteAndBan(ctx, mod, alice.ID, topic.Ref(), "spam", moderation.BanOneWeek))

	// Content gone
	gone, err := env.forum.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Author banned for a week
	banned, err := env.forum.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, banned.IsBanned)
	require.NotNil(t, banned.BannedUntil)
	assert.Equal(t, env.clk.T.Add(7*24*time.Hour), banned.BannedUntil.UTC())

	// Exactly two ledger rows, one per effect
	actions, err := env.store.ListActions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	types := []moderation.ActionType{actions[0].Type, actions[1].Type}
	assert.Contains(t, types, moderation.ActionDeleteTopic)
	assert.Contains(t, types, moderation.ActionBan)

	// The pending report on the deleted topic does not linger in the queue
	pending, err := env.store.CountPendingReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestHideAndWarn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)
	topic := env.createTopic(t, alice.ID)

	require.NoError(t, env.svc.HideAndWarn(ctx, mod, alice.ID, topic.Ref(), "inflammatory", moderation.SeverityHigh))

	meta, err := env.store.GetContentMeta(ctx, topic.Ref())
	require.NoError(t, err)
	assert.True(t, meta.Hidden)

	warnings, err := env.svc.Warnings(ctx, mod, alice.ID)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, moderation.SeverityHigh, warnings[0].Severity)
	require.NotNil(t, warnings[0].Target)
	assert.Equal(t, topic.ID, warnings[0].Target.ID)

	// Warning never flips ban state
	user, err := env.forum.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, user.IsBanned)

	actions, err := env.store.ListActions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, actions, 2)
}

func TestToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)
	topic := env.createTopic(t, alice.ID)

	pinned, err := env.svc.TogglePin(ctx, mod, topic.ID)
	require.NoError(t, err)
	assert.True(t, pinned)
	pinned, err = env.svc.TogglePin(ctx, mod, topic.ID)
	require.NoError(t, err)
	assert.False(t, pinned)

	locked, err := env.svc.ToggleLock(ctx, mod, topic.ID)
	require.NoError(t, err)
	assert.True(t, locked)

	hidden, err := env.svc.ToggleHide(ctx, mod, topic.Ref())
	require.NoError(t, err)
	assert.True(t, hidden)

	// Explicit unhide reverses an escalation hide
	hidden, err = env.svc.ToggleHide(ctx, mod, topic.Ref())
	require.NoError(t, err)
	assert.False(t, hidden)

	_, err = env.svc.TogglePin(ctx, alice, topic.ID)
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(err))

	_, err = env.svc.TogglePin(ctx, mod, "missing")
	assert.Equal(t, forum.CodeNotFound, forum.CodeOf(err))
}

func TestNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)

	_, err := env.svc.AddNote(ctx, alice, alice.ID, "self note")
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(err))

	_, err = env.svc.AddNote(ctx, mod, alice.ID, "")
	assert.Equal(t, forum.CodeValidation, forum.CodeOf(err))

	_, err = env.svc.AddNote(ctx, mod, alice.ID, "spoke with them about tone")
	require.NoError(t, err)

	notes, err := env.svc.Notes(ctx, mod, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, mod.ID, notes[0].ModeratorID)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", forum.RoleMember)
	bob := env.createUser(t, "bob", forum.RoleMember)
	carol := env.createUser(t, "carol", forum.RoleMember)
	mod := env.createUser(t, "mod", forum.RoleModerator)
	topic := env.createTopic(t, alice.ID)

	r1, err := env.svc.SubmitReport(ctx, bob, topic.Ref(), moderation.ReasonSpam, "")
	require.NoError(t, err)
	_, err = env.svc.SubmitReport(ctx, carol, topic.Ref(), moderation.ReasonHarassment, "")
	require.NoError(t, err)
	require.NoError(t, env.svc.ResolveReport(ctx, mod, r1.ID))

	stats, err := env.svc.Stats(ctx, mod, moderation.PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingReports)
	assert.Equal(t, 1, stats.ResolvedReports)
	assert.Equal(t, 2, stats.TotalReports)
	assert.Equal(t, 1, stats.ReportsByReason[moderation.ReasonSpam])
	assert.Equal(t, 1, stats.ReportsByReason[moderation.ReasonHarassment])
	require.Len(t, stats.TopReportedUsers, 1)
	assert.Equal(t, alice.ID, stats.TopReportedUsers[0].AuthorID)
	assert.Equal(t, 2, stats.TopReportedUsers[0].Count)
	require.Len(t, stats.ModeratorActivity, 1)
	assert.Equal(t, mod.ID, stats.ModeratorActivity[0].ModeratorID)
	assert.Equal(t, 1, stats.ActionsByType[moderation.ActionResolveReport])

	_, err = env.svc.Stats(ctx, alice, moderation.PeriodDay)
	assert.Equal(t, forum.CodeForbidden, forum.CodeOf(err))

	_, err = env.svc.Stats(ctx, mod, "fortnight")
	assert.Equal(t, forum.CodeValidation, forum.CodeOf(err))
}
