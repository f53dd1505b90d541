package guard

import (
	"context"
	"strings"
	"testing"
	"time"

	"agora/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory guard.Store for tests.
type memStore struct {
	records      []Record
	lastCreation map[string]time.Time
	fingerprints map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		lastCreation: make(map[string]time.Time),
		fingerprints: make(map[string]time.Time),
	}
}

func (m *memStore) SumActive(_ context.Context, actorID string, action Action, now time.Time, maxLookback time.Duration) (int, time.Time, error) {
	horizon := now.Add(-maxLookback)
	kept := m.records[:0]
	sum := 0
	var expiry time.Time
	for _, rec := range m.records {
		if rec.WindowEnd.Before(horizon) {
			continue
		}
		kept = append(kept, rec)
		if rec.ActorID != actorID || rec.Action != action {
			continue
		}
		if rec.WindowEnd.After(now) {
			sum += rec.Count
			if expiry.IsZero() || rec.WindowEnd.Before(expiry) {
				expiry = rec.WindowEnd
			}
		}
	}
	m.records = kept
	return sum, expiry, nil
}

func (m *memStore) AppendRecord(_ context.Context, rec Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) LastCreation(_ context.Context, actorID string, action Action) (time.Time, error) {
	return m.lastCreation[actorID+"/"+string(action)], nil
}

func (m *memStore) SeenFingerprint(_ context.Context, actorID string, action Action, fingerprint string, since time.Time) (bool, error) {
	at, ok := m.fingerprints[actorID+"/"+string(action)+"/"+fingerprint]
	return ok && !at.Before(since), nil
}

func (m *memStore) RecordCreation(_ context.Context, actorID string, action Action, at time.Time, fingerprint string) error {
	m.lastCreation[actorID+"/"+string(action)] = at
	m.fingerprints[actorID+"/"+string(action)+"/"+fingerprint] = at
	return nil
}

func testGuard(t *testing.T) (*Guard, *memStore, *clock.Fixed) {
	t.Helper()
	store := newMemStore()
	clk := &clock.Fixed{T: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	return New(store, clk), store, clk
}

func validTopicBody() string {
	return strings.Repeat("lecture notes ", 5)
}

func TestValidateTopic(t *testing.T) {
	assert.NoError(t, ValidateTopic("Week 3 homework", validTopicBody()))

	// Limits count characters, not bytes: 200 two-byte runes fit in 255
	assert.NoError(t, ValidateTopic(strings.Repeat("é", 200), validTopicBody()))
	assert.NoError(t, ValidateTopic("Week 3 homework", strings.Repeat("д", BodyMaxLen)))

	var vErr *ValidationError
	assert.ErrorAs(t, ValidateTopic("hey", validTopicBody()), &vErr)
	assert.ErrorAs(t, ValidateTopic(strings.Repeat("x", TitleMaxLen+1), validTopicBody()), &vErr)
	assert.ErrorAs(t, ValidateTopic(strings.Repeat("é", TitleMaxLen+1), validTopicBody()), &vErr)
	assert.ErrorAs(t, ValidateTopic("Week 3 homework", "too short"), &vErr)
	assert.ErrorAs(t, ValidateTopic("Week 3 homework", strings.Repeat("x", BodyMaxLen+1)), &vErr)
}

func TestValidatePost(t *testing.T) {
	assert.NoError(t, ValidatePost("this is long enough"))
	assert.NoError(t, ValidatePost(strings.Repeat("é", PostBodyMinLen)))

	var vErr *ValidationError
	assert.ErrorAs(t, ValidatePost("short"), &vErr)
	// 9 characters even though 18 bytes
	assert.ErrorAs(t, ValidatePost(strings.Repeat("é", PostBodyMinLen-1)), &vErr)
}

func TestCheckPost_CooldownRetryHint(t *testing.T) {
	g, _, clk := testGuard(t)
	ctx := context.Background()

	require.NoError(t, g.CheckPost(ctx, "alice", false, "a perfectly fine reply"))
	require.NoError(t, g.RecordPost(ctx, "alice", "a perfectly fine reply"))

	// 10 seconds into the 30 second cooldown
	clk.T = clk.T.Add(10 * time.Second)
	err := g.CheckPost(ctx, "alice", false, "another perfectly fine reply")
	var cdErr *CooldownError
	require.ErrorAs(t, err, &cdErr)
	assert.Equal(t, ActionCreatePost, cdErr.Action)
	assert.Equal(t, 20, cdErr.RetryAfterSeconds)

	clk.T = clk.T.Add(20 * time.Second)
	assert.NoError(t, g.CheckPost(ctx, "alice", false, "another perfectly fine reply"))
}

func TestCheckPost_DuplicateWindow(t *testing.T) {
	g, _, clk := testGuard(t)
	ctx := context.Background()
	body := "the same answer pasted twice"

	require.NoError(t, g.CheckPost(ctx, "alice", false, body))
	require.NoError(t, g.RecordPost(ctx, "alice", body))

	// Past the cooldown but inside the 5 minute duplicate window
	clk.T = clk.T.Add(2 * time.Minute)
	var dupErr *DuplicateError
	assert.ErrorAs(t, g.CheckPost(ctx, "alice", false, body), &dupErr)

	// Another actor posting the same body is fine
	assert.NoError(t, g.CheckPost(ctx, "bob", false, body))

	// Window expired
	clk.T = clk.T.Add(4 * time.Minute)
	assert.NoError(t, g.CheckPost(ctx, "alice", false, body))
}

func TestCheckTopic_DuplicateScopedToCategory(t *testing.T) {
	g, _, clk := testGuard(t)
	ctx := context.Background()
	title := "Midterm review thread"

	require.NoError(t, g.CheckTopic(ctx, "alice", false, "math101", title, validTopicBody()))
	require.NoError(t, g.RecordTopic(ctx, "alice", "math101", title))
	clk.T = clk.T.Add(3 * time.Minute)

	var dupErr *DuplicateError
	assert.ErrorAs(t, g.CheckTopic(ctx, "alice", false, "math101", title, validTopicBody()), &dupErr)

	// Same title in a different category is allowed
	assert.NoError(t, g.CheckTopic(ctx, "alice", false, "physics201", title, validTopicBody()))

	// Topic duplicates stick for a full day
	clk.T = clk.T.Add(12 * time.Hour)
	assert.ErrorAs(t, g.CheckTopic(ctx, "alice", false, "math101", title, validTopicBody()), &dupErr)
	clk.T = clk.T.Add(13 * time.Hour)
	assert.NoError(t, g.CheckTopic(ctx, "alice", false, "math101", title, validTopicBody()))
}

func TestTryConsume_NewAccountTopicLimit(t *testing.T) {
	g, store, clk := testGuard(t)
	ctx := context.Background()

	// Three topics in one hour is the ceiling for a new account
	for i := 0; i < 3; i++ {
		clk.T = clk.T.Add(3 * time.Minute)
		title := "Question about assignment " + string(rune('A'+i))
		require.NoError(t, g.CheckTopic(ctx, "newbie", true, "math101", title, validTopicBody()))
		require.NoError(t, g.RecordTopic(ctx, "newbie", "math101", title))
	}

	clk.T = clk.T.Add(3 * time.Minute)
	err := g.CheckTopic(ctx, "newbie", true, "math101", "Question about assignment D", validTopicBody())
	var rlErr *RateLimitedError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, ActionCreateTopic, rlErr.Action)
	assert.Greater(t, rlErr.RetryAfterSeconds, 0)

	// The denial must not have consumed a slot
	assert.Len(t, store.records, 3)

	// 61 minutes after the first admitted topic, the oldest window is gone
	clk.T = clk.T.Add(58 * time.Minute)
	assert.NoError(t, g.CheckTopic(ctx, "newbie", true, "math101", "Question about assignment D", validTopicBody()))
}

func TestTryConsume_EstablishedTier(t *testing.T) {
	g, _, clk := testGuard(t)
	ctx := context.Background()

	// An established account gets 5 topics per hour
	for i := 0; i < 5; i++ {
		clk.T = clk.T.Add(3 * time.Minute)
		title := "Discussion thread number " + string(rune('A'+i))
		require.NoError(t, g.CheckTopic(ctx, "veteran", false, "math101", title, validTopicBody()))
		require.NoError(t, g.RecordTopic(ctx, "veteran", "math101", title))
	}

	clk.T = clk.T.Add(3 * time.Minute)
	var rlErr *RateLimitedError
	assert.ErrorAs(t, g.CheckTopic(ctx, "veteran", false, "math101", "One thread too many here", validTopicBody()), &rlErr)
}

func TestLimitsFor(t *testing.T) {
	assert.Equal(t, Limits{Max: 3, Window: time.Hour}, LimitsFor(ActionCreateTopic, true))
	assert.Equal(t, Limits{Max: 5, Window: time.Hour}, LimitsFor(ActionCreateTopic, false))
	assert.Equal(t, Limits{Max: 10, Window: time.Hour}, LimitsFor(ActionCreatePost, true))
	assert.Equal(t, Limits{Max: 20, Window: time.Hour}, LimitsFor(ActionCreatePost, false))
}
