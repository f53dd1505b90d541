package guard

import (
	"context"
	"time"
)

// Action names a throttled user action. The guard only knows content-creation
// actions; votes, reports and moderation are gated elsewhere.
type Action string

const (
	ActionCreateTopic Action = "create_topic"
	ActionCreatePost  Action = "create_post"
)

// Record is one admitted action inside a rate window. Records are append-only:
// a denied attempt writes nothing, and an admitted one always writes exactly
// one record with count 1, so retries never double-count.
type Record struct {
	ActorID     string    `json:"actor_id"`
	Action      Action    `json:"action"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Count       int       `json:"count"`
}

// Store defines the persistence interface for throttle data: rate-limit
// records, last-creation timestamps and recent-content fingerprints.
// Implementations must be safe for concurrent use.
type Store interface {
	// SumActive sums counts across records for (actorID, action) whose window
	// is still open at now, and returns the earliest expiry among them (zero
	// when no record is active). Implementations may purge records whose
	// window ended before now-maxLookback during the same pass.
	SumActive(ctx context.Context, actorID string, action Action, now time.Time, maxLookback time.Duration) (int, time.Time, error)

	// AppendRecord stores a new rate-limit record.
	AppendRecord(ctx context.Context, rec Record) error

	// LastCreation returns when the actor last performed the action, or the
	// zero time if never recorded.
	LastCreation(ctx context.Context, actorID string, action Action) (time.Time, error)

	// SeenFingerprint reports whether the actor produced content with this
	// fingerprint at or after since.
	SeenFingerprint(ctx context.Context, actorID string, action Action, fingerprint string, since time.Time) (bool, error)

	// RecordCreation stores the creation timestamp and content fingerprint
	// for a successfully admitted action.
	RecordCreation(ctx context.Context, actorID string, action Action, at time.Time, fingerprint string) error
}
