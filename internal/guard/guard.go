// Package guard admits or denies content-creation actions before they reach
// the forum store. Field validation, cooldown and duplicate checks all run
// before the rate limiter consumes a slot, so a rejected attempt never costs
// budget.
package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"agora/internal/clock"
	"agora/internal/tracing"
)

// Content-length policy.
const (
	TitleMinLen     = 5
	TitleMaxLen     = 255
	TopicBodyMinLen = 20
	PostBodyMinLen  = 10
	BodyMaxLen      = 10000
)

// Minimum spacing between consecutive creations by the same actor.
const (
	TopicCooldown = 120 * time.Second
	PostCooldown  = 30 * time.Second
)

// Duplicate-suppression lookback: byte-identical post bodies within 5
// minutes, identical topic titles in the same category within 24 hours.
const (
	PostDuplicateWindow  = 5 * time.Minute
	TopicDuplicateWindow = 24 * time.Hour
)

// ValidationError reports a content-length or format violation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// CooldownError reports that the actor must wait before creating again.
type CooldownError struct {
	Action            Action
	RetryAfterSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active for %s, retry in %ds", e.Action, e.RetryAfterSeconds)
}

// DuplicateError reports verbatim re-submission of recent content.
type DuplicateError struct {
	Action Action
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate content for %s", e.Action)
}

// Guard runs the admission chain for content creation. It holds no mutable
// state; every decision re-reads the throttle store.
type Guard struct {
	store Store
	clock clock.Clock
}

// New creates a Guard backed by the given throttle store.
func New(store Store, clk clock.Clock) *Guard {
	return &Guard{store: store, clock: clk}
}

// ValidateTopic checks topic field lengths. Limits count characters, not
// bytes, so multibyte text is measured the way users see it. Exposed
// separately so edits are held to the same policy as creations.
func ValidateTopic(title, body string) error {
	if n := utf8.RuneCountInString(title); n < TitleMinLen || n > TitleMaxLen {
		return &ValidationError{Message: fmt.Sprintf("title must be %d-%d characters", TitleMinLen, TitleMaxLen)}
	}
	if n := utf8.RuneCountInString(body); n < TopicBodyMinLen || n > BodyMaxLen {
		return &ValidationError{Message: fmt.Sprintf("body must be %d-%d characters", TopicBodyMinLen, BodyMaxLen)}
	}
	return nil
}

// ValidatePost checks post body length.
func ValidatePost(body string) error {
	if n := utf8.RuneCountInString(body); n < PostBodyMinLen || n > BodyMaxLen {
		return &ValidationError{Message: fmt.Sprintf("body must be %d-%d characters", PostBodyMinLen, BodyMaxLen)}
	}
	return nil
}

// CheckTopic runs the full admission chain for a new topic:
// validation, cooldown, duplicate title, then rate limit.
func (g *Guard) CheckTopic(ctx context.Context, actorID string, newAccount bool, categoryID, title, body string) (err error) {
	ctx, span := tracing.GuardSpan(ctx, "admit", string(ActionCreateTopic), actorID)
	defer func() {
		tracing.EndWithError(span, err)
		span.End()
	}()

	if err := ValidateTopic(title, body); err != nil {
		return err
	}
	if err := g.checkCooldown(ctx, actorID, ActionCreateTopic, TopicCooldown); err != nil {
		return err
	}
	if err := g.checkDuplicate(ctx, actorID, ActionCreateTopic, topicFingerprint(categoryID, title), TopicDuplicateWindow); err != nil {
		return err
	}
	return g.tryConsume(ctx, actorID, ActionCreateTopic, LimitsFor(ActionCreateTopic, newAccount))
}

// CheckPost runs the full admission chain for a new post.
func (g *Guard) CheckPost(ctx context.Context, actorID string, newAccount bool, body string) (err error) {
	ctx, span := tracing.GuardSpan(ctx, "admit", string(ActionCreatePost), actorID)
	defer func() {
		tracing.EndWithError(span, err)
		span.End()
	}()

	if err := ValidatePost(body); err != nil {
		return err
	}
	if err := g.checkCooldown(ctx, actorID, ActionCreatePost, PostCooldown); err != nil {
		return err
	}
	if err := g.checkDuplicate(ctx, actorID, ActionCreatePost, postFingerprint(body), PostDuplicateWindow); err != nil {
		return err
	}
	return g.tryConsume(ctx, actorID, ActionCreatePost, LimitsFor(ActionCreatePost, newAccount))
}

// RecordTopic stores the creation timestamp and title fingerprint after a
// topic was successfully inserted.
func (g *Guard) RecordTopic(ctx context.Context, actorID, categoryID, title string) error {
	return g.store.RecordCreation(ctx, actorID, ActionCreateTopic, g.clock.Now(), topicFingerprint(categoryID, title))
}

// RecordPost stores the creation timestamp and body fingerprint after a post
// was successfully inserted.
func (g *Guard) RecordPost(ctx context.Context, actorID, body string) error {
	return g.store.RecordCreation(ctx, actorID, ActionCreatePost, g.clock.Now(), postFingerprint(body))
}

func (g *Guard) checkCooldown(ctx context.Context, actorID string, action Action, cooldown time.Duration) error {
	last, err := g.store.LastCreation(ctx, actorID, action)
	if err != nil {
		return fmt.Errorf("cooldown check: %w", err)
	}
	if last.IsZero() {
		return nil
	}
	now := g.clock.Now()
	if now.Sub(last) >= cooldown {
		return nil
	}
	remaining := int(math.Ceil(last.Add(cooldown).Sub(now).Seconds()))
	if remaining < 1 {
		remaining = 1
	}
	return &CooldownError{Action: action, RetryAfterSeconds: remaining}
}

func (g *Guard) checkDuplicate(ctx context.Context, actorID string, action Action, fingerprint string, window time.Duration) error {
	since := g.clock.Now().Add(-window)
	seen, err := g.store.SeenFingerprint(ctx, actorID, action, fingerprint, since)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if seen {
		return &DuplicateError{Action: action}
	}
	return nil
}

// topicFingerprint is exact-match on (category, title); this is a cheap
// copy-paste guard, not a similarity detector.
func topicFingerprint(categoryID, title string) string {
	sum := sha256.Sum256([]byte(categoryID + "\x00" + title))
	return hex.EncodeToString(sum[:])
}

func postFingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
