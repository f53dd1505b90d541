package guard

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Limits is the admission policy for one action: at most Max admitted
// actions per rolling Window.
type Limits struct {
	Max    int
	Window time.Duration
}

// Rate-limit policy table. New accounts (younger than forum.NewAccountAge)
// get the stricter tier.
var (
	topicLimitsNew         = Limits{Max: 3, Window: time.Hour}
	topicLimitsEstablished = Limits{Max: 5, Window: time.Hour}
	postLimitsNew          = Limits{Max: 10, Window: time.Hour}
	postLimitsEstablished  = Limits{Max: 20, Window: time.Hour}
)

// maxLookback bounds how old a record can be and still matter to any policy.
// Records past it are garbage during the next store pass.
const maxLookback = time.Hour

// LimitsFor returns the policy for an action and account-age tier.
func LimitsFor(action Action, newAccount bool) Limits {
	switch action {
	case ActionCreateTopic:
		if newAccount {
			return topicLimitsNew
		}
		return topicLimitsEstablished
	case ActionCreatePost:
		if newAccount {
			return postLimitsNew
		}
		return postLimitsEstablished
	}
	return Limits{}
}

// RateLimitedError is returned when the limiter denies an action. The action
// is fully rejected, never queued.
type RateLimitedError struct {
	Action            Action
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %ds", e.Action, e.RetryAfterSeconds)
}

// tryConsume admits or denies one action for the actor. On denial nothing is
// written; on admission exactly one record with count 1 is appended.
func (g *Guard) tryConsume(ctx context.Context, actorID string, action Action, limits Limits) error {
	now := g.clock.Now()

	sum, oldestExpiry, err := g.store.SumActive(ctx, actorID, action, now, maxLookback)
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}

	if sum >= limits.Max {
		retryAfter := 1
		if !oldestExpiry.IsZero() {
			retryAfter = int(math.Ceil(oldestExpiry.Sub(now).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
		}
		return &RateLimitedError{Action: action, RetryAfterSeconds: retryAfter}
	}

	rec := Record{
		ActorID:     actorID,
		Action:      action,
		WindowStart: now,
		WindowEnd:   now.Add(limits.Window),
		Count:       1,
	}
	if err := g.store.AppendRecord(ctx, rec); err != nil {
		return fmt.Errorf("rate limit consume: %w", err)
	}
	return nil
}
