package forum

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/clock"
	"agora/internal/guard"
	"agora/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service implements the member-facing forum operations. Every mutating call
// runs the trust check first, then (for creations) the guard chain, and only
// then touches the content store.
type Service struct {
	store Store
	guard *guard.Guard
	clock clock.Clock
}

// NewService creates a forum service.
func NewService(store Store, g *guard.Guard, clk clock.Clock) *Service {
	return &Service{store: store, guard: g, clock: clk}
}

// CreateTopic admits and inserts a new topic for the actor.
func (s *Service) CreateTopic(ctx context.Context, actor *User, req CreateTopicRequest) (*Topic, error) {
	if actor.BannedNow(s.clock.Now()) {
		return nil, ErrForbidden("account is banned")
	}
	if req.CategoryID == "" {
		return nil, ErrValidation("category_id is required")
	}

	newAccount := actor.IsNewAccount(s.clock.Now())
	if err := s.guard.CheckTopic(ctx, actor.ID, newAccount, req.CategoryID, req.Title, req.Body); err != nil {
		return nil, s.guardDenied(KindTopic, err)
	}

	now := s.clock.Now()
	topic := &Topic{
		ID:         uuid.NewString(),
		CategoryID: req.CategoryID,
		AuthorID:   actor.ID,
		Title:      req.Title,
		Body:       req.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}

	if err := s.guard.RecordTopic(ctx, actor.ID, req.CategoryID, req.Title); err != nil {
		log.Error().Err(err).Str("actor", actor.ID).Msg("forum: failed to record topic creation in throttle store")
	}

	metrics.CreationsTotal.WithLabelValues(string(KindTopic)).Inc()
	log.Info().
		Str("topic_id", topic.ID).
		Str("author", actor.ID).
		Str("category", req.CategoryID).
		Msg("forum: topic created")
	return topic, nil
}

// CreatePost admits and inserts a new post under an unlocked topic.
func (s *Service) CreatePost(ctx context.Context, actor *User, req CreatePostRequest) (*Post, error) {
	if actor.BannedNow(s.clock.Now()) {
		return nil, ErrForbidden("account is banned")
	}

	topic, err := s.store.GetTopic(ctx, req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	if topic == nil || (topic.IsHidden && !actor.Role.AtLeast(RoleModerator)) {
		return nil, ErrNotFound("topic not found")
	}
	if topic.IsLocked {
		return nil, ErrForbidden("topic is locked")
	}

	newAccount := actor.IsNewAccount(s.clock.Now())
	if err := s.guard.CheckPost(ctx, actor.ID, newAccount, req.Body); err != nil {
		return nil, s.guardDenied(KindPost, err)
	}

	now := s.clock.Now()
	post := &Post{
		ID:        uuid.NewString(),
		TopicID:   topic.ID,
		AuthorID:  actor.ID,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := s.guard.RecordPost(ctx, actor.ID, req.Body); err != nil {
		log.Error().Err(err).Str("actor", actor.ID).Msg("forum: failed to record post creation in throttle store")
	}

	metrics.CreationsTotal.WithLabelValues(string(KindPost)).Inc()
	log.Info().
		Str("post_id", post.ID).
		Str("topic_id", topic.ID).
		Str("author", actor.ID).
		Msg("forum: post created")
	return post, nil
}

// GetTopic returns a topic. Hidden topics are invisible below moderator tier.
func (s *Service) GetTopic(ctx context.Context, actor *User, id string) (*Topic, error) {
	topic, err := s.store.GetTopic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	if topic == nil || (topic.IsHidden && !canSeeHidden(actor)) {
		return nil, ErrNotFound("topic not found")
	}
	return topic, nil
}

// ListTopics lists topics in a category, hiding escalated content from
// anyone below moderator tier.
func (s *Service) ListTopics(ctx context.Context, actor *User, categoryID string, limit int) ([]*Topic, error) {
	topics, err := s.store.ListTopics(ctx, ListTopicsOptions{
		CategoryID:    categoryID,
		IncludeHidden: canSeeHidden(actor),
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// ListPosts lists the posts of a visible topic.
func (s *Service) ListPosts(ctx context.Context, actor *User, topicID string) ([]*Post, error) {
	if _, err := s.GetTopic(ctx, actor, topicID); err != nil {
		return nil, err
	}
	posts, err := s.store.ListPosts(ctx, topicID, canSeeHidden(actor))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// UpdateTopic edits a topic under the edit-window policy.
func (s *Service) UpdateTopic(ctx context.Context, actor *User, id, title, body string) (*Topic, error) {
	topic, err := s.store.GetTopic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	if topic == nil {
		return nil, ErrNotFound("topic not found")
	}
	if !CanMutate(topic.AuthorID, topic.CreatedAt, actor, s.clock.Now()) {
		return nil, ErrForbidden("edit window has closed")
	}
	if err := guard.ValidateTopic(title, body); err != nil {
		return nil, ErrValidation(err.Error())
	}

	now := s.clock.Now()
	if err := s.store.UpdateTopic(ctx, id, title, body, now); err != nil {
		return nil, fmt.Errorf("update topic: %w", err)
	}
	topic.Title, topic.Body, topic.UpdatedAt = title, body, now
	return topic, nil
}

// DeleteTopic deletes a topic (and its posts) under the edit-window policy.
func (s *Service) DeleteTopic(ctx context.Context, actor *User, id string) error {
	topic, err := s.store.GetTopic(ctx, id)
	if err != nil {
		return fmt.Errorf("load topic: %w", err)
	}
	if topic == nil {
		return ErrNotFound("topic not found")
	}
	if !CanMutate(topic.AuthorID, topic.CreatedAt, actor, s.clock.Now()) {
		return ErrForbidden("delete window has closed")
	}
	if err := s.store.DeleteTopic(ctx, id, s.clock.Now()); err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	log.Info().Str("topic_id", id).Str("actor", actor.ID).Msg("forum: topic deleted")
	return nil
}

// UpdatePost edits a post under the edit-window policy.
func (s *Service) UpdatePost(ctx context.Context, actor *User, id, body string) (*Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound("post not found")
	}
	if !CanMutate(post.AuthorID, post.CreatedAt, actor, s.clock.Now()) {
		return nil, ErrForbidden("edit window has closed")
	}
	if err := guard.ValidatePost(body); err != nil {
		return nil, ErrValidation(err.Error())
	}

	now := s.clock.Now()
	if err := s.store.UpdatePost(ctx, id, body, now); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	post.Body, post.UpdatedAt = body, now
	return post, nil
}

// DeletePost deletes a post under the edit-window policy.
func (s *Service) DeletePost(ctx context.Context, actor *User, id string) error {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}
	if post == nil {
		return ErrNotFound("post not found")
	}
	if !CanMutate(post.AuthorID, post.CreatedAt, actor, s.clock.Now()) {
		return ErrForbidden("delete window has closed")
	}
	if err := s.store.DeletePost(ctx, id, s.clock.Now()); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	log.Info().Str("post_id", id).Str("actor", actor.ID).Msg("forum: post deleted")
	return nil
}

// ToggleVote applies one actor's vote on a piece of content: a repeated vote
// with the same value removes it, the opposite value flips it. The returned
// total is a sum over vote rows; concurrent double-submission of the same
// toggle is an accepted race since totals are advisory.
func (s *Service) ToggleVote(ctx context.Context, actor *User, target ContentRef, value int) (int, error) {
	if actor.BannedNow(s.clock.Now()) {
		return 0, ErrForbidden("account is banned")
	}
	if value != 1 && value != -1 {
		return 0, ErrValidation("vote value must be 1 or -1")
	}
	if err := s.checkVisible(ctx, actor, target); err != nil {
		return 0, err
	}

	existing, err := s.store.GetVote(ctx, actor.ID, target)
	if err != nil {
		return 0, fmt.Errorf("load vote: %w", err)
	}
	switch {
	case existing == nil:
		vote := &Vote{
			ID:        uuid.NewString(),
			ActorID:   actor.ID,
			Target:    target,
			Value:     value,
			CreatedAt: s.clock.Now(),
		}
		if err := s.store.InsertVote(ctx, vote); err != nil {
			return 0, fmt.Errorf("insert vote: %w", err)
		}
	case existing.Value == value:
		if err := s.store.DeleteVote(ctx, existing.ID); err != nil {
			return 0, fmt.Errorf("delete vote: %w", err)
		}
	default:
		if err := s.store.UpdateVoteValue(ctx, existing.ID, value); err != nil {
			return 0, fmt.Errorf("update vote: %w", err)
		}
	}

	total, err := s.store.SumVotes(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("sum votes: %w", err)
	}
	return total, nil
}

// checkVisible resolves a content ref and hides escalated content from
// anyone below moderator tier.
func (s *Service) checkVisible(ctx context.Context, actor *User, target ContentRef) error {
	switch target.Kind {
	case KindTopic:
		_, err := s.GetTopic(ctx, actor, target.ID)
		return err
	case KindPost:
		post, err := s.store.GetPost(ctx, target.ID)
		if err != nil {
			return fmt.Errorf("load post: %w", err)
		}
		if post == nil || (post.IsHidden && !canSeeHidden(actor)) {
			return ErrNotFound("post not found")
		}
		return nil
	}
	return ErrValidation("unknown content kind")
}

func canSeeHidden(actor *User) bool {
	return actor != nil && actor.Role.AtLeast(RoleModerator)
}

// guardDenied translates a guard rejection into the engine error taxonomy
// and counts the denial.
func (s *Service) guardDenied(kind ContentKind, err error) error {
	var (
		validation  *guard.ValidationError
		cooldown    *guard.CooldownError
		duplicate   *guard.DuplicateError
		rateLimited *guard.RateLimitedError
	)
	switch {
	case errors.As(err, &validation):
		metrics.CreationsDeniedTotal.WithLabelValues(string(kind), "validation").Inc()
		return ErrValidation(validation.Message)
	case errors.As(err, &cooldown):
		metrics.CreationsDeniedTotal.WithLabelValues(string(kind), "cooldown").Inc()
		return ErrRateLimited("please wait before creating again", cooldown.RetryAfterSeconds)
	case errors.As(err, &duplicate):
		metrics.CreationsDeniedTotal.WithLabelValues(string(kind), "duplicate").Inc()
		return ErrConflict("identical content was submitted recently")
	case errors.As(err, &rateLimited):
		metrics.CreationsDeniedTotal.WithLabelValues(string(kind), "rate_limit").Inc()
		return ErrRateLimited("rate limit exceeded", rateLimited.RetryAfterSeconds)
	}
	return fmt.Errorf("guard check: %w", err)
}
