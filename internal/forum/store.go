package forum

import (
	"context"
	"time"
)

// ListTopicsOptions filters topic listings.
type ListTopicsOptions struct {
	CategoryID    string
	IncludeHidden bool
	Limit         int
}

// Store defines the persistence interface for forum content.
// Implementations must be safe for concurrent use; every check re-reads the
// store, so no in-process state is cached between requests.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)

	// Topics
	CreateTopic(ctx context.Context, topic *Topic) error
	GetTopic(ctx context.Context, id string) (*Topic, error)
	ListTopics(ctx context.Context, opts ListTopicsOptions) ([]*Topic, error)
	UpdateTopic(ctx context.Context, id, title, body string, updatedAt time.Time) error
	DeleteTopic(ctx context.Context, id string, at time.Time) error

	// Posts
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context, topicID string, includeHidden bool) ([]*Post, error)
	UpdatePost(ctx context.Context, id, body string, updatedAt time.Time) error
	DeletePost(ctx context.Context, id string, at time.Time) error

	// Votes
	GetVote(ctx context.Context, actorID string, target ContentRef) (*Vote, error)
	InsertVote(ctx context.Context, vote *Vote) error
	UpdateVoteValue(ctx context.Context, id string, value int) error
	DeleteVote(ctx context.Context, id string) error
	SumVotes(ctx context.Context, target ContentRef) (int, error)
}

// UserSource is the read-only slice of Store needed to resolve an actor.
type UserSource interface {
	GetUser(ctx context.Context, id string) (*User, error)
}
