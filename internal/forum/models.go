// Package forum holds the discussion-forum domain: users and roles, topics,
// posts, votes, and the policies that gate who may create or mutate them.
package forum

import "time"

// Role is a user's privilege tier. Tiers are strictly ordered:
// member < moderator < admin.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleModerator:
		return 1
	case RoleMember:
		return 0
	}
	return -1
}

// AtLeast reports whether r meets the given minimum tier.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank()
}

// Valid reports whether r is one of the three known tiers.
func (r Role) Valid() bool {
	return r.rank() >= 0
}

// NewAccountAge is the account age below which the stricter "new account"
// rate limits apply.
const NewAccountAge = 7 * 24 * time.Hour

// User is the authenticated actor performing an action. Identity issuance is
// external; the engine only reads the row and mutates its trust state.
type User struct {
	ID        string     `json:"id"`
	Handle    string     `json:"handle,omitempty"`
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	IsBanned  bool       `json:"is_banned"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
	// BannedUntil is nil when the user is not banned or the ban is permanent;
	// the two cases are distinguished by IsBanned, not by nil alone.
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	BannedBy    string     `json:"banned_by,omitempty"`
	BanReason   string     `json:"ban_reason,omitempty"`
}

// BannedNow reports whether the user's ban is in effect at the given instant.
// Temporary bans expire lazily; no sweep clears the flag.
func (u *User) BannedNow(now time.Time) bool {
	if !u.IsBanned {
		return false
	}
	if u.BannedUntil == nil {
		return true
	}
	return u.BannedUntil.After(now)
}

// IsNewAccount reports whether the account is young enough for the stricter
// rate-limit tier.
func (u *User) IsNewAccount(now time.Time) bool {
	return now.Sub(u.CreatedAt) < NewAccountAge
}

// ContentKind tags the two content types a report or moderation action can
// target.
type ContentKind string

const (
	KindTopic ContentKind = "topic"
	KindPost  ContentKind = "post"
)

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	return k == KindTopic || k == KindPost
}

// ContentRef identifies a topic or post. Handlers switch on Kind
// exhaustively instead of juggling two optional id fields.
type ContentRef struct {
	Kind ContentKind `json:"kind"`
	ID   string      `json:"id"`
}

func (r ContentRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// Topic is a discussion thread.
type Topic struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	AuthorID   string    `json:"author_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	IsPinned   bool      `json:"is_pinned"`
	IsLocked   bool      `json:"is_locked"`
	IsHidden   bool      `json:"is_hidden"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ref returns the content reference for this topic.
func (t *Topic) Ref() ContentRef {
	return ContentRef{Kind: KindTopic, ID: t.ID}
}

// Post is a reply inside a topic.
type Post struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topic_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	IsHidden  bool      `json:"is_hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns the content reference for this post.
func (p *Post) Ref() ContentRef {
	return ContentRef{Kind: KindPost, ID: p.ID}
}

// Vote is one user's up or down vote on a piece of content. Totals are
// derived by summing rows, never cached on the content.
type Vote struct {
	ID        string     `json:"id"`
	ActorID   string     `json:"actor_id"`
	Target    ContentRef `json:"target"`
	Value     int        `json:"value"` // +1 or -1
	CreatedAt time.Time  `json:"created_at"`
}

// CreateTopicRequest carries the member-supplied fields for a new topic.
type CreateTopicRequest struct {
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// CreatePostRequest carries the member-supplied fields for a new post.
type CreatePostRequest struct {
	TopicID string `json:"topic_id"`
	Body    string `json:"body"`
}
