package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agora/internal/forum"
)

// ForumStore implements forum.Store using SQLite.
type ForumStore struct {
	db *sql.DB
}

// NewForumStore creates a ForumStore backed by the given database.
// The database must already have the schema applied.
func NewForumStore(db *sql.DB) *ForumStore {
	return &ForumStore{db: db}
}

// Ensure ForumStore implements the interface at compile time.
var _ forum.Store = (*ForumStore)(nil)

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// ========== Users ==========

func (s *ForumStore) CreateUser(ctx context.Context, user *forum.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, handle, role, created_at, is_banned, banned_at, banned_until, banned_by, ban_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Handle, string(user.Role), formatTime(user.CreatedAt), boolInt(user.IsBanned),
		formatNullableTime(user.BannedAt), formatNullableTime(user.BannedUntil), user.BannedBy, user.BanReason)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *ForumStore) GetUser(ctx context.Context, id string) (*forum.User, error) {
	var (
		u                      forum.User
		role, createdAt        string
		isBanned               int
		bannedAt, bannedUntil  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, handle, role, created_at, is_banned, banned_at, banned_until, banned_by, ban_reason
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Handle, &role, &createdAt, &isBanned, &bannedAt, &bannedUntil, &u.BannedBy, &u.BanReason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = forum.Role(role)
	u.CreatedAt = parseTime(createdAt)
	u.IsBanned = isBanned == 1
	u.BannedAt = parseNullableTime(bannedAt)
	u.BannedUntil = parseNullableTime(bannedUntil)
	return &u, nil
}

// ========== Topics ==========

func (s *ForumStore) CreateTopic(ctx context.Context, topic *forum.Topic) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (id, category_id, author_id, title, body, is_pinned, is_locked, is_hidden, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, topic.ID, topic.CategoryID, topic.AuthorID, topic.Title, topic.Body,
		boolInt(topic.IsPinned), boolInt(topic.IsLocked), boolInt(topic.IsHidden),
		formatTime(topic.CreatedAt), formatTime(topic.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

func (s *ForumStore) GetTopic(ctx context.Context, id string) (*forum.Topic, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, author_id, title, body, is_pinned, is_locked, is_hidden, created_at, updated_at
		FROM topics WHERE id = ?
	`, id)
	topic, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *ForumStore) ListTopics(ctx context.Context, opts forum.ListTopicsOptions) ([]*forum.Topic, error) {
	query := `
		SELECT id, category_id, author_id, title, body, is_pinned, is_locked, is_hidden, created_at, updated_at
		FROM topics WHERE 1=1`
	args := []any{}
	if opts.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, opts.CategoryID)
	}
	if !opts.IncludeHidden {
		query += ` AND is_hidden = 0`
	}
	query += ` ORDER BY is_pinned DESC, created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*forum.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			continue
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (s *ForumStore) UpdateTopic(ctx context.Context, id, title, body string, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE topics SET title = ?, body = ?, updated_at = ? WHERE id = ?
	`, title, body, formatTime(updatedAt), id)
	return err
}

// DeleteTopic removes a topic, its posts (by cascade) and dismisses any
// pending reports on them, all in one transaction.
func (s *ForumStore) DeleteTopic(ctx context.Context, id string, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	target := forum.ContentRef{Kind: forum.KindTopic, ID: id}
	if err := deleteContentAndReports(ctx, tx, target, at); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*forum.Topic, error) {
	var (
		t                            forum.Topic
		pinned, locked, hidden       int
		createdAt, updatedAt         string
	)
	err := row.Scan(&t.ID, &t.CategoryID, &t.AuthorID, &t.Title, &t.Body,
		&pinned, &locked, &hidden, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.IsPinned = pinned == 1
	t.IsLocked = locked == 1
	t.IsHidden = hidden == 1
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

// ========== Posts ==========

func (s *ForumStore) CreatePost(ctx context.Context, post *forum.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, topic_id, author_id, body, is_hidden, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, post.ID, post.TopicID, post.AuthorID, post.Body, boolInt(post.IsHidden),
		formatTime(post.CreatedAt), formatTime(post.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *ForumStore) GetPost(ctx context.Context, id string) (*forum.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, topic_id, author_id, body, is_hidden, created_at, updated_at
		FROM posts WHERE id = ?
	`, id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ForumStore) ListPosts(ctx context.Context, topicID string, includeHidden bool) ([]*forum.Post, error) {
	query := `
		SELECT id, topic_id, author_id, body, is_hidden, created_at, updated_at
		FROM posts WHERE topic_id = ?`
	if !includeHidden {
		query += ` AND is_hidden = 0`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*forum.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			continue
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *ForumStore) UpdatePost(ctx context.Context, id, body string, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posts SET body = ?, updated_at = ? WHERE id = ?
	`, body, formatTime(updatedAt), id)
	return err
}

// DeletePost removes a post and dismisses any pending reports on it in one
// transaction.
func (s *ForumStore) DeletePost(ctx context.Context, id string, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	target := forum.ContentRef{Kind: forum.KindPost, ID: id}
	if err := deleteContentAndReports(ctx, tx, target, at); err != nil {
		return err
	}
	return tx.Commit()
}

func scanPost(row rowScanner) (*forum.Post, error) {
	var (
		p                    forum.Post
		hidden               int
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.TopicID, &p.AuthorID, &p.Body, &hidden, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.IsHidden = hidden == 1
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// ========== Votes ==========

func (s *ForumStore) GetVote(ctx context.Context, actorID string, target forum.ContentRef) (*forum.Vote, error) {
	var (
		v         forum.Vote
		kind      string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, actor_id, target_kind, target_id, value, created_at
		FROM votes WHERE actor_id = ? AND target_kind = ? AND target_id = ?
	`, actorID, string(target.Kind), target.ID).Scan(&v.ID, &v.ActorID, &kind, &v.Target.ID, &v.Value, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.Target.Kind = forum.ContentKind(kind)
	v.CreatedAt = parseTime(createdAt)
	return &v, nil
}

func (s *ForumStore) InsertVote(ctx context.Context, vote *forum.Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (id, actor_id, target_kind, target_id, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, vote.ID, vote.ActorID, string(vote.Target.Kind), vote.Target.ID, vote.Value, formatTime(vote.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (s *ForumStore) UpdateVoteValue(ctx context.Context, id string, value int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE votes SET value = ? WHERE id = ?`, value, id)
	return err
}

func (s *ForumStore) DeleteVote(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, id)
	return err
}

func (s *ForumStore) SumVotes(ctx context.Context, target forum.ContentRef) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value), 0) FROM votes WHERE target_kind = ? AND target_id = ?
	`, string(target.Kind), target.ID).Scan(&total)
	return total, err
}

// ========== Gauge counts ==========

// CountTopics returns the total number of topics, hidden included.
func (s *ForumStore) CountTopics(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topics`).Scan(&n)
	return n, err
}

// CountPosts returns the total number of posts, hidden included.
func (s *ForumStore) CountPosts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}
