package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agora/internal/forum"
	"agora/internal/moderation"
)

// ModerationStore implements moderation.Store using SQLite.
// It shares the database connection with the forum content store so the
// combined quick actions can span both in one transaction.
type ModerationStore struct {
	db *sql.DB
}

// NewModerationStore creates a ModerationStore backed by the given database.
// The database must already have the schema applied.
func NewModerationStore(db *sql.DB) *ModerationStore {
	return &ModerationStore{db: db}
}

// Ensure ModerationStore implements the interface at compile time.
var _ moderation.Store = (*ModerationStore)(nil)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func contentTable(kind forum.ContentKind) (string, error) {
	switch kind {
	case forum.KindTopic:
		return "topics", nil
	case forum.KindPost:
		return "posts", nil
	}
	return "", fmt.Errorf("unknown content kind %q", kind)
}

func refColumns(ref *forum.ContentRef) (any, any) {
	if ref == nil {
		return nil, nil
	}
	return string(ref.Kind), ref.ID
}

func scanRef(kind, id sql.NullString) *forum.ContentRef {
	if !kind.Valid || !id.Valid {
		return nil
	}
	return &forum.ContentRef{Kind: forum.ContentKind(kind.String), ID: id.String}
}

// ========== Reports ==========

func (s *ModerationStore) CreateReport(ctx context.Context, report *moderation.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, reporter_id, target_kind, target_id, target_author_id, reason, details, status, created_at, resolved_by, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.ReporterID, string(report.Target.Kind), report.Target.ID, report.TargetAuthorID,
		string(report.Reason), report.Details, string(report.Status), formatTime(report.CreatedAt),
		report.ResolvedBy, formatNullableTime(report.ResolvedAt))
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *ModerationStore) GetReport(ctx context.Context, id string) (*moderation.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reporter_id, target_kind, target_id, target_author_id, reason, details, status, created_at, resolved_by, resolved_at
		FROM reports WHERE id = ?
	`, id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ModerationStore) ListReports(ctx context.Context, status moderation.ReportStatus, limit int) ([]*moderation.Report, error) {
	query := `
		SELECT id, reporter_id, target_kind, target_id, target_author_id, reason, details, status, created_at, resolved_by, resolved_at
		FROM reports`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*moderation.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ResolveReport closes a pending report. The status predicate makes the
// pending-to-terminal transition hold even when two moderators race.
func (s *ModerationStore) ResolveReport(ctx context.Context, id string, status moderation.ReportStatus, resolvedBy string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reports SET status = ?, resolved_by = ?, resolved_at = ?
		WHERE id = ? AND status = ?
	`, string(status), resolvedBy, formatTime(at), id, string(moderation.ReportStatusPending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return forum.ErrConflict("report is already closed")
	}
	return nil
}

func (s *ModerationStore) CountReportsForTarget(ctx context.Context, target forum.ContentRef) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reports WHERE target_kind = ? AND target_id = ?
	`, string(target.Kind), target.ID).Scan(&n)
	return n, err
}

func scanReport(row rowScanner) (*moderation.Report, error) {
	var (
		r                  moderation.Report
		kind, reason       string
		status, createdAt  string
		resolvedAt         sql.NullString
	)
	err := row.Scan(&r.ID, &r.ReporterID, &kind, &r.Target.ID, &r.TargetAuthorID,
		&reason, &r.Details, &status, &createdAt, &r.ResolvedBy, &resolvedAt)
	if err != nil {
		return nil, err
	}
	r.Target.Kind = forum.ContentKind(kind)
	r.Reason = moderation.ReportReason(reason)
	r.Status = moderation.ReportStatus(status)
	r.CreatedAt = parseTime(createdAt)
	r.ResolvedAt = parseNullableTime(resolvedAt)
	return &r, nil
}

// ========== Content ==========

func (s *ModerationStore) GetContentMeta(ctx context.Context, target forum.ContentRef) (*moderation.ContentMeta, error) {
	table, err := contentTable(target.Kind)
	if err != nil {
		return nil, err
	}

	var (
		meta      moderation.ContentMeta
		hidden    int
		createdAt string
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT author_id, created_at, is_hidden FROM `+table+` WHERE id = ?`,
		target.ID).Scan(&meta.AuthorID, &createdAt, &hidden)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	meta.Ref = target
	meta.CreatedAt = parseTime(createdAt)
	meta.Hidden = hidden == 1
	return &meta, nil
}

func (s *ModerationStore) SetContentHidden(ctx context.Context, target forum.ContentRef, hidden bool) error {
	return setContentHidden(ctx, s.db, target, hidden)
}

func setContentHidden(ctx context.Context, q execer, target forum.ContentRef, hidden bool) error {
	table, err := contentTable(target.Kind)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE `+table+` SET is_hidden = ? WHERE id = ?`, boolInt(hidden), target.ID)
	return err
}

func (s *ModerationStore) DeleteContent(ctx context.Context, target forum.ContentRef, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteContentAndReports(ctx, tx, target, at); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteContent(ctx context.Context, q execer, target forum.ContentRef) error {
	table, err := contentTable(target.Kind)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, target.ID)
	return err
}

// supersedeReports dismisses the pending reports on content that is about to
// be deleted; the closure is attributed to automod. Reports on content that
// no longer exists would otherwise sit in the queue forever.
func supersedeReports(ctx context.Context, q execer, target forum.ContentRef, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE reports SET status = ?, resolved_by = ?, resolved_at = ?
		WHERE target_kind = ? AND target_id = ? AND status = ?
	`, string(moderation.ReportStatusDismissed), moderation.AutomodActor, formatTime(at),
		string(target.Kind), target.ID, string(moderation.ReportStatusPending))
	return err
}

// supersedeTopicPostReports covers the posts a topic deletion will cascade
// away. Must run while the post rows still exist for the subquery.
func supersedeTopicPostReports(ctx context.Context, q execer, topicID string, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE reports SET status = ?, resolved_by = ?, resolved_at = ?
		WHERE status = ? AND target_kind = ?
		  AND target_id IN (SELECT id FROM posts WHERE topic_id = ?)
	`, string(moderation.ReportStatusDismissed), moderation.AutomodActor, formatTime(at),
		string(moderation.ReportStatusPending), string(forum.KindPost), topicID)
	return err
}

// deleteContentAndReports supersedes the reports on the target (and, for a
// topic, on its posts) before removing the content rows.
func deleteContentAndReports(ctx context.Context, tx *sql.Tx, target forum.ContentRef, at time.Time) error {
	if target.Kind == forum.KindTopic {
		if err := supersedeTopicPostReports(ctx, tx, target.ID, at); err != nil {
			return err
		}
	}
	if err := supersedeReports(ctx, tx, target, at); err != nil {
		return err
	}
	return deleteContent(ctx, tx, target)
}

func (s *ModerationStore) SetTopicPinned(ctx context.Context, topicID string, pinned bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE topics SET is_pinned = ? WHERE id = ?`, boolInt(pinned), topicID)
	return err
}

func (s *ModerationStore) SetTopicLocked(ctx context.Context, topicID string, locked bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE topics SET is_locked = ? WHERE id = ?`, boolInt(locked), topicID)
	return err
}

// ========== Trust state ==========

func (s *ModerationStore) SetBan(ctx context.Context, userID string, ban moderation.BanState) error {
	return setBan(ctx, s.db, userID, ban)
}

func setBan(ctx context.Context, q execer, userID string, ban moderation.BanState) error {
	_, err := q.ExecContext(ctx, `
		UPDATE users SET is_banned = 1, banned_at = ?, banned_until = ?, banned_by = ?, ban_reason = ?
		WHERE id = ?
	`, formatTime(ban.BannedAt), formatNullableTime(ban.Until), ban.BannedBy, ban.Reason, userID)
	if err != nil {
		return fmt.Errorf("set ban: %w", err)
	}
	return nil
}

func (s *ModerationStore) ClearBan(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_banned = 0, banned_at = NULL, banned_until = NULL, banned_by = '', ban_reason = ''
		WHERE id = ?
	`, userID)
	return err
}

func (s *ModerationStore) SetUserRole(ctx context.Context, userID string, role forum.Role) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), userID)
	return err
}

// ========== Warnings and notes ==========

func (s *ModerationStore) AddWarning(ctx context.Context, warning *moderation.Warning) error {
	return addWarning(ctx, s.db, warning)
}

func addWarning(ctx context.Context, q execer, warning *moderation.Warning) error {
	kind, id := refColumns(warning.Target)
	_, err := q.ExecContext(ctx, `
		INSERT INTO warnings (id, target_user_id, moderator_id, reason, severity, target_kind, target_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, warning.ID, warning.TargetUserID, warning.ModeratorID, warning.Reason, string(warning.Severity),
		kind, id, formatTime(warning.CreatedAt))
	if err != nil {
		return fmt.Errorf("add warning: %w", err)
	}
	return nil
}

func (s *ModerationStore) ListWarnings(ctx context.Context, userID string) ([]*moderation.Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_user_id, moderator_id, reason, severity, target_kind, target_id, created_at
		FROM warnings WHERE target_user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []*moderation.Warning
	for rows.Next() {
		var (
			w              moderation.Warning
			severity       string
			kind, targetID sql.NullString
			createdAt      string
		)
		if err := rows.Scan(&w.ID, &w.TargetUserID, &w.ModeratorID, &w.Reason, &severity, &kind, &targetID, &createdAt); err != nil {
			continue
		}
		w.Severity = moderation.Severity(severity)
		w.Target = scanRef(kind, targetID)
		w.CreatedAt = parseTime(createdAt)
		warnings = append(warnings, &w)
	}
	return warnings, rows.Err()
}

func (s *ModerationStore) AddNote(ctx context.Context, note *moderation.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderator_notes (id, target_user_id, moderator_id, note, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.ID, note.TargetUserID, note.ModeratorID, note.Note, formatTime(note.CreatedAt))
	if err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	return nil
}

func (s *ModerationStore) ListNotes(ctx context.Context, userID string) ([]*moderation.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_user_id, moderator_id, note, created_at
		FROM moderator_notes WHERE target_user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*moderation.Note
	for rows.Next() {
		var (
			n         moderation.Note
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.TargetUserID, &n.ModeratorID, &n.Note, &createdAt); err != nil {
			continue
		}
		n.CreatedAt = parseTime(createdAt)
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

// ========== Audit ledger ==========

func (s *ModerationStore) AppendAction(ctx context.Context, action *moderation.Action) error {
	return appendAction(ctx, s.db, action)
}

func appendAction(ctx context.Context, q execer, action *moderation.Action) error {
	kind, id := refColumns(action.Target)
	_, err := q.ExecContext(ctx, `
		INSERT INTO moderation_actions (id, type, moderator_id, target_user_id, target_kind, target_id, reason, ban_duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, action.ID, string(action.Type), action.ModeratorID, action.TargetUserID,
		kind, id, action.Reason, string(action.BanDuration), formatTime(action.CreatedAt))
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

func (s *ModerationStore) ListActions(ctx context.Context, limit int) ([]*moderation.Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, moderator_id, target_user_id, target_kind, target_id, reason, ban_duration, created_at
		FROM moderation_actions ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*moderation.Action
	for rows.Next() {
		var (
			a              moderation.Action
			actionType     string
			kind, targetID sql.NullString
			banDuration    string
			createdAt      string
		)
		if err := rows.Scan(&a.ID, &actionType, &a.ModeratorID, &a.TargetUserID, &kind, &targetID, &a.Reason, &banDuration, &createdAt); err != nil {
			continue
		}
		a.Type = moderation.ActionType(actionType)
		a.Target = scanRef(kind, targetID)
		a.BanDuration = moderation.BanDuration(banDuration)
		a.CreatedAt = parseTime(createdAt)
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}

// ========== Composite quick actions ==========

func (s *ModerationStore) ApplyDeleteAndBan(ctx context.Context, target forum.ContentRef, userID string, ban moderation.BanState, actions []*moderation.Action) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteContentAndReports(ctx, tx, target, ban.BannedAt); err != nil {
		return err
	}
	if err := setBan(ctx, tx, userID, ban); err != nil {
		return err
	}
	for _, action := range actions {
		if err := appendAction(ctx, tx, action); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *ModerationStore) ApplyHideAndWarn(ctx context.Context, target forum.ContentRef, warning *moderation.Warning, actions []*moderation.Action) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := setContentHidden(ctx, tx, target, true); err != nil {
		return err
	}
	if err := addWarning(ctx, tx, warning); err != nil {
		return err
	}
	for _, action := range actions {
		if err := appendAction(ctx, tx, action); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ========== Stats ==========

// sinceClause appends the period lower bound; a zero since means all time.
func sinceClause(query, column string, since time.Time, args []any) (string, []any) {
	if since.IsZero() {
		return query, args
	}
	return query + ` AND ` + column + ` >= ?`, append(args, formatTime(since))
}

func (s *ModerationStore) CountPendingReports(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE status = 'pending'`).Scan(&n)
	return n, err
}

func (s *ModerationStore) CountReportsResolvedSince(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM reports WHERE status = 'resolved'`
	args := []any{}
	query, args = sinceClause(query, "resolved_at", since, args)

	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *ModerationStore) CountReportsSince(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM reports WHERE 1=1`
	args := []any{}
	query, args = sinceClause(query, "created_at", since, args)

	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *ModerationStore) ReportsByReasonSince(ctx context.Context, since time.Time) (map[moderation.ReportReason]int, error) {
	query := `SELECT reason, COUNT(*) FROM reports WHERE 1=1`
	args := []any{}
	query, args = sinceClause(query, "created_at", since, args)
	query += ` GROUP BY reason`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[moderation.ReportReason]int)
	for rows.Next() {
		var (
			reason string
			count  int
		)
		if err := rows.Scan(&reason, &count); err != nil {
			continue
		}
		result[moderation.ReportReason(reason)] = count
	}
	return result, rows.Err()
}

func (s *ModerationStore) TopReportedAuthorsSince(ctx context.Context, since time.Time, limit int) ([]moderation.AuthorReportCount, error) {
	query := `SELECT target_author_id, COUNT(*) AS n FROM reports WHERE 1=1`
	args := []any{}
	query, args = sinceClause(query, "created_at", since, args)
	query += ` GROUP BY target_author_id ORDER BY n DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []moderation.AuthorReportCount
	for rows.Next() {
		var entry moderation.AuthorReportCount
		if err := rows.Scan(&entry.AuthorID, &entry.Count); err != nil {
			continue
		}
		top = append(top, entry)
	}
	return top, rows.Err()
}

func (s *ModerationStore) ModeratorActivitySince(ctx context.Context, since time.Time) ([]moderation.ModeratorActivity, error) {
	query := `SELECT moderator_id, COUNT(*) AS n FROM moderation_actions WHERE moderator_id != ?`
	args := []any{moderation.AutomodActor}
	query, args = sinceClause(query, "created_at", since, args)
	query += ` GROUP BY moderator_id ORDER BY n DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []moderation.ModeratorActivity
	for rows.Next() {
		var entry moderation.ModeratorActivity
		if err := rows.Scan(&entry.ModeratorID, &entry.Count); err != nil {
			continue
		}
		activity = append(activity, entry)
	}
	return activity, rows.Err()
}

func (s *ModerationStore) ActionsByTypeSince(ctx context.Context, since time.Time) (map[moderation.ActionType]int, error) {
	query := `SELECT type, COUNT(*) FROM moderation_actions WHERE 1=1`
	args := []any{}
	query, args = sinceClause(query, "created_at", since, args)
	query += ` GROUP BY type`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[moderation.ActionType]int)
	for rows.Next() {
		var (
			actionType string
			count      int
		)
		if err := rows.Scan(&actionType, &count); err != nil {
			continue
		}
		result[moderation.ActionType(actionType)] = count
	}
	return result, rows.Err()
}

// CountBannedUsers returns how many users are currently flagged as banned.
// Lazily expired temporary bans still count until cleared.
func (s *ModerationStore) CountBannedUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_banned = 1`).Scan(&n)
	return n, err
}
