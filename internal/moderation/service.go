package moderation

import (
	"context"
	"fmt"
	"unicode/utf8"

	"agora/internal/clock"
	"agora/internal/forum"
	"agora/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MaxReportDetailsLen is the longest free-text detail accepted on a report,
// in characters.
const MaxReportDetailsLen = 500

// defaultListLimit bounds report and audit listings when the caller gives no
// limit.
const defaultListLimit = 100

// TopicSource is the read-only topic access the service needs for the
// pin/lock toggles.
type TopicSource interface {
	GetTopic(ctx context.Context, id string) (*forum.Topic, error)
}

// Service implements the moderator/administrator action layer and the
// community report ledger. Role checks read the actor passed per call; the
// actor row is resolved fresh by the caller for every request, never cached.
type Service struct {
	store  Store
	users  forum.UserSource
	topics TopicSource
	clock  clock.Clock
}

// NewService creates a moderation service.
func NewService(store Store, users forum.UserSource, topics TopicSource, clk clock.Clock) *Service {
	return &Service{store: store, users: users, topics: topics, clock: clk}
}

// ========== Report ledger ==========

// SubmitReport records a member's report and escalates the target once the
// report count reaches the threshold. The report insert is the operation of
// record: an escalation failure is logged but never fails the call.
func (s *Service) SubmitReport(ctx context.Context, actor *forum.User, target forum.ContentRef, reason ReportReason, details string) (*Report, error) {
	if actor.BannedNow(s.clock.Now()) {
		return nil, forum.ErrForbidden("account is banned")
	}
	if !target.Kind.Valid() || target.ID == "" {
		return nil, forum.ErrValidation("invalid content reference")
	}
	if !reason.Valid() {
		return nil, forum.ErrValidation("unknown report reason")
	}
	if utf8.RuneCountInString(details) > MaxReportDetailsLen {
		return nil, forum.ErrValidation(fmt.Sprintf("details must be at most %d characters", MaxReportDetailsLen))
	}

	meta, err := s.store.GetContentMeta(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if meta == nil {
		return nil, forum.ErrNotFound("content not found")
	}
	if meta.AuthorID == actor.ID {
		return nil, forum.ErrValidation("you cannot report your own content")
	}

	report := &Report{
		ID:             uuid.NewString(),
		ReporterID:     actor.ID,
		Target:         target,
		TargetAuthorID: meta.AuthorID,
		Reason:         reason,
		Details:        details,
		Status:         ReportStatusPending,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	metrics.ReportsTotal.WithLabelValues(string(reason)).Inc()
	log.Info().
		Str("report_id", report.ID).
		Str("target", target.String()).
		Str("reporter", actor.ID).
		Str("reason", string(reason)).
		Msg("moderation: report created")

	s.escalate(ctx, report, meta)
	return report, nil
}

// escalate hides content once the report count reaches the threshold. The
// hide is monotonic: only an explicit moderator unhide reverses it. Two
// near-simultaneous reports may both observe the threshold and both set the
// flag; setting an already-true flag is harmless, so no locking is needed.
func (s *Service) escalate(ctx context.Context, report *Report, meta *ContentMeta) {
	if meta.Hidden {
		return
	}

	count, err := s.store.CountReportsForTarget(ctx, report.Target)
	if err != nil {
		log.Error().Err(err).Str("target", report.Target.String()).Msg("moderation: failed to count reports for escalation")
		return
	}
	if count < EscalationThreshold {
		return
	}

	if err := s.store.SetContentHidden(ctx, report.Target, true); err != nil {
		log.Error().Err(err).Str("target", report.Target.String()).Msg("moderation: escalation failed to hide content")
		return
	}

	action := &Action{
		ID:           uuid.NewString(),
		Type:         hideActionFor(report.Target.Kind),
		ModeratorID:  AutomodActor,
		TargetUserID: report.TargetAuthorID,
		Target:       &report.Target,
		Reason:       fmt.Sprintf("auto-hidden: %d reports on this content", count),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.AppendAction(ctx, action); err != nil {
		log.Error().Err(err).Msg("moderation: failed to log escalation")
	}

	metrics.AutoHidesTotal.Inc()
	metrics.ModActionsTotal.WithLabelValues(string(action.Type)).Inc()
	log.Warn().
		Str("target", report.Target.String()).
		Str("author", report.TargetAuthorID).
		Int("reports", count).
		Msg("moderation: report threshold reached, content hidden")
}

// Reports lists reports for moderator review. An empty status lists all.
func (s *Service) Reports(ctx context.Context, actor *forum.User, status ReportStatus, limit int) ([]*Report, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	reports, err := s.store.ListReports(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ResolveReport marks a pending report as resolved.
func (s *Service) ResolveReport(ctx context.Context, actor *forum.User, id string) error {
	return s.finishReport(ctx, actor, id, ReportStatusResolved, ActionResolveReport)
}

// DismissReport marks a pending report as dismissed.
func (s *Service) DismissReport(ctx context.Context, actor *forum.User, id string) error {
	return s.finishReport(ctx, actor, id, ReportStatusDismissed, ActionDismissReport)
}

func (s *Service) finishReport(ctx context.Context, actor *forum.User, id string, status ReportStatus, actionType ActionType) error {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return err
	}

	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}
	if report == nil {
		return forum.ErrNotFound("report not found")
	}
	// pending is the only non-terminal status
	if report.Status != ReportStatusPending {
		return forum.ErrConflict("report is already " + string(report.Status))
	}

	now := s.clock.Now()
	if err := s.store.ResolveReport(ctx, id, status, actor.ID, now); err != nil {
		return fmt.Errorf("resolve report: %w", err)
	}

	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         actionType,
		ModeratorID:  actor.ID,
		TargetUserID: report.TargetAuthorID,
		Target:       &report.Target,
		CreatedAt:    now,
	})
	log.Info().Str("report_id", id).Str("status", string(status)).Str("by", actor.ID).Msg("moderation: report closed")
	return nil
}

// ========== Trust state machine ==========

// BanUser permanently bans a user until an explicit admin unban.
func (s *Service) BanUser(ctx context.Context, actor *forum.User, targetID, reason string) error {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return err
	}
	if reason == "" {
		return forum.ErrValidation("ban reason is required")
	}

	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == forum.RoleAdmin {
		return forum.ErrForbidden("administrators cannot be banned")
	}

	now := s.clock.Now()
	if err := s.store.SetBan(ctx, targetID, BanState{BannedAt: now, BannedBy: actor.ID, Reason: reason}); err != nil {
		return fmt.Errorf("set ban: %w", err)
	}

	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         ActionBan,
		ModeratorID:  actor.ID,
		TargetUserID: targetID,
		Reason:       reason,
		BanDuration:  BanPermanent,
		CreatedAt:    now,
	})
	log.Info().Str("target", targetID).Str("by", actor.ID).Str("reason", reason).Msg("moderation: user banned")
	return nil
}

// UnbanUser clears a user's ban state. Admin only.
func (s *Service) UnbanUser(ctx context.Context, actor *forum.User, targetID string) error {
	if err := requireRole(actor, forum.RoleAdmin); err != nil {
		return err
	}

	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsBanned {
		return forum.ErrConflict("user is not banned")
	}

	if err := s.store.ClearBan(ctx, targetID); err != nil {
		return fmt.Errorf("clear ban: %w", err)
	}

	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         ActionUnban,
		ModeratorID:  actor.ID,
		TargetUserID: targetID,
		CreatedAt:    s.clock.Now(),
	})
	log.Info().Str("target", targetID).Str("by", actor.ID).Msg("moderation: user unbanned")
	return nil
}

// AddWarning appends a disciplinary warning to a user's history. It never
// changes ban state.
func (s *Service) AddWarning(ctx context.Context, actor *forum.User, targetID, reason string, severity Severity, target *forum.ContentRef) (*Warning, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, forum.ErrValidation("warning reason is required")
	}
	if !severity.Valid() {
		return nil, forum.ErrValidation("unknown severity")
	}
	if _, err := s.loadTarget(ctx, targetID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	warning := &Warning{
		ID:           uuid.NewString(),
		TargetUserID: targetID,
		ModeratorID:  actor.ID,
		Reason:       reason,
		Severity:     severity,
		Target:       target,
		CreatedAt:    now,
	}
	if err := s.store.AddWarning(ctx, warning); err != nil {
		return nil, fmt.Errorf("add warning: %w", err)
	}

	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         ActionWarn,
		ModeratorID:  actor.ID,
		TargetUserID: targetID,
		Target:       target,
		Reason:       reason,
		CreatedAt:    now,
	})
	log.Info().Str("target", targetID).Str("severity", string(severity)).Str("by", actor.ID).Msg("moderation: warning issued")
	return warning, nil
}

// Warnings lists a user's warning history.
func (s *Service) Warnings(ctx context.Context, actor *forum.User, targetID string) ([]*Warning, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return nil, err
	}
	warnings, err := s.store.ListWarnings(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	return warnings, nil
}

// AddNote appends a moderator-only annotation to a user.
func (s *Service) AddNote(ctx context.Context, actor *forum.User, targetID, text string) (*Note, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, forum.ErrValidation("note text is required")
	}
	if _, err := s.loadTarget(ctx, targetID); err != nil {
		return nil, err
	}

	note := &Note{
		ID:           uuid.NewString(),
		TargetUserID: targetID,
		ModeratorID:  actor.ID,
		Note:         text,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.AddNote(ctx, note); err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return note, nil
}

// Notes lists the moderator annotations on a user.
func (s *Service) Notes(ctx context.Context, actor *forum.User, targetID string) ([]*Note, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotes(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// AddModerator grants the moderator role. Admin only; the admin tier itself
// is never granted or revoked through this API.
func (s *Service) AddModerator(ctx context.Context, actor *forum.User, targetID string) error {
	if err := requireRole(actor, forum.RoleAdmin); err != nil {
		return err
	}
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == forum.RoleAdmin {
		return forum.ErrForbidden("administrator role cannot be changed here")
	}
	if target.Role == forum.RoleModerator {
		return forum.ErrConflict("user is already a moderator")
	}

	if err := s.store.SetUserRole(ctx, targetID, forum.RoleModerator); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         ActionAddModerator,
		ModeratorID:  actor.ID,
		TargetUserID: targetID,
		CreatedAt:    s.clock.Now(),
	})
	log.Info().Str("target", targetID).Str("by", actor.ID).Msg("moderation: moderator added")
	return nil
}

// RemoveModerator revokes the moderator role. Admin only.
func (s *Service) RemoveModerator(ctx context.Context, actor *forum.User, targetID string) error {
	if err := requireRole(actor, forum.RoleAdmin); err != nil {
		return err
	}
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == forum.RoleAdmin {
		return forum.ErrForbidden("administrator role cannot be changed here")
	}
	if target.Role != forum.RoleModerator {
		return forum.ErrConflict("user is not a moderator")
	}

	if err := s.store.SetUserRole(ctx, targetID, forum.RoleMember); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         ActionRemoveModerator,
		ModeratorID:  actor.ID,
		TargetUserID: targetID,
		CreatedAt:    s.clock.Now(),
	})
	log.Info().Str("target", targetID).Str("by", actor.ID).Msg("moderation: moderator removed")
	return nil
}

// ========== Quick actions ==========

// DeleteAndBan deletes the content and bans its author in one transaction.
// The bundling is deliberate: separate calls would let an operator ban a
// user but forget the offending content, or vice versa.
func (s *Service) DeleteAndBan(ctx context.Context, actor *forum.User, targetUserID string, target forum.ContentRef, banReason string, duration BanDuration) error {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return err
	}
	if banReason == "" {
		return forum.ErrValidation("ban reason is required")
	}
	if !duration.Valid() {
		return forum.ErrValidation("unknown ban duration")
	}

	meta, err := s.store.GetContentMeta(ctx, target)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if meta == nil {
		return forum.ErrNotFound("content not found")
	}
	if meta.AuthorID != targetUserID {
		return forum.ErrValidation("target user is not the content author")
	}
	targetUser, err := s.loadTarget(ctx, targetUserID)
	if err != nil {
		return err
	}
	if targetUser.Role == forum.RoleAdmin {
		return forum.ErrForbidden("administrators cannot be banned")
	}

	now := s.clock.Now()
	ban := BanState{
		BannedAt: now,
		BannedBy: actor.ID,
		Reason:   banReason,
		Until:    duration.Until(now),
	}
	actions := []*Action{
		{
			ID:           uuid.NewString(),
			Type:         deleteActionFor(target.Kind),
			ModeratorID:  actor.ID,
			TargetUserID: targetUserID,
			Target:       &target,
			Reason:       banReason,
			CreatedAt:    now,
		},
		{
			ID:           uuid.NewString(),
			Type:         ActionBan,
			ModeratorID:  actor.ID,
			TargetUserID: targetUserID,
			Target:       &target,
			Reason:       banReason,
			BanDuration:  duration,
			CreatedAt:    now,
		},
	}
	if err := s.store.ApplyDeleteAndBan(ctx, target, targetUserID, ban, actions); err != nil {
		return fmt.Errorf("delete and ban: %w", err)
	}

	for _, a := range actions {
		metrics.ModActionsTotal.WithLabelValues(string(a.Type)).Inc()
	}
	log.Info().
		Str("target", target.String()).
		Str("user", targetUserID).
		Str("duration", string(duration)).
		Str("by", actor.ID).
		Msg("moderation: delete-and-ban applied")
	return nil
}

// HideAndWarn hides the content and warns its author in one transaction.
func (s *Service) HideAndWarn(ctx context.Context, actor *forum.User, targetUserID string, target forum.ContentRef, warnReason string, severity Severity) error {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return err
	}
	if warnReason == "" {
		return forum.ErrValidation("warning reason is required")
	}
	if !severity.Valid() {
		return forum.ErrValidation("unknown severity")
	}

	meta, err := s.store.GetContentMeta(ctx, target)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if meta == nil {
		return forum.ErrNotFound("content not found")
	}
	if meta.AuthorID != targetUserID {
		return forum.ErrValidation("target user is not the content author")
	}
	if _, err := s.loadTarget(ctx, targetUserID); err != nil {
		return err
	}

	now := s.clock.Now()
	warning := &Warning{
		ID:           uuid.NewString(),
		TargetUserID: targetUserID,
		ModeratorID:  actor.ID,
		Reason:       warnReason,
		Severity:     severity,
		Target:       &target,
		CreatedAt:    now,
	}
	actions := []*Action{
		{
			ID:           uuid.NewString(),
			Type:         hideActionFor(target.Kind),
			ModeratorID:  actor.ID,
			TargetUserID: targetUserID,
			Target:       &target,
			Reason:       warnReason,
			CreatedAt:    now,
		},
		{
			ID:           uuid.NewString(),
			Type:         ActionWarn,
			ModeratorID:  actor.ID,
			TargetUserID: targetUserID,
			Target:       &target,
			Reason:       warnReason,
			CreatedAt:    now,
		},
	}
	if err := s.store.ApplyHideAndWarn(ctx, target, warning, actions); err != nil {
		return fmt.Errorf("hide and warn: %w", err)
	}

	for _, a := range actions {
		metrics.ModActionsTotal.WithLabelValues(string(a.Type)).Inc()
	}
	log.Info().
		Str("target", target.String()).
		Str("user", targetUserID).
		Str("severity", string(severity)).
		Str("by", actor.ID).
		Msg("moderation: hide-and-warn applied")
	return nil
}

// ========== Content toggles ==========

// TogglePin flips a topic's pinned flag and returns the new state.
func (s *Service) TogglePin(ctx context.Context, actor *forum.User, topicID string) (bool, error) {
	return s.toggleTopicFlag(ctx, actor, topicID, "pin")
}

// ToggleLock flips a topic's locked flag and returns the new state.
func (s *Service) ToggleLock(ctx context.Context, actor *forum.User, topicID string) (bool, error) {
	return s.toggleTopicFlag(ctx, actor, topicID, "lock")
}

func (s *Service) toggleTopicFlag(ctx context.Context, actor *forum.User, topicID, flag string) (bool, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return false, err
	}
	topic, err := s.topics.GetTopic(ctx, topicID)
	if err != nil {
		return false, fmt.Errorf("load topic: %w", err)
	}
	if topic == nil {
		return false, forum.ErrNotFound("topic not found")
	}

	var (
		next       bool
		actionType ActionType
	)
	switch flag {
	case "pin":
		next = !topic.IsPinned
		if err := s.store.SetTopicPinned(ctx, topicID, next); err != nil {
			return false, fmt.Errorf("set pinned: %w", err)
		}
		actionType = ActionPinTopic
		if !next {
			actionType = ActionUnpinTopic
		}
	case "lock":
		next = !topic.IsLocked
		if err := s.store.SetTopicLocked(ctx, topicID, next); err != nil {
			return false, fmt.Errorf("set locked: %w", err)
		}
		actionType = ActionLockTopic
		if !next {
			actionType = ActionUnlockTopic
		}
	}

	ref := forum.ContentRef{Kind: forum.KindTopic, ID: topicID}
	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         actionType,
		ModeratorID:  actor.ID,
		TargetUserID: topic.AuthorID,
		Target:       &ref,
		CreatedAt:    s.clock.Now(),
	})
	return next, nil
}

// ToggleHide flips the hidden flag on a topic or post and returns the new
// state. This is the explicit unhide path that reverses an escalation.
func (s *Service) ToggleHide(ctx context.Context, actor *forum.User, target forum.ContentRef) (bool, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return false, err
	}
	meta, err := s.store.GetContentMeta(ctx, target)
	if err != nil {
		return false, fmt.Errorf("load content: %w", err)
	}
	if meta == nil {
		return false, forum.ErrNotFound("content not found")
	}

	next := !meta.Hidden
	if err := s.store.SetContentHidden(ctx, target, next); err != nil {
		return false, fmt.Errorf("set hidden: %w", err)
	}

	actionType := hideActionFor(target.Kind)
	if !next {
		actionType = unhideActionFor(target.Kind)
	}
	s.logAction(ctx, &Action{
		ID:           uuid.NewString(),
		Type:         actionType,
		ModeratorID:  actor.ID,
		TargetUserID: meta.AuthorID,
		Target:       &target,
		CreatedAt:    s.clock.Now(),
	})
	return next, nil
}

// ========== Audit log and stats ==========

// AuditLog returns the most recent ledger entries.
func (s *Service) AuditLog(ctx context.Context, actor *forum.User, limit int) ([]*Action, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	actions, err := s.store.ListActions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

// Stats assembles the period-scoped moderation dashboard. Purely derived,
// no write side effects; the independent queries fan out on an errgroup.
func (s *Service) Stats(ctx context.Context, actor *forum.User, period Period) (*Stats, error) {
	if err := requireRole(actor, forum.RoleModerator); err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, forum.ErrValidation("unknown period")
	}
	since := period.Since(s.clock.Now())

	stats := &Stats{Period: period}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.CountPendingReports(gctx)
		stats.PendingReports = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountReportsResolvedSince(gctx, since)
		stats.ResolvedReports = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountReportsSince(gctx, since)
		stats.TotalReports = n
		return err
	})
	g.Go(func() error {
		m, err := s.store.ReportsByReasonSince(gctx, since)
		stats.ReportsByReason = m
		return err
	})
	g.Go(func() error {
		top, err := s.store.TopReportedAuthorsSince(gctx, since, 10)
		stats.TopReportedUsers = top
		return err
	})
	g.Go(func() error {
		activity, err := s.store.ModeratorActivitySince(gctx, since)
		stats.ModeratorActivity = activity
		return err
	})
	g.Go(func() error {
		m, err := s.store.ActionsByTypeSince(gctx, since)
		stats.ActionsByType = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("moderation stats: %w", err)
	}
	return stats, nil
}

// ========== helpers ==========

func requireRole(actor *forum.User, min forum.Role) error {
	if actor == nil || !actor.Role.AtLeast(min) {
		return forum.ErrForbidden("requires " + string(min) + " role")
	}
	return nil
}

func (s *Service) loadTarget(ctx context.Context, targetID string) (*forum.User, error) {
	target, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if target == nil {
		return nil, forum.ErrNotFound("user not found")
	}
	return target, nil
}

// logAction appends a ledger row; ledger failures on single-effect
// operations are logged, not returned, so the primary effect stands.
func (s *Service) logAction(ctx context.Context, action *Action) {
	if err := s.store.AppendAction(ctx, action); err != nil {
		log.Error().Err(err).Str("action", string(action.Type)).Msg("moderation: failed to append action")
		return
	}
	metrics.ModActionsTotal.WithLabelValues(string(action.Type)).Inc()
}

func hideActionFor(kind forum.ContentKind) ActionType {
	if kind == forum.KindTopic {
		return ActionHideTopic
	}
	return ActionHidePost
}

func unhideActionFor(kind forum.ContentKind) ActionType {
	if kind == forum.KindTopic {
		return ActionUnhideTopic
	}
	return ActionUnhidePost
}

func deleteActionFor(kind forum.ContentKind) ActionType {
	if kind == forum.KindTopic {
		return ActionDeleteTopic
	}
	return ActionDeletePost
}
