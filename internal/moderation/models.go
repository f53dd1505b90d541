// Package moderation owns the report ledger, the trust state machine, the
// combined quick actions, the append-only action log, and the aggregate
// statistics behind the moderation dashboard.
package moderation

import (
	"time"

	"agora/internal/forum"
)

// EscalationThreshold is the fixed number of reports (any status) on one
// piece of content before it is hidden automatically, without waiting for a
// moderator.
const EscalationThreshold = 3

// AutomodActor is the reserved actor id recorded for automatic actions.
const AutomodActor = "automod"

// ReportReason is the reporter-supplied classification. Reasons come from
// the reporting human; the engine never infers them.
type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonHarassment     ReportReason = "harassment"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonOther          ReportReason = "other"
)

// Valid reports whether r is one of the enumerated reasons.
func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonHarassment, ReasonInappropriate, ReasonMisinformation, ReasonOther:
		return true
	}
	return false
}

// ReportStatus tracks a report through its two terminal transitions:
// pending -> resolved or pending -> dismissed. There is no way back.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is one member's complaint about a piece of content. Many reports
// may reference the same content; the count is the escalation signal.
type Report struct {
	ID             string           `json:"id"`
	ReporterID     string           `json:"reporter_id"`
	Target         forum.ContentRef `json:"target"`
	TargetAuthorID string           `json:"target_author_id"`
	Reason         ReportReason     `json:"reason"`
	Details        string           `json:"details,omitempty"`
	Status         ReportStatus     `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	ResolvedBy     string           `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time       `json:"resolved_at,omitempty"`
}

// Severity grades a warning.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Warning is an append-only disciplinary record. It never changes ban state;
// it is history for a human moderator to weigh.
type Warning struct {
	ID           string            `json:"id"`
	TargetUserID string            `json:"target_user_id"`
	ModeratorID  string            `json:"moderator_id"`
	Reason       string            `json:"reason"`
	Severity     Severity          `json:"severity"`
	Target       *forum.ContentRef `json:"target,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Note is a free-text internal annotation on a user, visible only to
// moderators. Append-only.
type Note struct {
	ID           string    `json:"id"`
	TargetUserID string    `json:"target_user_id"`
	ModeratorID  string    `json:"moderator_id"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActionType names an entry in the moderation audit ledger.
type ActionType string

const (
	ActionBan             ActionType = "ban"
	ActionUnban           ActionType = "unban"
	ActionWarn            ActionType = "warn"
	ActionDeleteTopic     ActionType = "delete_topic"
	ActionDeletePost      ActionType = "delete_post"
	ActionHideTopic       ActionType = "hide_topic"
	ActionHidePost        ActionType = "hide_post"
	ActionUnhideTopic     ActionType = "unhide_topic"
	ActionUnhidePost      ActionType = "unhide_post"
	ActionLockTopic       ActionType = "lock_topic"
	ActionUnlockTopic     ActionType = "unlock_topic"
	ActionPinTopic        ActionType = "pin_topic"
	ActionUnpinTopic      ActionType = "unpin_topic"
	ActionAddModerator    ActionType = "add_moderator"
	ActionRemoveModerator ActionType = "remove_moderator"
	ActionResolveReport   ActionType = "resolve_report"
	ActionDismissReport   ActionType = "dismiss_report"
)

// BanDuration is the fixed menu of temporary ban lengths for quick actions.
type BanDuration string

const (
	BanOneDay    BanDuration = "1day"
	BanOneWeek   BanDuration = "1week"
	BanOneMonth  BanDuration = "1month"
	BanPermanent BanDuration = "permanent"
)

// Valid reports whether d is a known duration.
func (d BanDuration) Valid() bool {
	switch d {
	case BanOneDay, BanOneWeek, BanOneMonth, BanPermanent:
		return true
	}
	return false
}

// Until computes the ban expiry from now, or nil for a permanent ban.
func (d BanDuration) Until(now time.Time) *time.Time {
	var until time.Time
	switch d {
	case BanOneDay:
		until = now.Add(24 * time.Hour)
	case BanOneWeek:
		until = now.Add(7 * 24 * time.Hour)
	case BanOneMonth:
		until = now.Add(30 * 24 * time.Hour)
	default:
		return nil
	}
	return &until
}

// Action is one row of the append-only audit ledger. Every state-changing
// moderator operation writes exactly one row; the combined quick actions
// write two, one per effect.
type Action struct {
	ID           string            `json:"id"`
	Type         ActionType        `json:"type"`
	ModeratorID  string            `json:"moderator_id"`
	TargetUserID string            `json:"target_user_id,omitempty"`
	Target       *forum.ContentRef `json:"target,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	BanDuration  BanDuration       `json:"ban_duration,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// BanState carries the fields the trust state machine writes on a ban.
type BanState struct {
	BannedAt time.Time
	BannedBy string
	Reason   string
	Until    *time.Time // nil = permanent
}

// ContentMeta is the slice of a topic or post the moderation engine needs to
// act on it without caring which kind it is.
type ContentMeta struct {
	Ref       forum.ContentRef
	AuthorID  string
	CreatedAt time.Time
	Hidden    bool
}

// Period scopes a stats query.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodAll:
		return true
	}
	return false
}

// Since returns the inclusive lower bound for the period, or the zero time
// for "all".
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour)
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		return now.Add(-30 * 24 * time.Hour)
	}
	return time.Time{}
}

// AuthorReportCount pairs a content author with how often their content was
// reported in the period.
type AuthorReportCount struct {
	AuthorID string `json:"author_id"`
	Count    int    `json:"count"`
}

// ModeratorActivity pairs a moderator with their recorded action count.
type ModeratorActivity struct {
	ModeratorID string `json:"moderator_id"`
	Count       int    `json:"count"`
}

// Stats is the read-only dashboard aggregate for one period.
type Stats struct {
	Period            Period               `json:"period"`
	PendingReports    int                  `json:"pending_reports"`
	ResolvedReports   int                  `json:"resolved_reports"`
	TotalReports      int                  `json:"total_reports"`
	ReportsByReason   map[ReportReason]int `json:"reports_by_reason"`
	TopReportedUsers  []AuthorReportCount  `json:"top_reported_users"`
	ModeratorActivity []ModeratorActivity  `json:"moderator_activity"`
	ActionsByType     map[ActionType]int   `json:"actions_by_type"`
}
