package moderation

import (
	"context"
	"time"

	"agora/internal/forum"
)

// Store defines the persistence interface for moderation data, plus the
// content-side operations moderators apply regardless of kind.
// Implementations must be safe for concurrent use. The two Apply* composites
// must be atomic: either every effect lands or none does.
type Store interface {
	// Reports
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context, status ReportStatus, limit int) ([]*Report, error)
	ResolveReport(ctx context.Context, id string, status ReportStatus, resolvedBy string, at time.Time) error
	CountReportsForTarget(ctx context.Context, target forum.ContentRef) (int, error)

	// Content, kind-agnostic
	GetContentMeta(ctx context.Context, target forum.ContentRef) (*ContentMeta, error)
	SetContentHidden(ctx context.Context, target forum.ContentRef, hidden bool) error
	DeleteContent(ctx context.Context, target forum.ContentRef, at time.Time) error
	SetTopicPinned(ctx context.Context, topicID string, pinned bool) error
	SetTopicLocked(ctx context.Context, topicID string, locked bool) error

	// Trust state
	SetBan(ctx context.Context, userID string, ban BanState) error
	ClearBan(ctx context.Context, userID string) error
	SetUserRole(ctx context.Context, userID string, role forum.Role) error

	// Warnings and notes
	AddWarning(ctx context.Context, warning *Warning) error
	ListWarnings(ctx context.Context, userID string) ([]*Warning, error)
	AddNote(ctx context.Context, note *Note) error
	ListNotes(ctx context.Context, userID string) ([]*Note, error)

	// Audit ledger
	AppendAction(ctx context.Context, action *Action) error
	ListActions(ctx context.Context, limit int) ([]*Action, error)

	// Composite quick actions, single transaction each
	ApplyDeleteAndBan(ctx context.Context, target forum.ContentRef, userID string, ban BanState, actions []*Action) error
	ApplyHideAndWarn(ctx context.Context, target forum.ContentRef, warning *Warning, actions []*Action) error

	// Stats queries; a zero since means all time
	CountPendingReports(ctx context.Context) (int, error)
	CountReportsResolvedSince(ctx context.Context, since time.Time) (int, error)
	CountReportsSince(ctx context.Context, since time.Time) (int, error)
	ReportsByReasonSince(ctx context.Context, since time.Time) (map[ReportReason]int, error)
	TopReportedAuthorsSince(ctx context.Context, since time.Time, limit int) ([]AuthorReportCount, error)
	ModeratorActivitySince(ctx context.Context, since time.Time) ([]ModeratorActivity, error)
	ActionsByTypeSince(ctx context.Context, since time.Time) (map[ActionType]int, error)
}
