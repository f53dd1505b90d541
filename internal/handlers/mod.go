package handlers

import (
	"net/http"

	"agora/internal/forum"
	"agora/internal/metrics"
	"agora/internal/moderation"

	dto "github.com/prometheus/client_model/go"
)

// ListReports handles GET /api/mod/reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	status := moderation.ReportStatus(r.URL.Query().Get("status"))
	reports, err := h.moderation.Reports(r.Context(), actor, status, queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []*moderation.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// ResolveReport handles POST /api/mod/reports/{id}/resolve.
func (h *Handler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	if err := h.moderation.ResolveReport(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(moderation.ReportStatusResolved)})
}

// DismissReport handles POST /api/mod/reports/{id}/dismiss.
func (h *Handler) DismissReport(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	if err := h.moderation.DismissReport(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(moderation.ReportStatusDismissed)})
}

// TogglePin handles POST /api/mod/topics/{id}/pin.
func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	pinned, err := h.moderation.TogglePin(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pinned": pinned})
}

// ToggleLock handles POST /api/mod/topics/{id}/lock.
func (h *Handler) ToggleLock(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	locked, err := h.moderation.ToggleLock(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"locked": locked})
}

// ToggleHideTopic handles POST /api/mod/topics/{id}/hide.
func (h *Handler) ToggleHideTopic(w http.ResponseWriter, r *http.Request) {
	h.toggleHide(w, r, forum.KindTopic)
}

// ToggleHidePost handles POST /api/mod/posts/{id}/hide.
func (h *Handler) ToggleHidePost(w http.ResponseWriter, r *http.Request) {
	h.toggleHide(w, r, forum.KindPost)
}

func (h *Handler) toggleHide(w http.ResponseWriter, r *http.Request, kind forum.ContentKind) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	hidden, err := h.moderation.ToggleHide(r.Context(), actor, forum.ContentRef{Kind: kind, ID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hidden": hidden})
}

// WarnUser handles POST /api/mod/warnings.
func (h *Handler) WarnUser(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		UserID   string              `json:"user_id"`
		Reason   string              `json:"reason"`
		Severity moderation.Severity `json:"severity"`
		Target   *forum.ContentRef   `json:"target,omitempty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	warning, err := h.moderation.AddWarning(r.Context(), actor, req.UserID, req.Reason, req.Severity, req.Target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, warning)
}

// ListWarnings handles GET /api/mod/users/{id}/warnings.
func (h *Handler) ListWarnings(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	warnings, err := h.moderation.Warnings(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if warnings == nil {
		warnings = []*moderation.Warning{}
	}
	writeJSON(w, http.StatusOK, warnings)
}

// AddNote handles POST /api/mod/notes.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		UserID string `json:"user_id"`
		Note   string `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.moderation.AddNote(r.Context(), actor, req.UserID, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ListNotes handles GET /api/mod/users/{id}/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	notes, err := h.moderation.Notes(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []*moderation.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// BanUser handles POST /api/mod/users/{id}/ban.
func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.moderation.BanUser(r.Context(), actor, r.PathValue("id"), req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"banned": true})
}

// UnbanUser handles POST /api/admin/users/{id}/unban.
func (h *Handler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	if err := h.moderation.UnbanUser(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"banned": false})
}

// AddModerator handles PUT /api/admin/moderators/{id}.
func (h *Handler) AddModerator(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	if err := h.moderation.AddModerator(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": string(forum.RoleModerator)})
}

// RemoveModerator handles DELETE /api/admin/moderators/{id}.
func (h *Handler) RemoveModerator(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	if err := h.moderation.RemoveModerator(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": string(forum.RoleMember)})
}

// DeleteAndBan handles POST /api/mod/quick/delete-and-ban.
func (h *Handler) DeleteAndBan(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		UserID   string                 `json:"user_id"`
		Target   forum.ContentRef       `json:"target"`
		Reason   string                 `json:"reason"`
		Duration moderation.BanDuration `json:"duration"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.moderation.DeleteAndBan(r.Context(), actor, req.UserID, req.Target, req.Reason, req.Duration); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// HideAndWarn handles POST /api/mod/quick/hide-and-warn.
func (h *Handler) HideAndWarn(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		UserID   string              `json:"user_id"`
		Target   forum.ContentRef    `json:"target"`
		Reason   string              `json:"reason"`
		Severity moderation.Severity `json:"severity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.moderation.HideAndWarn(r.Context(), actor, req.UserID, req.Target, req.Reason, req.Severity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// AuditLog handles GET /api/mod/audit.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	actions, err := h.moderation.AuditLog(r.Context(), actor, queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if actions == nil {
		actions = []*moderation.Action{}
	}
	writeJSON(w, http.StatusOK, actions)
}

// statsResponse wraps the stored aggregates with process-local counters read
// back from the metrics registry.
type statsResponse struct {
	*moderation.Stats
	AutoHidesSinceStart int `json:"auto_hides_since_start"`
}

// ModStats handles GET /api/mod/stats.
func (h *Handler) ModStats(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	period := moderation.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = moderation.PeriodAll
	}
	stats, err := h.moderation.Stats(r.Context(), actor, period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Stats:               stats,
		AutoHidesSinceStart: counterValue(),
	})
}

// counterValue reads the auto-hide counter back out of the registry.
func counterValue() int {
	var m dto.Metric
	if err := metrics.AutoHidesTotal.Write(&m); err != nil {
		return 0
	}
	return int(m.GetCounter().GetValue())
}
