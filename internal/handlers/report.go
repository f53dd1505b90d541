package handlers

import (
	"net/http"

	"agora/internal/forum"
	"agora/internal/moderation"
)

// SubmitReport handles POST /api/reports.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		Target  forum.ContentRef        `json:"target"`
		Reason  moderation.ReportReason `json:"reason"`
		Details string                  `json:"details"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.moderation.SubmitReport(r.Context(), actor, req.Target, req.Reason, req.Details)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
