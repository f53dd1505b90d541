package handlers

import (
	"net/http"

	"agora/internal/forum"
	"agora/internal/middleware"
)

// CreateTopic handles POST /api/topics.
func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req forum.CreateTopicRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	topic, err := h.forum.CreateTopic(r.Context(), actor, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

// ListTopics handles GET /api/topics.
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	topics, err := h.forum.ListTopics(r.Context(), actor, r.URL.Query().Get("category_id"), queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if topics == nil {
		topics = []*forum.Topic{}
	}
	writeJSON(w, http.StatusOK, topics)
}

// GetTopic handles GET /api/topics/{id}.
func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	topic, err := h.forum.GetTopic(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// UpdateTopic handles PUT /api/topics/{id}.
func (h *Handler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	topic, err := h.forum.UpdateTopic(r.Context(), actor, r.PathValue("id"), req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// DeleteTopic handles DELETE /api/topics/{id}.
func (h *Handler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	if err := h.forum.DeleteTopic(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreatePost handles POST /api/topics/{id}/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.forum.CreatePost(r.Context(), actor, forum.CreatePostRequest{
		TopicID: r.PathValue("id"),
		Body:    req.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// ListPosts handles GET /api/topics/{id}/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	posts, err := h.forum.ListPosts(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []*forum.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// UpdatePost handles PUT /api/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.forum.UpdatePost(r.Context(), actor, r.PathValue("id"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	if err := h.forum.DeletePost(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vote handles POST /api/votes.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}

	var req struct {
		Target forum.ContentRef `json:"target"`
		Value  int              `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	total, err := h.forum.ToggleVote(r.Context(), actor, req.Target, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}
