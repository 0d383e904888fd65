package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskmate/apiserver/internal/services"
)

// DiscussionHandler provides HTTP handlers for team discussion.
type DiscussionHandler struct {
	discussionService *services.DiscussionService
}

func NewDiscussionHandler(discussionService *services.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{discussionService: discussionService}
}

// DiscussionRouter registers the team-scoped discussion routes.
func DiscussionRouter(r chi.Router, handler *DiscussionHandler) {
	r.Get("/", handler.ListMessages)
	r.Post("/", handler.PostMessage)
}

func (h *DiscussionHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	me, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	teamID, err := urlParamID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.discussionService.ListByTeam(r.Context(), me, teamID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *DiscussionHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	me, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	teamID, err := urlParamID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	message, err := h.discussionService.Post(r.Context(), me, teamID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

type PostMessageRequest struct {
	Content string `json:"content"`
}
