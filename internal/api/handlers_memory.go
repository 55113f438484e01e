package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/api/respond"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/services"
)

type MemoryHandler struct {
	svc *services.MemoryService
}

func NewMemoryHandler(svc *services.MemoryService) *MemoryHandler {
	return &MemoryHandler{svc: svc}
}

// CreateMemory POST /api/boards/{boardId}/memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		MemoryType string            `json:"memoryType"`
		Caption    *string           `json:"caption,omitempty"`
		EventDate  *time.Time        `json:"eventDate,omitempty"`
		Location   *string           `json:"location,omitempty"`
		MediaItems []model.MediaItem `json:"mediaItems,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	m := &model.Memory{
		BoardID:    mux.Vars(r)["boardId"],
		AuthorID:   actor.UserID,
		MemoryType: req.MemoryType,
		Caption:    req.Caption,
		EventDate:  req.EventDate,
		Location:   req.Location,
		MediaItems: req.MediaItems,
	}
	out, err := h.svc.Create(r.Context(), m)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// PublishDraft POST /api/drafts/{draftId}/publish
func (h *MemoryHandler) PublishDraft(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.PublishDraft(r.Context(), actor.UserID, mux.Vars(r)["draftId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListMemories GET /api/boards/{boardId}/memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	q := r.URL.Query()
	req := model.ListMemoriesRequest{BoardID: mux.Vars(r)["boardId"]}
	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			req.Limit = n
		}
	}
	if s := q.Get("before"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			req.Before = &t
		}
	}
	out, err := h.svc.List(r.Context(), actor.UserID, req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Memory{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"memories": out, "count": len(out)})
}

// GetMemory GET /api/memories/{memoryId}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.Get(r.Context(), actor.UserID, mux.Vars(r)["memoryId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteMemory DELETE /api/memories/{memoryId}
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.Delete(r.Context(), actor.UserID, mux.Vars(r)["memoryId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LikeMemory PUT /api/memories/{memoryId}/like
func (h *MemoryHandler) LikeMemory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.Like(r.Context(), actor.UserID, mux.Vars(r)["memoryId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlikeMemory DELETE /api/memories/{memoryId}/like
func (h *MemoryHandler) UnlikeMemory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.Unlike(r.Context(), actor.UserID, mux.Vars(r)["memoryId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateComment POST /api/memories/{memoryId}/comments
func (h *MemoryHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		Body     string  `json:"body"`
		ParentID *string `json:"parentId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	c := &model.Comment{
		MemoryID: mux.Vars(r)["memoryId"],
		AuthorID: actor.UserID,
		ParentID: req.ParentID,
		Body:     req.Body,
	}
	out, err := h.svc.AddComment(r.Context(), c)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListComments GET /api/memories/{memoryId}/comments
func (h *MemoryHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.ListComments(r.Context(), actor.UserID, mux.Vars(r)["memoryId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Comment{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": out, "count": len(out)})
}
