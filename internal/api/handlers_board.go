package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/api/respond"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/services"
)

type BoardHandler struct {
	svc *services.BoardService
}

func NewBoardHandler(svc *services.BoardService) *BoardHandler {
	return &BoardHandler{svc: svc}
}

// CreateBoard POST /api/boards
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), actor.UserID, req.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListBoards GET /api/boards
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.List(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Board{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"boards": out, "count": len(out)})
}

// GetBoard GET /api/boards/{boardId}
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.Get(r.Context(), actor.UserID, mux.Vars(r)["boardId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// RenameBoard PATCH /api/boards/{boardId}
func (h *BoardHandler) RenameBoard(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.svc.Rename(r.Context(), actor.UserID, mux.Vars(r)["boardId"], req.Name); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBoard DELETE /api/boards/{boardId}
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.Delete(r.Context(), actor.UserID, mux.Vars(r)["boardId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// JoinBoard POST /api/boards/join
func (h *BoardHandler) JoinBoard(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		ShareCode string `json:"shareCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Join(r.Context(), actor.UserID, req.ShareCode)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListMembers GET /api/boards/{boardId}/members
func (h *BoardHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	boardID := mux.Vars(r)["boardId"]
	// Membership gate: reuse Get which checks it.
	if _, err := h.svc.Get(r.Context(), actor.UserID, boardID); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	out, err := h.svc.Members(r.Context(), boardID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"members": out, "count": len(out)})
}

// CreateInvite POST /api/boards/{boardId}/invites
func (h *BoardHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Invite(r.Context(), actor.UserID, mux.Vars(r)["boardId"], req.Email)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// AcceptInvite POST /api/invites/{inviteId}/accept
func (h *BoardHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.AcceptInvite(r.Context(), actor.UserID, mux.Vars(r)["inviteId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
