package api

import (
	"net/http"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/api/respond"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/services"
)

type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetMe GET /api/me
//
// Creates the account record on first call so clients need no separate
// sign-up step beyond authenticating.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.Ensure(r.Context(), actor.UserID, actor.Email)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteMe DELETE /api/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.Delete(r.Context(), actor.UserID); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
