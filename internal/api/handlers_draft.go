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

// DraftHandler is the remote end of draft sync. All routes operate on the
// authenticated actor's own drafts; there is no cross-user access.
type DraftHandler struct {
	svc *services.DraftService
}

func NewDraftHandler(svc *services.DraftService) *DraftHandler {
	return &DraftHandler{svc: svc}
}

// ListDrafts GET /api/drafts
func (h *DraftHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	out, err := h.svc.List(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Draft{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"drafts": out, "count": len(out)})
}

// SaveDraft PUT /api/drafts/{draftId}
//
// The body carries the full draft; lastUpdated decides whether it replaces
// the stored copy. The persisted winner is echoed back so a losing writer
// learns the newer version in the same round trip.
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	d.DraftID = mux.Vars(r)["draftId"]
	out, err := h.svc.Upsert(r.Context(), actor.UserID, &d)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteDraft DELETE /api/drafts/{draftId}
func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.Delete(r.Context(), actor.UserID, mux.Vars(r)["draftId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllDrafts DELETE /api/drafts
func (h *DraftHandler) DeleteAllDrafts(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.DeleteAll(r.Context(), actor.UserID); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
