package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/store"
	"github.com/MikeSquared-Agency/Concord/internal/tally"
)

type AuditHandler struct {
	store store.Store
}

func NewAuditHandler(s store.Store) *AuditHandler {
	return &AuditHandler{store: s}
}

// List returns the agenda's audit trail, operator-only.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	if _, actorRole := actor(r); actorRole != tally.OperatorRole {
		writeError(w, tally.ErrRoleForbidden)
		return
	}
	entries, err := h.store.ListAudit(r.Context(), agendaID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*store.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
