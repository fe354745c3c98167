package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/engine"
	"github.com/MikeSquared-Agency/Concord/internal/store"
)

type ScoringHandler struct {
	store  store.Store
	engine *engine.Orchestrator
}

func NewScoringHandler(s store.Store, o *engine.Orchestrator) *ScoringHandler {
	return &ScoringHandler{store: s, engine: o}
}

func (h *ScoringHandler) RecomputeWeights(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	actorID, actorRole := actor(r)
	weights, err := h.engine.RecomputeWeights(r.Context(), agendaID, actorID, actorRole)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weights": weights})
}

func (h *ScoringHandler) GetWeights(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	weights, err := h.store.GetWeights(r.Context(), agendaID)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(weights) == 0 {
		writeError(w, engine.ErrWeightsNotReady)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weights": weights})
}

func (h *ScoringHandler) RecomputeRanking(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	actorID, actorRole := actor(r)
	snapshot, err := h.engine.RecomputeRanking(r.Context(), agendaID, actorID, actorRole)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *ScoringHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	snapshot, err := h.engine.LatestRanking(r.Context(), agendaID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
