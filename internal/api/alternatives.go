package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/events"
	"github.com/MikeSquared-Agency/Concord/internal/store"
)

type AlternativesHandler struct {
	store  store.Store
	events events.Client
}

func NewAlternativesHandler(s store.Store, ev events.Client) *AlternativesHandler {
	return &AlternativesHandler{store: s, events: ev}
}

type AlternativeRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *AlternativesHandler) Create(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}

	var req AlternativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Code == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and name required"})
		return
	}

	alt := &store.Alternative{AgendaID: agendaID, Code: req.Code, Name: req.Name}
	if err := h.store.CreateAlternative(r.Context(), alt); err != nil {
		writeError(w, err)
		return
	}
	h.changed(agendaID, "created", alt.Code)
	writeJSON(w, http.StatusCreated, alt)
}

func (h *AlternativesHandler) List(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	alts, err := h.store.ListAlternatives(r.Context(), agendaID)
	if err != nil {
		writeError(w, err)
		return
	}
	if alts == nil {
		alts = []*store.Alternative{}
	}
	writeJSON(w, http.StatusOK, alts)
}

func (h *AlternativesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	altID, err := uuid.Parse(chi.URLParam(r, "aid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid alternative id"})
		return
	}
	if err := h.store.DeleteAlternative(r.Context(), agendaID, altID); err != nil {
		writeError(w, err)
		return
	}
	h.changed(agendaID, "deleted", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type SetScoreRequest struct {
	Value float64 `json:"value"`
}

// SetScore writes one matrix cell. Writes are independent so a partially
// scored agenda is always a valid state.
func (h *AlternativesHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	altID, err := uuid.Parse(chi.URLParam(r, "aid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid alternative id"})
		return
	}
	code := chi.URLParam(r, "code")

	var req SetScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.SetScore(r.Context(), agendaID, altID, code, req.Value); err != nil {
		writeError(w, err)
		return
	}
	if h.events != nil {
		_ = h.events.Publish(events.SubjectScoreUpdated(agendaID.String()), events.ScoreUpdatedEvent{
			AgendaID:      agendaID.String(),
			AlternativeID: altID.String(),
			Code:          code,
			Value:         req.Value,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AlternativesHandler) changed(agendaID uuid.UUID, change, code string) {
	if h.events == nil {
		return
	}
	_ = h.events.Publish(events.SubjectAlternativesChanged(agendaID.String()), events.AlternativesChangedEvent{
		AgendaID: agendaID.String(),
		Change:   change,
		Code:     code,
	})
}
