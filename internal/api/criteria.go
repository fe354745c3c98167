package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/decision"
	"github.com/MikeSquared-Agency/Concord/internal/events"
	"github.com/MikeSquared-Agency/Concord/internal/store"
)

type CriteriaHandler struct {
	store  store.Store
	events events.Client
}

func NewCriteriaHandler(s store.Store, ev events.Client) *CriteriaHandler {
	return &CriteriaHandler{store: s, events: ev}
}

type CriterionRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Polarity     string  `json:"polarity"`
	ManualWeight float64 `json:"manual_weight,omitempty"`
}

func validPolarity(p string) bool {
	return p == string(decision.Benefit) || p == string(decision.Cost)
}

func (h *CriteriaHandler) Create(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}

	var req CriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Code == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and name required"})
		return
	}
	if !validPolarity(req.Polarity) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "polarity must be Benefit or Cost"})
		return
	}

	actorID, _ := actor(r)
	criterion := &store.Criterion{
		AgendaID:     agendaID,
		Code:         req.Code,
		Name:         req.Name,
		Polarity:     req.Polarity,
		ManualWeight: req.ManualWeight,
		CreatedBy:    actorID,
	}
	if err := h.store.CreateCriterion(r.Context(), criterion); err != nil {
		writeError(w, err)
		return
	}
	h.changed(agendaID, "created", criterion.Code)
	writeJSON(w, http.StatusCreated, criterion)
}

func (h *CriteriaHandler) List(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	criteria, err := h.store.ListCriteria(r.Context(), agendaID)
	if err != nil {
		writeError(w, err)
		return
	}
	if criteria == nil {
		criteria = []*store.Criterion{}
	}
	writeJSON(w, http.StatusOK, criteria)
}

func (h *CriteriaHandler) Update(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	criterionID, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid criterion id"})
		return
	}

	var req CriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Code == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and name required"})
		return
	}
	if !validPolarity(req.Polarity) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "polarity must be Benefit or Cost"})
		return
	}

	criterion := &store.Criterion{
		ID:           criterionID,
		AgendaID:     agendaID,
		Code:         req.Code,
		Name:         req.Name,
		Polarity:     req.Polarity,
		ManualWeight: req.ManualWeight,
	}
	if err := h.store.UpdateCriterion(r.Context(), criterion); err != nil {
		writeError(w, err)
		return
	}
	h.changed(agendaID, "updated", criterion.Code)
	writeJSON(w, http.StatusOK, criterion)
}

func (h *CriteriaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	agendaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	criterionID, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid criterion id"})
		return
	}
	if err := h.store.DeleteCriterion(r.Context(), agendaID, criterionID); err != nil {
		writeError(w, err)
		return
	}
	h.changed(agendaID, "deleted", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CriteriaHandler) changed(agendaID uuid.UUID, change, code string) {
	if h.events == nil {
		return
	}
	_ = h.events.Publish(events.SubjectCriteriaChanged(agendaID.String()), events.CriteriaChangedEvent{
		AgendaID: agendaID.String(),
		Change:   change,
		Code:     code,
	})
}
