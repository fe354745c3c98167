package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/events"
	"github.com/MikeSquared-Agency/Concord/internal/store"
	"github.com/MikeSquared-Agency/Concord/internal/tally"
)

type AgendasHandler struct {
	store  store.Store
	events events.Client
	votes  *tally.Service
	logger *slog.Logger
}

func NewAgendasHandler(s store.Store, ev events.Client, votes *tally.Service, logger *slog.Logger) *AgendasHandler {
	return &AgendasHandler{store: s, events: ev, votes: votes, logger: logger}
}

type CreateAgendaRequest struct {
	Topic string `json:"topic"`
}

func (h *AgendasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAgendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "topic required"})
		return
	}

	actorID, _ := actor(r)
	agenda := &store.Agenda{Topic: req.Topic, CreatedBy: actorID}
	if err := h.store.CreateAgenda(r.Context(), agenda); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, agenda)
}

func (h *AgendasHandler) List(w http.ResponseWriter, r *http.Request) {
	agendas, err := h.store.ListAgendas(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if agendas == nil {
		agendas = []*store.Agenda{}
	}
	writeJSON(w, http.StatusOK, agendas)
}

func (h *AgendasHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}
	agenda, err := h.store.GetAgenda(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agenda)
}

func (h *AgendasHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}

	var req CreateAgendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "topic required"})
		return
	}

	if err := h.store.UpdateAgendaTopic(r.Context(), id, req.Topic); err != nil {
		writeError(w, err)
		return
	}
	agenda, err := h.store.GetAgenda(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agenda)
}

func (h *AgendasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
		return
	}

	actorID, actorRole := actor(r)
	if actorRole != tally.OperatorRole {
		writeError(w, tally.ErrRoleForbidden)
		return
	}

	if err := h.store.DeleteAgenda(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if h.events != nil {
		_ = h.events.Publish(events.SubjectAgendaDeleted(id.String()), events.AgendaDeletedEvent{
			AgendaID:  id.String(),
			DeletedBy: actorID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetVotingState handles the close and open sub-resources; the path tail
// decides the direction.
func (h *AgendasHandler) SetVotingState(closed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agenda id"})
			return
		}
		actorID, actorRole := actor(r)
		if err := h.votes.SetClosed(r.Context(), id, closed, actorID, actorRole); err != nil {
			writeError(w, err)
			return
		}
		agenda, err := h.store.GetAgenda(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, agenda)
	}
}
