package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Concord/internal/directory"
	"github.com/MikeSquared-Agency/Concord/internal/store"
)

type AdminHandler struct {
	store     store.Store
	directory directory.Client
}

func NewAdminHandler(s store.Store, dir directory.Client) *AdminHandler {
	return &AdminHandler{store: s, directory: dir}
}

// Stats is a lightweight operational rollup across all agendas.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	agendas, err := h.store.ListAgendas(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	open := 0
	totalVotes := 0
	for _, a := range agendas {
		if !a.VotingClosed {
			open++
		}
		votes, err := h.store.ListVotes(r.Context(), a.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		totalVotes += len(votes)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agendas":        len(agendas),
		"voting_open":    open,
		"votes_recorded": totalVotes,
	})
}

// Users proxies the auth collaborator's account list for operator tooling.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	if h.directory == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "directory not configured"})
		return
	}
	users, err := h.directory.ListUsers(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if users == nil {
		users = []directory.User{}
	}
	writeJSON(w, http.StatusOK, users)
}
