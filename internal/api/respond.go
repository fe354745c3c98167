package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Concord/internal/decision"
	"github.com/MikeSquared-Agency/Concord/internal/engine"
	"github.com/MikeSquared-Agency/Concord/internal/store"
	"github.com/MikeSquared-Agency/Concord/internal/tally"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses: missing records 404, state
// conflicts 409, role gates 403, bad input 400, computations that cannot
// proceed on the current data 422. Everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var degenerate *decision.DegenerateColumnError

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, tally.ErrRoleForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateCode),
		errors.Is(err, store.ErrAlreadyVoted),
		errors.Is(err, store.ErrNotVoted),
		errors.Is(err, store.ErrVotingClosed),
		errors.Is(err, engine.ErrWeightsNotReady):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidScore):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &degenerate),
		errors.Is(err, decision.ErrEmptyCriteriaSet),
		errors.Is(err, decision.ErrInsufficientAlternatives),
		errors.Is(err, decision.ErrNoWeights),
		errors.Is(err, decision.ErrNoCompleteAlternatives):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
