package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Concord/internal/directory"
	"github.com/MikeSquared-Agency/Concord/internal/engine"
	"github.com/MikeSquared-Agency/Concord/internal/events"
	"github.com/MikeSquared-Agency/Concord/internal/store"
	"github.com/MikeSquared-Agency/Concord/internal/tally"
)

func NewRouter(s store.Store, ev events.Client, dir directory.Client, orch *engine.Orchestrator, votes *tally.Service, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	agendas := NewAgendasHandler(s, ev, votes, logger)
	criteria := NewCriteriaHandler(s, ev)
	alternatives := NewAlternativesHandler(s, ev)
	scoring := NewScoringHandler(s, orch)
	voting := NewVotesHandler(votes)
	audit := NewAuditHandler(s)
	admin := NewAdminHandler(s, dir)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ActorMiddleware)

		r.Post("/agendas", agendas.Create)
		r.Get("/agendas", agendas.List)
		r.Get("/agendas/{id}", agendas.Get)
		r.Patch("/agendas/{id}", agendas.Update)
		r.Delete("/agendas/{id}", agendas.Delete)
		r.Post("/agendas/{id}/voting/close", agendas.SetVotingState(true))
		r.Post("/agendas/{id}/voting/open", agendas.SetVotingState(false))

		r.Post("/agendas/{id}/criteria", criteria.Create)
		r.Get("/agendas/{id}/criteria", criteria.List)
		r.Patch("/agendas/{id}/criteria/{cid}", criteria.Update)
		r.Delete("/agendas/{id}/criteria/{cid}", criteria.Delete)

		r.Post("/agendas/{id}/alternatives", alternatives.Create)
		r.Get("/agendas/{id}/alternatives", alternatives.List)
		r.Delete("/agendas/{id}/alternatives/{aid}", alternatives.Delete)
		r.Put("/agendas/{id}/alternatives/{aid}/scores/{code}", alternatives.SetScore)

		r.Post("/agendas/{id}/weights/recompute", scoring.RecomputeWeights)
		r.Get("/agendas/{id}/weights", scoring.GetWeights)
		r.Post("/agendas/{id}/ranking/recompute", scoring.RecomputeRanking)
		r.Get("/agendas/{id}/ranking", scoring.GetRanking)

		r.Post("/agendas/{id}/votes", voting.Cast)
		r.Delete("/agendas/{id}/votes", voting.Retract)
		r.Get("/agendas/{id}/votes", voting.Counts)
		r.Get("/agendas/{id}/votes/summary", voting.Summary)
		r.Post("/agendas/{id}/votes/reset", voting.Reset)

		r.Get("/agendas/{id}/audit", audit.List)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/stats", admin.Stats)
			r.Get("/users", admin.Users)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
