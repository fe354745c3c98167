package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/decision"
	"github.com/MikeSquared-Agency/Concord/internal/events"
	"github.com/MikeSquared-Agency/Concord/internal/store"
)

// ErrWeightsNotReady is returned when a ranking recompute is requested before
// any objective weights exist for the agenda.
var ErrWeightsNotReady = errors.New("engine: objective weights not computed")

// Orchestrator sequences weighting and ranking recomputes for an agenda:
// load state, run the pure functions, persist the outcome, emit one audit
// entry and one change event. A failed recompute leaves the previous weights
// or snapshot untouched.
type Orchestrator struct {
	store  store.Store
	events events.Client
	logger *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func New(s store.Store, ev events.Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:  s,
		events: ev,
		logger: logger,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

// agendaLock serializes recomputes per agenda. Concurrent score edits can
// still land mid-load, so a snapshot is consistent "as of some instant", not
// linearizable; the lock only guarantees at most one recompute at a time.
func (o *Orchestrator) agendaLock(id uuid.UUID) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

// RecomputeWeights runs MEREC over the agenda's current criteria and score
// matrix and replaces the stored weight vector in full.
func (o *Orchestrator) RecomputeWeights(ctx context.Context, agendaID uuid.UUID, actorID, actorRole string) (decision.WeightVector, error) {
	lock := o.agendaLock(agendaID)
	lock.Lock()
	defer lock.Unlock()

	criteria, alts, matrix, err := o.loadInputs(ctx, agendaID)
	if err != nil {
		return nil, err
	}

	weights, err := decision.MerecWeights(criteria, alts, decision.ScoreMatrix(matrix))
	if err != nil {
		recomputeTotal.WithLabelValues("weights", "error").Inc()
		return nil, err
	}

	if err := o.store.ReplaceObjectiveWeights(ctx, agendaID, weights); err != nil {
		recomputeTotal.WithLabelValues("weights", "error").Inc()
		return nil, fmt.Errorf("persist weights: %w", err)
	}
	recomputeTotal.WithLabelValues("weights", "ok").Inc()

	o.audit(ctx, agendaID, actorID, actorRole, "RECOMPUTE_WEIGHTS",
		fmt.Sprintf("computed objective weights for %d criteria", len(weights)))
	o.publish(events.SubjectWeightsComputed(agendaID.String()), events.WeightsComputedEvent{
		AgendaID:   agendaID.String(),
		Weights:    weights,
		ComputedBy: actorID,
	})
	return weights, nil
}

// RecomputeRanking runs MOORA with the stored weight vector and persists the
// outcome as a new immutable snapshot.
func (o *Orchestrator) RecomputeRanking(ctx context.Context, agendaID uuid.UUID, actorID, actorRole string) (*store.RankedSnapshot, error) {
	lock := o.agendaLock(agendaID)
	lock.Lock()
	defer lock.Unlock()

	criteria, alts, matrix, err := o.loadInputs(ctx, agendaID)
	if err != nil {
		return nil, err
	}
	stored, err := o.store.GetWeights(ctx, agendaID)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	if len(stored) == 0 {
		return nil, ErrWeightsNotReady
	}

	detail, err := decision.MooraRank(criteria, alts, decision.ScoreMatrix(matrix), decision.WeightVector(stored))
	if err != nil {
		recomputeTotal.WithLabelValues("ranking", "error").Inc()
		return nil, err
	}

	snapshot := &store.RankedSnapshot{
		AgendaID:   agendaID,
		ComputedBy: actorID,
		Items:      make([]store.RankedItem, len(detail.Ranked)),
		Tables: map[string]interface{}{
			"criterion_codes": detail.CriterionCodes,
			"raw":             detail.Raw,
			"normalized":      detail.Normalized,
			"weighted":        detail.Weighted,
		},
	}
	for i, r := range detail.Ranked {
		altID, err := uuid.Parse(r.AlternativeID)
		if err != nil {
			return nil, fmt.Errorf("ranked alternative id %q: %w", r.AlternativeID, err)
		}
		snapshot.Items[i] = store.RankedItem{
			AlternativeID: altID,
			Code:          r.Code,
			Name:          r.Name,
			Score:         r.Score,
			Rank:          r.Rank,
		}
	}

	if err := o.store.CreateRankedSnapshot(ctx, snapshot); err != nil {
		recomputeTotal.WithLabelValues("ranking", "error").Inc()
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	recomputeTotal.WithLabelValues("ranking", "ok").Inc()

	o.audit(ctx, agendaID, actorID, actorRole, "RECOMPUTE_RANKING",
		fmt.Sprintf("ranked %d alternatives", len(snapshot.Items)))
	o.publish(events.SubjectRankingComputed(agendaID.String()), events.RankingComputedEvent{
		AgendaID:   agendaID.String(),
		SnapshotID: snapshot.ID.String(),
		Ranked:     len(snapshot.Items),
		ComputedBy: actorID,
	})
	return snapshot, nil
}

// LatestRanking returns the most recent snapshot for the agenda.
func (o *Orchestrator) LatestRanking(ctx context.Context, agendaID uuid.UUID) (*store.RankedSnapshot, error) {
	return o.store.GetLatestRankedSnapshot(ctx, agendaID)
}

func (o *Orchestrator) loadInputs(ctx context.Context, agendaID uuid.UUID) ([]decision.Criterion, []decision.Alternative, store.ScoreMatrix, error) {
	if _, err := o.store.GetAgenda(ctx, agendaID); err != nil {
		return nil, nil, nil, err
	}
	storedCriteria, err := o.store.ListCriteria(ctx, agendaID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load criteria: %w", err)
	}
	storedAlts, err := o.store.ListAlternatives(ctx, agendaID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load alternatives: %w", err)
	}
	matrix, err := o.store.GetScoreMatrix(ctx, agendaID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load score matrix: %w", err)
	}

	criteria := make([]decision.Criterion, len(storedCriteria))
	for i, c := range storedCriteria {
		criteria[i] = decision.Criterion{
			Code:            c.Code,
			Name:            c.Name,
			Polarity:        decision.Polarity(c.Polarity),
			ManualWeight:    c.ManualWeight,
			ObjectiveWeight: c.ObjectiveWeight,
		}
	}
	// Creation order from the store fixes tie-breaks to the earliest-created
	// alternative.
	alts := make([]decision.Alternative, len(storedAlts))
	for i, a := range storedAlts {
		alts[i] = decision.Alternative{ID: a.ID.String(), Code: a.Code, Name: a.Name}
	}
	return criteria, alts, matrix, nil
}

func (o *Orchestrator) audit(ctx context.Context, agendaID uuid.UUID, actorID, actorRole, action, detail string) {
	entry := &store.AuditEntry{
		AgendaID:  agendaID,
		ActorID:   actorID,
		ActorRole: actorRole,
		Action:    action,
		Detail:    detail,
	}
	if err := o.store.AppendAudit(ctx, entry); err != nil {
		o.logger.Warn("failed to append audit entry", "action", action, "agenda", agendaID, "error", err)
		return
	}
	o.publish(events.SubjectAuditRecorded(agendaID.String()), events.AuditRecordedEvent{
		AgendaID: agendaID.String(),
		ActorID:  actorID,
		Action:   action,
	})
}

func (o *Orchestrator) publish(subject string, event interface{}) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(subject, event); err != nil {
		o.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
