package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrDuplicateCode = errors.New("store: duplicate code or name")
	ErrInvalidScore  = errors.New("store: score is not a finite number")
	ErrAlreadyVoted  = errors.New("store: voter already has a live vote")
	ErrNotVoted      = errors.New("store: voter has no live vote")
	ErrVotingClosed  = errors.New("store: voting is closed")
)

// Agenda is the decision-making unit scoping criteria, alternatives, weights
// and votes.
type Agenda struct {
	ID           uuid.UUID `json:"id"`
	Topic        string    `json:"topic"`
	CreatedBy    string    `json:"created_by"`
	VotingClosed bool      `json:"voting_closed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Criterion as persisted. ObjectiveWeight is written only by a weighting
// recompute; ManualWeight is operator input kept for reference.
type Criterion struct {
	ID              uuid.UUID `json:"id"`
	AgendaID        uuid.UUID `json:"agenda_id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Polarity        string    `json:"polarity"`
	ManualWeight    float64   `json:"manual_weight"`
	ObjectiveWeight float64   `json:"objective_weight"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Alternative is identity only; raw scores live in the score matrix.
type Alternative struct {
	ID        uuid.UUID `json:"id"`
	AgendaID  uuid.UUID `json:"agenda_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RankedItem is one row of a persisted ranking snapshot.
type RankedItem struct {
	AlternativeID uuid.UUID `json:"alternative_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Score         float64   `json:"score"`
	Rank          int       `json:"rank"`
}

// RankedSnapshot is an immutable ranking outcome. Each recompute inserts a new
// snapshot; readers see the latest for the agenda. Tables carries the
// intermediate matrices for the report layer.
type RankedSnapshot struct {
	ID         uuid.UUID              `json:"id"`
	AgendaID   uuid.UUID              `json:"agenda_id"`
	ComputedBy string                 `json:"computed_by"`
	Items      []RankedItem           `json:"items"`
	Tables     map[string]interface{} `json:"tables,omitempty"`
	ComputedAt time.Time              `json:"computed_at"`
}

// Vote is the source of truth for the tally: at most one per (agenda, voter),
// keyed so a re-cast is impossible rather than merely discouraged. Counts are
// always derived from these records, never stored alongside them.
type Vote struct {
	AgendaID      uuid.UUID `json:"agenda_id"`
	VoterID       string    `json:"voter_id"`
	AlternativeID uuid.UUID `json:"alternative_id"`
	CastAt        time.Time `json:"cast_at"`
}

// AuditEntry is one immutable log record per mutating operation.
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	AgendaID  uuid.UUID `json:"agenda_id"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreMatrix as stored: alternative ID -> criterion code -> raw score.
type ScoreMatrix map[string]map[string]float64

type Store interface {
	// Agendas
	CreateAgenda(ctx context.Context, a *Agenda) error
	GetAgenda(ctx context.Context, id uuid.UUID) (*Agenda, error)
	ListAgendas(ctx context.Context) ([]*Agenda, error)
	UpdateAgendaTopic(ctx context.Context, id uuid.UUID, topic string) error
	SetVotingClosed(ctx context.Context, id uuid.UUID, closed bool) error
	DeleteAgenda(ctx context.Context, id uuid.UUID) error

	// Criteria. CreateCriterion rejects case-insensitive code or name
	// collisions within the agenda with ErrDuplicateCode. ListCriteria
	// returns creation order.
	CreateCriterion(ctx context.Context, c *Criterion) error
	ListCriteria(ctx context.Context, agendaID uuid.UUID) ([]*Criterion, error)
	UpdateCriterion(ctx context.Context, c *Criterion) error
	DeleteCriterion(ctx context.Context, agendaID, id uuid.UUID) error
	ReplaceObjectiveWeights(ctx context.Context, agendaID uuid.UUID, weights map[string]float64) error
	GetWeights(ctx context.Context, agendaID uuid.UUID) (map[string]float64, error)

	// Alternatives. Deleting one cascades to its score row and votes.
	CreateAlternative(ctx context.Context, a *Alternative) error
	ListAlternatives(ctx context.Context, agendaID uuid.UUID) ([]*Alternative, error)
	DeleteAlternative(ctx context.Context, agendaID, id uuid.UUID) error

	// Score matrix, cell-by-cell. Each write is independent and idempotent.
	SetScore(ctx context.Context, agendaID, alternativeID uuid.UUID, code string, value float64) error
	GetScoreMatrix(ctx context.Context, agendaID uuid.UUID) (ScoreMatrix, error)

	// Ranking snapshots
	CreateRankedSnapshot(ctx context.Context, s *RankedSnapshot) error
	GetLatestRankedSnapshot(ctx context.Context, agendaID uuid.UUID) (*RankedSnapshot, error)

	// Votes. CastVote and RetractVote are atomic with respect to concurrent
	// calls: the closed-state check and the one-vote-per-voter rule hold under
	// any interleaving. VoteCounts aggregates over vote records on read.
	CastVote(ctx context.Context, v *Vote) error
	RetractVote(ctx context.Context, agendaID uuid.UUID, voterID string) (*Vote, error)
	ResetVotes(ctx context.Context, agendaID uuid.UUID) error
	ListVotes(ctx context.Context, agendaID uuid.UUID) ([]*Vote, error)
	VoteCounts(ctx context.Context, agendaID uuid.UUID) (map[string]int, error)

	// Audit log
	AppendAudit(ctx context.Context, e *AuditEntry) error
	ListAudit(ctx context.Context, agendaID uuid.UUID) ([]*AuditEntry, error)

	Close() error
}
