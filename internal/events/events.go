package events

import "time"

type ScoreUpdatedEvent struct {
	AgendaID      string  `json:"agenda_id"`
	AlternativeID string  `json:"alternative_id"`
	Code          string  `json:"code"`
	Value         float64 `json:"value"`
}

type WeightsComputedEvent struct {
	AgendaID   string             `json:"agenda_id"`
	Weights    map[string]float64 `json:"weights"`
	ComputedBy string             `json:"computed_by"`
}

type RankingComputedEvent struct {
	AgendaID   string `json:"agenda_id"`
	SnapshotID string `json:"snapshot_id"`
	Ranked     int    `json:"ranked"`
	ComputedBy string `json:"computed_by"`
}

type VoteCastEvent struct {
	AgendaID      string    `json:"agenda_id"`
	VoterID       string    `json:"voter_id"`
	AlternativeID string    `json:"alternative_id"`
	CastAt        time.Time `json:"cast_at"`
}

type VoteRetractedEvent struct {
	AgendaID      string `json:"agenda_id"`
	VoterID       string `json:"voter_id"`
	AlternativeID string `json:"alternative_id"`
}

type VotesResetEvent struct {
	AgendaID string `json:"agenda_id"`
	ResetBy  string `json:"reset_by"`
}

type VotingStateEvent struct {
	AgendaID string `json:"agenda_id"`
	Closed   bool   `json:"closed"`
}

// CriteriaChangedEvent signals any criterion create, update or delete.
type CriteriaChangedEvent struct {
	AgendaID string `json:"agenda_id"`
	Change   string `json:"change"`
	Code     string `json:"code"`
}

type AlternativesChangedEvent struct {
	AgendaID string `json:"agenda_id"`
	Change   string `json:"change"`
	Code     string `json:"code"`
}

type AgendaDeletedEvent struct {
	AgendaID  string `json:"agenda_id"`
	DeletedBy string `json:"deleted_by"`
}

type AuditRecordedEvent struct {
	AgendaID string `json:"agenda_id"`
	ActorID  string `json:"actor_id"`
	Action   string `json:"action"`
}
