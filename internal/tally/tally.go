package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/directory"
	"github.com/MikeSquared-Agency/Concord/internal/events"
	"github.com/MikeSquared-Agency/Concord/internal/store"
)

// OperatorRole is the auth collaborator's label for accounts that administer
// agendas. Operators run the vote; they do not participate in it.
const OperatorRole = "operator"

// ErrRoleForbidden is returned when a role-gated operation is attempted by
// the wrong role, before any read or write happens.
var ErrRoleForbidden = errors.New("tally: role not permitted for this operation")

// Service layers the voting rules on top of the store's atomic vote
// operations: role gating, the open/closed state machine, audit entries and
// change events. Counts always come from the store's aggregation over vote
// records, so the sum of counts equals the number of live votes after every
// operation, however calls interleave.
type Service struct {
	store     store.Store
	events    events.Client
	directory directory.Client
	logger    *slog.Logger
}

func NewService(s store.Store, ev events.Client, dir directory.Client, logger *slog.Logger) *Service {
	return &Service{store: s, events: ev, directory: dir, logger: logger}
}

// Cast records one vote for the actor. Operators are rejected before any
// state is touched; closed agendas and repeat voters are rejected atomically
// by the store.
func (s *Service) Cast(ctx context.Context, agendaID, alternativeID uuid.UUID, actorID, actorRole string) (*store.Vote, error) {
	if actorRole == OperatorRole {
		voteOpsTotal.WithLabelValues("cast", "forbidden").Inc()
		return nil, ErrRoleForbidden
	}

	vote := &store.Vote{AgendaID: agendaID, VoterID: actorID, AlternativeID: alternativeID}
	if err := s.store.CastVote(ctx, vote); err != nil {
		voteOpsTotal.WithLabelValues("cast", "rejected").Inc()
		return nil, err
	}
	voteOpsTotal.WithLabelValues("cast", "ok").Inc()

	s.audit(ctx, agendaID, actorID, actorRole, "VOTE", fmt.Sprintf("voted for alternative %s", alternativeID))
	s.publish(events.SubjectVoteCast(agendaID.String()), events.VoteCastEvent{
		AgendaID:      agendaID.String(),
		VoterID:       actorID,
		AlternativeID: alternativeID.String(),
		CastAt:        vote.CastAt,
	})
	return vote, nil
}

// Retract withdraws the actor's live vote.
func (s *Service) Retract(ctx context.Context, agendaID uuid.UUID, actorID, actorRole string) (*store.Vote, error) {
	prev, err := s.store.RetractVote(ctx, agendaID, actorID)
	if err != nil {
		voteOpsTotal.WithLabelValues("retract", "rejected").Inc()
		return nil, err
	}
	voteOpsTotal.WithLabelValues("retract", "ok").Inc()

	s.audit(ctx, agendaID, actorID, actorRole, "UNVOTE", fmt.Sprintf("retracted vote for alternative %s", prev.AlternativeID))
	s.publish(events.SubjectVoteRetracted(agendaID.String()), events.VoteRetractedEvent{
		AgendaID:      agendaID.String(),
		VoterID:       actorID,
		AlternativeID: prev.AlternativeID.String(),
	})
	return prev, nil
}

// Reset clears every vote for the agenda. Operator-only, idempotent.
func (s *Service) Reset(ctx context.Context, agendaID uuid.UUID, actorID, actorRole string) error {
	if actorRole != OperatorRole {
		voteOpsTotal.WithLabelValues("reset", "forbidden").Inc()
		return ErrRoleForbidden
	}
	if err := s.store.ResetVotes(ctx, agendaID); err != nil {
		voteOpsTotal.WithLabelValues("reset", "rejected").Inc()
		return err
	}
	voteOpsTotal.WithLabelValues("reset", "ok").Inc()

	s.audit(ctx, agendaID, actorID, actorRole, "RESET_VOTES", "cleared all votes")
	s.publish(events.SubjectVotesReset(agendaID.String()), events.VotesResetEvent{
		AgendaID: agendaID.String(),
		ResetBy:  actorID,
	})
	return nil
}

// SetClosed toggles the agenda between Open and Closed. Operator-only; it
// never clears existing votes.
func (s *Service) SetClosed(ctx context.Context, agendaID uuid.UUID, closed bool, actorID, actorRole string) error {
	if actorRole != OperatorRole {
		return ErrRoleForbidden
	}
	if err := s.store.SetVotingClosed(ctx, agendaID, closed); err != nil {
		return err
	}

	action := "OPEN_VOTING"
	if closed {
		action = "CLOSE_VOTING"
	}
	s.audit(ctx, agendaID, actorID, actorRole, action, "")
	s.publish(events.SubjectVotingState(agendaID.String()), events.VotingStateEvent{
		AgendaID: agendaID.String(),
		Closed:   closed,
	})
	return nil
}

// Counts returns the per-alternative tally, derived from vote records.
func (s *Service) Counts(ctx context.Context, agendaID uuid.UUID) (map[string]int, error) {
	return s.store.VoteCounts(ctx, agendaID)
}

// VoterStatus is one voter's entry in a summary roster.
type VoterStatus struct {
	VoterID       string    `json:"voter_id"`
	DisplayName   string    `json:"display_name,omitempty"`
	AlternativeID string    `json:"alternative_id"`
	CastAt        time.Time `json:"cast_at"`
}

// Summary is a stable read for the report layer: closed flag, derived counts
// and the voter roster as of one read.
type Summary struct {
	AgendaID   string         `json:"agenda_id"`
	Closed     bool           `json:"closed"`
	Counts     map[string]int `json:"counts"`
	TotalVotes int            `json:"total_votes"`
	Voters     []VoterStatus  `json:"voters"`
}

// Summarize builds the voting summary. Display names come from the directory
// collaborator when available; a lookup failure degrades to the bare voter ID
// rather than failing the summary.
func (s *Service) Summarize(ctx context.Context, agendaID uuid.UUID) (*Summary, error) {
	agenda, err := s.store.GetAgenda(ctx, agendaID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.VoteCounts(ctx, agendaID)
	if err != nil {
		return nil, err
	}
	votes, err := s.store.ListVotes(ctx, agendaID)
	if err != nil {
		return nil, err
	}

	names := s.resolveNames(ctx, votes)
	summary := &Summary{
		AgendaID:   agendaID.String(),
		Closed:     agenda.VotingClosed,
		Counts:     counts,
		TotalVotes: len(votes),
		Voters:     make([]VoterStatus, len(votes)),
	}
	for i, v := range votes {
		summary.Voters[i] = VoterStatus{
			VoterID:       v.VoterID,
			DisplayName:   names[v.VoterID],
			AlternativeID: v.AlternativeID.String(),
			CastAt:        v.CastAt,
		}
	}
	return summary, nil
}

func (s *Service) resolveNames(ctx context.Context, votes []*store.Vote) map[string]string {
	names := make(map[string]string)
	if s.directory == nil {
		return names
	}
	for _, v := range votes {
		if _, ok := names[v.VoterID]; ok {
			continue
		}
		u, err := s.directory.GetUser(ctx, v.VoterID)
		if err != nil {
			s.logger.Warn("failed to resolve voter name", "voter", v.VoterID, "error", err)
			continue
		}
		names[v.VoterID] = u.DisplayName
	}
	return names
}

func (s *Service) audit(ctx context.Context, agendaID uuid.UUID, actorID, actorRole, action, detail string) {
	entry := &store.AuditEntry{
		AgendaID:  agendaID,
		ActorID:   actorID,
		ActorRole: actorRole,
		Action:    action,
		Detail:    detail,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Warn("failed to append audit entry", "action", action, "agenda", agendaID, "error", err)
		return
	}
	s.publish(events.SubjectAuditRecorded(agendaID.String()), events.AuditRecordedEvent{
		AgendaID: agendaID.String(),
		ActorID:  actorID,
		Action:   action,
	})
}

func (s *Service) publish(subject string, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, event); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
