package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded Store for tests and single-node development.
// Vote operations take the same lock as the closed-flag check, so the tally
// invariant holds under concurrent callers exactly as it does for Postgres.
type MemoryStore struct {
	mu sync.RWMutex

	agendas      map[uuid.UUID]*Agenda
	criteria     map[uuid.UUID][]*Criterion   // by agenda, creation order
	alternatives map[uuid.UUID][]*Alternative // by agenda, creation order
	scores       map[uuid.UUID]ScoreMatrix    // by agenda
	snapshots    map[uuid.UUID][]*RankedSnapshot
	votes        map[uuid.UUID]map[string]*Vote // agenda -> voter -> vote
	audit        map[uuid.UUID][]*AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agendas:      make(map[uuid.UUID]*Agenda),
		criteria:     make(map[uuid.UUID][]*Criterion),
		alternatives: make(map[uuid.UUID][]*Alternative),
		scores:       make(map[uuid.UUID]ScoreMatrix),
		snapshots:    make(map[uuid.UUID][]*RankedSnapshot),
		votes:        make(map[uuid.UUID]map[string]*Vote),
		audit:        make(map[uuid.UUID][]*AuditEntry),
	}
}

func (s *MemoryStore) Close() error { return nil }

// --- Agendas ---

func (s *MemoryStore) CreateAgenda(ctx context.Context, a *Agenda) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.New()
	a.VotingClosed = false
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	s.agendas[a.ID] = &cp
	s.votes[a.ID] = make(map[string]*Vote)
	s.scores[a.ID] = make(ScoreMatrix)
	return nil
}

func (s *MemoryStore) GetAgenda(ctx context.Context, id uuid.UUID) (*Agenda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agendas[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) ListAgendas(ctx context.Context) ([]*Agenda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Agenda, 0, len(s.agendas))
	for _, a := range s.agendas {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateAgendaTopic(ctx context.Context, id uuid.UUID, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agendas[id]
	if !ok {
		return ErrNotFound
	}
	a.Topic = topic
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetVotingClosed(ctx context.Context, id uuid.UUID, closed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agendas[id]
	if !ok {
		return ErrNotFound
	}
	a.VotingClosed = closed
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) DeleteAgenda(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agendas[id]; !ok {
		return ErrNotFound
	}
	delete(s.agendas, id)
	delete(s.criteria, id)
	delete(s.alternatives, id)
	delete(s.scores, id)
	delete(s.snapshots, id)
	delete(s.votes, id)
	return nil
}

// --- Criteria ---

func (s *MemoryStore) CreateCriterion(ctx context.Context, c *Criterion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agendas[c.AgendaID]; !ok {
		return ErrNotFound
	}
	c.Code = strings.ToUpper(c.Code)
	for _, existing := range s.criteria[c.AgendaID] {
		if strings.EqualFold(existing.Code, c.Code) || strings.EqualFold(existing.Name, c.Name) {
			return ErrDuplicateCode
		}
	}
	c.ID = uuid.New()
	c.ObjectiveWeight = 0
	c.CreatedAt = time.Now().UTC()
	cp := *c
	s.criteria[c.AgendaID] = append(s.criteria[c.AgendaID], &cp)
	return nil
}

func (s *MemoryStore) ListCriteria(ctx context.Context, agendaID uuid.UUID) ([]*Criterion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Criterion, 0, len(s.criteria[agendaID]))
	for _, c := range s.criteria[agendaID] {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) UpdateCriterion(ctx context.Context, c *Criterion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.criteria[c.AgendaID] {
		if existing.ID == c.ID {
			continue
		}
		if strings.EqualFold(existing.Code, c.Code) || strings.EqualFold(existing.Name, c.Name) {
			return ErrDuplicateCode
		}
	}
	for _, existing := range s.criteria[c.AgendaID] {
		if existing.ID == c.ID {
			existing.Code = strings.ToUpper(c.Code)
			existing.Name = c.Name
			existing.Polarity = c.Polarity
			existing.ManualWeight = c.ManualWeight
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteCriterion(ctx context.Context, agendaID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.criteria[agendaID]
	for i, c := range list {
		if c.ID == id {
			s.criteria[agendaID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ReplaceObjectiveWeights(ctx context.Context, agendaID uuid.UUID, weights map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.criteria[agendaID] {
		c.ObjectiveWeight = weights[c.Code]
	}
	return nil
}

func (s *MemoryStore) GetWeights(ctx context.Context, agendaID uuid.UUID) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weights := make(map[string]float64)
	for _, c := range s.criteria[agendaID] {
		if c.ObjectiveWeight > 0 {
			weights[c.Code] = c.ObjectiveWeight
		}
	}
	return weights, nil
}

// --- Alternatives ---

func (s *MemoryStore) CreateAlternative(ctx context.Context, a *Alternative) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agendas[a.AgendaID]; !ok {
		return ErrNotFound
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	cp := *a
	s.alternatives[a.AgendaID] = append(s.alternatives[a.AgendaID], &cp)
	return nil
}

func (s *MemoryStore) ListAlternatives(ctx context.Context, agendaID uuid.UUID) ([]*Alternative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Alternative, 0, len(s.alternatives[agendaID]))
	for _, a := range s.alternatives[agendaID] {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) DeleteAlternative(ctx context.Context, agendaID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.alternatives[agendaID]
	for i, a := range list {
		if a.ID == id {
			s.alternatives[agendaID] = append(list[:i:i], list[i+1:]...)
			delete(s.scores[agendaID], id.String())
			for voter, v := range s.votes[agendaID] {
				if v.AlternativeID == id {
					delete(s.votes[agendaID], voter)
				}
			}
			return nil
		}
	}
	return ErrNotFound
}

// --- Score matrix ---

func (s *MemoryStore) SetScore(ctx context.Context, agendaID, alternativeID uuid.UUID, code string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidScore
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	matrix, ok := s.scores[agendaID]
	if !ok {
		return ErrNotFound
	}
	row, ok := matrix[alternativeID.String()]
	if !ok {
		row = make(map[string]float64)
		matrix[alternativeID.String()] = row
	}
	row[strings.ToUpper(code)] = value
	return nil
}

func (s *MemoryStore) GetScoreMatrix(ctx context.Context, agendaID uuid.UUID) (ScoreMatrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(ScoreMatrix, len(s.scores[agendaID]))
	for altID, row := range s.scores[agendaID] {
		cp := make(map[string]float64, len(row))
		for code, v := range row {
			cp[code] = v
		}
		out[altID] = cp
	}
	return out, nil
}

// --- Ranking snapshots ---

func (s *MemoryStore) CreateRankedSnapshot(ctx context.Context, snap *RankedSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agendas[snap.AgendaID]; !ok {
		return ErrNotFound
	}
	snap.ID = uuid.New()
	snap.ComputedAt = time.Now().UTC()
	cp := *snap
	s.snapshots[snap.AgendaID] = append(s.snapshots[snap.AgendaID], &cp)
	return nil
}

func (s *MemoryStore) GetLatestRankedSnapshot(ctx context.Context, agendaID uuid.UUID) (*RankedSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.snapshots[agendaID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	cp := *list[len(list)-1]
	return &cp, nil
}

// --- Votes ---

func (s *MemoryStore) CastVote(ctx context.Context, v *Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agendas[v.AgendaID]
	if !ok {
		return ErrNotFound
	}
	if a.VotingClosed {
		return ErrVotingClosed
	}
	if _, ok := s.votes[v.AgendaID][v.VoterID]; ok {
		return ErrAlreadyVoted
	}
	v.CastAt = time.Now().UTC()
	cp := *v
	s.votes[v.AgendaID][v.VoterID] = &cp
	return nil
}

func (s *MemoryStore) RetractVote(ctx context.Context, agendaID uuid.UUID, voterID string) (*Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agendas[agendaID]
	if !ok {
		return nil, ErrNotFound
	}
	if a.VotingClosed {
		return nil, ErrVotingClosed
	}
	v, ok := s.votes[agendaID][voterID]
	if !ok {
		return nil, ErrNotVoted
	}
	delete(s.votes[agendaID], voterID)
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) ResetVotes(ctx context.Context, agendaID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agendas[agendaID]; !ok {
		return ErrNotFound
	}
	s.votes[agendaID] = make(map[string]*Vote)
	return nil
}

func (s *MemoryStore) ListVotes(ctx context.Context, agendaID uuid.UUID) ([]*Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Vote, 0, len(s.votes[agendaID]))
	for _, v := range s.votes[agendaID] {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CastAt.Before(out[j].CastAt) })
	return out, nil
}

func (s *MemoryStore) VoteCounts(ctx context.Context, agendaID uuid.UUID) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, v := range s.votes[agendaID] {
		counts[v.AlternativeID.String()]++
	}
	return counts, nil
}

// --- Audit log ---

func (s *MemoryStore) AppendAudit(ctx context.Context, e *AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	cp := *e
	s.audit[e.AgendaID] = append(s.audit[e.AgendaID], &cp)
	return nil
}

func (s *MemoryStore) ListAudit(ctx context.Context, agendaID uuid.UUID) ([]*AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*AuditEntry, 0, len(s.audit[agendaID]))
	for _, e := range s.audit[agendaID] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
