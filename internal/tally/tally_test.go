package tally

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Concord/internal/directory"
	"github.com/MikeSquared-Agency/Concord/internal/store"
)

type fakeDirectory struct {
	users map[string]string
	err   error
}

func (f *fakeDirectory) GetUser(ctx context.Context, userID string) (*directory.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.users[userID]
	if !ok {
		return nil, errors.New("no such user")
	}
	return &directory.User{ID: userID, DisplayName: name}, nil
}

func (f *fakeDirectory) ListUsers(ctx context.Context) ([]directory.User, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) (*Service, *store.MemoryStore, uuid.UUID, uuid.UUID) {
	t.Helper()
	st := store.NewMemoryStore()
	agenda := &store.Agenda{Topic: "venue selection", CreatedBy: "op-1"}
	if err := st.CreateAgenda(context.Background(), agenda); err != nil {
		t.Fatalf("create agenda: %v", err)
	}
	alt := &store.Alternative{AgendaID: agenda.ID, Code: "ALT-A", Name: "Harbour Hall"}
	if err := st.CreateAlternative(context.Background(), alt); err != nil {
		t.Fatalf("create alternative: %v", err)
	}
	svc := NewService(st, nil, nil, testLogger())
	return svc, st, agenda.ID, alt.ID
}

func TestCastRejectsOperator(t *testing.T) {
	svc, st, agendaID, altID := newFixture(t)
	ctx := context.Background()

	_, err := svc.Cast(ctx, agendaID, altID, "op-1", OperatorRole)
	if !errors.Is(err, ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden, got %v", err)
	}

	counts, err := st.VoteCounts(ctx, agendaID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("operator attempt must not touch the tally, got %v", counts)
	}
}

func TestCastRetractLifecycle(t *testing.T) {
	svc, st, agendaID, altID := newFixture(t)
	ctx := context.Background()

	vote, err := svc.Cast(ctx, agendaID, altID, "member-1", "member")
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if vote.CastAt.IsZero() {
		t.Fatal("cast must stamp the vote time")
	}

	if _, err := svc.Cast(ctx, agendaID, altID, "member-1", "member"); !errors.Is(err, store.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	counts, _ := svc.Counts(ctx, agendaID)
	if counts[altID.String()] != 1 {
		t.Fatalf("want count 1, got %d", counts[altID.String()])
	}

	prev, err := svc.Retract(ctx, agendaID, "member-1", "member")
	if err != nil {
		t.Fatalf("retract: %v", err)
	}
	if prev.AlternativeID != altID {
		t.Fatalf("retract returned wrong alternative %s", prev.AlternativeID)
	}
	if _, err := svc.Retract(ctx, agendaID, "member-1", "member"); !errors.Is(err, store.ErrNotVoted) {
		t.Fatalf("expected ErrNotVoted, got %v", err)
	}

	votes, _ := st.ListVotes(ctx, agendaID)
	if len(votes) != 0 {
		t.Fatalf("tally must be empty after retract, got %d votes", len(votes))
	}

	audit, _ := st.ListAudit(ctx, agendaID)
	var actions []string
	for _, e := range audit {
		actions = append(actions, e.Action)
	}
	if len(actions) != 2 || actions[0] != "VOTE" || actions[1] != "UNVOTE" {
		t.Fatalf("want audit [VOTE UNVOTE], got %v", actions)
	}
}

func TestResetIsOperatorOnly(t *testing.T) {
	svc, st, agendaID, altID := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Cast(ctx, agendaID, altID, "member-1", "member"); err != nil {
		t.Fatalf("cast: %v", err)
	}

	if err := svc.Reset(ctx, agendaID, "member-1", "member"); !errors.Is(err, ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden for member, got %v", err)
	}
	if err := svc.Reset(ctx, agendaID, "op-1", OperatorRole); err != nil {
		t.Fatalf("operator reset: %v", err)
	}
	// Idempotent on an empty tally.
	if err := svc.Reset(ctx, agendaID, "op-1", OperatorRole); err != nil {
		t.Fatalf("second reset: %v", err)
	}

	votes, _ := st.ListVotes(ctx, agendaID)
	if len(votes) != 0 {
		t.Fatalf("reset must clear votes, got %d", len(votes))
	}
}

func TestSetClosedGatesCasting(t *testing.T) {
	svc, _, agendaID, altID := newFixture(t)
	ctx := context.Background()

	if err := svc.SetClosed(ctx, agendaID, true, "member-1", "member"); !errors.Is(err, ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden for member, got %v", err)
	}
	if err := svc.SetClosed(ctx, agendaID, true, "op-1", OperatorRole); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.Cast(ctx, agendaID, altID, "member-1", "member"); !errors.Is(err, store.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed, got %v", err)
	}

	// Reopening keeps existing votes and allows casting again.
	if err := svc.SetClosed(ctx, agendaID, false, "op-1", OperatorRole); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := svc.Cast(ctx, agendaID, altID, "member-1", "member"); err != nil {
		t.Fatalf("cast after reopen: %v", err)
	}
}

func TestSummarizeResolvesNames(t *testing.T) {
	svc, st, agendaID, altID := newFixture(t)
	ctx := context.Background()

	dir := &fakeDirectory{users: map[string]string{"member-1": "Ada Lovelace"}}
	svc = NewService(st, nil, dir, testLogger())

	if _, err := svc.Cast(ctx, agendaID, altID, "member-1", "member"); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if _, err := svc.Cast(ctx, agendaID, altID, "member-2", "member"); err != nil {
		t.Fatalf("cast: %v", err)
	}

	sum, err := svc.Summarize(ctx, agendaID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.TotalVotes != 2 {
		t.Fatalf("want 2 votes, got %d", sum.TotalVotes)
	}
	if sum.Counts[altID.String()] != 2 {
		t.Fatalf("want count 2, got %d", sum.Counts[altID.String()])
	}
	byVoter := make(map[string]VoterStatus)
	for _, v := range sum.Voters {
		byVoter[v.VoterID] = v
	}
	if byVoter["member-1"].DisplayName != "Ada Lovelace" {
		t.Fatalf("want resolved name, got %q", byVoter["member-1"].DisplayName)
	}
	// Unknown voter degrades to an empty display name, not an error.
	if byVoter["member-2"].DisplayName != "" {
		t.Fatalf("want empty name for unknown voter, got %q", byVoter["member-2"].DisplayName)
	}
}

func TestSummarizeSurvivesDirectoryOutage(t *testing.T) {
	svc, st, agendaID, altID := newFixture(t)
	ctx := context.Background()

	svc = NewService(st, nil, &fakeDirectory{err: errors.New("directory down")}, testLogger())
	if _, err := svc.Cast(ctx, agendaID, altID, "member-1", "member"); err != nil {
		t.Fatalf("cast: %v", err)
	}

	sum, err := svc.Summarize(ctx, agendaID)
	if err != nil {
		t.Fatalf("summarize must not fail on directory errors: %v", err)
	}
	if sum.Voters[0].DisplayName != "" {
		t.Fatalf("want bare voter, got %q", sum.Voters[0].DisplayName)
	}
}

func TestConcurrentCastsKeepTallyConsistent(t *testing.T) {
	svc, st, agendaID, altID := newFixture(t)
	ctx := context.Background()

	altB := &store.Alternative{AgendaID: agendaID, Code: "ALT-B", Name: "Civic Centre"}
	if err := st.CreateAlternative(ctx, altB); err != nil {
		t.Fatalf("create alternative: %v", err)
	}

	const voters = 60
	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := altID
			if i%2 == 0 {
				target = altB.ID
			}
			if _, err := svc.Cast(ctx, agendaID, target, fmt.Sprintf("member-%d", i), "member"); err == nil {
				successes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if successes.Load() != voters {
		t.Fatalf("all distinct voters must succeed, got %d/%d", successes.Load(), voters)
	}
	counts, _ := svc.Counts(ctx, agendaID)
	total := 0
	for _, n := range counts {
		total += n
	}
	votes, _ := st.ListVotes(ctx, agendaID)
	if total != len(votes) {
		t.Fatalf("sum of counts %d must equal live votes %d", total, len(votes))
	}
	if total != voters {
		t.Fatalf("want %d votes, got %d", voters, total)
	}
}
