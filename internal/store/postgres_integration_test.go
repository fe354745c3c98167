//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		// Truncate in dependency order
		_, _ = s.pool.Exec(ctx, "TRUNCATE votes CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE scores CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE ranked_snapshots CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE audit_log CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE criteria CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE alternatives CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE agendas CASCADE")
		s.Close()
	})

	return s
}

func TestAgendaRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a := &Agenda{Topic: "Integration agenda", CreatedBy: "op-1"}
	if err := s.CreateAgenda(ctx, a); err != nil {
		t.Fatalf("CreateAgenda failed: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Fatal("expected non-nil agenda ID after create")
	}

	got, err := s.GetAgenda(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAgenda failed: %v", err)
	}
	if got.Topic != a.Topic || got.VotingClosed {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestCriterionUniqueConstraint(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a := &Agenda{Topic: "Criteria", CreatedBy: "op-1"}
	if err := s.CreateAgenda(ctx, a); err != nil {
		t.Fatalf("CreateAgenda failed: %v", err)
	}
	c := &Criterion{AgendaID: a.ID, Code: "c1", Name: "Quality", Polarity: "Benefit"}
	if err := s.CreateCriterion(ctx, c); err != nil {
		t.Fatalf("CreateCriterion failed: %v", err)
	}
	if c.Code != "C1" {
		t.Errorf("expected uppercased code, got %s", c.Code)
	}

	dup := &Criterion{AgendaID: a.ID, Code: "C1", Name: "Other", Polarity: "Cost"}
	if err := s.CreateCriterion(ctx, dup); !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}
}

// TestConcurrentCastVotePostgres exercises the same lost-update scenario the
// memory store test covers, against the real transactional path.
func TestConcurrentCastVotePostgres(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a := &Agenda{Topic: "Vote race", CreatedBy: "op-1"}
	if err := s.CreateAgenda(ctx, a); err != nil {
		t.Fatalf("CreateAgenda failed: %v", err)
	}
	alt := &Alternative{AgendaID: a.ID, Code: "A1", Name: "Alpha"}
	if err := s.CreateAlternative(ctx, alt); err != nil {
		t.Fatalf("CreateAlternative failed: %v", err)
	}

	const voters = 20
	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v := &Vote{AgendaID: a.ID, VoterID: fmt.Sprintf("voter-%d", n), AlternativeID: alt.ID}
			if err := s.CastVote(ctx, v); err == nil {
				successes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(successes.Load()) != voters {
		t.Errorf("expected %d successful casts, got %d", voters, successes.Load())
	}
	counts, err := s.VoteCounts(ctx, a.ID)
	if err != nil {
		t.Fatalf("VoteCounts failed: %v", err)
	}
	if counts[alt.ID.String()] != voters {
		t.Errorf("lost update: count %d, want %d", counts[alt.ID.String()], voters)
	}
}
