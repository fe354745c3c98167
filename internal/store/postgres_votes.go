package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Ranking snapshots ---

func (s *PostgresStore) CreateRankedSnapshot(ctx context.Context, snap *RankedSnapshot) error {
	itemsJSON, err := json.Marshal(snap.Items)
	if err != nil {
		return err
	}
	tablesJSON, _ := json.Marshal(snap.Tables)
	return s.pool.QueryRow(ctx, `
		INSERT INTO ranked_snapshots (agenda_id, computed_by, items, tables)
		VALUES ($1, $2, $3, $4)
		RETURNING id, computed_at`,
		snap.AgendaID, snap.ComputedBy, itemsJSON, tablesJSON,
	).Scan(&snap.ID, &snap.ComputedAt)
}

func (s *PostgresStore) GetLatestRankedSnapshot(ctx context.Context, agendaID uuid.UUID) (*RankedSnapshot, error) {
	snap := &RankedSnapshot{}
	var itemsJSON, tablesJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, agenda_id, computed_by, items, tables, computed_at
		FROM ranked_snapshots WHERE agenda_id = $1
		ORDER BY computed_at DESC, id DESC LIMIT 1`, agendaID,
	).Scan(&snap.ID, &snap.AgendaID, &snap.ComputedBy, &itemsJSON, &tablesJSON, &snap.ComputedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &snap.Items); err != nil {
		return nil, err
	}
	if tablesJSON != nil {
		_ = json.Unmarshal(tablesJSON, &snap.Tables)
	}
	return snap, nil
}

// --- Votes ---

// CastVote checks the agenda's closed flag and inserts the vote in a single
// transaction. The primary key on (agenda_id, voter_id) makes a second live
// vote impossible regardless of interleaving; FOR SHARE on the agenda row
// keeps a concurrent close from racing past the check.
func (s *PostgresStore) CastVote(ctx context.Context, v *Vote) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var closed bool
	err = tx.QueryRow(ctx, `
		SELECT voting_closed FROM agendas WHERE id = $1 FOR SHARE`, v.AgendaID,
	).Scan(&closed)
	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if closed {
		return ErrVotingClosed
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO votes (agenda_id, voter_id, alternative_id, cast_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (agenda_id, voter_id) DO NOTHING`,
		v.AgendaID, v.VoterID, v.AlternativeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyVoted
	}

	if err := tx.QueryRow(ctx, `
		SELECT cast_at FROM votes WHERE agenda_id = $1 AND voter_id = $2`,
		v.AgendaID, v.VoterID,
	).Scan(&v.CastAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) RetractVote(ctx context.Context, agendaID uuid.UUID, voterID string) (*Vote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var closed bool
	err = tx.QueryRow(ctx, `
		SELECT voting_closed FROM agendas WHERE id = $1 FOR SHARE`, agendaID,
	).Scan(&closed)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, ErrVotingClosed
	}

	v := &Vote{AgendaID: agendaID, VoterID: voterID}
	err = tx.QueryRow(ctx, `
		DELETE FROM votes WHERE agenda_id = $1 AND voter_id = $2
		RETURNING alternative_id, cast_at`, agendaID, voterID,
	).Scan(&v.AlternativeID, &v.CastAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotVoted
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// ResetVotes clears every vote for the agenda. Idempotent.
func (s *PostgresStore) ResetVotes(ctx context.Context, agendaID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM votes WHERE agenda_id = $1`, agendaID)
	return err
}

func (s *PostgresStore) ListVotes(ctx context.Context, agendaID uuid.UUID) ([]*Vote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT agenda_id, voter_id, alternative_id, cast_at
		FROM votes WHERE agenda_id = $1 ORDER BY cast_at ASC`, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*Vote
	for rows.Next() {
		v := &Vote{}
		if err := rows.Scan(&v.AgendaID, &v.VoterID, &v.AlternativeID, &v.CastAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// VoteCounts derives the per-alternative tally from vote records on every
// read. There is no stored counter to fall out of sync.
func (s *PostgresStore) VoteCounts(ctx context.Context, agendaID uuid.UUID) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT alternative_id, count(*) FROM votes
		WHERE agenda_id = $1 GROUP BY alternative_id`, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var altID uuid.UUID
		var n int
		if err := rows.Scan(&altID, &n); err != nil {
			return nil, err
		}
		counts[altID.String()] = n
	}
	return counts, rows.Err()
}

// --- Audit log ---

func (s *PostgresStore) AppendAudit(ctx context.Context, e *AuditEntry) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO audit_log (agenda_id, actor_id, actor_role, action, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.AgendaID, e.ActorID, e.ActorRole, e.Action, e.Detail,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *PostgresStore) ListAudit(ctx context.Context, agendaID uuid.UUID) ([]*AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, agenda_id, actor_id, actor_role, action, detail, created_at
		FROM audit_log WHERE agenda_id = $1 ORDER BY created_at ASC`, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		e := &AuditEntry{}
		if err := rows.Scan(&e.ID, &e.AgendaID, &e.ActorID, &e.ActorRole, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
