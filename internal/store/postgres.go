package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Agendas ---

func (s *PostgresStore) CreateAgenda(ctx context.Context, a *Agenda) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO agendas (topic, created_by, voting_closed)
		VALUES ($1, $2, false)
		RETURNING id, voting_closed, created_at, updated_at`,
		a.Topic, a.CreatedBy,
	).Scan(&a.ID, &a.VotingClosed, &a.CreatedAt, &a.UpdatedAt)
}

func (s *PostgresStore) GetAgenda(ctx context.Context, id uuid.UUID) (*Agenda, error) {
	a := &Agenda{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, topic, created_by, voting_closed, created_at, updated_at
		FROM agendas WHERE id = $1`, id,
	).Scan(&a.ID, &a.Topic, &a.CreatedBy, &a.VotingClosed, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PostgresStore) ListAgendas(ctx context.Context) ([]*Agenda, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, topic, created_by, voting_closed, created_at, updated_at
		FROM agendas ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agendas []*Agenda
	for rows.Next() {
		a := &Agenda{}
		if err := rows.Scan(&a.ID, &a.Topic, &a.CreatedBy, &a.VotingClosed, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		agendas = append(agendas, a)
	}
	return agendas, rows.Err()
}

func (s *PostgresStore) UpdateAgendaTopic(ctx context.Context, id uuid.UUID, topic string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE agendas SET topic = $2, updated_at = now() WHERE id = $1`, id, topic)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetVotingClosed(ctx context.Context, id uuid.UUID, closed bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE agendas SET voting_closed = $2, updated_at = now() WHERE id = $1`, id, closed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAgenda(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agendas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Criteria ---

func (s *PostgresStore) CreateCriterion(ctx context.Context, c *Criterion) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO criteria (agenda_id, code, name, polarity, manual_weight, objective_weight, created_by)
		VALUES ($1, upper($2), $3, $4, $5, 0, $6)
		RETURNING id, code, objective_weight, created_at`,
		c.AgendaID, c.Code, c.Name, c.Polarity, c.ManualWeight, c.CreatedBy,
	).Scan(&c.ID, &c.Code, &c.ObjectiveWeight, &c.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

func (s *PostgresStore) ListCriteria(ctx context.Context, agendaID uuid.UUID) ([]*Criterion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, agenda_id, code, name, polarity, manual_weight, objective_weight, created_by, created_at
		FROM criteria WHERE agenda_id = $1 ORDER BY created_at ASC, id ASC`, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []*Criterion
	for rows.Next() {
		c := &Criterion{}
		if err := rows.Scan(&c.ID, &c.AgendaID, &c.Code, &c.Name, &c.Polarity,
			&c.ManualWeight, &c.ObjectiveWeight, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

func (s *PostgresStore) UpdateCriterion(ctx context.Context, c *Criterion) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE criteria SET code = upper($3), name = $4, polarity = $5, manual_weight = $6
		WHERE agenda_id = $1 AND id = $2`,
		c.AgendaID, c.ID, c.Code, c.Name, c.Polarity, c.ManualWeight)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteCriterion(ctx context.Context, agendaID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM criteria WHERE agenda_id = $1 AND id = $2`, agendaID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceObjectiveWeights zeroes every criterion weight for the agenda and
// applies the new vector in one transaction, so weights for criteria dropped
// since the last recompute cannot survive.
func (s *PostgresStore) ReplaceObjectiveWeights(ctx context.Context, agendaID uuid.UUID, weights map[string]float64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE criteria SET objective_weight = 0 WHERE agenda_id = $1`, agendaID); err != nil {
		return err
	}
	for code, w := range weights {
		if _, err := tx.Exec(ctx, `
			UPDATE criteria SET objective_weight = $3
			WHERE agenda_id = $1 AND code = $2`, agendaID, code, w); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetWeights(ctx context.Context, agendaID uuid.UUID) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT code, objective_weight FROM criteria
		WHERE agenda_id = $1 AND objective_weight > 0`, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weights := make(map[string]float64)
	for rows.Next() {
		var code string
		var w float64
		if err := rows.Scan(&code, &w); err != nil {
			return nil, err
		}
		weights[code] = w
	}
	return weights, rows.Err()
}

// --- Alternatives ---

func (s *PostgresStore) CreateAlternative(ctx context.Context, a *Alternative) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO alternatives (agenda_id, code, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		a.AgendaID, a.Code, a.Name,
	).Scan(&a.ID, &a.CreatedAt)
	return err
}

func (s *PostgresStore) ListAlternatives(ctx context.Context, agendaID uuid.UUID) ([]*Alternative, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, agenda_id, code, name, created_at
		FROM alternatives WHERE agenda_id = $1 ORDER BY created_at ASC, id ASC`, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alts []*Alternative
	for rows.Next() {
		a := &Alternative{}
		if err := rows.Scan(&a.ID, &a.AgendaID, &a.Code, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		alts = append(alts, a)
	}
	return alts, rows.Err()
}

// DeleteAlternative removes the alternative; its score row and votes go with
// it via foreign keys.
func (s *PostgresStore) DeleteAlternative(ctx context.Context, agendaID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM alternatives WHERE agenda_id = $1 AND id = $2`, agendaID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Score matrix ---

func (s *PostgresStore) SetScore(ctx context.Context, agendaID, alternativeID uuid.UUID, code string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidScore
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scores (agenda_id, alternative_id, code, value, updated_at)
		VALUES ($1, $2, upper($3), $4, now())
		ON CONFLICT (alternative_id, code) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`,
		agendaID, alternativeID, code, value)
	return err
}

func (s *PostgresStore) GetScoreMatrix(ctx context.Context, agendaID uuid.UUID) (ScoreMatrix, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT alternative_id, code, value FROM scores WHERE agenda_id = $1`, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matrix := make(ScoreMatrix)
	for rows.Next() {
		var altID uuid.UUID
		var code string
		var value float64
		if err := rows.Scan(&altID, &code, &value); err != nil {
			return nil, err
		}
		row, ok := matrix[altID.String()]
		if !ok {
			row = make(map[string]float64)
			matrix[altID.String()] = row
		}
		row[code] = value
	}
	return matrix, rows.Err()
}
