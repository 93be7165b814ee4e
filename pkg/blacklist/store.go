package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the raw pgx persistence layer for blacklist verdicts.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const blacklistColumns = "uuid, entity, operator, type, expires, lifted, lifted_by, evidence, created"

func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO blacklist (uuid, entity, operator, type, expires, lifted, lifted_by, evidence, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.UUID, rec.Entity, rec.Operator, rec.Type, rec.Expires, rec.Lifted, rec.LiftedBy, rec.Evidence, rec.Created)
	if err != nil {
		return fmt.Errorf("inserting blacklist verdict: %w", err)
	}
	return nil
}

func (s *Store) GetByUUID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+blacklistColumns+` FROM blacklist WHERE uuid = $1`, id)
	return scanRecord(row)
}

func (s *Store) Lift(ctx context.Context, id string, liftedBy *string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE blacklist SET lifted = true, lifted_by = $1 WHERE uuid = $2`, liftedBy, id)
	if err != nil {
		return fmt.Errorf("lifting blacklist verdict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) AttachEvidence(ctx context.Context, id, evidence string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE blacklist SET evidence = $1 WHERE uuid = $2`, evidence, id)
	if err != nil {
		return fmt.Errorf("attaching evidence to blacklist verdict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM blacklist WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting blacklist verdict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) List(ctx context.Context, includeLifted bool, limit, offset int) ([]*Record, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist`
	if !includeLifted {
		query += ` WHERE lifted = false`
	}
	query += ` ORDER BY created DESC LIMIT $1 OFFSET $2`
	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing blacklist verdicts: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListByEntity(ctx context.Context, entity string, includeLifted bool, limit, offset int) ([]*Record, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist WHERE entity = $1`
	if !includeLifted {
		query += ` AND lifted = false`
	}
	query += ` ORDER BY created DESC LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, query, entity, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing blacklist verdicts by entity: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListByOperator(ctx context.Context, operator string, includeLifted bool, limit, offset int) ([]*Record, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist WHERE operator = $1`
	if !includeLifted {
		query += ` AND lifted = false`
	}
	query += ` ORDER BY created DESC LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, query, operator, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing blacklist verdicts by operator: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CleanOlderThan removes rows past the configured retention threshold: an
// expired verdict older than threshold, or a permanent verdict created
// before threshold.
func (s *Store) CleanOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM blacklist
		WHERE (expires IS NOT NULL AND expires < $1)
		   OR (expires IS NULL AND created < $1)
	`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleaning blacklist verdicts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM blacklist`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting blacklist verdicts: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var typ string
	if err := row.Scan(&rec.UUID, &rec.Entity, &rec.Operator, &typ, &rec.Expires, &rec.Lifted, &rec.LiftedBy, &rec.Evidence, &rec.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	rec.Type = Type(typ)
	return &rec, nil
}

func scanRecords(rows pgx.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
