package evidence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the raw pgx persistence layer for evidence, including the
// explicit cascades to file attachments and blacklist evidence pointers.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const evidenceColumns = "uuid, entity, operator, confidential, text_content, note, tag, created"

func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO evidence (uuid, entity, operator, confidential, text_content, note, tag, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.UUID, rec.Entity, rec.Operator, rec.Confidential, rec.TextContent, rec.Note, rec.Tag, rec.Created)
	if err != nil {
		return fmt.Errorf("inserting evidence: %w", err)
	}
	return nil
}

func (s *Store) GetByUUID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+evidenceColumns+` FROM evidence WHERE uuid = $1`, id)
	return scanRecord(row)
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM evidence WHERE uuid = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking evidence existence: %w", err)
	}
	return exists, nil
}

func (s *Store) SetConfidential(ctx context.Context, id string, confidential bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE evidence SET confidential = $1 WHERE uuid = $2`, confidential, id)
	if err != nil {
		return fmt.Errorf("updating evidence confidentiality: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the evidence row, first deleting its file attachments and
// nulling the evidence pointer on any blacklist row that referenced it (the
// blacklist row survives).
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning evidence delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM file_attachments WHERE evidence = $1`, id); err != nil {
		return fmt.Errorf("deleting attachments for evidence: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE blacklist SET evidence = NULL WHERE evidence = $1`, id); err != nil {
		return fmt.Errorf("nulling blacklist evidence pointer: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM evidence WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting evidence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing evidence delete transaction: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+evidenceColumns+` FROM evidence
		ORDER BY created DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing evidence: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListByEntity(ctx context.Context, entity string, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+evidenceColumns+` FROM evidence WHERE entity = $1
		ORDER BY created DESC LIMIT $2 OFFSET $3`, entity, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing evidence by entity: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListByOperator(ctx context.Context, operator string, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+evidenceColumns+` FROM evidence WHERE operator = $1
		ORDER BY created DESC LIMIT $2 OFFSET $3`, operator, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing evidence by operator: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListByTag(ctx context.Context, tag string, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+evidenceColumns+` FROM evidence WHERE tag = $1
		ORDER BY created DESC LIMIT $2 OFFSET $3`, tag, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing evidence by tag: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM evidence`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting evidence: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.UUID, &rec.Entity, &rec.Operator, &rec.Confidential, &rec.TextContent, &rec.Note, &rec.Tag, &rec.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
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
