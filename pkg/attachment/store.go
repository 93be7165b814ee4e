package attachment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the raw pgx persistence layer for file attachment metadata. The
// binary payload itself lives on disk, managed by Manager.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const attachmentColumns = "uuid, evidence, file_mime, file_name, file_size, created"

func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO file_attachments (uuid, evidence, file_mime, file_name, file_size, created)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.UUID, rec.Evidence, rec.FileMime, rec.FileName, rec.FileSize, rec.Created)
	if err != nil {
		return fmt.Errorf("inserting file attachment: %w", err)
	}
	return nil
}

func (s *Store) GetByUUID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM file_attachments WHERE uuid = $1`, id)
	return scanRecord(row)
}

func (s *Store) ListByEvidence(ctx context.Context, evidence string) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+attachmentColumns+` FROM file_attachments WHERE evidence = $1
		ORDER BY created DESC`, evidence)
	if err != nil {
		return nil, fmt.Errorf("listing attachments by evidence: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM file_attachments WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting file attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM file_attachments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting file attachments: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.UUID, &rec.Evidence, &rec.FileMime, &rec.FileName, &rec.FileSize, &rec.Created); err != nil {
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
