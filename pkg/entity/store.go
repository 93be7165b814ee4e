package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the raw pgx persistence layer for entities, including the
// explicit cascading deletes to child evidence, attachment, and blacklist
// rows, and the audit_log entity pointer nulling (there are no
// database-side cascade triggers).
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const entityColumns = "uuid, hash, id, host, created"

func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO entities (uuid, hash, id, host, created)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.UUID, rec.Hash, rec.ID, rec.Host, rec.Created)
	if err != nil {
		return fmt.Errorf("inserting entity: %w", err)
	}
	return nil
}

func (s *Store) GetByUUID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+entityColumns+` FROM entities WHERE uuid = $1`, id)
	return scanRecord(row)
}

func (s *Store) GetByHash(ctx context.Context, hash string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+entityColumns+` FROM entities WHERE hash = $1`, hash)
	return scanRecord(row)
}

func (s *Store) ExistsByUUID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM entities WHERE uuid = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking entity existence: %w", err)
	}
	return exists, nil
}

func (s *Store) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM entities WHERE hash = $1)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking entity existence: %w", err)
	}
	return exists, nil
}

// Delete removes the entity row and cascades: file_attachments for the
// entity's evidence rows, the evidence rows themselves, blacklist rows, and
// the audit_log entity pointer (nulled, not deleted — audit rows survive,
// mirroring the operator-delete cascade in pkg/operator/store.go). Order
// matters: attachments before evidence, evidence/blacklist/audit_log before
// the entity row, all inside one transaction.
func (s *Store) Delete(ctx context.Context, uuid string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning entity delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM file_attachments WHERE evidence IN (SELECT uuid FROM evidence WHERE entity = $1)
	`, uuid); err != nil {
		return fmt.Errorf("deleting attachments for entity: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM evidence WHERE entity = $1`, uuid); err != nil {
		return fmt.Errorf("deleting evidence for entity: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM blacklist WHERE entity = $1`, uuid); err != nil {
		return fmt.Errorf("deleting blacklist rows for entity: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE audit_log SET entity = NULL WHERE entity = $1`, uuid); err != nil {
		return fmt.Errorf("nulling audit log entity references: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM entities WHERE uuid = $1`, uuid)
	if err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing entity delete transaction: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entityColumns+` FROM entities
		ORDER BY created DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM entities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.UUID, &rec.Hash, &rec.ID, &rec.Host, &rec.Created); err != nil {
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
