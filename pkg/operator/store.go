package operator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the raw pgx persistence layer for operators.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const operatorColumns = "uuid, api_key, name, disabled, manage_operators, manage_blacklist, is_client, created, updated"

func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO operators (uuid, api_key, name, disabled, manage_operators, manage_blacklist, is_client, created, updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.UUID, rec.APIKey, rec.Name, rec.Disabled, rec.ManageOperators, rec.ManageBlacklist, rec.IsClient, rec.Created, rec.Updated)
	if err != nil {
		return fmt.Errorf("inserting operator: %w", err)
	}
	return nil
}

func (s *Store) GetByUUID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+operatorColumns+` FROM operators WHERE uuid = $1`, id)
	return scanRecord(row)
}

func (s *Store) GetByAPIKey(ctx context.Context, apiKey string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+operatorColumns+` FROM operators WHERE api_key = $1`, apiKey)
	return scanRecord(row)
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM operators WHERE uuid = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking operator existence: %w", err)
	}
	return exists, nil
}

func (s *Store) SetDisabled(ctx context.Context, id string, disabled bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE operators SET disabled = $1, updated = now() WHERE uuid = $2`, disabled, id)
	if err != nil {
		return fmt.Errorf("updating operator disabled flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) SetAPIKey(ctx context.Context, id, apiKey string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE operators SET api_key = $1, updated = now() WHERE uuid = $2`, apiKey, id)
	if err != nil {
		return fmt.Errorf("refreshing operator api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) SetCapability(ctx context.Context, id, column string, value bool) error {
	// column is always one of a fixed, code-controlled set — never caller input.
	query := fmt.Sprintf(`UPDATE operators SET %s = $1, updated = now() WHERE uuid = $2`, column)
	tag, err := s.pool.Exec(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("updating operator capability %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM operators WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting operator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	// Audit rows referencing this operator survive with operator = null.
	if _, err := s.pool.Exec(ctx, `UPDATE audit_log SET operator = NULL WHERE operator = $1`, id); err != nil {
		return fmt.Errorf("nulling audit log operator references: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+operatorColumns+` FROM operators
		ORDER BY created DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing operators: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM operators`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting operators: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.UUID, &rec.APIKey, &rec.Name, &rec.Disabled, &rec.ManageOperators, &rec.ManageBlacklist, &rec.IsClient, &rec.Created, &rec.Updated); err != nil {
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
