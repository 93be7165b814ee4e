package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the raw pgx persistence layer for audit_log rows.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const auditLogColumns = "uuid, type, message, operator, entity, timestamp"

func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (uuid, type, message, operator, entity, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.UUID, string(rec.Type), rec.Message, rec.Operator, rec.Entity, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting audit log row: %w", err)
	}
	return nil
}

func (s *Store) GetByUUID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+auditLogColumns+` FROM audit_log WHERE uuid = $1`, id)
	return scanRecord(row)
}

func (s *Store) List(ctx context.Context, limit, offset int, typeFilter *Type) ([]*Record, error) {
	var rows pgx.Rows
	var err error
	if typeFilter != nil {
		rows, err = s.pool.Query(ctx, `
			SELECT `+auditLogColumns+` FROM audit_log WHERE type = $1
			ORDER BY timestamp DESC LIMIT $2 OFFSET $3`, string(*typeFilter), limit, offset)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT `+auditLogColumns+` FROM audit_log
			ORDER BY timestamp DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListByOperator(ctx context.Context, operator string, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+auditLogColumns+` FROM audit_log WHERE operator = $1
		ORDER BY timestamp DESC LIMIT $2 OFFSET $3`, operator, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing audit log by operator: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListByEntity(ctx context.Context, entity string, limit, offset int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+auditLogColumns+` FROM audit_log WHERE entity = $1
		ORDER BY timestamp DESC LIMIT $2 OFFSET $3`, entity, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing audit log by entity: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) Count(ctx context.Context, typeFilter *Type) (int, error) {
	var n int
	var err error
	if typeFilter != nil {
		err = s.pool.QueryRow(ctx, `SELECT count(*) FROM audit_log WHERE type = $1`, string(*typeFilter)).Scan(&n)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT count(*) FROM audit_log`).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("counting audit log: %w", err)
	}
	return n, nil
}

// CleanOlderThan deletes rows with timestamp older than threshold and
// returns the number of rows removed.
func (s *Store) CleanOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM audit_log WHERE timestamp < $1`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleaning audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var typ string
	if err := row.Scan(&rec.UUID, &typ, &rec.Message, &rec.Operator, &rec.Entity, &rec.Timestamp); err != nil {
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
