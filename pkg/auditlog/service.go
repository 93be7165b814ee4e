package auditlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/vigil/internal/cache"
	"github.com/wisbric/vigil/internal/telemetry"
	"github.com/wisbric/vigil/internal/vigilerr"
)

// Manager is the audit log: append-only, synchronous, and part of the
// logical operation it documents — if Append fails the caller's whole
// operation must fail.
type Manager struct {
	store         *Store
	cache         *cache.Cache
	logger        *slog.Logger
	cacheEnabled  bool
	cacheTTL      time.Duration
	cacheLimit    int
}

func NewManager(store *Store, c *cache.Cache, logger *slog.Logger, cacheEnabled bool, cacheLimit int, cacheTTL time.Duration) *Manager {
	return &Manager{store: store, cache: c, logger: logger, cacheEnabled: cacheEnabled, cacheLimit: cacheLimit, cacheTTL: cacheTTL}
}

// Append writes one audit entry and logs it at info level. It is always
// synchronous and blocking: failure here must fail the caller's operation.
func (m *Manager) Append(ctx context.Context, typ Type, message string, operator, entity *string) error {
	rec := &Record{
		UUID:      uuid.NewString(),
		Type:      typ,
		Message:   message,
		Operator:  operator,
		Entity:    entity,
		Timestamp: time.Now().UTC(),
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		return vigilerr.Database(err)
	}

	m.logger.Info("audit log appended", "type", string(typ), "message", message, "operator", derefOrEmpty(operator), "entity", derefOrEmpty(entity))
	telemetry.AuditLogAppendedTotal.WithLabelValues(string(typ)).Inc()

	if m.cacheEnabled {
		reached, err := m.cache.LimitReached(ctx, cache.PrefixAuditLog, m.cacheLimit)
		if err == nil && !reached {
			_ = m.cache.SetRecord(ctx, cache.PrefixAuditLog, rec.UUID, toRecordMap(rec), m.cacheTTL)
		}
	}

	return nil
}

func (m *Manager) GetByUUID(ctx context.Context, id string) (*Record, error) {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		return nil, vigilerr.NotFoundf("audit log entry not found")
	}
	return rec, nil
}

func (m *Manager) List(ctx context.Context, limit, offset int, typeFilter *Type) ([]*Record, error) {
	recs, err := m.store.List(ctx, limit, offset, typeFilter)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

func (m *Manager) ListByOperator(ctx context.Context, operator string, limit, offset int) ([]*Record, error) {
	recs, err := m.store.ListByOperator(ctx, operator, limit, offset)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

func (m *Manager) ListByEntity(ctx context.Context, entity string, limit, offset int) ([]*Record, error) {
	recs, err := m.store.ListByEntity(ctx, entity, limit, offset)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

func (m *Manager) Count(ctx context.Context, typeFilter *Type) (int, error) {
	n, err := m.store.Count(ctx, typeFilter)
	if err != nil {
		return 0, vigilerr.Database(err)
	}
	return n, nil
}

// CleanOlderThan removes audit rows older than the given day threshold.
func (m *Manager) CleanOlderThan(ctx context.Context, days int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -days)
	n, err := m.store.CleanOlderThan(ctx, threshold)
	if err != nil {
		return 0, vigilerr.Database(err)
	}
	return n, nil
}

func toRecordMap(rec *Record) cache.Record {
	m := cache.Record{
		"uuid":      rec.UUID,
		"type":      string(rec.Type),
		"message":   rec.Message,
		"timestamp": rec.Timestamp.Format(time.RFC3339),
	}
	if rec.Operator != nil {
		m["operator"] = *rec.Operator
	}
	if rec.Entity != nil {
		m["entity"] = *rec.Entity
	}
	return m
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
