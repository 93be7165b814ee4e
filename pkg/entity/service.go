package entity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wisbric/vigil/internal/cache"
	"github.com/wisbric/vigil/internal/vigilerr"
	"github.com/wisbric/vigil/pkg/auditlog"
)

// Manager is the entity manager: hash-addressed registration, lookup, and
// cascading delete, fronted by the cache.
type Manager struct {
	store        *Store
	cache        *cache.Cache
	audit        *auditlog.Manager
	logger       *slog.Logger
	cacheEnabled bool
	cacheLimit   int
	cacheTTL     time.Duration
}

func NewManager(store *Store, c *cache.Cache, audit *auditlog.Manager, logger *slog.Logger, cacheEnabled bool, cacheLimit int, cacheTTL time.Duration) *Manager {
	return &Manager{store: store, cache: c, audit: audit, logger: logger, cacheEnabled: cacheEnabled, cacheLimit: cacheLimit, cacheTTL: cacheTTL}
}

func toRecordMap(rec *Record) cache.Record {
	m := cache.Record{
		"uuid":    rec.UUID,
		"hash":    rec.Hash,
		"host":    rec.Host,
		"created": rec.Created.Format(time.RFC3339),
	}
	if rec.ID != nil {
		m["id"] = *rec.ID
	}
	return m
}

func recordFromCache(fields cache.Record) *Record {
	created, _ := time.Parse(time.RFC3339, fields["created"])
	rec := &Record{
		UUID:    fields["uuid"],
		Hash:    fields["hash"],
		Host:    fields["host"],
		Created: created,
	}
	if id, ok := fields["id"]; ok {
		rec.ID = &id
	}
	return rec
}

func (m *Manager) cacheWrite(ctx context.Context, rec *Record) {
	if !m.cacheEnabled {
		return
	}
	reached, err := m.cache.LimitReached(ctx, cache.PrefixEntity, m.cacheLimit)
	if err != nil || reached {
		return
	}
	if err := m.cache.SetRecord(ctx, cache.PrefixEntity, rec.UUID, toRecordMap(rec), m.cacheTTL); err != nil {
		return
	}
	_ = m.cache.SetPointer(ctx, cache.PrefixEntity, rec.Hash, rec.UUID, m.cacheTTL)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Register validates host/id, computes the canonical hash, and inserts a
// new entity row. A duplicate hash surfaces as Conflict.
func (m *Manager) Register(ctx context.Context, host string, id *string, operator *string) (*Record, error) {
	if err := ValidateHost(host); err != nil {
		return nil, err
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	rec := &Record{
		UUID:    uuid.NewString(),
		Hash:    Hash(host, id),
		ID:      id,
		Host:    host,
		Created: time.Now().UTC(),
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		if isUniqueViolation(err) {
			return nil, vigilerr.Conflictf("entity already registered")
		}
		return nil, vigilerr.Database(err)
	}

	if err := m.audit.Append(ctx, auditlog.TypeEntityPushed, "entity pushed: "+rec.Host, operator, &rec.UUID); err != nil {
		return nil, err
	}

	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) GetByUUID(ctx context.Context, id string) (*Record, error) {
	if m.cacheEnabled {
		if fields, _ := m.cache.GetRecord(ctx, cache.PrefixEntity, id); fields != nil {
			return recordFromCache(fields), nil
		}
	}
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("entity not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) GetByHash(ctx context.Context, hash string) (*Record, error) {
	if m.cacheEnabled {
		if rec, err := m.cache.ResolvePointer(ctx, cache.PrefixEntity, hash); err == nil && rec != nil {
			return recordFromCache(rec), nil
		}
	}
	rec, err := m.store.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("entity not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

// GetByHostID is the canonical lookup path: it hashes (host, id) and
// delegates to GetByHash.
func (m *Manager) GetByHostID(ctx context.Context, host string, id *string) (*Record, error) {
	return m.GetByHash(ctx, Hash(host, id))
}

func (m *Manager) ExistsByUUID(ctx context.Context, id string) (bool, error) {
	if m.cacheEnabled {
		if ok, _ := m.cache.RecordExists(ctx, cache.PrefixEntity, id); ok {
			return true, nil
		}
	}
	ok, err := m.store.ExistsByUUID(ctx, id)
	if err != nil {
		return false, vigilerr.Database(err)
	}
	return ok, nil
}

func (m *Manager) ExistsByHostID(ctx context.Context, host string, id *string) (bool, error) {
	hash := Hash(host, id)
	if m.cacheEnabled {
		if rec, err := m.cache.ResolvePointer(ctx, cache.PrefixEntity, hash); err == nil && rec != nil {
			return true, nil
		}
	}
	ok, err := m.store.ExistsByHash(ctx, hash)
	if err != nil {
		return false, vigilerr.Database(err)
	}
	return ok, nil
}

// DeleteByUUID removes the entity and cascades to its blacklist, evidence,
// and attachment rows, then invalidates every cache entry that still
// references this entity.
func (m *Manager) DeleteByUUID(ctx context.Context, id string, operator *string) error {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("entity not found")
		}
		return vigilerr.Database(err)
	}

	if err := m.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("entity not found")
		}
		return vigilerr.Database(err)
	}

	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixEntity, id)
		_ = m.cache.Delete(ctx, cache.PrefixEntity, rec.Hash)
		_ = m.cache.DeleteByField(ctx, cache.PrefixBlacklist, "entity", id)
		_ = m.cache.DeleteByField(ctx, cache.PrefixEvidence, "entity", id)
		_ = m.cache.DeleteByField(ctx, cache.PrefixAuditLog, "entity", id)
	}

	return m.audit.Append(ctx, auditlog.TypeEntityDeleted, "entity deleted: "+rec.Host, operator, &id)
}

func (m *Manager) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	recs, err := m.store.List(ctx, limit, offset)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

func (m *Manager) Count(ctx context.Context) (int, error) {
	n, err := m.store.Count(ctx)
	if err != nil {
		return 0, vigilerr.Database(err)
	}
	return n, nil
}
