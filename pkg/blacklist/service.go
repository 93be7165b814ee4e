package blacklist

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wisbric/vigil/internal/cache"
	"github.com/wisbric/vigil/internal/vigilerr"
	"github.com/wisbric/vigil/pkg/auditlog"
)

// Manager is the blacklist manager: creation with the expiry/min-duration
// invariant, idempotent lift, cleanup, and the cache discipline for each.
type Manager struct {
	store            *Store
	cache            *cache.Cache
	audit            *auditlog.Manager
	logger           *slog.Logger
	minBlacklistTime time.Duration
	cacheEnabled     bool
	cacheLimit       int
	cacheTTL         time.Duration
}

func NewManager(store *Store, c *cache.Cache, audit *auditlog.Manager, logger *slog.Logger, minBlacklistTime time.Duration, cacheEnabled bool, cacheLimit int, cacheTTL time.Duration) *Manager {
	return &Manager{
		store:            store,
		cache:            c,
		audit:            audit,
		logger:           logger,
		minBlacklistTime: minBlacklistTime,
		cacheEnabled:     cacheEnabled,
		cacheLimit:       cacheLimit,
		cacheTTL:         cacheTTL,
	}
}

func toRecordMap(rec *Record) cache.Record {
	m := cache.Record{
		"uuid":     rec.UUID,
		"entity":   rec.Entity,
		"operator": rec.Operator,
		"type":     string(rec.Type),
		"lifted":   boolString(rec.Lifted),
		"created":  rec.Created.Format(time.RFC3339),
	}
	if rec.Expires != nil {
		m["expires"] = strconv.FormatInt(rec.Expires.Unix(), 10)
	}
	if rec.LiftedBy != nil {
		m["lifted_by"] = *rec.LiftedBy
	}
	if rec.Evidence != nil {
		m["evidence"] = *rec.Evidence
	}
	return m
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func recordFromCache(fields cache.Record) *Record {
	created, _ := time.Parse(time.RFC3339, fields["created"])
	rec := &Record{
		UUID:     fields["uuid"],
		Entity:   fields["entity"],
		Operator: fields["operator"],
		Type:     Type(fields["type"]),
		Lifted:   fields["lifted"] == "1",
		Created:  created,
	}
	if v, ok := fields["expires"]; ok {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.Unix(secs, 0).UTC()
			rec.Expires = &t
		}
	}
	if v, ok := fields["lifted_by"]; ok {
		rec.LiftedBy = &v
	}
	if v, ok := fields["evidence"]; ok {
		rec.Evidence = &v
	}
	return rec
}

func (m *Manager) cacheWrite(ctx context.Context, rec *Record) {
	if !m.cacheEnabled {
		return
	}
	reached, err := m.cache.LimitReached(ctx, cache.PrefixBlacklist, m.cacheLimit)
	if err != nil || reached {
		return
	}
	_ = m.cache.SetRecord(ctx, cache.PrefixBlacklist, rec.UUID, toRecordMap(rec), m.cacheTTL)
}

// Blacklist creates a new verdict. expires, when set, must be in the
// future and satisfy the configured minimum blacklist duration.
func (m *Manager) Blacklist(ctx context.Context, entity, operator string, typ Type, expires *time.Time, evidence *string) (*Record, error) {
	if err := ValidateType(typ); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := ValidateExpires(expires, now, m.minBlacklistTime); err != nil {
		return nil, err
	}

	rec := &Record{
		UUID:     uuid.NewString(),
		Entity:   entity,
		Operator: operator,
		Type:     typ,
		Expires:  expires,
		Evidence: evidence,
		Created:  now,
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		return nil, vigilerr.Database(err)
	}

	if err := m.audit.Append(ctx, auditlog.TypeBlacklistCreated, "blacklist verdict created: "+string(typ), &operator, &entity); err != nil {
		return nil, err
	}

	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) GetByUUID(ctx context.Context, id string) (*Record, error) {
	if m.cacheEnabled {
		if fields, _ := m.cache.GetRecord(ctx, cache.PrefixBlacklist, id); fields != nil {
			return recordFromCache(fields), nil
		}
	}
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("blacklist verdict not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

// IsActive reports whether entity currently has any active (not lifted,
// not expired) verdict.
func (m *Manager) IsActive(ctx context.Context, entity string) (bool, error) {
	recs, err := m.store.ListByEntity(ctx, entity, false, 1000, 0)
	if err != nil {
		return false, vigilerr.Database(err)
	}
	now := time.Now().UTC()
	for _, rec := range recs {
		if IsActive(rec.Lifted, rec.Expires, now) {
			return true, nil
		}
	}
	return false, nil
}

// Lift flags the verdict as no longer active. Idempotent: lifting an
// already-lifted verdict succeeds without changing lifted_by again.
func (m *Manager) Lift(ctx context.Context, id string, liftedBy *string) (*Record, error) {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("blacklist verdict not found")
		}
		return nil, vigilerr.Database(err)
	}

	if !rec.Lifted {
		if err := m.store.Lift(ctx, id, liftedBy); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, vigilerr.NotFoundf("blacklist verdict not found")
			}
			return nil, vigilerr.Database(err)
		}
		rec.Lifted = true
		rec.LiftedBy = liftedBy

		if err := m.audit.Append(ctx, auditlog.TypeBlacklistLifted, "blacklist verdict lifted", liftedBy, &rec.Entity); err != nil {
			return nil, err
		}
	}

	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixBlacklist, id)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) AttachEvidence(ctx context.Context, id, evidence string) (*Record, error) {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("blacklist verdict not found")
		}
		return nil, vigilerr.Database(err)
	}
	if err := m.store.AttachEvidence(ctx, id, evidence); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("blacklist verdict not found")
		}
		return nil, vigilerr.Database(err)
	}
	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixBlacklist, id)
	}
	rec.Evidence = &evidence
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("blacklist verdict not found")
		}
		return vigilerr.Database(err)
	}
	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixBlacklist, id)
	}
	return nil
}

func (m *Manager) List(ctx context.Context, includeLifted bool, limit, offset int) ([]*Record, error) {
	recs, err := m.store.List(ctx, includeLifted, limit, offset)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

func (m *Manager) ListByEntity(ctx context.Context, entity string, includeLifted bool, limit, offset int) ([]*Record, error) {
	recs, err := m.store.ListByEntity(ctx, entity, includeLifted, limit, offset)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

func (m *Manager) ListByOperator(ctx context.Context, operator string, includeLifted bool, limit, offset int) ([]*Record, error) {
	recs, err := m.store.ListByOperator(ctx, operator, includeLifted, limit, offset)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

// CleanOlderThan removes verdicts past the retention threshold and
// invalidates the whole blacklist cache prefix.
func (m *Manager) CleanOlderThan(ctx context.Context, days int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -days)
	n, err := m.store.CleanOlderThan(ctx, threshold)
	if err != nil {
		return 0, vigilerr.Database(err)
	}

	if m.cacheEnabled && n > 0 {
		_ = m.cache.ClearByPrefix(ctx, cache.PrefixBlacklist)
	}

	if err := m.audit.Append(ctx, auditlog.TypeBlacklistCleaned, "blacklist cleanup removed expired verdicts", nil, nil); err != nil {
		return n, err
	}
	return n, nil
}

func (m *Manager) Count(ctx context.Context) (int, error) {
	n, err := m.store.Count(ctx)
	if err != nil {
		return 0, vigilerr.Database(err)
	}
	return n, nil
}
