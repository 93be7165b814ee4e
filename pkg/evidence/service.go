package evidence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wisbric/vigil/internal/cache"
	"github.com/wisbric/vigil/internal/vigilerr"
	"github.com/wisbric/vigil/pkg/auditlog"
)

// Manager is the evidence manager: validated submission, confidentiality
// flag, and cascading delete to file attachments and blacklist pointers.
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
		"uuid":         rec.UUID,
		"entity":       rec.Entity,
		"operator":     rec.Operator,
		"confidential": boolString(rec.Confidential),
		"created":      rec.Created.Format(time.RFC3339),
	}
	if rec.TextContent != nil {
		m["text_content"] = *rec.TextContent
	}
	if rec.Note != nil {
		m["note"] = *rec.Note
	}
	if rec.Tag != nil {
		m["tag"] = *rec.Tag
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
		UUID:         fields["uuid"],
		Entity:       fields["entity"],
		Operator:     fields["operator"],
		Confidential: fields["confidential"] == "1",
		Created:      created,
	}
	if v, ok := fields["text_content"]; ok {
		rec.TextContent = &v
	}
	if v, ok := fields["note"]; ok {
		rec.Note = &v
	}
	if v, ok := fields["tag"]; ok {
		rec.Tag = &v
	}
	return rec
}

func (m *Manager) cacheWrite(ctx context.Context, rec *Record) {
	if !m.cacheEnabled {
		return
	}
	reached, err := m.cache.LimitReached(ctx, cache.PrefixEvidence, m.cacheLimit)
	if err != nil || reached {
		return
	}
	_ = m.cache.SetRecord(ctx, cache.PrefixEvidence, rec.UUID, toRecordMap(rec), m.cacheTTL)
}

// Add validates and inserts a new evidence row attached to entity by operator.
func (m *Manager) Add(ctx context.Context, entity, operator string, textContent, note, tag *string, confidential bool) (*Record, error) {
	if err := ValidateTextContent(textContent); err != nil {
		return nil, err
	}
	if err := ValidateNote(note); err != nil {
		return nil, err
	}
	if err := ValidateTag(tag); err != nil {
		return nil, err
	}

	rec := &Record{
		UUID:         uuid.NewString(),
		Entity:       entity,
		Operator:     operator,
		Confidential: confidential,
		TextContent:  textContent,
		Note:         note,
		Tag:          tag,
		Created:      time.Now().UTC(),
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		return nil, vigilerr.Database(err)
	}

	if err := m.audit.Append(ctx, auditlog.TypeEvidenceAdded, "evidence added", &operator, &entity); err != nil {
		return nil, err
	}

	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	if m.cacheEnabled {
		if fields, _ := m.cache.GetRecord(ctx, cache.PrefixEvidence, id); fields != nil {
			return recordFromCache(fields), nil
		}
	}
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("evidence not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) Exists(ctx context.Context, id string) (bool, error) {
	if m.cacheEnabled {
		if ok, _ := m.cache.RecordExists(ctx, cache.PrefixEvidence, id); ok {
			return true, nil
		}
	}
	ok, err := m.store.Exists(ctx, id)
	if err != nil {
		return false, vigilerr.Database(err)
	}
	return ok, nil
}

func (m *Manager) SetConfidential(ctx context.Context, id string, confidential bool) (*Record, error) {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("evidence not found")
		}
		return nil, vigilerr.Database(err)
	}
	if err := m.store.SetConfidential(ctx, id, confidential); err != nil {
		return nil, vigilerr.Database(err)
	}
	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixEvidence, id)
	}
	rec.Confidential = confidential
	m.cacheWrite(ctx, rec)
	return rec, nil
}

// Delete removes the evidence row. The cache cascade follows spec: the own
// key is removed, then every file_attachment/blacklist record whose
// "evidence" field equals this uuid is also invalidated (blacklist rows
// survive in the store with evidence set to null).
func (m *Manager) Delete(ctx context.Context, id, operator string) error {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("evidence not found")
		}
		return vigilerr.Database(err)
	}

	if err := m.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("evidence not found")
		}
		return vigilerr.Database(err)
	}

	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixEvidence, id)
		_ = m.cache.DeleteByField(ctx, cache.PrefixFileAttachment, "evidence", id)
		_ = m.cache.DeleteByField(ctx, cache.PrefixBlacklist, "evidence", id)
	}

	return m.audit.Append(ctx, auditlog.TypeEvidenceDeleted, "evidence deleted", &operator, &rec.Entity)
}

func (m *Manager) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	recs, err := m.store.List(ctx, limit, offset)
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

func (m *Manager) ListByOperator(ctx context.Context, operator string, limit, offset int) ([]*Record, error) {
	recs, err := m.store.ListByOperator(ctx, operator, limit, offset)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

func (m *Manager) ListByTag(ctx context.Context, tag string, limit, offset int) ([]*Record, error) {
	recs, err := m.store.ListByTag(ctx, tag, limit, offset)
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
