package attachment

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wisbric/vigil/internal/cache"
	"github.com/wisbric/vigil/internal/vigilerr"
	"github.com/wisbric/vigil/pkg/auditlog"
)

// Manager is the file attachment manager: persists the binary to disk under
// storagePath keyed by the attachment's own UUID, then the metadata row.
type Manager struct {
	store         *Store
	cache         *cache.Cache
	audit         *auditlog.Manager
	logger        *slog.Logger
	storagePath   string
	maxUploadSize int64
	cacheEnabled  bool
	cacheLimit    int
	cacheTTL      time.Duration
}

func NewManager(store *Store, c *cache.Cache, audit *auditlog.Manager, logger *slog.Logger, storagePath string, maxUploadSize int64, cacheEnabled bool, cacheLimit int, cacheTTL time.Duration) *Manager {
	return &Manager{
		store:         store,
		cache:         c,
		audit:         audit,
		logger:        logger,
		storagePath:   storagePath,
		maxUploadSize: maxUploadSize,
		cacheEnabled:  cacheEnabled,
		cacheLimit:    cacheLimit,
		cacheTTL:      cacheTTL,
	}
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.storagePath, id)
}

func toRecordMap(rec *Record) cache.Record {
	return cache.Record{
		"uuid":      rec.UUID,
		"evidence":  rec.Evidence,
		"file_mime": rec.FileMime,
		"file_name": rec.FileName,
		"file_size": strconv.FormatInt(rec.FileSize, 10),
		"created":   rec.Created.Format(time.RFC3339),
	}
}

func recordFromCache(fields cache.Record) *Record {
	created, _ := time.Parse(time.RFC3339, fields["created"])
	return &Record{
		UUID:     fields["uuid"],
		Evidence: fields["evidence"],
		FileMime: fields["file_mime"],
		FileName: fields["file_name"],
		FileSize: mustParseInt64(fields["file_size"]),
		Created:  created,
	}
}

func (m *Manager) cacheWrite(ctx context.Context, rec *Record) {
	if !m.cacheEnabled {
		return
	}
	reached, err := m.cache.LimitReached(ctx, cache.PrefixFileAttachment, m.cacheLimit)
	if err != nil || reached {
		return
	}
	_ = m.cache.SetRecord(ctx, cache.PrefixFileAttachment, rec.UUID, toRecordMap(rec), m.cacheTTL)
}

// Create writes data to disk under a freshly generated UUID, then inserts
// the metadata row. If the insert fails, the file is unlinked so no phantom
// file survives a failed upload.
func (m *Manager) Create(ctx context.Context, evidence, mime, name string, data []byte, operator string) (*Record, error) {
	if err := ValidateFileName(name); err != nil {
		return nil, err
	}
	if err := ValidateFileSize(int64(len(data)), m.maxUploadSize); err != nil {
		return nil, err
	}

	rec := &Record{
		UUID:     uuid.NewString(),
		Evidence: evidence,
		FileMime: mime,
		FileName: name,
		FileSize: int64(len(data)),
		Created:  time.Now().UTC(),
	}

	if err := os.WriteFile(m.path(rec.UUID), data, 0o644); err != nil {
		return nil, vigilerr.Wrap(vigilerr.Internal, "writing attachment to storage", err)
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		if rmErr := os.Remove(m.path(rec.UUID)); rmErr != nil {
			m.logger.Warn("failed to unlink orphaned attachment after insert failure", "uuid", rec.UUID, "error", rmErr)
		}
		return nil, vigilerr.Database(err)
	}

	if err := m.audit.Append(ctx, auditlog.TypeAttachmentUploaded, "attachment uploaded: "+rec.FileName, &operator, &evidence); err != nil {
		return nil, err
	}

	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	if m.cacheEnabled {
		if fields, _ := m.cache.GetRecord(ctx, cache.PrefixFileAttachment, id); fields != nil {
			return recordFromCache(fields), nil
		}
	}
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("attachment not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

// ReadFile returns the attachment's binary payload from disk.
func (m *Manager) ReadFile(id string) ([]byte, error) {
	data, err := os.ReadFile(m.path(id))
	if err != nil {
		return nil, vigilerr.NotFoundf("attachment file not found")
	}
	return data, nil
}

func (m *Manager) ListByEvidence(ctx context.Context, evidence string) ([]*Record, error) {
	recs, err := m.store.ListByEvidence(ctx, evidence)
	if err != nil {
		return nil, vigilerr.Database(err)
	}
	return recs, nil
}

// Delete removes the metadata row, then best-effort unlinks the on-disk
// file: a missing file is logged as a warning, never as an error.
func (m *Manager) Delete(ctx context.Context, id, operator string) error {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("attachment not found")
		}
		return vigilerr.Database(err)
	}

	if err := m.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("attachment not found")
		}
		return vigilerr.Database(err)
	}

	if err := os.Remove(m.path(id)); err != nil {
		m.logger.Warn("failed to unlink attachment file on delete", "uuid", id, "error", err)
	}

	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixFileAttachment, id)
	}

	return m.audit.Append(ctx, auditlog.TypeAttachmentDeleted, "attachment deleted: "+rec.FileName, &operator, &rec.Evidence)
}

func (m *Manager) Count(ctx context.Context) (int, error) {
	n, err := m.store.Count(ctx)
	if err != nil {
		return 0, vigilerr.Database(err)
	}
	return n, nil
}

func mustParseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
