package operator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/cache"
	"github.com/wisbric/vigil/internal/vigilerr"
	"github.com/wisbric/vigil/pkg/auditlog"

	"errors"

	"github.com/jackc/pgx/v5"
)

// Manager is the operator manager: CRUD, capability flags, API-key
// rotation, and master-operator bootstrap, fronted by the two-tier cache.
type Manager struct {
	store        *Store
	cache        *cache.Cache
	audit        *auditlog.Manager
	logger       *slog.Logger
	masterAPIKey string
	cacheEnabled bool
	cacheLimit   int
	cacheTTL     time.Duration
}

func NewManager(store *Store, c *cache.Cache, audit *auditlog.Manager, logger *slog.Logger, masterAPIKey string, cacheEnabled bool, cacheLimit int, cacheTTL time.Duration) *Manager {
	return &Manager{
		store:        store,
		cache:        c,
		audit:        audit,
		logger:       logger,
		masterAPIKey: masterAPIKey,
		cacheEnabled: cacheEnabled,
		cacheLimit:   cacheLimit,
		cacheTTL:     cacheTTL,
	}
}

func toRecordMap(rec *Record) cache.Record {
	return cache.Record{
		"uuid":             rec.UUID,
		"api_key":          rec.APIKey,
		"name":             rec.Name,
		"disabled":         boolString(rec.Disabled),
		"manage_operators": boolString(rec.ManageOperators),
		"manage_blacklist": boolString(rec.ManageBlacklist),
		"is_client":        boolString(rec.IsClient),
		"created":          rec.Created.Format(time.RFC3339),
		"updated":          rec.Updated.Format(time.RFC3339),
	}
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// cacheWrite caches the main record, then the api_key pointer last (pointer
// is only set once the main record write has already succeeded).
func (m *Manager) cacheWrite(ctx context.Context, rec *Record) {
	if !m.cacheEnabled {
		return
	}
	reached, err := m.cache.LimitReached(ctx, cache.PrefixOperator, m.cacheLimit)
	if err != nil || reached {
		return
	}
	if err := m.cache.SetRecord(ctx, cache.PrefixOperator, rec.UUID, toRecordMap(rec), m.cacheTTL); err != nil {
		return
	}
	_ = m.cache.SetPointer(ctx, cache.PrefixOperatorAPIKey, rec.APIKey, rec.UUID, m.cacheTTL)
}

// invalidate removes the main record and the api_key pointer on mutation.
func (m *Manager) invalidate(ctx context.Context, uuidStr, apiKey string) {
	if !m.cacheEnabled {
		return
	}
	_ = m.cache.Delete(ctx, cache.PrefixOperator, uuidStr)
	if apiKey != "" {
		_ = m.cache.Delete(ctx, cache.PrefixOperatorAPIKey, apiKey)
	}
}

// Create inserts a new operator with no capabilities and a fresh API key.
func (m *Manager) Create(ctx context.Context, name string) (*Record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	apiKey, err := GenerateAPIKey()
	if err != nil {
		return nil, vigilerr.Wrap(vigilerr.Internal, "generating api key", err)
	}

	now := time.Now().UTC()
	rec := &Record{
		UUID:    uuid.NewString(),
		APIKey:  apiKey,
		Name:    name,
		Created: now,
		Updated: now,
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		return nil, vigilerr.Database(err)
	}

	if err := m.audit.Append(ctx, auditlog.TypeOperatorCreated, "operator created: "+rec.Name, &rec.UUID, nil); err != nil {
		return nil, err
	}

	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) GetByUUID(ctx context.Context, id string) (*Record, error) {
	if m.cacheEnabled {
		if fields, _ := m.cache.GetRecord(ctx, cache.PrefixOperator, id); fields != nil {
			return recordFromCache(fields), nil
		}
	}

	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("operator not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) GetByAPIKey(ctx context.Context, apiKey string) (*Record, error) {
	if m.cacheEnabled {
		rec, err := m.cache.ResolvePointer(ctx, cache.PrefixOperatorAPIKey, apiKey)
		if err == nil && rec != nil {
			return recordFromCache(rec), nil
		}
	}

	rec, err := m.store.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("operator not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) Exists(ctx context.Context, id string) (bool, error) {
	if m.cacheEnabled {
		if ok, _ := m.cache.RecordExists(ctx, cache.PrefixOperator, id); ok {
			return true, nil
		}
	}
	ok, err := m.store.Exists(ctx, id)
	if err != nil {
		return false, vigilerr.Database(err)
	}
	return ok, nil
}

func (m *Manager) setDisabled(ctx context.Context, id string, disabled bool) (*Record, error) {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("operator not found")
		}
		return nil, vigilerr.Database(err)
	}
	if rec.APIKey == m.masterAPIKey {
		return nil, vigilerr.Forbiddenf("master operator cannot be disabled")
	}

	if err := m.store.SetDisabled(ctx, id, disabled); err != nil {
		return nil, vigilerr.Database(err)
	}
	m.invalidate(ctx, id, rec.APIKey)

	typ := auditlog.TypeOperatorEnabled
	verb := "enabled"
	if disabled {
		typ = auditlog.TypeOperatorDisabled
		verb = "disabled"
	}
	if err := m.audit.Append(ctx, typ, "operator "+verb+": "+rec.Name, &id, nil); err != nil {
		return nil, err
	}

	rec.Disabled = disabled
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) Enable(ctx context.Context, id string) (*Record, error)  { return m.setDisabled(ctx, id, false) }
func (m *Manager) Disable(ctx context.Context, id string) (*Record, error) { return m.setDisabled(ctx, id, true) }

// Delete removes the operator. The master operator may never be deleted.
func (m *Manager) Delete(ctx context.Context, id string) error {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("operator not found")
		}
		return vigilerr.Database(err)
	}
	if rec.APIKey == m.masterAPIKey {
		return vigilerr.Forbiddenf("master operator cannot be deleted")
	}

	if err := m.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vigilerr.NotFoundf("operator not found")
		}
		return vigilerr.Database(err)
	}
	m.invalidate(ctx, id, rec.APIKey)

	return m.audit.Append(ctx, auditlog.TypeOperatorDeleted, "operator deleted: "+rec.Name, nil, nil)
}

// RefreshApiKey rotates the operator's API key, deleting the stale pointer.
func (m *Manager) RefreshApiKey(ctx context.Context, id string) (string, error) {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", vigilerr.NotFoundf("operator not found")
		}
		return "", vigilerr.Database(err)
	}

	newKey, err := GenerateAPIKey()
	if err != nil {
		return "", vigilerr.Wrap(vigilerr.Internal, "generating api key", err)
	}

	oldKey := rec.APIKey
	if err := m.store.SetAPIKey(ctx, id, newKey); err != nil {
		return "", vigilerr.Database(err)
	}

	if m.cacheEnabled {
		_ = m.cache.Delete(ctx, cache.PrefixOperatorAPIKey, oldKey)
	}
	m.invalidate(ctx, id, "")

	if err := m.audit.Append(ctx, auditlog.TypeOperatorAPIKeyRefreshed, "operator api key refreshed: "+rec.Name, &id, nil); err != nil {
		return "", err
	}

	rec.APIKey = newKey
	m.cacheWrite(ctx, rec)
	return newKey, nil
}

const (
	columnManageOperators = "manage_operators"
	columnManageBlacklist = "manage_blacklist"
	columnIsClient        = "is_client"
)

func (m *Manager) setCapability(ctx context.Context, id, column string, value bool) (*Record, error) {
	rec, err := m.store.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("operator not found")
		}
		return nil, vigilerr.Database(err)
	}

	if err := m.store.SetCapability(ctx, id, column, value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vigilerr.NotFoundf("operator not found")
		}
		return nil, vigilerr.Database(err)
	}
	m.invalidate(ctx, id, rec.APIKey)

	if err := m.audit.Append(ctx, auditlog.TypeOperatorCapabilityChanged, "operator capability changed: "+column, &id, nil); err != nil {
		return nil, err
	}

	switch column {
	case columnManageOperators:
		rec.ManageOperators = value
	case columnManageBlacklist:
		rec.ManageBlacklist = value
	case columnIsClient:
		rec.IsClient = value
	}
	m.cacheWrite(ctx, rec)
	return rec, nil
}

func (m *Manager) SetManageOperators(ctx context.Context, id string, value bool) (*Record, error) {
	return m.setCapability(ctx, id, columnManageOperators, value)
}

func (m *Manager) SetManageBlacklist(ctx context.Context, id string, value bool) (*Record, error) {
	return m.setCapability(ctx, id, columnManageBlacklist, value)
}

func (m *Manager) SetClient(ctx context.Context, id string, value bool) (*Record, error) {
	return m.setCapability(ctx, id, columnIsClient, value)
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

// GetMaster resolves the bootstrap operator whose api_key equals the
// configured master key, creating it as "root" with every capability on
// first call.
func (m *Manager) GetMaster(ctx context.Context) (*Record, error) {
	rec, err := m.store.GetByAPIKey(ctx, m.masterAPIKey)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, vigilerr.Database(err)
	}

	now := time.Now().UTC()
	root := &Record{
		UUID:            uuid.NewString(),
		APIKey:          m.masterAPIKey,
		Name:            "root",
		ManageOperators: true,
		ManageBlacklist: true,
		IsClient:        true,
		Created:         now,
		Updated:         now,
	}
	if err := m.store.Insert(ctx, root); err != nil {
		return nil, vigilerr.Database(err)
	}
	m.logger.Info("bootstrapped master operator", "uuid", root.UUID)
	m.cacheWrite(ctx, root)
	return root, nil
}

// ResolveAPIKey implements auth.Resolver for the authorization gate.
func (m *Manager) ResolveAPIKey(ctx context.Context, apiKey string) (*auth.Identity, error) {
	if apiKey == "" {
		return nil, nil
	}

	var rec *Record
	var err error
	if apiKey == m.masterAPIKey {
		rec, err = m.GetMaster(ctx)
	} else {
		rec, err = m.GetByAPIKey(ctx, apiKey)
	}
	if err != nil {
		if vigilerr.KindOf(err) == vigilerr.NotFound {
			return nil, nil
		}
		return nil, err
	}

	return &auth.Identity{
		UUID:            rec.UUID,
		Name:            rec.Name,
		Disabled:        rec.Disabled,
		ManageOperators: rec.ManageOperators,
		ManageBlacklist: rec.ManageBlacklist,
		IsClient:        rec.IsClient,
		IsMaster:        rec.APIKey == m.masterAPIKey,
	}, nil
}

func recordFromCache(fields cache.Record) *Record {
	created, _ := time.Parse(time.RFC3339, fields["created"])
	updated, _ := time.Parse(time.RFC3339, fields["updated"])
	return &Record{
		UUID:            fields["uuid"],
		APIKey:          fields["api_key"],
		Name:            fields["name"],
		Disabled:        fields["disabled"] == "1",
		ManageOperators: fields["manage_operators"] == "1",
		ManageBlacklist: fields["manage_blacklist"] == "1",
		IsClient:        fields["is_client"] == "1",
		Created:         created,
		Updated:         updated,
	}
}
