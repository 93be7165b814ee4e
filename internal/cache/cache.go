// Package cache implements the two-tier lookup cache fronting every manager:
// flat field-map records under "<prefix>:<id>" keys, secondary pointer
// indices for hash/api-key style lookups, and incremental SCAN-based bulk
// operations so long scans never monopolize a single Redis round trip.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wisbric/vigil/internal/telemetry"
	"github.com/wisbric/vigil/internal/vigilerr"
)

// scanBatchSize is the COUNT hint used for every incremental SCAN.
const scanBatchSize = 100

// Record is the flat string-field representation of a cached row.
type Record map[string]string

// Cache fronts the primary store with a Redis-backed cache. Record and
// pointer semantics are described in the Cache Layer design: a prefix groups
// one kind of record; a pointer is a plain string key that redirects a
// secondary lookup value to the record's primary id.
type Cache struct {
	rdb           *redis.Client
	logger        *slog.Logger
	throwOnErrors bool
}

func New(rdb *redis.Client, logger *slog.Logger, throwOnErrors bool) *Cache {
	return &Cache{rdb: rdb, logger: logger, throwOnErrors: throwOnErrors}
}

func key(prefix, id string) string {
	return prefix + ":" + id
}

// fail turns a transport error into either a swallowed nil (logged) or a
// CacheOperationFailed error, per the configured error policy.
func (c *Cache) fail(prefix, op string, err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	telemetry.CacheErrorsTotal.WithLabelValues(prefix).Inc()
	c.logger.Warn("cache transport error", "op", op, "prefix", prefix, "error", err)
	if c.throwOnErrors {
		return vigilerr.Cache(err)
	}
	return nil
}

// SetRecord writes fields under prefix:id, setting a TTL when ttl > 0.
func (c *Cache) SetRecord(ctx context.Context, prefix, id string, record Record, ttl time.Duration) error {
	if len(record) == 0 {
		return nil
	}
	k := key(prefix, id)
	fields := make(map[string]any, len(record))
	for f, v := range record {
		fields[f] = v
	}
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, k, fields)
	if ttl > 0 {
		pipe.Expire(ctx, k, ttl)
	}
	_, err := pipe.Exec(ctx)
	return c.fail(prefix, "SetRecord", err)
}

// GetRecord returns the record at prefix:id, or nil if absent.
func (c *Cache) GetRecord(ctx context.Context, prefix, id string) (Record, error) {
	res, err := c.rdb.HGetAll(ctx, key(prefix, id)).Result()
	if err != nil {
		return nil, c.fail(prefix, "GetRecord", err)
	}
	if len(res) == 0 {
		telemetry.CacheMissesTotal.WithLabelValues(prefix).Inc()
		return nil, nil
	}
	telemetry.CacheHitsTotal.WithLabelValues(prefix).Inc()
	return Record(res), nil
}

// RecordExists reports whether prefix:id has any fields cached.
func (c *Cache) RecordExists(ctx context.Context, prefix, id string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key(prefix, id)).Result()
	if err != nil {
		return false, c.fail(prefix, "RecordExists", err)
	}
	return n > 0, nil
}

// Delete removes prefix:id.
func (c *Cache) Delete(ctx context.Context, prefix, id string) error {
	err := c.rdb.Del(ctx, key(prefix, id)).Err()
	return c.fail(prefix, "Delete", err)
}

// SetPointer stores a secondary-index pointer. It must only be called after
// the main record has been cached successfully.
func (c *Cache) SetPointer(ctx context.Context, prefix, secondary, id string, ttl time.Duration) error {
	k := key(prefix, secondary)
	if ttl > 0 {
		err := c.rdb.Set(ctx, k, id, ttl).Err()
		return c.fail(prefix, "SetPointer", err)
	}
	err := c.rdb.Set(ctx, k, id, 0).Err()
	return c.fail(prefix, "SetPointer", err)
}

// GetPointer resolves a secondary-index pointer. If the pointer exists but
// the record it points to is absent, the caller must delete the stale
// pointer before falling through to the store — see ResolvePointer.
func (c *Cache) GetPointer(ctx context.Context, prefix, secondary string) (string, error) {
	id, err := c.rdb.Get(ctx, key(prefix, secondary)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", c.fail(prefix, "GetPointer", err)
	}
	return id, nil
}

// ResolvePointer follows prefix:secondary -> id -> prefix:id, deleting the
// pointer if it is stale (points at a record no longer cached).
func (c *Cache) ResolvePointer(ctx context.Context, prefix, secondary string) (Record, error) {
	id, err := c.GetPointer(ctx, prefix, secondary)
	if err != nil || id == "" {
		return nil, err
	}
	rec, err := c.GetRecord(ctx, prefix, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if derr := c.rdb.Del(ctx, key(prefix, secondary)).Err(); derr != nil {
			return nil, c.fail(prefix, "ResolvePointer.cleanup", derr)
		}
		return nil, nil
	}
	return rec, nil
}

// scanAll incrementally SCANs every key under prefix:*, invoking fn per
// batch. It never loads the whole keyspace at once.
func (c *Cache) scanAll(ctx context.Context, prefix string, fn func(batch []string) error) error {
	var cursor uint64
	match := prefix + ":*"
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// ClearByPrefix deletes every key under prefix via incremental scan+delete.
func (c *Cache) ClearByPrefix(ctx context.Context, prefix string) error {
	err := c.scanAll(ctx, prefix, func(batch []string) error {
		return c.rdb.Del(ctx, batch...).Err()
	})
	return c.fail(prefix, "ClearByPrefix", err)
}

// CountByPrefix counts keys under prefix via incremental scan.
func (c *Cache) CountByPrefix(ctx context.Context, prefix string) (int, error) {
	count := 0
	err := c.scanAll(ctx, prefix, func(batch []string) error {
		count += len(batch)
		return nil
	})
	if err != nil {
		return 0, c.fail(prefix, "CountByPrefix", err)
	}
	return count, nil
}

// LimitReached reports whether the prefix's current count is >= limit.
// limit <= 0 disables the check.
func (c *Cache) LimitReached(ctx context.Context, prefix string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	n, err := c.CountByPrefix(ctx, prefix)
	if err != nil {
		return false, err
	}
	return n >= limit, nil
}

// GetByField scans prefix:* and returns every record whose field equals value.
func (c *Cache) GetByField(ctx context.Context, prefix, field, value string) ([]Record, error) {
	var out []Record
	err := c.scanAll(ctx, prefix, func(batch []string) error {
		for _, k := range batch {
			fields, err := c.rdb.HGetAll(ctx, k).Result()
			if err != nil {
				return err
			}
			if v, ok := fields[field]; ok && v == value {
				out = append(out, Record(fields))
			}
		}
		return nil
	})
	if err != nil {
		return nil, c.fail(prefix, "GetByField", err)
	}
	return out, nil
}

// DeleteByField scans prefix:* and deletes every record whose field equals
// value.
func (c *Cache) DeleteByField(ctx context.Context, prefix, field, value string) error {
	err := c.scanAll(ctx, prefix, func(batch []string) error {
		for _, k := range batch {
			fields, err := c.rdb.HGetAll(ctx, k).Result()
			if err != nil {
				return err
			}
			if v, ok := fields[field]; ok && v == value {
				if err := c.rdb.Del(ctx, k).Err(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return c.fail(prefix, "DeleteByField", err)
}

// SetRecords caches up to limit-availableSlots new records, in input order,
// honoring the per-prefix capacity cap. It returns how many were actually
// cached.
func (c *Cache) SetRecords(ctx context.Context, prefix string, limit int, ttl time.Duration, ids []string, records []Record) (int, error) {
	if len(ids) != len(records) {
		return 0, errors.New("cache: ids and records length mismatch")
	}

	max := len(ids)
	if limit > 0 {
		count, err := c.CountByPrefix(ctx, prefix)
		if err != nil {
			return 0, err
		}
		available := limit - count
		if available < 0 {
			available = 0
		}
		if available < max {
			max = available
		}
	}

	cached := 0
	for i := 0; i < max; i++ {
		if err := c.SetRecord(ctx, prefix, ids[i], records[i], ttl); err != nil {
			return cached, err
		}
		cached++
	}
	return cached, nil
}
