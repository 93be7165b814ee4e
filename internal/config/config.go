package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all process-wide configuration, loaded once at startup from
// environment variables. Every key named in the data model's Configuration
// entity is overridable by an uppercase FEDERATION_ environment variable.
type Config struct {
	Mode string `env:"FEDERATION_MODE" envDefault:"api"`
	Host string `env:"FEDERATION_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"FEDERATION_PORT" envDefault:"8080"`

	// server.*
	BaseURL            string `env:"FEDERATION_BASE_URL" envDefault:"http://localhost:8080"`
	APIKey             string `env:"FEDERATION_API_KEY"`
	MaxUploadSize      int64  `env:"FEDERATION_MAX_UPLOAD_SIZE" envDefault:"10485760"`
	StoragePath        string `env:"FEDERATION_STORAGE_PATH" envDefault:"./data/attachments"`
	MinBlacklistTime   int64  `env:"FEDERATION_MIN_BLACKLIST_TIME" envDefault:"3600"`
	PublicAuditLogs    bool   `env:"FEDERATION_PUBLIC_AUDIT_LOGS" envDefault:"false"`
	PublicEntries      bool   `env:"FEDERATION_PUBLIC_ENTRIES" envDefault:"true"`
	PublicEvidence     bool   `env:"FEDERATION_PUBLIC_EVIDENCE" envDefault:"false"`
	PublicBlacklist    bool   `env:"FEDERATION_PUBLIC_BLACKLIST" envDefault:"true"`
	PublicEntities     bool   `env:"FEDERATION_PUBLIC_ENTITIES" envDefault:"true"`
	PublicScanContent  bool   `env:"FEDERATION_PUBLIC_SCAN_CONTENT" envDefault:"false"`
	ListEntitiesMax    int    `env:"FEDERATION_LIST_ENTITIES_MAX_ITEMS" envDefault:"100"`
	ListEvidenceMax    int    `env:"FEDERATION_LIST_EVIDENCE_MAX_ITEMS" envDefault:"100"`
	ListBlacklistMax   int    `env:"FEDERATION_LIST_BLACKLIST_MAX_ITEMS" envDefault:"100"`
	ListAuditLogMax    int    `env:"FEDERATION_LIST_AUDIT_LOG_MAX_ITEMS" envDefault:"100"`
	ListOperatorsMax   int    `env:"FEDERATION_LIST_OPERATORS_MAX_ITEMS" envDefault:"100"`

	// database.*
	DatabaseHost      string `env:"FEDERATION_DATABASE_HOST" envDefault:"localhost"`
	DatabasePort      int    `env:"FEDERATION_DATABASE_PORT" envDefault:"5432"`
	DatabaseUsername  string `env:"FEDERATION_DATABASE_USERNAME" envDefault:"federation"`
	DatabasePassword  string `env:"FEDERATION_DATABASE_PASSWORD" envDefault:"federation"`
	DatabaseName      string `env:"FEDERATION_DATABASE_NAME" envDefault:"federation"`
	DatabaseCharset   string `env:"FEDERATION_DATABASE_CHARSET" envDefault:"utf8"`
	DatabaseCollation string `env:"FEDERATION_DATABASE_COLLATION" envDefault:"utf8_general_ci"`
	DatabaseSSLMode   string `env:"FEDERATION_DATABASE_SSLMODE" envDefault:"disable"`

	// redis.*
	RedisEnabled             bool   `env:"FEDERATION_REDIS_ENABLED" envDefault:"true"`
	RedisHost                string `env:"FEDERATION_REDIS_HOST" envDefault:"localhost"`
	RedisPort                int    `env:"FEDERATION_REDIS_PORT" envDefault:"6379"`
	RedisPassword            string `env:"FEDERATION_REDIS_PASSWORD"`
	RedisDatabase            int    `env:"FEDERATION_REDIS_DATABASE" envDefault:"0"`
	RedisThrowOnErrors       bool   `env:"FEDERATION_REDIS_THROW_ON_ERRORS" envDefault:"false"`
	RedisPreCacheEnabled     bool   `env:"FEDERATION_REDIS_PRE_CACHE_ENABLED" envDefault:"false"`
	RedisSystemCaching       bool   `env:"FEDERATION_REDIS_SYSTEM_CACHING_ENABLED" envDefault:"true"`

	// per-table cache settings
	OperatorCacheEnabled       bool  `env:"FEDERATION_OPERATOR_CACHE_ENABLED" envDefault:"true"`
	OperatorCacheLimit         int   `env:"FEDERATION_OPERATOR_CACHE_LIMIT" envDefault:"10000"`
	OperatorCacheTTL           int64 `env:"FEDERATION_OPERATOR_CACHE_TTL" envDefault:"3600"`
	EntityCacheEnabled         bool  `env:"FEDERATION_ENTITY_CACHE_ENABLED" envDefault:"true"`
	EntityCacheLimit           int   `env:"FEDERATION_ENTITY_CACHE_LIMIT" envDefault:"50000"`
	EntityCacheTTL             int64 `env:"FEDERATION_ENTITY_CACHE_TTL" envDefault:"3600"`
	FileAttachmentCacheEnabled bool  `env:"FEDERATION_FILE_ATTACHMENT_CACHE_ENABLED" envDefault:"true"`
	FileAttachmentCacheLimit   int   `env:"FEDERATION_FILE_ATTACHMENT_CACHE_LIMIT" envDefault:"10000"`
	FileAttachmentCacheTTL     int64 `env:"FEDERATION_FILE_ATTACHMENT_CACHE_TTL" envDefault:"3600"`
	EvidenceCacheEnabled       bool  `env:"FEDERATION_EVIDENCE_CACHE_ENABLED" envDefault:"true"`
	EvidenceCacheLimit         int   `env:"FEDERATION_EVIDENCE_CACHE_LIMIT" envDefault:"50000"`
	EvidenceCacheTTL           int64 `env:"FEDERATION_EVIDENCE_CACHE_TTL" envDefault:"3600"`
	BlacklistCacheEnabled      bool  `env:"FEDERATION_BLACKLIST_CACHE_ENABLED" envDefault:"true"`
	BlacklistCacheLimit        int   `env:"FEDERATION_BLACKLIST_CACHE_LIMIT" envDefault:"50000"`
	BlacklistCacheTTL          int64 `env:"FEDERATION_BLACKLIST_CACHE_TTL" envDefault:"3600"`
	AuditLogCacheEnabled       bool  `env:"FEDERATION_AUDIT_LOG_CACHE_ENABLED" envDefault:"false"`
	AuditLogCacheLimit         int   `env:"FEDERATION_AUDIT_LOG_CACHE_LIMIT" envDefault:"10000"`
	AuditLogCacheTTL           int64 `env:"FEDERATION_AUDIT_LOG_CACHE_TTL" envDefault:"600"`

	// maintenance.*
	MaintenanceEnabled           bool  `env:"FEDERATION_MAINTENANCE_ENABLED" envDefault:"true"`
	MaintenanceInterval          int64 `env:"FEDERATION_MAINTENANCE_INTERVAL_SECONDS" envDefault:"3600"`
	MaintenanceCleanAuditLogs    bool  `env:"FEDERATION_MAINTENANCE_CLEAN_AUDIT_LOGS" envDefault:"true"`
	MaintenanceCleanAuditDays    int   `env:"FEDERATION_MAINTENANCE_CLEAN_AUDIT_LOGS_DAYS" envDefault:"90"`
	MaintenanceCleanBlacklist    bool  `env:"FEDERATION_MAINTENANCE_CLEAN_BLACKLIST" envDefault:"true"`
	MaintenanceCleanBlacklistDays int  `env:"FEDERATION_MAINTENANCE_CLEAN_BLACKLIST_DAYS" envDefault:"365"`

	// logging
	LogLevel  string `env:"FEDERATION_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FEDERATION_LOG_FORMAT" envDefault:"json"`

	CORSAllowedOrigins []string `env:"FEDERATION_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	MigrationsDir string `env:"FEDERATION_MIGRATIONS_DIR" envDefault:"migrations"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config from env: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the address the HTTP server should listen on.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseURL builds the pgx connection string from the discrete database.*
// fields.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUsername, c.DatabasePassword, c.DatabaseHost, c.DatabasePort, c.DatabaseName, c.DatabaseSSLMode)
}

// RedisURL builds the go-redis connection string from the discrete redis.*
// fields.
func (c *Config) RedisURL() string {
	auth := ""
	if c.RedisPassword != "" {
		auth = ":" + c.RedisPassword + "@"
	}
	return fmt.Sprintf("redis://%s%s:%d/%d", auth, c.RedisHost, c.RedisPort, c.RedisDatabase)
}
