// Package app wires the configured infrastructure and domain managers
// together and runs the process in its configured mode.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wisbric/vigil/internal/cache"
	"github.com/wisbric/vigil/internal/config"
	"github.com/wisbric/vigil/internal/httpserver"
	"github.com/wisbric/vigil/internal/platform"
	"github.com/wisbric/vigil/internal/telemetry"
	"github.com/wisbric/vigil/pkg/attachment"
	"github.com/wisbric/vigil/pkg/auditlog"
	"github.com/wisbric/vigil/pkg/blacklist"
	"github.com/wisbric/vigil/pkg/entity"
	"github.com/wisbric/vigil/pkg/evidence"
	"github.com/wisbric/vigil/pkg/extractor"
	"github.com/wisbric/vigil/pkg/maintenance"
	"github.com/wisbric/vigil/pkg/operator"
	"github.com/wisbric/vigil/pkg/query"
)

// Run reads config, connects to infrastructure, and starts the configured
// mode ("api" or "worker").
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting vigil", "mode", cfg.Mode, "listen", cfg.ListenAddr())

	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := platform.RunMigrations(cfg.DatabaseURL(), cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations applied")

	redisClient, err := platform.NewRedisClient(ctx, cfg.RedisURL())
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("closing redis", "error", err)
		}
	}()

	metricsReg := prometheus.NewRegistry()
	for _, c := range telemetry.All() {
		metricsReg.MustRegister(c)
	}

	c := cache.New(redisClient, logger, cfg.RedisThrowOnErrors)

	deps, err := buildManagers(db, c, logger, cfg)
	if err != nil {
		return err
	}

	switch cfg.Mode {
	case "api":
		return runAPI(ctx, cfg, logger, db, redisClient, metricsReg, deps)
	case "worker":
		return runWorker(ctx, cfg, logger, deps)
	default:
		return fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

type managers struct {
	operator   *operator.Manager
	entity     *entity.Manager
	evidence   *evidence.Manager
	attachment *attachment.Manager
	blacklist  *blacklist.Manager
	auditlog   *auditlog.Manager
	composer   *query.Composer
	scanner    *extractor.Scanner
	sweeper    *maintenance.Sweeper
}

func buildManagers(db *pgxpool.Pool, c *cache.Cache, logger *slog.Logger, cfg *config.Config) (*managers, error) {
	auditStore := auditlog.NewStore(db)
	auditManager := auditlog.NewManager(auditStore, c, logger, cfg.AuditLogCacheEnabled, cfg.AuditLogCacheLimit, seconds(cfg.AuditLogCacheTTL))

	operatorStore := operator.NewStore(db)
	operatorManager := operator.NewManager(operatorStore, c, auditManager, logger, cfg.APIKey, cfg.OperatorCacheEnabled, cfg.OperatorCacheLimit, seconds(cfg.OperatorCacheTTL))

	entityStore := entity.NewStore(db)
	entityManager := entity.NewManager(entityStore, c, auditManager, logger, cfg.EntityCacheEnabled, cfg.EntityCacheLimit, seconds(cfg.EntityCacheTTL))

	evidenceStore := evidence.NewStore(db)
	evidenceManager := evidence.NewManager(evidenceStore, c, auditManager, logger, cfg.EvidenceCacheEnabled, cfg.EvidenceCacheLimit, seconds(cfg.EvidenceCacheTTL))

	attachmentStore := attachment.NewStore(db)
	attachmentManager := attachment.NewManager(attachmentStore, c, auditManager, logger, cfg.StoragePath, cfg.MaxUploadSize, cfg.FileAttachmentCacheEnabled, cfg.FileAttachmentCacheLimit, seconds(cfg.FileAttachmentCacheTTL))

	blacklistStore := blacklist.NewStore(db)
	blacklistManager := blacklist.NewManager(blacklistStore, c, auditManager, logger, seconds(cfg.MinBlacklistTime), cfg.BlacklistCacheEnabled, cfg.BlacklistCacheLimit, seconds(cfg.BlacklistCacheTTL))

	composer := query.NewComposer(entityManager, evidenceManager, blacklistManager, attachmentManager, auditManager)
	scanner := extractor.NewScanner(composer)

	sweeper := maintenance.NewSweeper(auditManager, blacklistManager, logger, cfg.MaintenanceEnabled,
		cfg.MaintenanceCleanAuditLogs, cfg.MaintenanceCleanAuditDays,
		cfg.MaintenanceCleanBlacklist, cfg.MaintenanceCleanBlacklistDays)

	return &managers{
		operator:   operatorManager,
		entity:     entityManager,
		evidence:   evidenceManager,
		attachment: attachmentManager,
		blacklist:  blacklistManager,
		auditlog:   auditManager,
		composer:   composer,
		scanner:    scanner,
		sweeper:    sweeper,
	}, nil
}

func seconds(n int64) time.Duration { return time.Duration(n) * time.Second }

func runAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *pgxpool.Pool, redisClient *redis.Client, metricsReg *prometheus.Registry, deps *managers) error {
	srv := httpserver.NewServer(cfg, logger, db, redisClient, metricsReg, deps.operator)

	operatorHandler := operator.NewHandler(deps.operator)
	srv.APIRouter.Mount("/operators", operatorHandler.Routes())

	entityHandler := entity.NewHandler(deps.entity, cfg.PublicEntities)
	queryHandler := query.NewHandler(deps.composer, cfg.PublicEntities)
	srv.APIRouter.Route("/entities", func(r chi.Router) {
		entityHandler.Register(r)
		queryHandler.Register(r)
	})

	evidenceHandler := evidence.NewHandler(deps.evidence, cfg.PublicEvidence)
	srv.APIRouter.Mount("/evidence", evidenceHandler.Routes())

	blacklistHandler := blacklist.NewHandler(deps.blacklist)
	srv.APIRouter.Mount("/blacklist", blacklistHandler.Routes())

	attachmentHandler := attachment.NewHandler(deps.attachment, cfg.MaxUploadSize, cfg.PublicEvidence)
	srv.APIRouter.Mount("/attachment", attachmentHandler.Routes())

	auditHandler := auditlog.NewHandler(deps.auditlog, cfg.PublicAuditLogs)
	srv.APIRouter.Mount("/audit", auditHandler.Routes())

	scanHandler := extractor.NewHandler(deps.scanner, cfg.PublicScanContent)
	srv.APIRouter.Mount("/scan", scanHandler.Routes())

	if cfg.MaintenanceEnabled {
		go deps.sweeper.RunLoop(ctx, seconds(cfg.MaintenanceInterval))
	}

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runWorker(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps *managers) error {
	logger.Info("worker started")
	deps.sweeper.RunLoop(ctx, seconds(cfg.MaintenanceInterval))
	return nil
}
