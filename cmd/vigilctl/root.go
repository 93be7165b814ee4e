package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wisbric/vigil/internal/config"
	"github.com/wisbric/vigil/internal/platform"
	"github.com/wisbric/vigil/pkg/auditlog"
	"github.com/wisbric/vigil/pkg/operator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// operatorManager connects directly to the configured database and returns
// an operator manager with caching disabled — vigilctl never runs
// alongside a live cache invalidation path, so it reads and writes the
// database directly.
func operatorManager(ctx context.Context) (*operator.Manager, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	auditStore := auditlog.NewStore(db)
	auditManager := auditlog.NewManager(auditStore, nil, slog.Default(), false, 0, 0)

	operatorStore := operator.NewStore(db)
	mgr := operator.NewManager(operatorStore, nil, auditManager, slog.Default(), cfg.APIKey, false, 0, 0)

	return mgr, db, nil
}

func printOperator(rec *operator.Record) {
	fmt.Printf("uuid:             %s\n", rec.UUID)
	fmt.Printf("name:             %s\n", rec.Name)
	fmt.Printf("api_key:          %s\n", rec.APIKey)
	fmt.Printf("disabled:         %t\n", rec.Disabled)
	fmt.Printf("manage_operators: %t\n", rec.ManageOperators)
	fmt.Printf("manage_blacklist: %t\n", rec.ManageBlacklist)
	fmt.Printf("is_client:        %t\n", rec.IsClient)
	fmt.Printf("created:          %s\n", rec.Created.Format("2006-01-02T15:04:05Z07:00"))
}

// cmdContext returns the command's context, falling back to Background
// for cobra versions that don't thread one through.
func cmdContext(cmd *cobra.Command) context.Context {
	if cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
