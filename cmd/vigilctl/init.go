package main

import (
	"fmt"

	"github.com/wisbric/vigil/internal/config"
	"github.com/wisbric/vigil/internal/platform"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Run schema migrations and bootstrap the master operator",
	Long: `init applies all pending schema migrations, then resolves (creating
if necessary) the master operator whose api_key matches FEDERATION_API_KEY.

Examples:
  vigilctl init`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := platform.RunMigrations(cfg.DatabaseURL(), cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	fmt.Println("migrations applied")

	mgr, db, err := operatorManager(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	master, err := mgr.GetMaster(ctx)
	if err != nil {
		return fmt.Errorf("bootstrapping master operator: %w", err)
	}

	fmt.Println("master operator ready:")
	printOperator(master)
	return nil
}
