package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getOperatorCmd = &cobra.Command{
	Use:   "get-operator UUID",
	Short: "Print a single operator",
	Long: `get-operator resolves and prints one operator by its uuid.

Examples:
  vigilctl get-operator 018f2e1a-7b3c-7c3a-9b1a-6c9c9c9c9c9c`,
	Args: cobra.ExactArgs(1),
	RunE: runGetOperator,
}

func runGetOperator(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	id := args[0]

	mgr, db, err := operatorManager(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := mgr.GetByUUID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching operator: %w", err)
	}

	printOperator(rec)
	return nil
}
