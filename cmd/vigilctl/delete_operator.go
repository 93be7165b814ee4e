package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteOperatorCmd = &cobra.Command{
	Use:   "delete-operator UUID",
	Short: "Delete an operator",
	Long: `delete-operator removes the operator permanently. The master operator
may never be deleted.

Examples:
  vigilctl delete-operator 018f2e1a-7b3c-7c3a-9b1a-6c9c9c9c9c9c`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleteOperator,
}

func runDeleteOperator(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	id := args[0]

	mgr, db, err := operatorManager(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := mgr.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting operator: %w", err)
	}

	fmt.Printf("operator %s deleted\n", id)
	return nil
}
