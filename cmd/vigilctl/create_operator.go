package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createOperatorCmd = &cobra.Command{
	Use:   "create-operator NAME",
	Short: "Create a new operator with a fresh API key",
	Long: `create-operator inserts a new operator with no capabilities and a
fresh opaque API key, and prints the key to stdout exactly once.

Examples:
  vigilctl create-operator "partner-feed"
  vigilctl create-operator "partner-feed" --manage-blacklist --is-client`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateOperator,
}

func init() {
	createOperatorCmd.Flags().Bool("manage-operators", false, "grant manage_operators capability")
	createOperatorCmd.Flags().Bool("manage-blacklist", false, "grant manage_blacklist capability")
	createOperatorCmd.Flags().Bool("is-client", false, "grant is_client capability")
}

func runCreateOperator(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	name := args[0]

	mgr, db, err := operatorManager(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := mgr.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("creating operator: %w", err)
	}

	manageOperators, _ := cmd.Flags().GetBool("manage-operators")
	manageBlacklist, _ := cmd.Flags().GetBool("manage-blacklist")
	isClient, _ := cmd.Flags().GetBool("is-client")

	if manageOperators {
		if rec, err = mgr.SetManageOperators(ctx, rec.UUID, true); err != nil {
			return fmt.Errorf("granting manage_operators: %w", err)
		}
	}
	if manageBlacklist {
		if rec, err = mgr.SetManageBlacklist(ctx, rec.UUID, true); err != nil {
			return fmt.Errorf("granting manage_blacklist: %w", err)
		}
	}
	if isClient {
		if rec, err = mgr.SetClient(ctx, rec.UUID, true); err != nil {
			return fmt.Errorf("granting is_client: %w", err)
		}
	}

	fmt.Println("operator created:")
	printOperator(rec)
	return nil
}
