package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var editOperatorCmd = &cobra.Command{
	Use:   "edit-operator UUID",
	Short: "Change an operator's capabilities, enabled state, or API key",
	Long: `edit-operator applies one or more mutations to an existing operator.
Flags compose — pass as many as apply in a single call.

Examples:
  vigilctl edit-operator UUID --disable
  vigilctl edit-operator UUID --manage-blacklist=true --is-client=false
  vigilctl edit-operator UUID --refresh-api-key`,
	Args: cobra.ExactArgs(1),
	RunE: runEditOperator,
}

func init() {
	editOperatorCmd.Flags().Bool("enable", false, "clear the operator's disabled flag")
	editOperatorCmd.Flags().Bool("disable", false, "set the operator's disabled flag")
	editOperatorCmd.Flags().String("manage-operators", "", "set manage_operators capability (true|false)")
	editOperatorCmd.Flags().String("manage-blacklist", "", "set manage_blacklist capability (true|false)")
	editOperatorCmd.Flags().String("is-client", "", "set is_client capability (true|false)")
	editOperatorCmd.Flags().Bool("refresh-api-key", false, "rotate the operator's API key")
}

func runEditOperator(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	id := args[0]

	mgr, db, err := operatorManager(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	enable, _ := cmd.Flags().GetBool("enable")
	disable, _ := cmd.Flags().GetBool("disable")
	if enable && disable {
		return fmt.Errorf("--enable and --disable are mutually exclusive")
	}
	if enable {
		if _, err := mgr.Enable(ctx, id); err != nil {
			return fmt.Errorf("enabling operator: %w", err)
		}
	}
	if disable {
		if _, err := mgr.Disable(ctx, id); err != nil {
			return fmt.Errorf("disabling operator: %w", err)
		}
	}

	if v := cmd.Flags().Lookup("manage-operators").Value.String(); v != "" {
		if _, err := mgr.SetManageOperators(ctx, id, v == "true"); err != nil {
			return fmt.Errorf("setting manage_operators: %w", err)
		}
	}
	if v := cmd.Flags().Lookup("manage-blacklist").Value.String(); v != "" {
		if _, err := mgr.SetManageBlacklist(ctx, id, v == "true"); err != nil {
			return fmt.Errorf("setting manage_blacklist: %w", err)
		}
	}
	if v := cmd.Flags().Lookup("is-client").Value.String(); v != "" {
		if _, err := mgr.SetClient(ctx, id, v == "true"); err != nil {
			return fmt.Errorf("setting is_client: %w", err)
		}
	}

	refreshKey, _ := cmd.Flags().GetBool("refresh-api-key")
	if refreshKey {
		newKey, err := mgr.RefreshApiKey(ctx, id)
		if err != nil {
			return fmt.Errorf("refreshing api key: %w", err)
		}
		fmt.Printf("new api key: %s\n", newKey)
	}

	rec, err := mgr.GetByUUID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching operator: %w", err)
	}
	printOperator(rec)
	return nil
}
