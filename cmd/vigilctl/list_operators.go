package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listOperatorsCmd = &cobra.Command{
	Use:   "list-operators",
	Short: "List operators",
	Long: `list-operators prints operators ordered by creation time, most
recent first.

Examples:
  vigilctl list-operators
  vigilctl list-operators --limit 50 --offset 50`,
	Args: cobra.NoArgs,
	RunE: runListOperators,
}

func init() {
	listOperatorsCmd.Flags().Int("limit", 100, "maximum rows to return")
	listOperatorsCmd.Flags().Int("offset", 0, "rows to skip")
}

func runListOperators(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	mgr, db, err := operatorManager(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := mgr.List(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("listing operators: %w", err)
	}

	for i, rec := range recs {
		if i > 0 {
			fmt.Println("---")
		}
		printOperator(rec)
	}
	fmt.Printf("\n%d operator(s)\n", len(recs))
	return nil
}
