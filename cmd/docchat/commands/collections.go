// ABOUTME: Collections command group: list and delete ingested documents
// ABOUTME: Operates on the local registry and the remote grounding store
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCollectionsCmd creates the collections command group
func NewCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage document collections",
		Long: `Manage document collections.

Examples:
  docchat collections list
  docchat collections delete abc-123`,
	}

	cmd.AddCommand(newCollectionsListCmd())
	cmd.AddCommand(newCollectionsDeleteCmd())
	return cmd
}

func newCollectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := buildService()
			if err != nil {
				return err
			}
			defer cleanup()

			cols, err := svc.Collections()
			if err != nil {
				return err
			}
			if len(cols) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No collections")
				return nil
			}

			for _, col := range cols {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-40s  %4d chunks  %s\n",
					col.ID, truncate(col.DocumentName, 40), col.ChunkCount, formatTime(col.CreatedAt))
			}
			return nil
		},
	}
}

func newCollectionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete COLLECTION_ID",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := buildService()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted collection %s\n", args[0])
			}
			return nil
		},
	}
}
