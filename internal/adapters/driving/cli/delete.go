package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete profiles or source entities",
	Long:  `Deletes chunks together with every edge touching them. Cached matches of affected nodes are dropped.`,
}

var deleteOwnerCmd = &cobra.Command{
	Use:   "owner <user-id>",
	Short: "Delete a profile's chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestService == nil {
			return errors.New("ingest service not configured")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		n, err := ingestService.DeleteOwner(cmd.Context(), domain.UserID(id))
		if err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		cmd.Printf("Deleted %d chunks\n", n)
		return nil
	},
}

var deleteNodeCmd = &cobra.Command{
	Use:   "node <node-id>",
	Short: "Delete a source entity's chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestService == nil {
			return errors.New("ingest service not configured")
		}
		n, err := ingestService.DeleteNode(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		cmd.Printf("Deleted %d chunks\n", n)
		return nil
	},
}

func init() {
	deleteCmd.AddCommand(deleteOwnerCmd, deleteNodeCmd)
	rootCmd.AddCommand(deleteCmd)
}
