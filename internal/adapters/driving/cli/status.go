package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and service health",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	status, err := statusService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	if statusJSON {
		return outputJSON(cmd, status)
	}

	health := "healthy"
	if !status.Healthy {
		health = "unhealthy"
	}
	cmd.Printf("Status:    %s\n", health)
	cmd.Printf("Chunks:    %d\n", status.Store.Chunks)
	cmd.Printf("Edges:     %d\n", status.Store.Edges)
	cmd.Printf("Profiles:  %d\n", status.Store.Owners)
	cmd.Printf("Tenants:   %d\n", status.Store.Tenants)
	cmd.Printf("Embedding: %s\n", status.Embedding)
	for _, e := range status.Errors {
		cmd.Printf("  ! %s\n", e)
	}
	return nil
}
