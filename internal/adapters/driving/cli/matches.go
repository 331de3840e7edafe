package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

var (
	matchesUser    int64
	matchesRefresh bool
	matchesJSON    bool
)

var matchesCmd = &cobra.Command{
	Use:   "matches <node-id>",
	Short: "Show experience matches for a node",
	Long: `Shows the profiles whose experience matches a subject node.

Results are cached per node. A stale entry is served while it is being
recomputed unless the cache policy is "block"; --refresh forces a
recomputation.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatches,
}

var matchesClearCmd = &cobra.Command{
	Use:   "clear <node-id>",
	Short: "Drop cached matches for a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if experienceService == nil {
			return errors.New("experience match service not configured")
		}
		if err := experienceService.Invalidate(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("invalidate failed: %w", err)
		}
		cmd.Printf("Cleared cached matches for %s\n", args[0])
		return nil
	},
}

func init() {
	matchesCmd.Flags().Int64Var(&matchesUser, "user", 0, "requesting user")
	matchesCmd.Flags().BoolVar(&matchesRefresh, "refresh", false, "recompute even when cached")
	matchesCmd.Flags().BoolVar(&matchesJSON, "json", false, "output as JSON")
	matchesCmd.AddCommand(matchesClearCmd)
	rootCmd.AddCommand(matchesCmd)
}

func runMatches(cmd *cobra.Command, args []string) error {
	if experienceService == nil {
		return errors.New("experience match service not configured")
	}

	m, err := experienceService.GetMatches(cmd.Context(), args[0], domain.ExperienceMatchOptions{
		RequestingUserID: domain.UserID(matchesUser),
		ForceRefresh:     matchesRefresh,
	})
	if err != nil {
		return fmt.Errorf("matches failed: %w", err)
	}

	if matchesJSON {
		return outputJSON(cmd, m)
	}

	cmd.Printf("Node %s (user %d)\n", m.NodeID, m.UserID)
	cmd.Printf("Query: %s\n", m.SearchQuery)
	cmd.Printf("Updated: %s (ttl %ds)\n", m.LastUpdated.Local().Format(time.DateTime), m.CacheTTL)
	cmd.Println()
	outputMatches(cmd, m.Matches)
	return nil
}
