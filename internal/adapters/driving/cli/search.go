package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

var (
	searchLimit       int
	searchJSON        bool
	searchEmbedding   string
	searchTenant      string
	searchUser        int64
	searchExcludeUser int64
	searchSince       time.Duration
	searchThreshold   float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find profiles matching a query",
	Long: `Finds the profiles whose experience best matches the query.

Seed chunks are retrieved by vector similarity, expanded through the
relationship graph and ranked by a weighted blend of similarity, graph
proximity and recency. Query text is embedded with the configured
embedding provider; pass --embedding to supply the vector directly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	flags := searchCmd.Flags()
	flags.IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of profiles")
	flags.BoolVar(&searchJSON, "json", false, "output results as JSON")
	flags.StringVar(&searchEmbedding, "embedding", "", "comma separated query vector")
	flags.StringVar(&searchTenant, "tenant", "", "tenant to search")
	flags.Int64Var(&searchUser, "user", 0, "requesting user; results are filtered to what they may see")
	flags.Int64Var(&searchExcludeUser, "exclude-user", 0, "profile to leave out of the results")
	flags.DurationVar(&searchSince, "since", 0, "only consider chunks created within this window (e.g. 720h)")
	flags.Float64Var(&searchThreshold, "threshold", 0, "minimum seed similarity")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	req := domain.SearchRequest{
		Limit:            searchLimit,
		TenantID:         searchTenant,
		RequestingUserID: domain.UserID(searchUser),
	}
	if len(args) == 1 {
		req.Query = args[0]
	}

	embedding, err := parseEmbedding(searchEmbedding)
	if err != nil {
		return err
	}
	req.QueryEmbedding = embedding
	if req.Query == "" && len(embedding) == 0 {
		return errors.New("a query or --embedding is required")
	}

	if searchExcludeUser > 0 {
		exclude := domain.UserID(searchExcludeUser)
		req.ExcludeUserID = &exclude
	}
	if searchSince > 0 {
		since := time.Now().Add(-searchSince)
		req.Since = &since
	}
	if cmd.Flags().Changed("threshold") {
		threshold := searchThreshold
		req.SimilarityThreshold = &threshold
	}

	resp, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, resp)
	}
	outputMatches(cmd, resp.Results)
	return nil
}
