package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON HTTP API together with the cache janitor and the config
watcher. Retrieval settings changed in the config file apply to the next
request.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	cfg := appSettings.Server
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	server, err := httpapi.New(cfg, httpapi.Ports{
		Search:     searchService,
		Experience: experienceService,
		Ingest:     ingestService,
		Status:     statusService,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, task := range backgroundTasks {
		g.Go(func() error {
			return task(ctx)
		})
	}
	g.Go(func() error {
		return server.Run(ctx)
	})

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://%s\n", cfg.Addr)
	if err := g.Wait(); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}
