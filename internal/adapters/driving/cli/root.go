// Package cli provides the matchgraph command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Options are the global flags handed to the bootstrap.
type Options struct {
	DataDir    string
	ConfigPath string
	InMemory   bool
}

// BackgroundTask runs until ctx is cancelled. Started by serve.
type BackgroundTask func(ctx context.Context) error

// Services holds the ports the commands run against.
type Services struct {
	Search     driving.SearchService
	Experience driving.ExperienceMatchService
	Ingest     driving.IngestService
	Status     driving.StatusService
	Settings   driving.SettingsService

	// AppSettings are the settings the services were built with.
	AppSettings domain.AppSettings

	// Background tasks run alongside the servers.
	Background []BackgroundTask

	// Close releases stores and clients.
	Close func() error
}

// Bootstrap builds the services for the given options.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	searchService     driving.SearchService
	experienceService driving.ExperienceMatchService
	ingestService     driving.IngestService
	statusService     driving.StatusService
	settingsService   driving.SettingsService
	appSettings       = domain.DefaultAppSettings()
	backgroundTasks   []BackgroundTask
	closeServices     func() error

	bootstrap Bootstrap
	opts      Options
	verbose   bool
)

// annotationNoServices marks commands that run without a store.
const annotationNoServices = "no-services"

var rootCmd = &cobra.Command{
	Use:   "matchgraph",
	Short: "Graph-augmented experience matching",
	Long: `matchgraph stores embedded profile chunks and the relationships between
them, and finds the profiles whose experience best matches a query by
combining vector similarity, graph proximity and recency.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initServices,
	PersistentPostRunE: closeAll,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.DataDir, "data-dir", "", "data directory (default ~/.matchgraph/data)")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.matchgraph/config.toml)")
	flags.BoolVar(&opts.InMemory, "memory", false, "use in-memory stores (and default settings unless --config is set)")
}

// Execute runs the root command.
func Execute(ctx context.Context, b Bootstrap) error {
	bootstrap = b
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] == "true" || searchService != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	s, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	setServices(s)
	return nil
}

func setServices(s *Services) {
	searchService = s.Search
	experienceService = s.Experience
	ingestService = s.Ingest
	statusService = s.Status
	settingsService = s.Settings
	appSettings = s.AppSettings
	backgroundTasks = s.Background
	closeServices = s.Close
}

func closeAll(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}
