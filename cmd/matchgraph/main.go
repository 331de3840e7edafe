// Command matchgraph runs the graph-augmented experience matching engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/ai"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/config/file"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/insight"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/permission"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/storage/memory"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/storage/sqlite"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/cli"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/services"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	logger.Init(os.Getenv("MATCHGRAPH_ENV"))
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version)
	if err := cli.Execute(ctx, bootstrap); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires stores, clients and services for one command invocation.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := openConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settingsService.Validate(); err != nil {
		return nil, err
	}
	dims := settings.Retrieval.Dimensions

	var (
		chunks     driven.ChunkStore
		edges      driven.EdgeStore
		matchCache driven.MatchCacheStore
		db         interface{ Ping(context.Context) error }
		closers    []func() error
	)
	if opts.InMemory {
		store := memory.NewStore(dims)
		chunks, edges, matchCache = store, store, memory.NewMatchCacheStore()
	} else {
		store, err := sqlite.NewStore(opts.DataDir, dims)
		if err != nil {
			return nil, err
		}
		logger.Debug("using database %s", store.Path())
		chunks, edges, matchCache = store.ChunkStore(), store.EdgeStore(), store.MatchCacheStore()
		db = store
		closers = append(closers, store.Close)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, settings.Embedding, dims)
	if err != nil {
		logger.Warn("embedding disabled: %v", err)
		embedder = nil
	}
	if embedder != nil {
		closers = append(closers, embedder.Close)
	}

	var (
		permissions driven.PermissionEvaluator
		rules       *permission.Rules
	)
	if path := settings.Permission.RulesFile; path != "" {
		if rules, err = permission.LoadRules(path); err != nil {
			return nil, fmt.Errorf("loading permission rules: %w", err)
		}
		permissions = rules
	}

	insights, err := insight.New(settings.Insight)
	if err != nil {
		logger.Warn("insight enrichment disabled: %v", err)
		insights = nil
	}

	retriever := services.NewRetriever(chunks, edges, settings.Retrieval)
	cache := services.NewResultCache(settings.Cache, matchCache)

	search := services.NewSearchService(retriever, permissions, embedder)
	experience := services.NewExperienceMatchService(chunks, retriever, cache, permissions, settings.Experience)
	if insights != nil {
		search.SetInsightProvider(insights)
		experience.SetInsightProvider(insights)
	}

	ingest := services.NewIngestService(chunks, edges, embedder)
	ingest.SetInvalidator(cache)

	janitor := services.NewCacheJanitor(cache, settings.Cache.SweepInterval)
	reload := func() {
		updated, err := settingsService.Get()
		if err != nil {
			logger.Warn("reloading settings: %v", err)
			return
		}
		if err := updated.Retrieval.Validate(); err != nil {
			logger.Warn("ignoring retrieval settings: %v", err)
		} else if updated.Retrieval.Dimensions != dims {
			logger.Warn("retrieval.dimensions changed; restart to apply")
		} else {
			retriever.UpdateSettings(updated.Retrieval)
		}
		if rules != nil {
			if err := rules.Reload(); err != nil {
				logger.Warn("reloading permission rules: %v", err)
			}
		}
	}

	return &cli.Services{
		Search:      search,
		Experience:  experience,
		Ingest:      ingest,
		Status:      services.NewStatusService(chunks, db, embedder),
		Settings:    settingsService,
		AppSettings: *settings,
		Background: []cli.BackgroundTask{
			janitor.Start,
			func(ctx context.Context) error {
				watcher, ok := configStore.(*file.ConfigStore)
				if !ok {
					return nil
				}
				return watcher.Watch(ctx, reload)
			},
		},
		Close: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// openConfig opens the TOML config named by --config or the default location.
// In-memory runs without --config use built-in defaults.
func openConfig(opts cli.Options) (driven.ConfigStore, error) {
	path := opts.ConfigPath
	if path == "" {
		if opts.InMemory {
			return memory.NewConfigStore(), nil
		}
		return file.NewConfigStore("")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return file.NewConfigStoreFromFile(abs)
}
