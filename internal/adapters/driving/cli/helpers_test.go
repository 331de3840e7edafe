package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/storage/memory"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/services"
)

// resetFlags restores command flag globals and pflag's Changed marks, which
// cobra keeps between runs.
func resetFlags() {
	resetCommandFlags(rootCmd)
	searchLimit, searchJSON, searchEmbedding, searchTenant = domain.DefaultSearchLimit, false, "", ""
	searchUser, searchExcludeUser, searchSince, searchThreshold = 0, 0, 0, 0
	chunkOwner, chunkNode, chunkText, chunkType = 0, "", "", ""
	chunkEmbedding, chunkTenant, chunkMeta, chunkCreatedAt, chunkJSON = "", "", nil, "", false
	edgeRel, edgeWeight, edgeUndirected = string(domain.RelSimilarRole), 1.0, false
	matchesUser, matchesRefresh, matchesJSON = 0, false, false
	statusJSON = false
}

func resetCommandFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		switch v := f.Value.(type) {
		case pflag.SliceValue:
			_ = v.Replace(nil)
		default:
			// Map values append on Set; their globals are reset by resetFlags.
			if v.Type() != "stringToString" {
				_ = v.Set(f.DefValue)
			}
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetCommandFlags(c)
	}
}

// setupTestServices wires memory-backed services into the command globals.
func setupTestServices(t *testing.T) *memory.Store {
	t.Helper()

	settings := domain.DefaultAppSettings()
	settings.Retrieval.Dimensions = 3
	settings.Cache.Policy = domain.CachePolicyBlock

	store := memory.NewStore(3)
	retriever := services.NewRetriever(store, store, settings.Retrieval)
	cache := services.NewResultCache(settings.Cache, nil)
	ingest := services.NewIngestService(store, store, nil)
	experience := services.NewExperienceMatchService(store, retriever, cache, nil, settings.Experience)
	ingest.SetInvalidator(experience)

	setServices(&Services{
		Search:      services.NewSearchService(retriever, nil, nil),
		Experience:  experience,
		Ingest:      ingest,
		Status:      services.NewStatusService(store, nil, nil),
		Settings:    services.NewSettingsService(memory.NewConfigStore()),
		AppSettings: settings,
	})
	t.Cleanup(func() { setServices(&Services{AppSettings: domain.DefaultAppSettings()}) })
	return store
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}
