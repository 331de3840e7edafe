package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and validate settings",
	Long: `Settings are read from the TOML config file. Edit the file to change
them; a running server picks up retrieval changes without a restart.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the settings for errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		if err := settingsService.Validate(); err != nil {
			return err
		}
		cmd.Println("Configuration is valid.")
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Dimensions: %d\n", r.Dimensions)
	cmd.Printf("  Seed pool: %d\n", r.SeedPool)
	cmd.Printf("  Max depth: %d\n", r.MaxDepth)
	cmd.Printf("  Decay: %.2f\n", r.Decay)
	cmd.Printf("  Weights: similarity %.2f, graph %.2f, recency %.2f\n",
		r.SimilarityWeight, r.GraphWeight, r.RecencyWeight)
	cmd.Printf("  Recency half-life: %.0f days\n", r.RecencyHalfLifeDays)
	cmd.Printf("  Timeout: %s\n", r.Timeout)
	cmd.Println()

	c := settings.Cache
	cmd.Println("[Cache]")
	cmd.Printf("  TTL: %s\n", c.TTL)
	cmd.Printf("  Policy: %s\n", c.Policy)
	cmd.Printf("  Sweep interval: %s\n", c.SweepInterval)
	cmd.Println()

	e := settings.Embedding
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", e.Provider)
	cmd.Printf("  Model: %s\n", e.Model)
	if e.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", e.BaseURL)
	}
	if e.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(e.APIKey))
	}
	status := "configured"
	if !e.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	in := settings.Insight
	cmd.Println("[Insight]")
	if in.IsConfigured() {
		cmd.Printf("  Provider: %s\n", in.Provider)
		cmd.Printf("  Model: %s\n", in.Model)
		if in.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(in.APIKey))
		}
	} else {
		cmd.Println("  Status: disabled")
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	if settings.Permission.RulesFile != "" {
		cmd.Printf("  Permission rules: %s\n", settings.Permission.RulesFile)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
