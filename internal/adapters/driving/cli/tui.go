package cli

import (
	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse matches interactively",
	Long: `Open the terminal UI for free-text profile search and experience matches.

Navigate with j/k or the arrow keys, enter to open a profile, esc to go back.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	app, err := tui.NewApp(&tui.Ports{
		Search:     searchService,
		Experience: experienceService,
	})
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).Run()
}
