package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import chunks and edges from a JSON bundle",
	Long: `Imports a JSON bundle of chunks and edges. Use "-" to read stdin.

Edges reference chunks by their bundle key or by the decimal id of a chunk
that is already stored. Items are stored in order and the import stops at
the first failure; what was stored before it is kept and reported.

  {
    "chunks": [{"key": "a", "ownerId": 1, "entityType": "job", "text": "..."}],
    "edges":  [{"src": "a", "dst": "42", "relType": "similar_role", "weight": 0.8}]
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening bundle: %w", err)
		}
		defer f.Close()
		r = f
	}

	var bundle domain.ImportBundle
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&bundle); err != nil {
		return fmt.Errorf("decoding bundle: %w", err)
	}

	summary, err := ingestService.Import(cmd.Context(), bundle)
	if summary != nil {
		cmd.Printf("Imported %d chunks and %d edges\n", summary.Chunks, summary.Edges)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}
