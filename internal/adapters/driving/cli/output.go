package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputMatches prints ranked profiles as a list.
func outputMatches(cmd *cobra.Command, results []domain.MatchResult) {
	if len(results) == 0 {
		cmd.Println("No matches found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		// Format: [N] user ID (score) - reasons
		cmd.Printf("  [%d] user %d (%.3f)", i+1, r.UserID, r.Score)
		if len(r.WhyMatched) > 0 {
			cmd.Printf(" - %s", strings.Join(r.WhyMatched, "; "))
		}
		cmd.Println()
		for _, n := range r.MatchedNodes {
			label := n.EntityType
			if n.NodeID != "" {
				label += " " + n.NodeID
			}
			cmd.Printf("      %s [%s %.3f] %s\n", label, n.Signal, n.Score, n.Snippet)
		}
		cmd.Println()
	}
}

// parseEmbedding parses a comma separated vector.
func parseEmbedding(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding component %q: %w", p, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// toMeta converts key=value flags into chunk meta.
func toMeta(kv map[string]string) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	meta := make(map[string]any, len(kv))
	for k, v := range kv {
		meta[k] = v
	}
	return meta
}

func parseChunkID(s string) (domain.ChunkID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid chunk id %q", s)
	}
	return domain.ChunkID(id), nil
}
