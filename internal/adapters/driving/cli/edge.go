package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

var (
	edgeRel        string
	edgeWeight     float64
	edgeUndirected bool
)

var edgeCmd = &cobra.Command{
	Use:   "edge",
	Short: "Manage relationships between chunks",
}

var edgeAddCmd = &cobra.Command{
	Use:   "add <src-chunk> <dst-chunk>",
	Short: "Relate two chunks",
	Long: `Stores an edge between two existing chunks. Edges are directed unless
--undirected is set; the weight scales relevance propagated across it.`,
	Args: cobra.ExactArgs(2),
	RunE: runEdgeAdd,
}

var edgeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an edge",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdgeGet,
}

func init() {
	edgeAddCmd.Flags().StringVar(&edgeRel, "rel", string(domain.RelSimilarRole), "relationship type")
	edgeAddCmd.Flags().Float64Var(&edgeWeight, "weight", 1.0, "edge weight")
	edgeAddCmd.Flags().BoolVar(&edgeUndirected, "undirected", false, "follow the edge both ways")

	edgeCmd.AddCommand(edgeAddCmd, edgeGetCmd)
	rootCmd.AddCommand(edgeCmd)
}

func runEdgeAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	src, err := parseChunkID(args[0])
	if err != nil {
		return err
	}
	dst, err := parseChunkID(args[1])
	if err != nil {
		return err
	}

	weight := edgeWeight
	directed := !edgeUndirected
	id, err := ingestService.CreateEdge(cmd.Context(), domain.EdgeInput{
		SrcChunkID: src,
		DstChunkID: dst,
		RelType:    domain.RelType(edgeRel),
		Weight:     &weight,
		Directed:   &directed,
	})
	if err != nil {
		return fmt.Errorf("add edge failed: %w", err)
	}
	cmd.Printf("Stored edge %d\n", id)
	return nil
}

func runEdgeGet(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid edge id %q", args[0])
	}

	e, err := ingestService.GetEdge(cmd.Context(), domain.EdgeID(id))
	if err != nil {
		return fmt.Errorf("get edge failed: %w", err)
	}

	arrow := "->"
	if !e.Directed {
		arrow = "<->"
	}
	cmd.Printf("%d: %d %s %d (%s, weight %.2f)\n", e.ID, e.SrcChunkID, arrow, e.DstChunkID, e.RelType, e.Weight)
	return nil
}
