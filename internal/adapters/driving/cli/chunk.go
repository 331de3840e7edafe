package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

var (
	chunkOwner     int64
	chunkNode      string
	chunkText      string
	chunkType      string
	chunkEmbedding string
	chunkTenant    string
	chunkMeta      map[string]string
	chunkCreatedAt string
	chunkJSON      bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Manage profile chunks",
}

var chunkAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a chunk",
	Long: `Stores a chunk of profile text. The text is embedded with the configured
provider unless --embedding supplies the vector.`,
	Args: cobra.NoArgs,
	RunE: runChunkAdd,
}

var chunkGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkGet,
}

var chunkMetaCmd = &cobra.Command{
	Use:   "meta <id>",
	Short: "Replace a chunk's metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkMeta,
}

var chunkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the chunks of a node or an owner",
	Args:  cobra.NoArgs,
	RunE:  runChunkList,
}

func init() {
	add := chunkAddCmd.Flags()
	add.Int64Var(&chunkOwner, "owner", 0, "owning profile (required)")
	add.StringVar(&chunkNode, "node", "", "source entity id")
	add.StringVar(&chunkText, "text", "", "chunk text")
	add.StringVar(&chunkType, "type", "", "entity type, e.g. job or project (required)")
	add.StringVar(&chunkEmbedding, "embedding", "", "comma separated vector")
	add.StringVar(&chunkTenant, "tenant", "", "tenant")
	add.StringToStringVar(&chunkMeta, "meta", nil, "metadata key=value pairs")
	add.StringVar(&chunkCreatedAt, "created-at", "", "creation time (RFC 3339)")

	chunkGetCmd.Flags().BoolVar(&chunkJSON, "json", false, "output as JSON")
	chunkMetaCmd.Flags().StringToStringVar(&chunkMeta, "set", nil, "metadata key=value pairs")
	chunkListCmd.Flags().StringVar(&chunkNode, "node", "", "source entity id")
	chunkListCmd.Flags().Int64Var(&chunkOwner, "owner", 0, "owning profile")
	chunkListCmd.MarkFlagsMutuallyExclusive("node", "owner")

	chunkCmd.AddCommand(chunkAddCmd, chunkGetCmd, chunkMetaCmd, chunkListCmd)
	rootCmd.AddCommand(chunkCmd)
}

func runChunkAdd(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	embedding, err := parseEmbedding(chunkEmbedding)
	if err != nil {
		return err
	}
	in := domain.ChunkInput{
		OwnerID:    domain.UserID(chunkOwner),
		NodeID:     chunkNode,
		Text:       chunkText,
		Embedding:  embedding,
		EntityType: chunkType,
		Meta:       toMeta(chunkMeta),
		TenantID:   chunkTenant,
	}
	if chunkCreatedAt != "" {
		if in.CreatedAt, err = time.Parse(time.RFC3339, chunkCreatedAt); err != nil {
			return fmt.Errorf("invalid --created-at: %w", err)
		}
	}

	id, err := ingestService.CreateChunk(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("add chunk failed: %w", err)
	}
	cmd.Printf("Stored chunk %d\n", id)
	return nil
}

func runChunkGet(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	id, err := parseChunkID(args[0])
	if err != nil {
		return err
	}

	c, err := ingestService.GetChunk(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get chunk failed: %w", err)
	}
	if chunkJSON {
		return outputJSON(cmd, c)
	}
	printChunk(cmd, c)
	return nil
}

func runChunkMeta(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	id, err := parseChunkID(args[0])
	if err != nil {
		return err
	}
	if err := ingestService.UpdateChunkMeta(cmd.Context(), id, toMeta(chunkMeta)); err != nil {
		return fmt.Errorf("update meta failed: %w", err)
	}
	cmd.Printf("Updated chunk %d\n", id)
	return nil
}

func runChunkList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var (
		chunks []*domain.Chunk
		err    error
	)
	switch {
	case chunkNode != "":
		chunks, err = ingestService.ListNodeChunks(cmd.Context(), chunkNode)
	case chunkOwner > 0:
		chunks, err = ingestService.ListOwnerChunks(cmd.Context(), domain.UserID(chunkOwner))
	default:
		return errors.New("--node or --owner is required")
	}
	if err != nil {
		return fmt.Errorf("list chunks failed: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}
	for _, c := range chunks {
		cmd.Printf("  %d  user %d  %s  %s\n", c.ID, c.OwnerID, c.EntityType, c.Snippet(60))
	}
	return nil
}

func printChunk(cmd *cobra.Command, c *domain.Chunk) {
	cmd.Printf("ID:      %d\n", c.ID)
	cmd.Printf("Owner:   %d\n", c.OwnerID)
	if c.NodeID != "" {
		cmd.Printf("Node:    %s\n", c.NodeID)
	}
	cmd.Printf("Type:    %s\n", c.EntityType)
	cmd.Printf("Tenant:  %s\n", c.Tenant())
	cmd.Printf("Created: %s\n", c.CreatedAt.Local().Format(time.DateTime))
	for k, v := range c.Meta {
		cmd.Printf("Meta:    %s=%v\n", k, v)
	}
	cmd.Println()
	cmd.Println(c.Text)
}
