package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

const uriScheme = "matchgraph://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Status != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "status",
			Name:        "status",
			Description: "Store counts and embedding health",
			MIMEType:    "application/json",
		}, s.handleStatusResource)
	}

	if s.ports.Ingest != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "chunks/{chunkId}",
			Name:        "chunk",
			Description: "A stored chunk without its vector",
			MIMEType:    "application/json",
		}, s.handleChunkResource)
	}
}

func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status, err := s.ports.Status.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}
	return jsonResource(req.Params.URI, status)
}

func (s *Server) handleChunkResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractChunkID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunk, err := s.ports.Ingest.GetChunk(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting chunk: %w", err)
	}
	return jsonResource(req.Params.URI, chunkOutput(chunk))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractChunkID parses matchgraph://chunks/{chunkId}.
func extractChunkID(uri string) (domain.ChunkID, bool) {
	const prefix = uriScheme + "chunks/"
	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return domain.ChunkID(id), true
}
