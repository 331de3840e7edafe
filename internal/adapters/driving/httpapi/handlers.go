package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

const healthTimeout = 5 * time.Second

// health handles GET /health.
func (s *Server) health(c *gin.Context) {
	if s.ports.Status == nil {
		c.JSON(http.StatusOK, gin.H{"healthy": true})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status, err := s.ports.Status.Status(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// search handles POST /api/v1/search.
func (s *Server) search(c *gin.Context) {
	var body searchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	req := body.toDomain()
	if req.RequestingUserID == 0 {
		uid, err := headerUser(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		req.RequestingUserID = uid
	}

	resp, err := s.ports.Search.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// experienceMatches handles GET /api/v1/nodes/:nodeId/experience-matches.
func (s *Server) experienceMatches(c *gin.Context) {
	uid, err := headerUser(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	opts := domain.ExperienceMatchOptions{RequestingUserID: uid}
	if raw := c.Query("forceRefresh"); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "forceRefresh must be a boolean")
			return
		}
		opts.ForceRefresh = force
	}

	matches, err := s.ports.Experience.GetMatches(c.Request.Context(), c.Param("nodeId"), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// invalidateMatches handles DELETE /api/v1/nodes/:nodeId/experience-matches.
func (s *Server) invalidateMatches(c *gin.Context) {
	if err := s.ports.Experience.Invalidate(c.Request.Context(), c.Param("nodeId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// createChunk handles POST /api/v1/chunks.
func (s *Server) createChunk(c *gin.Context) {
	var body chunkRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := s.ports.Ingest.CreateChunk(c.Request.Context(), body.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, idResponse{ID: int64(id)})
}

// getChunk handles GET /api/v1/chunks/:id.
func (s *Server) getChunk(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	chunk, err := s.ports.Ingest.GetChunk(c.Request.Context(), domain.ChunkID(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChunkView(chunk))
}

// updateChunkMeta handles PUT /api/v1/chunks/:id/meta.
func (s *Server) updateChunkMeta(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body metaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.ports.Ingest.UpdateChunkMeta(c.Request.Context(), domain.ChunkID(id), body.Meta); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// createEdge handles POST /api/v1/edges.
func (s *Server) createEdge(c *gin.Context) {
	var body edgeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := s.ports.Ingest.CreateEdge(c.Request.Context(), body.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, idResponse{ID: int64(id)})
}

// getEdge handles GET /api/v1/edges/:id.
func (s *Server) getEdge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	edge, err := s.ports.Ingest.GetEdge(c.Request.Context(), domain.EdgeID(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEdgeView(edge))
}

func (s *Server) listNodeChunks(c *gin.Context) {
	chunks, err := s.ports.Ingest.ListNodeChunks(c.Request.Context(), c.Param("nodeId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChunkViews(chunks))
}

func (s *Server) listOwnerChunks(c *gin.Context) {
	id, ok := pathID(c, "ownerId")
	if !ok {
		return
	}
	chunks, err := s.ports.Ingest.ListOwnerChunks(c.Request.Context(), domain.UserID(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChunkViews(chunks))
}

func (s *Server) deleteNode(c *gin.Context) {
	n, err := s.ports.Ingest.DeleteNode(c.Request.Context(), c.Param("nodeId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deletedResponse{Deleted: n})
}

func (s *Server) deleteOwner(c *gin.Context) {
	id, ok := pathID(c, "ownerId")
	if !ok {
		return
	}
	n, err := s.ports.Ingest.DeleteOwner(c.Request.Context(), domain.UserID(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deletedResponse{Deleted: n})
}

// importBundle handles POST /api/v1/import. A failed import reports what
// was stored before the failure in the error details.
func (s *Server) importBundle(c *gin.Context) {
	var bundle domain.ImportBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		badRequest(c, err.Error())
		return
	}

	summary, err := s.ports.Ingest.Import(c.Request.Context(), bundle)
	if err != nil {
		writeErrorDetails(c, err, summary)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// pathID parses a positive integer path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

// headerUser reads the requester from X-User-ID. Absent means anonymous.
func headerUser(c *gin.Context) (domain.UserID, error) {
	raw := c.GetHeader(headerUserID)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", headerUserID)
	}
	return domain.UserID(id), nil
}
