package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// statusFor maps domain errors to HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidEmbeddingDimension),
		errors.Is(err, domain.ErrEmptyQueryEmbedding):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrDanglingReference):
		return http.StatusUnprocessableEntity, "dangling_reference"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, domain.ErrRetrievalTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable, "embedding_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c *gin.Context, err error) {
	writeErrorDetails(c, err, nil)
}

func writeErrorDetails(c *gin.Context, err error, details any) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, errorBody{
		Error:     code,
		Message:   msg,
		RequestID: c.GetString(ctxRequestID),
		Details:   details,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{
		Error:     "invalid_input",
		Message:   msg,
		RequestID: c.GetString(ctxRequestID),
	})
}
