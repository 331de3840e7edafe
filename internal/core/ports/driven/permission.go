package driven

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// PermissionEvaluator decides which source nodes a requester may see.
// A false result or domain.ErrPermissionDenied filters the node out of results.
type PermissionEvaluator interface {
	CanView(ctx context.Context, requestingUserID domain.UserID, nodeID string) (bool, error)
}
