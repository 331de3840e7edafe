package services

import (
	"context"
	"errors"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// filterVisible removes matched nodes the requester may not view.
//
// A profile's score is recomputed from its surviving nodes and profiles left
// without nodes are dropped. Nothing is back-filled. Owner-level nodes (no
// node ID) are always visible. An evaluator error denies the node, except a
// context error which aborts the filter. The input is not modified.
func filterVisible(
	ctx context.Context,
	evaluator driven.PermissionEvaluator,
	requester domain.UserID,
	matches []domain.MatchResult,
) ([]domain.MatchResult, error) {
	out := make([]domain.MatchResult, 0, len(matches))
	if evaluator == nil {
		for _, m := range matches {
			out = append(out, m.Clone())
		}
		return out, nil
	}

	decisions := make(map[string]bool)
	canView := func(nodeID string) (bool, error) {
		if nodeID == "" {
			return true, nil
		}
		if ok, seen := decisions[nodeID]; seen {
			return ok, nil
		}
		ok, err := evaluator.CanView(ctx, requester, nodeID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			if !errors.Is(err, domain.ErrPermissionDenied) {
				logger.Warn("permission check for node %s failed, denying: %v", nodeID, err)
			}
			ok = false
		}
		decisions[nodeID] = ok
		return ok, nil
	}

	filtered := false
	for _, m := range matches {
		kept := make([]domain.MatchedNode, 0, len(m.MatchedNodes))
		for _, n := range m.MatchedNodes {
			ok, err := canView(n.NodeID)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			filtered = true
			continue
		}

		m = m.Clone()
		if len(kept) != len(m.MatchedNodes) {
			filtered = true
			m.MatchedNodes = kept
			m.Score = kept[0].Score
			for _, n := range kept[1:] {
				m.Score = max(m.Score, n.Score)
			}
			m.WhyMatched = whyMatched(kept)
		}
		out = append(out, m)
	}

	if filtered {
		sortMatches(out)
	}
	return out, nil
}
