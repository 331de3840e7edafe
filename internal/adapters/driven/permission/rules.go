// Package permission provides a rule-file backed permission evaluator.
//
// Rules are TOML:
//
//	[[rule]]
//	node = "node-42"
//	allow = [7, 9]   # when set, only these users see the node
//	deny = [3]       # these users never see the node
//
// Nodes without rules are visible to everyone.
package permission

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// Ensure Rules implements the interface.
var _ driven.PermissionEvaluator = (*Rules)(nil)

// Rule restricts visibility of one node.
type Rule struct {
	Node  string          `toml:"node"`
	Allow []domain.UserID `toml:"allow"`
	Deny  []domain.UserID `toml:"deny"`
}

type ruleFile struct {
	Rule []Rule `toml:"rule"`
}

// Rules evaluates node visibility against a set of rules.
type Rules struct {
	path string

	mu     sync.RWMutex
	byNode map[string][]Rule
}

// NewRules builds an evaluator from in-memory rules.
func NewRules(rules []Rule) (*Rules, error) {
	r := &Rules{}
	if err := r.set(rules); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadRules reads rules from a TOML file.
func LoadRules(path string) (*Rules, error) {
	r := &Rules{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the rule file, or "" for in-memory rules.
func (r *Rules) Path() string {
	return r.path
}

// Reload re-reads the rule file. The previous rules stay active on error.
func (r *Rules) Reload() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading permission rules: %w", err)
	}
	var f ruleFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing permission rules %s: %w", r.path, err)
	}
	if err := r.set(f.Rule); err != nil {
		return err
	}
	logger.Debug("loaded %d permission rules from %s", len(f.Rule), r.path)
	return nil
}

func (r *Rules) set(rules []Rule) error {
	byNode := make(map[string][]Rule, len(rules))
	for i, rule := range rules {
		if rule.Node == "" {
			return fmt.Errorf("%w: permission rule %d has no node", domain.ErrInvalidInput, i)
		}
		byNode[rule.Node] = append(byNode[rule.Node], rule)
	}
	r.mu.Lock()
	r.byNode = byNode
	r.mu.Unlock()
	return nil
}

// CanView reports whether the user may see the node.
func (r *Rules) CanView(ctx context.Context, requestingUserID domain.UserID, nodeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	rules := r.byNode[nodeID]
	r.mu.RUnlock()

	for _, rule := range rules {
		if slices.Contains(rule.Deny, requestingUserID) {
			return false, nil
		}
		if len(rule.Allow) > 0 && !slices.Contains(rule.Allow, requestingUserID) {
			return false, nil
		}
	}
	return true, nil
}
