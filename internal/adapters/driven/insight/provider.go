// Package insight rewrites the why-matched reasons of ranked profiles with a
// chat model. Scores and ordering are never touched.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.InsightProvider = (*Provider)(nil)

// DefaultTimeout bounds one enrichment call.
const DefaultTimeout = 10 * time.Second

const (
	maxReasons      = 3
	maxPromptNodes  = 3
	maxOutputTokens = 1024
)

const systemPrompt = `You explain why candidate profiles match a search.
For each profile, write at most three short reasons (under 12 words each)
grounded only in the experience snippets given. Reply with JSON only:
{"matches":[{"userId":<id>,"reasons":["..."]}]}`

// completer sends one system+user exchange to a chat model.
type completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
	Model() string
}

// Provider implements driven.InsightProvider on top of a chat model.
type Provider struct {
	client  completer
	timeout time.Duration
}

// New creates a provider for the configured backend. It returns nil when
// enrichment is disabled.
func New(settings domain.InsightSettings) (driven.InsightProvider, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	var (
		client completer
		err    error
	)
	switch settings.Provider {
	case domain.InsightProviderOpenAI:
		client, err = newOpenAIClient(settings)
	case domain.InsightProviderAnthropic:
		client, err = newAnthropicClient(settings)
	default:
		return nil, fmt.Errorf("unsupported insight provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return newProvider(client, settings.Timeout), nil
}

func newProvider(client completer, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Provider{client: client, timeout: timeout}
}

// Enrich replaces WhyMatched on each result the model returned reasons for.
// Results the model skipped keep their default reasons.
func (p *Provider) Enrich(ctx context.Context, query string, matches []domain.MatchResult) ([]domain.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reply, err := p.client.Complete(ctx, systemPrompt, buildPrompt(query, matches), maxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("insight %s: %w", p.client.Model(), err)
	}

	reasons, err := parseReasons(reply)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MatchResult, len(matches))
	rewritten := 0
	for i, m := range matches {
		out[i] = m.Clone()
		if r := reasons[m.UserID]; len(r) > 0 {
			out[i].WhyMatched = r
			rewritten++
		}
	}
	logger.Debug("insight: rewrote reasons for %d of %d profiles", rewritten, len(matches))
	return out, nil
}

func buildPrompt(query string, matches []domain.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search: %s\n\n", strings.TrimSpace(query))
	for _, m := range matches {
		fmt.Fprintf(&b, "Profile %d (score %.2f)\n", m.UserID, m.Score)
		for i, n := range m.MatchedNodes {
			if i == maxPromptNodes {
				break
			}
			fmt.Fprintf(&b, "- %s: %s [%s]\n", n.EntityType, n.Snippet, n.Signal)
		}
		b.WriteString("\n")
	}
	return b.String()
}

type reasonsReply struct {
	Matches []struct {
		UserID  domain.UserID `json:"userId"`
		Reasons []string      `json:"reasons"`
	} `json:"matches"`
}

// parseReasons decodes the model reply, tolerating a fenced code block.
func parseReasons(reply string) (map[domain.UserID][]string, error) {
	reply = strings.TrimSpace(reply)
	if start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}"); start >= 0 && end > start {
		reply = reply[start : end+1]
	}

	var parsed reasonsReply
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("insight: decode reply: %w", err)
	}

	out := make(map[domain.UserID][]string, len(parsed.Matches))
	for _, m := range parsed.Matches {
		var reasons []string
		for _, r := range m.Reasons {
			if r = strings.TrimSpace(r); r != "" {
				reasons = append(reasons, r)
			}
			if len(reasons) == maxReasons {
				break
			}
		}
		if len(reasons) > 0 {
			out[m.UserID] = reasons
		}
	}
	return out, nil
}
