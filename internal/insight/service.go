// Package insight bridges the MCP tool surface to the search and listing
// engines: it resolves integration versions, fetches design documents and
// shapes engine output into plain JSON values for the transport.
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/sudhagarjb/oic-mcp/internal/listing"
	"github.com/sudhagarjb/oic-mcp/internal/search"
)

const (
	// DefaultMaxMatches and MaxMatches bound step-search results.
	DefaultMaxMatches = 20
	MaxMatches        = 200
)

// DesignAPI is the slice of the upstream client the engine needs. Tests
// supply fakes.
type DesignAPI interface {
	ListIntegrations(ctx context.Context, onlyActivated *bool, limit, page int) (any, error)
	GetIntegration(ctx context.Context, identifier, version string) (any, error)
}

// Service owns one upstream API handle. It holds no other state and is safe
// for concurrent use.
type Service struct {
	api DesignAPI
}

// NewService builds a Service over an upstream API.
func NewService(api DesignAPI) *Service {
	return &Service{api: api}
}

// integrationsFetcher adapts the integrations listing to the aggregator's
// page-fetcher contract.
func (s *Service) integrationsFetcher(onlyActivated *bool) listing.PageFetcher {
	return func(ctx context.Context, page, perPage int) (any, error) {
		return s.api.ListIntegrations(ctx, onlyActivated, perPage, page)
	}
}

// ListAllIntegrations drains the integrations listing across pages,
// deduplicated by integration code.
func (s *Service) ListAllIntegrations(ctx context.Context, onlyActivated *bool, perPage, maxPages int) map[string]any {
	items := listing.FetchAll(ctx, s.integrationsFetcher(onlyActivated), perPage, maxPages)
	return map[string]any{
		"items": items,
		"total": len(items),
	}
}

// SearchIntegrations filters the integrations listing by substring terms.
func (s *Service) SearchIntegrations(ctx context.Context, opts listing.SearchOptions) listing.SearchResult {
	return listing.Search(ctx, s.integrationsFetcher(nil), opts)
}

// ResolveVersion finds the version recorded for an integration code in the
// listing. A code that never appears is a hard failure: without a version no
// design document can be fetched.
func (s *Service) ResolveVersion(ctx context.Context, code string) (string, error) {
	items := listing.FetchAll(ctx, s.integrationsFetcher(nil), 0, 0)
	for _, item := range items {
		itemCode, _ := item["code"].(string)
		if !strings.EqualFold(itemCode, code) {
			continue
		}
		if version, _ := item["version"].(string); version != "" {
			return version, nil
		}
	}
	return "", fmt.Errorf("cannot resolve version for integration %q: not present in listing", code)
}

// fetchDesign obtains one unwrapped design document, resolving the version
// first when the caller left it empty.
func (s *Service) fetchDesign(ctx context.Context, code, version string) (any, string, error) {
	if version == "" {
		resolved, err := s.ResolveVersion(ctx, code)
		if err != nil {
			return nil, "", err
		}
		version = resolved
	}
	doc, err := s.api.GetIntegration(ctx, code, version)
	if err != nil {
		return nil, "", fmt.Errorf("fetch integration %s/%s: %w", code, version, err)
	}
	return search.Unwrap(doc), version, nil
}

// DescribeIntegration summarizes one integration version: a step outline,
// control-flow tallies and the endpoint roster.
func (s *Service) DescribeIntegration(ctx context.Context, code, version string, maxLines int) (map[string]any, error) {
	doc, version, err := s.fetchDesign(ctx, code, version)
	if err != nil {
		return nil, err
	}
	controls := search.ClassifyControls(doc)
	return map[string]any{
		"code":     code,
		"version":  version,
		"outline":  search.Outline(doc, maxLines),
		"controls": controls,
		"endpoints": map[string]any{
			"sources": search.MatchEndpoints(doc, "source"),
			"targets": search.MatchEndpoints(doc, "target"),
		},
	}, nil
}

// FindStep locates named steps in an integration's design document and
// extracts evidence from each hit. An unmatched step name yields an empty
// match list, not an error.
func (s *Service) FindStep(ctx context.Context, code, version, step string, maxMatches, maxSnippets int) (map[string]any, error) {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	if maxMatches > MaxMatches {
		maxMatches = MaxMatches
	}
	doc, version, err := s.fetchDesign(ctx, code, version)
	if err != nil {
		return nil, err
	}
	nodes := search.FindNodes(doc, step, maxMatches)
	matches := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		evidence := search.Extract(node, maxSnippets)
		match := map[string]any{
			"name":     node["name"],
			"evidence": evidence,
		}
		if t, ok := node["type"].(string); ok {
			match["type"] = t
		}
		if role, ok := node["role"].(string); ok {
			match["role"] = role
		}
		matches = append(matches, match)
	}
	return map[string]any{
		"code":         code,
		"version":      version,
		"step":         step,
		"matches":      matches,
		"totalMatches": len(matches),
	}, nil
}

// IntegrationEndpoints lists an integration's endpoint entries, filtered by
// role when one is given.
func (s *Service) IntegrationEndpoints(ctx context.Context, code, version, role string) (map[string]any, error) {
	doc, version, err := s.fetchDesign(ctx, code, version)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"code":    code,
		"version": version,
	}
	if role != "" {
		out["endpoints"] = search.MatchEndpoints(doc, role)
	} else {
		out["sources"] = search.MatchEndpoints(doc, "source")
		out["targets"] = search.MatchEndpoints(doc, "target")
	}
	return out, nil
}

// QueryIntegration evaluates a JSONPath expression against an integration's
// design document.
func (s *Service) QueryIntegration(ctx context.Context, code, version, selector string, maxResults int) (map[string]any, error) {
	doc, version, err := s.fetchDesign(ctx, code, version)
	if err != nil {
		return nil, err
	}
	results, err := search.Query(doc, selector, maxResults)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"code":    code,
		"version": version,
		"query":   selector,
		"results": results,
	}, nil
}
