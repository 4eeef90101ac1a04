package listing

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// DefaultSearchFields are scanned when the caller configures none.
var DefaultSearchFields = []string{"code", "name", "description"}

// projectedFields is the reduced shape matched items are narrowed to.
var projectedFields = []string{"code", "name", "version", "status"}

// SearchOptions configures a term search over a listing.
type SearchOptions struct {
	Terms         []string
	Fields        []string
	CaseSensitive bool
	PerPage       int
	MaxPages      int
}

// SearchResult is the accumulated outcome of a term search.
type SearchResult struct {
	Items        []map[string]any `json:"items"`
	TotalMatched int              `json:"totalMatched"`
}

// Search filters a paginated listing by substring match: an item matches when
// any configured field's stringified value contains any of the terms under
// the configured case sensitivity. The filter is page-local — no
// deduplication — and matches are projected to {code, name, version, status}.
// Empty terms return an empty result without fetching anything. Continuation
// honors the normalized hasMore until it is false or maxPages is exhausted;
// a fetch error is a soft stop with whatever matched so far.
func Search(ctx context.Context, fetch PageFetcher, opts SearchOptions) SearchResult {
	result := SearchResult{Items: make([]map[string]any, 0)}
	if len(opts.Terms) == 0 {
		return result
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	terms := opts.Terms
	if !opts.CaseSensitive {
		terms = make([]string, len(opts.Terms))
		for i, term := range opts.Terms {
			terms[i] = strings.ToLower(term)
		}
	}

	perPage := ClampPerPage(opts.PerPage)
	maxPages := ClampMaxPages(opts.MaxPages)

	for page := 1; page <= maxPages; page++ {
		doc, err := fetch(ctx, page, perPage)
		if err != nil {
			log.Printf("<listing> search page %d fetch failed, returning %d matches: %v", page, result.TotalMatched, err)
			return result
		}
		normalized := NormalizePage(doc)
		if len(normalized.Items) == 0 {
			return result
		}
		for _, item := range normalized.Items {
			if matchItem(item, fields, terms, opts.CaseSensitive) {
				result.Items = append(result.Items, project(item))
				result.TotalMatched++
			}
		}
		if !normalized.HasMore {
			return result
		}
	}
	return result
}

func matchItem(item map[string]any, fields, terms []string, caseSensitive bool) bool {
	for _, field := range fields {
		value, ok := item[field]
		if !ok || value == nil {
			continue
		}
		text := stringify(value)
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		for _, term := range terms {
			if strings.Contains(text, term) {
				return true
			}
		}
	}
	return false
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func project(item map[string]any) map[string]any {
	out := make(map[string]any, len(projectedFields))
	for _, field := range projectedFields {
		if value, ok := item[field]; ok {
			out[field] = value
		}
	}
	return out
}
