// Package listing collects paginated upstream listings into flat result
// sets. The upstream wraps pages in one of three envelope shapes and its
// hasMore flag is unreliable, so aggregation is defensive: envelopes are
// normalized in one place, items are deduplicated by business code, and a
// stale-page counter bounds termination even when the API keeps signalling
// more data.
package listing

import (
	"context"
	"log"
)

const (
	// DefaultPerPage and friends clamp caller-supplied pagination knobs.
	DefaultPerPage  = 100
	MaxPerPage      = 1000
	DefaultMaxPages = 50
	MaxPages        = 200

	// staleThreshold is how many consecutive pages may contribute zero new
	// items before aggregation gives up on the upstream's hasMore flag.
	staleThreshold = 3
)

// PageFetcher obtains one raw listing page from the upstream.
type PageFetcher func(ctx context.Context, page, perPage int) (any, error)

// Page is a normalized listing page.
type Page struct {
	Items   []map[string]any
	HasMore bool
}

// NormalizePage reduces the three possible envelope shapes to one. Items come
// from the first present of a top-level "items" key, "content.items" and
// "data.items"; hasMore is the OR of the booleans present at the same three
// locations. Anything unrecognized normalizes to an empty page.
func NormalizePage(doc any) Page {
	var page Page
	root, ok := doc.(map[string]any)
	if !ok {
		return page
	}
	candidates := []map[string]any{root}
	for _, key := range []string{"content", "data"} {
		if nested, ok := root[key].(map[string]any); ok {
			candidates = append(candidates, nested)
		}
	}
	for _, envelope := range candidates {
		if more, ok := envelope["hasMore"].(bool); ok {
			page.HasMore = page.HasMore || more
		}
	}
	for _, envelope := range candidates {
		raw, ok := envelope["items"].([]any)
		if !ok {
			continue
		}
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				page.Items = append(page.Items, m)
			}
		}
		break
	}
	return page
}

// ClampPerPage applies the default and bounds for the perPage knob.
func ClampPerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// ClampMaxPages applies the default and bounds for the maxPages knob.
func ClampMaxPages(maxPages int) int {
	if maxPages <= 0 {
		return DefaultMaxPages
	}
	if maxPages > MaxPages {
		return MaxPages
	}
	return maxPages
}

// FetchAll drains a paginated listing into a single deduplicated slice.
// Items are keyed by their "code" field; an item whose code was seen on an
// earlier page is dropped, and items without a code are skipped. Pages are
// fetched strictly in order. Aggregation stops on: an empty page, a false
// hasMore, staleThreshold consecutive pages with no new items, maxPages, or
// a fetch error — errors are swallowed here because the partial accumulation
// is still useful to the caller.
func FetchAll(ctx context.Context, fetch PageFetcher, perPage, maxPages int) []map[string]any {
	perPage = ClampPerPage(perPage)
	maxPages = ClampMaxPages(maxPages)

	items := make([]map[string]any, 0)
	seen := make(map[string]struct{})
	stalePages := 0

	for page := 1; page <= maxPages; page++ {
		doc, err := fetch(ctx, page, perPage)
		if err != nil {
			log.Printf("<listing> page %d fetch failed, returning %d items: %v", page, len(items), err)
			return items
		}
		normalized := NormalizePage(doc)
		if len(normalized.Items) == 0 {
			return items
		}
		added := 0
		for _, item := range normalized.Items {
			code, _ := item["code"].(string)
			if code == "" {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			items = append(items, item)
			added++
		}
		if added == 0 {
			stalePages++
			if stalePages >= staleThreshold {
				log.Printf("<listing> %d consecutive stale pages, stopping at page %d", stalePages, page)
				return items
			}
		} else {
			stalePages = 0
		}
		if !normalized.HasMore {
			return items
		}
	}
	return items
}
