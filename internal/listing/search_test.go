package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func integration(code, name, status string) map[string]any {
	return map[string]any{
		"code":        code,
		"name":        name,
		"version":     "01.00.0000",
		"status":      status,
		"description": "syncs " + name,
		"internalId":  12345,
	}
}

func TestSearch(t *testing.T) {
	t.Run("empty terms return immediately without fetching", func(t *testing.T) {
		calls := 0
		result := Search(context.Background(), pagesFetcher(nil, &calls), SearchOptions{})
		assert.Empty(t, result.Items)
		assert.Zero(t, result.TotalMatched)
		assert.Zero(t, calls)
	})

	t.Run("case-insensitive by default, projected shape", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{
				integration("ORDER_SYNC", "Order Sync", "ACTIVATED"),
				integration("INV_LOAD", "Inventory Load", "CONFIGURED"),
			}},
		}
		calls := 0
		result := Search(context.Background(), pagesFetcher(pages, &calls), SearchOptions{
			Terms: []string{"order"},
		})
		require.Equal(t, 1, result.TotalMatched)
		match := result.Items[0]
		assert.Equal(t, "ORDER_SYNC", match["code"])
		assert.Equal(t, "Order Sync", match["name"])
		assert.Equal(t, "01.00.0000", match["version"])
		assert.Equal(t, "ACTIVATED", match["status"])
		assert.NotContains(t, match, "description")
		assert.NotContains(t, match, "internalId")
	})

	t.Run("case-sensitive when asked", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{integration("ORDER_SYNC", "Order Sync", "ACTIVATED")}},
		}
		calls := 0
		result := Search(context.Background(), pagesFetcher(pages, &calls), SearchOptions{
			Terms:         []string{"order"},
			CaseSensitive: true,
		})
		assert.Zero(t, result.TotalMatched)
	})

	t.Run("any field, any term", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{
				integration("A", "Alpha", "ACTIVATED"),
				integration("B", "Beta", "ACTIVATED"),
			}},
		}
		calls := 0
		result := Search(context.Background(), pagesFetcher(pages, &calls), SearchOptions{
			Terms:  []string{"alpha", "beta"},
			Fields: []string{"name"},
		})
		assert.Equal(t, 2, result.TotalMatched)
	})

	t.Run("non-string fields are stringified", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{
				map[string]any{"code": "A", "name": "Alpha", "revision": 42.0},
			}},
		}
		calls := 0
		result := Search(context.Background(), pagesFetcher(pages, &calls), SearchOptions{
			Terms:  []string{"42"},
			Fields: []string{"revision"},
		})
		assert.Equal(t, 1, result.TotalMatched)
	})

	t.Run("no dedup across pages", func(t *testing.T) {
		dup := map[string]any{"items": []any{integration("A", "Alpha", "ACTIVATED")}, "hasMore": true}
		pages := []any{dup, dup}
		calls := 0
		result := Search(context.Background(), pagesFetcher(pages, &calls), SearchOptions{
			Terms:    []string{"alpha"},
			MaxPages: 2,
		})
		assert.Equal(t, 2, result.TotalMatched)
	})

	t.Run("honors hasMore until false", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{integration("A", "Alpha", "ACTIVATED")}, "hasMore": true},
			map[string]any{"items": []any{integration("B", "Beta", "ACTIVATED")}},
		}
		calls := 0
		result := Search(context.Background(), pagesFetcher(pages, &calls), SearchOptions{
			Terms: []string{"a"},
		})
		assert.Equal(t, 2, calls)
		assert.Equal(t, 2, result.TotalMatched)
	})

	t.Run("fetch error soft-stops with partial matches", func(t *testing.T) {
		fetch := func(_ context.Context, page, _ int) (any, error) {
			if page == 2 {
				return nil, errors.New("upstream unavailable")
			}
			return map[string]any{"items": []any{integration("A", "Alpha", "ACTIVATED")}, "hasMore": true}, nil
		}
		result := Search(context.Background(), fetch, SearchOptions{Terms: []string{"alpha"}})
		assert.Equal(t, 1, result.TotalMatched)
	})
}
