package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(code string) map[string]any {
	return map[string]any{"code": code}
}

// pagesFetcher replays a fixed page sequence and records how many fetches
// happened. Pages beyond the script return an empty document.
func pagesFetcher(pages []any, calls *int) PageFetcher {
	return func(_ context.Context, page, _ int) (any, error) {
		*calls++
		if page-1 < len(pages) {
			return pages[page-1], nil
		}
		return map[string]any{}, nil
	}
}

func TestNormalizePage(t *testing.T) {
	t.Run("top-level envelope", func(t *testing.T) {
		page := NormalizePage(map[string]any{
			"items":   []any{item("A")},
			"hasMore": true,
		})
		require.Len(t, page.Items, 1)
		assert.True(t, page.HasMore)
	})

	t.Run("content envelope", func(t *testing.T) {
		page := NormalizePage(map[string]any{
			"content": map[string]any{"items": []any{item("A")}, "hasMore": true},
		})
		assert.Len(t, page.Items, 1)
		assert.True(t, page.HasMore)
	})

	t.Run("data envelope", func(t *testing.T) {
		page := NormalizePage(map[string]any{
			"data": map[string]any{"items": []any{item("A"), item("B")}},
		})
		assert.Len(t, page.Items, 2)
		assert.False(t, page.HasMore)
	})

	t.Run("first present items key wins", func(t *testing.T) {
		page := NormalizePage(map[string]any{
			"items": []any{item("TOP")},
			"data":  map[string]any{"items": []any{item("NESTED")}},
		})
		require.Len(t, page.Items, 1)
		assert.Equal(t, "TOP", page.Items[0]["code"])
	})

	t.Run("hasMore is OR across locations", func(t *testing.T) {
		page := NormalizePage(map[string]any{
			"hasMore": false,
			"content": map[string]any{"hasMore": true},
		})
		assert.True(t, page.HasMore)
	})

	t.Run("malformed envelope normalizes to empty", func(t *testing.T) {
		for _, doc := range []any{nil, "text", []any{1}, map[string]any{"rows": []any{}}} {
			page := NormalizePage(doc)
			assert.Empty(t, page.Items)
			assert.False(t, page.HasMore)
		}
	})
}

func TestFetchAll(t *testing.T) {
	t.Run("dedup across pages and stop on empty", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{item("A")}, "hasMore": true},
			map[string]any{"items": []any{item("A"), item("B")}, "hasMore": true},
			map[string]any{"items": []any{}, "hasMore": true},
		}
		calls := 0
		items := FetchAll(context.Background(), pagesFetcher(pages, &calls), 10, 10)
		require.Len(t, items, 2)
		assert.Equal(t, "A", items[0]["code"])
		assert.Equal(t, "B", items[1]["code"])
		assert.Equal(t, 3, calls)
	})

	t.Run("three stale pages terminate despite hasMore", func(t *testing.T) {
		stale := map[string]any{"items": []any{item("A")}, "hasMore": true}
		pages := []any{stale, stale, stale, stale, stale, stale}
		calls := 0
		items := FetchAll(context.Background(), pagesFetcher(pages, &calls), 10, 100)
		assert.Len(t, items, 1)
		// page 1 adds A, pages 2-4 are stale; page 5 is never fetched.
		assert.Equal(t, 4, calls)
	})

	t.Run("bounded by maxPages", func(t *testing.T) {
		calls := 0
		fetch := func(_ context.Context, page, _ int) (any, error) {
			calls++
			return map[string]any{
				"items":   []any{item(string(rune('A' + page)))},
				"hasMore": true,
			}, nil
		}
		items := FetchAll(context.Background(), fetch, 10, 5)
		assert.Len(t, items, 5)
		assert.Equal(t, 5, calls)
	})

	t.Run("fetch error returns partial accumulation", func(t *testing.T) {
		fetch := func(_ context.Context, page, _ int) (any, error) {
			if page == 2 {
				return nil, errors.New("upstream unavailable")
			}
			return map[string]any{"items": []any{item("A")}, "hasMore": true}, nil
		}
		items := FetchAll(context.Background(), fetch, 10, 10)
		require.Len(t, items, 1)
		assert.Equal(t, "A", items[0]["code"])
	})

	t.Run("items without code are skipped", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{map[string]any{"name": "anon"}, item("A")}},
		}
		calls := 0
		items := FetchAll(context.Background(), pagesFetcher(pages, &calls), 10, 10)
		require.Len(t, items, 1)
		assert.Equal(t, "A", items[0]["code"])
	})

	t.Run("hasMore false stops immediately", func(t *testing.T) {
		pages := []any{
			map[string]any{"items": []any{item("A")}},
		}
		calls := 0
		items := FetchAll(context.Background(), pagesFetcher(pages, &calls), 10, 10)
		assert.Len(t, items, 1)
		assert.Equal(t, 1, calls)
	})
}

func TestClamps(t *testing.T) {
	assert.Equal(t, DefaultPerPage, ClampPerPage(0))
	assert.Equal(t, MaxPerPage, ClampPerPage(5000))
	assert.Equal(t, 25, ClampPerPage(25))
	assert.Equal(t, DefaultMaxPages, ClampMaxPages(-1))
	assert.Equal(t, MaxPages, ClampMaxPages(1000))
	assert.Equal(t, 3, ClampMaxPages(3))
}
