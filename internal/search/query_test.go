package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	doc := decode(t, `{
		"endPoints": [
			{"role": "source", "connection": {"id": "REST_CONN"}},
			{"role": "target", "connection": {"id": "DB_CONN"}}
		]
	}`)

	t.Run("recursive descent", func(t *testing.T) {
		results, err := Query(doc, "$..connection.id", 0)
		require.NoError(t, err)
		assert.ElementsMatch(t, []any{"REST_CONN", "DB_CONN"}, results)
	})

	t.Run("truncated at maxResults", func(t *testing.T) {
		results, err := Query(doc, "$.endPoints[*]", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("no matches is empty, not an error", func(t *testing.T) {
		results, err := Query(doc, "$.nothing.here", 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := Query(doc, "$[", 0)
		assert.Error(t, err)
	})
}
