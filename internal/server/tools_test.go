package server

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestToolResult(t *testing.T) {
	t.Run("raw strings pass through unquoted", func(t *testing.T) {
		result, err := toolResult("plain body")
		require.NoError(t, err)
		assert.Equal(t, "plain body", textOf(t, result))
	})

	t.Run("values marshal as indented JSON", func(t *testing.T) {
		result, err := toolResult(map[string]any{"code": "A"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":"A"}`, textOf(t, result))
	})
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"limit":   float64(25),
		"flag":    true,
		"terms":   []any{"a", 1, "b"},
		"code":    "ORDER_SYNC",
		"badList": "not-a-list",
	}

	assert.Equal(t, 25, argInt(args, "limit"))
	assert.Zero(t, argInt(args, "missing"))

	flag, ok := argBool(args, "flag")
	assert.True(t, flag)
	assert.True(t, ok)
	_, ok = argBool(args, "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, argStrings(args, "terms"))
	assert.Nil(t, argStrings(args, "badList"))

	assert.Equal(t, "ORDER_SYNC", argString(args, "code"))
}

func TestObjectSchema(t *testing.T) {
	schema := objectSchema(map[string]any{"code": stringProp("x")}, "code")
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"code"}, schema.Required)

	// no required fields still serializes as an empty array, not null
	assert.NotNil(t, objectSchema(map[string]any{}).Required)
}
