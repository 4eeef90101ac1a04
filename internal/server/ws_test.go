package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestBridge(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()
	mcpServer := server.NewMCPServer("test", "0.0.1", server.WithToolCapabilities(false))
	srv := httptest.NewServer(newWSHandler(mcpServer))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func TestWSBridge(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn := dialTestBridge(t, ctx)

	t.Run("one frame in, one frame out", func(t *testing.T) {
		request := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
		require.NoError(t, wsjson.Write(ctx, conn, request))

		var response map[string]any
		require.NoError(t, wsjson.Read(ctx, conn, &response))
		assert.Equal(t, "2.0", response["jsonrpc"])
		assert.Equal(t, float64(1), response["id"])
	})

	t.Run("notifications are not answered", func(t *testing.T) {
		notification := json.RawMessage(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
		require.NoError(t, wsjson.Write(ctx, conn, notification))

		// The next frame must belong to the follow-up request, not the
		// notification.
		request := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"ping"}`)
		require.NoError(t, wsjson.Write(ctx, conn, request))

		var response map[string]any
		require.NoError(t, wsjson.Read(ctx, conn, &response))
		assert.Equal(t, float64(2), response["id"])
	})

	t.Run("malformed frame yields a JSON-RPC error", func(t *testing.T) {
		request := json.RawMessage(`{"jsonrpc":"2.0","id":3,"method":"no/such/method"}`)
		require.NoError(t, wsjson.Write(ctx, conn, request))

		var response map[string]any
		require.NoError(t, wsjson.Read(ctx, conn, &response))
		assert.Contains(t, response, "error")
	})
}
