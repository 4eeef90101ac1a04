package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

// wsHandler exposes the MCP server over a bidirectional JSON-RPC WebSocket:
// every text frame is one JSON-RPC request, answered with one response
// frame. Connection state is per-session; nothing is shared between
// sessions.
type wsHandler struct {
	mcpServer *server.MCPServer
}

func newWSHandler(mcpServer *server.MCPServer) http.Handler {
	return &wsHandler{mcpServer: mcpServer}
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("<ws> accept failed: %v", err)
		return
	}
	session := uuid.NewString()
	log.Printf("<ws> session %s connected from %s", session, r.RemoteAddr)
	defer conn.Close(websocket.StatusInternalError, "session ended")

	ctx := r.Context()
	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				log.Printf("<ws> session %s closed", session)
			} else {
				log.Printf("<ws> session %s read failed: %v", session, err)
			}
			return
		}
		// Notifications produce no response message.
		response := h.mcpServer.HandleMessage(ctx, raw)
		if response == nil {
			continue
		}
		if err := wsjson.Write(ctx, conn, response); err != nil {
			log.Printf("<ws> session %s write failed: %v", session, err)
			return
		}
	}
}
