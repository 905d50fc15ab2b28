// internal/api/websocket_handlers.go
package api

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apperrors "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
)

// SessionWebSocket streams the events of one session and accepts
// commands on the same socket.
func (h *Handler) SessionWebSocket(c *gin.Context) {
	session, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", map[string]interface{}{
			"session_id": session.ID(),
			"error":      err.Error(),
		})
		return
	}

	client := NewWebSocketClient(&WebSocketConnWrapper{conn}, session.ID())
	h.Hub.Register(client)
	defer h.Hub.Unregister(client)

	go h.handleWebSocketWrites(client)
	h.sendWelcomeMessage(client, session)
	h.handleWebSocketReads(client, session)
}

func (h *Handler) sendWelcomeMessage(client *WebSocketClient, session *simulation.Session) {
	snapshot := session.Snapshot()
	client.SendMessage(map[string]interface{}{
		"type":       "connected",
		"session_id": session.ID(),
		"snapshot":   snapshot,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

// handleWebSocketReads runs until the socket fails or is closed
func (h *Handler) handleWebSocketReads(client *WebSocketClient, session *simulation.Session) {
	defer client.Close()

	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.UpdatePing()
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", map[string]interface{}{
					"session_id": client.sessionID,
					"error":      err.Error(),
				})
			}
			return
		}
		client.UpdatePing()
		h.handleMessage(client, session, data)
	}
}

// handleWebSocketWrites drains the send queue and keeps the socket alive
func (h *Handler) handleWebSocketWrites(client *WebSocketClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case <-client.done:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleMessage(client *WebSocketClient, session *simulation.Session, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		client.SendError(ErrorBadMessage, "message is not valid JSON")
		return
	}

	if cmd.Type == "ping" {
		client.SendMessage(map[string]interface{}{
			"type":      "pong",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	result, err := applyCommand(session, cmd)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordError(string(apperrors.TypeOf(err)), "websocket")
		}
		client.SendError(apperrors.CodeOf(err), err.Error())
		return
	}
	client.SendMessage(struct {
		Type string `json:"type"`
		CommandResult
	}{Type: "ack", CommandResult: result})
}
