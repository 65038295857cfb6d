// FILE: internal/http/websocket.go
package http

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"chessbot/internal/core"
	"chessbot/internal/processor"

	"github.com/gofiber/websocket/v2"
)

const (
	MessageTypeGameState = "gameState"
	MessageTypeMove      = "move"
	MessageTypeError     = "error"
)

// Message is the websocket envelope in both directions
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// wsConn serializes writes to one websocket connection
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) send(msgType string, payload any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(outbound{Type: msgType, Payload: payload})
}

func (w *wsConn) sendError(resp *core.ErrorResponse) error {
	return w.send(MessageTypeError, resp)
}

// Watch streams game state to a websocket client and accepts moves from it.
// State is pushed on connect and after every change to the game. The reader
// goroutine never outlives Watch: the pooled *websocket.Conn is reused once it returns.
func (h *HTTPHandler) Watch(c *websocket.Conn) {
	gameID := c.Params("gameId")
	conn := &wsConn{conn: c}

	ctx, cancel := context.WithCancel(context.Background())
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		h.readMoves(ctx, cancel, gameID, conn)
	}()

	defer func() {
		cancel()
		// Unblocks ReadMessage in the reader
		_ = c.Close()
		<-readerDone
	}()

	for {
		resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
		if !resp.Success {
			_ = conn.sendError(resp.Error)
			return
		}
		state := resp.Data.(core.GameResponse)
		if err := conn.send(MessageTypeGameState, state); err != nil {
			return
		}

		notify, err := h.svc.RegisterWait(ctx, gameID, len(state.Moves))
		if err != nil {
			_ = conn.sendError(&core.ErrorResponse{Error: "game not found", Code: core.ErrGameNotFound})
			return
		}

		select {
		case <-notify:
		case <-ctx.Done():
			return
		}
	}
}

// readMoves handles inbound messages until the client disconnects
func (h *HTTPHandler) readMoves(ctx context.Context, cancel context.CancelFunc, gameID string, conn *wsConn) {
	defer cancel()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = conn.sendError(&core.ErrorResponse{Error: "malformed message", Code: core.ErrInvalidRequest, Details: err.Error()})
			continue
		}

		switch msg.Type {
		case MessageTypeMove:
			var req core.MoveRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				_ = conn.sendError(&core.ErrorResponse{Error: "malformed move payload", Code: core.ErrInvalidRequest, Details: err.Error()})
				continue
			}
			if err := validate.Struct(req); err != nil {
				_ = conn.sendError(&core.ErrorResponse{Error: "validation failed", Code: core.ErrInvalidRequest, Details: describeValidation(err)})
				continue
			}
			resp := h.proc.Execute(processor.NewMakeMoveCommand(gameID, req))
			if !resp.Success {
				_ = conn.sendError(resp.Error)
			}
		default:
			log.Printf("websocket: unknown message type %q for game %s", msg.Type, gameID)
			_ = conn.sendError(&core.ErrorResponse{Error: "unknown message type: " + msg.Type, Code: core.ErrInvalidRequest})
		}

		if ctx.Err() != nil {
			return
		}
	}
}
