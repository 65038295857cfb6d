package http

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"chessbot/internal/core"
	"chessbot/internal/processor"
	"chessbot/internal/service"

	fws "github.com/fasthttp/websocket"
)

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readMessage(t *testing.T, conn *fws.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWatchStreamsMoves(t *testing.T) {
	svc := service.New()
	proc := processor.New(svc, 1)
	app := NewFiberApp(proc, svc, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() {
		svc.Shutdown()
		app.Shutdown()
		proc.Close()
	})

	created := proc.Execute(processor.NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerHuman},
	}))
	gameID := created.Data.(core.GameResponse).GameID

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/games/"+gameID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeGameState {
		t.Fatalf("first message type = %s", msg.Type)
	}

	if err := conn.WriteJSON(map[string]any{"type": MessageTypeMove, "payload": core.MoveRequest{Move: "e2e4"}}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessageTypeGameState {
		t.Fatalf("message type = %s: %s", msg.Type, msg.Payload)
	}
	var state core.GameResponse
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		t.Fatal(err)
	}
	if len(state.Moves) != 1 || state.Turn != "b" {
		t.Errorf("pushed state = %+v", state)
	}

	if err := conn.WriteJSON(map[string]any{"type": MessageTypeMove, "payload": core.MoveRequest{Move: "e2e5"}}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessageTypeError {
		t.Fatalf("message type = %s, want error", msg.Type)
	}
	var errResp core.ErrorResponse
	if err := json.Unmarshal(msg.Payload, &errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Code != core.ErrInvalidMove {
		t.Errorf("error code = %s", errResp.Code)
	}

	if err := conn.WriteJSON(map[string]any{"type": "resign"}); err != nil {
		t.Fatal(err)
	}
	if msg = readMessage(t, conn); msg.Type != MessageTypeError {
		t.Errorf("unknown type answered with %s", msg.Type)
	}
}

func TestWatchEndsWhenGameDeleted(t *testing.T) {
	svc := service.New()
	proc := processor.New(svc, 1)
	app := NewFiberApp(proc, svc, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() {
		svc.Shutdown()
		app.Shutdown()
		proc.Close()
	})

	// Pooled connections are reused across rounds, so a reader left behind by
	// one round would write into the next one
	for round := 0; round < 10; round++ {
		created := proc.Execute(processor.NewCreateGameCommand(core.CreateGameRequest{
			White: core.PlayerConfig{Type: core.PlayerHuman},
			Black: core.PlayerConfig{Type: core.PlayerHuman},
		}))
		gameID := created.Data.(core.GameResponse).GameID

		conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/games/"+gameID, nil)
		if err != nil {
			t.Fatalf("round %d dial: %v", round, err)
		}
		if msg := readMessage(t, conn); msg.Type != MessageTypeGameState {
			t.Fatalf("round %d first message = %s", round, msg.Type)
		}

		for i := 0; i < 20; i++ {
			if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
				break
			}
		}
		if resp := proc.Execute(processor.NewDeleteGameCommand(gameID)); !resp.Success {
			t.Fatalf("round %d delete: %+v", round, resp.Error)
		}

		// Drain replies until the server closes the socket, which must carry the missing game error
		sawNotFound := false
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			var msg received
			if err := conn.ReadJSON(&msg); err != nil {
				break
			}
			if msg.Type != MessageTypeError {
				continue
			}
			var errResp core.ErrorResponse
			if json.Unmarshal(msg.Payload, &errResp) == nil && errResp.Code == core.ErrGameNotFound {
				sawNotFound = true
			}
		}
		conn.Close()
		if !sawNotFound {
			t.Errorf("round %d: no game-not-found error before close", round)
		}
	}
}
