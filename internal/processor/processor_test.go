package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/game"
	"chessbot/internal/service"
)

var (
	human    = core.PlayerConfig{Type: core.PlayerHuman}
	computer = core.PlayerConfig{Type: core.PlayerComputer, Depth: 1}
)

func newProcessor(t *testing.T) (*Processor, *service.Service) {
	t.Helper()
	svc := service.New()
	proc := New(svc, 1)
	t.Cleanup(func() {
		proc.Close()
		svc.Shutdown()
	})
	return proc, svc
}

func createGame(t *testing.T, proc *Processor, req core.CreateGameRequest) core.GameResponse {
	t.Helper()
	resp := proc.Execute(NewCreateGameCommand(req))
	if !resp.Success {
		t.Fatalf("create game failed: %+v", resp.Error)
	}
	return resp.Data.(core.GameResponse)
}

func expectError(t *testing.T, resp ProcessorResponse, code string) {
	t.Helper()
	if resp.Success {
		t.Fatalf("expected %s, got success", code)
	}
	if resp.Error.Code != code {
		t.Errorf("error code = %s (%s), want %s", resp.Error.Code, resp.Error.Error, code)
	}
}

// waitSettled blocks until the game is no longer pending
func waitSettled(t *testing.T, svc *service.Service, gameID string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		var pending bool
		var moves int
		err := svc.View(gameID, func(g *game.Game) error {
			pending = g.State() == core.StatePending
			moves = g.MoveCount()
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if !pending {
			return
		}
		ch, err := svc.RegisterWait(context.Background(), gameID, moves)
		if err != nil {
			t.Fatal(err)
		}
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
		}
	}
	t.Fatal("computer move did not complete")
}

func TestCreateGame(t *testing.T) {
	proc, _ := newProcessor(t)

	g := createGame(t, proc, core.CreateGameRequest{White: human, Black: human})
	if g.FEN != board.StartingFEN || g.Turn != "w" || g.State != "ongoing" {
		t.Errorf("unexpected new game: %+v", g)
	}
	if len(g.Moves) != 0 || g.LastMove != nil {
		t.Errorf("new game has history: %+v", g)
	}

	fen := "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1"
	g = createGame(t, proc, core.CreateGameRequest{White: human, Black: human, FEN: fen})
	if g.FEN != fen || g.Turn != "b" {
		t.Errorf("FEN setup ignored: %+v", g)
	}

	resp := proc.Execute(NewCreateGameCommand(core.CreateGameRequest{White: human, Black: human, FEN: "not a fen"}))
	expectError(t, resp, core.ErrInvalidFEN)
}

func TestHumanMoves(t *testing.T) {
	proc, _ := newProcessor(t)
	id := createGame(t, proc, core.CreateGameRequest{White: human, Black: human}).GameID

	resp := proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "E2E4"}))
	if !resp.Success {
		t.Fatalf("move failed: %+v", resp.Error)
	}
	g := resp.Data.(core.GameResponse)
	if g.Turn != "b" || len(g.Moves) != 1 || g.Moves[0] != "e2e4" {
		t.Errorf("after e2e4: %+v", g)
	}
	if g.LastMove == nil || g.LastMove.Move != "e2e4" || g.LastMove.PlayerColor != "w" {
		t.Errorf("last move = %+v", g.LastMove)
	}

	expectError(t, proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "e2e4"})), core.ErrInvalidMove)
	expectError(t, proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "d2d4"})), core.ErrInvalidMove)
	expectError(t, proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "cccc"})), core.ErrNotHumanTurn)
	expectError(t, proc.Execute(NewMakeMoveCommand("missing", core.MoveRequest{Move: "e7e5"})), core.ErrGameNotFound)
}

func TestMoveAfterMate(t *testing.T) {
	proc, _ := newProcessor(t)
	id := createGame(t, proc, core.CreateGameRequest{White: human, Black: human}).GameID

	var last ProcessorResponse
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		last = proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: m}))
		if !last.Success {
			t.Fatalf("%s: %+v", m, last.Error)
		}
	}
	g := last.Data.(core.GameResponse)
	if g.State != core.StateBlackWins.String() || !g.Check {
		t.Errorf("after mate: state=%s check=%v", g.State, g.Check)
	}
	expectError(t, proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "a2a3"})), core.ErrGameOver)
}

func TestComputerMove(t *testing.T) {
	proc, svc := newProcessor(t)
	id := createGame(t, proc, core.CreateGameRequest{White: computer, Black: human}).GameID

	expectError(t, proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "e2e4"})), core.ErrNotHumanTurn)

	resp := proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "cccc"}))
	if !resp.Success || !resp.Pending {
		t.Fatalf("computer move not started: %+v", resp)
	}
	waitSettled(t, svc, id)

	resp = proc.Execute(NewGetGameCommand(id))
	g := resp.Data.(core.GameResponse)
	if g.State != "ongoing" || g.Turn != "b" || len(g.Moves) != 1 {
		t.Fatalf("after computer move: %+v", g)
	}
	if g.LastMove == nil || g.LastMove.Depth != 1 || g.LastMove.Nodes == 0 {
		t.Errorf("search details missing: %+v", g.LastMove)
	}
}

func TestComputerTakesHangingRook(t *testing.T) {
	proc, svc := newProcessor(t)
	req := core.CreateGameRequest{White: human, Black: computer, FEN: "7k/8/8/8/8/8/8/K5R1 w - - 0 1"}
	id := createGame(t, proc, req).GameID

	// Rook to g7 leaves the black king a single move, the capture
	resp := proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "g1g7"}))
	if !resp.Success {
		t.Fatalf("g1g7: %+v", resp.Error)
	}
	resp = proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "cccc"}))
	if !resp.Success {
		t.Fatalf("cccc: %+v", resp.Error)
	}
	waitSettled(t, svc, id)

	g := proc.Execute(NewGetGameCommand(id)).Data.(core.GameResponse)
	if g.State != "ongoing" || g.Turn != "w" {
		t.Errorf("after capture: %+v", g)
	}
	if g.LastMove == nil || g.LastMove.Captured != "rook" {
		t.Errorf("last move = %+v", g.LastMove)
	}
}

func TestUndoAndDelete(t *testing.T) {
	proc, svc := newProcessor(t)
	id := createGame(t, proc, core.CreateGameRequest{White: human, Black: human}).GameID

	expectError(t, proc.Execute(NewUndoMoveCommand(id, core.UndoRequest{Count: 1})), core.ErrInvalidRequest)

	proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "e2e4"}))
	proc.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "e7e5"}))

	resp := proc.Execute(NewUndoMoveCommand(id, core.UndoRequest{Count: 2}))
	if !resp.Success {
		t.Fatalf("undo: %+v", resp.Error)
	}
	if g := resp.Data.(core.GameResponse); g.FEN != board.StartingFEN || g.LastMove != nil {
		t.Errorf("after undo: %+v", g)
	}

	if resp := proc.Execute(NewDeleteGameCommand(id)); !resp.Success {
		t.Fatalf("delete: %+v", resp.Error)
	}
	if svc.GameCount() != 0 {
		t.Error("game still stored")
	}
	expectError(t, proc.Execute(NewGetGameCommand(id)), core.ErrGameNotFound)
	expectError(t, proc.Execute(NewDeleteGameCommand(id)), core.ErrGameNotFound)
}

func TestConfigurePlayers(t *testing.T) {
	proc, _ := newProcessor(t)
	id := createGame(t, proc, core.CreateGameRequest{White: human, Black: human}).GameID

	resp := proc.Execute(NewConfigurePlayersCommand(id, core.ConfigurePlayersRequest{
		White: human,
		Black: core.PlayerConfig{Type: core.PlayerComputer},
	}))
	if !resp.Success {
		t.Fatalf("configure: %+v", resp.Error)
	}
	black := resp.Data.(core.GameResponse).Players.Black
	if black.Type != core.PlayerComputer || black.Depth != core.DefaultSearchDepth {
		t.Errorf("black player = %+v", black)
	}
}

func TestBoardAndLegalMoves(t *testing.T) {
	proc, _ := newProcessor(t)
	id := createGame(t, proc, core.CreateGameRequest{White: human, Black: human}).GameID

	resp := proc.Execute(NewGetBoardCommand(id))
	b := resp.Data.(core.BoardResponse)
	if b.FEN != board.StartingFEN || b.Board == "" {
		t.Errorf("board = %+v", b)
	}

	resp = proc.Execute(NewGetLegalMovesCommand(id))
	lm := resp.Data.(core.LegalMovesResponse)
	if lm.Turn != "w" || len(lm.Moves) != 20 {
		t.Errorf("legal moves = %+v", lm)
	}

	expectError(t, proc.Execute(Command{Type: CommandType(99)}), core.ErrInvalidRequest)
	expectError(t, proc.Execute(Command{Type: CmdMakeMove, GameID: id, Args: "e2e4"}), core.ErrInvalidRequest)
}

func TestEngineQueue(t *testing.T) {
	q := NewEngineQueue(1)

	results := make(chan EngineResult, 1)
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if err := q.SubmitAsync("g", pos.Board, core.ColorBlack, 2, func(r EngineResult) { results <- r }); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-results:
		if !r.NoMove || r.Error != nil {
			t.Errorf("stalemate result = %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no engine result")
	}

	if err := q.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := q.Submit(EngineTask{GameID: "g"}); err == nil {
		t.Error("submit after shutdown accepted")
	}
}

func TestEngineQueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := &EngineQueue{tasks: make(chan EngineTask, 1), ctx: ctx, cancel: cancel}

	if err := q.Submit(EngineTask{}); err != nil {
		t.Fatal(err)
	}
	if err := q.Submit(EngineTask{}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("second submit = %v, want ErrQueueFull", err)
	}
}
