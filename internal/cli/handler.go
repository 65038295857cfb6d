// FILE: internal/cli/handler.go
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/game"
	"chessbot/internal/processor"
	"chessbot/internal/service"
)

// computerMoveTimeout bounds how long the terminal waits for the engine
const computerMoveTimeout = processor.EngineTimeout + 5*time.Second

type Handler struct {
	proc   *processor.Processor
	svc    *service.Service
	view   *CLI
	depth  int
	gameID string
}

func NewHandler(proc *processor.Processor, svc *service.Service, view *CLI, depth int) *Handler {
	depth = min(max(depth, core.MinSearchDepth), core.MaxSearchDepth)
	return &Handler{
		proc:  proc,
		svc:   svc,
		view:  view,
		depth: depth,
	}
}

// Run is the main loop; it returns when the user quits or input fails
func (h *Handler) Run() {
	for {
		cmd, err := h.view.GetCommand(h.prompt())
		if err != nil {
			break
		}
		if !h.ProcessCommand(cmd) {
			break
		}
	}
}

// current fetches the active game's state
func (h *Handler) current() (core.GameResponse, bool) {
	if h.gameID == "" {
		return core.GameResponse{}, false
	}
	resp := h.proc.Execute(processor.NewGetGameCommand(h.gameID))
	if !resp.Success {
		return core.GameResponse{}, false
	}
	return resp.Data.(core.GameResponse), true
}

func (h *Handler) prompt() string {
	state, ok := h.current()
	if !ok || state.State != core.StateOngoing.String() {
		return "> "
	}
	prompt := fmt.Sprintf("[%s]> ", state.Turn)
	if nextPlayer(state).Type == core.PlayerComputer {
		prompt = "ENTER to execute computer move\n" + prompt
	}
	return prompt
}

func nextPlayer(state core.GameResponse) *core.Player {
	if state.Turn == core.ColorBlack.String() {
		return state.Players.Black
	}
	return state.Players.White
}

// ProcessCommand handles one command and returns false to exit
func (h *Handler) ProcessCommand(cmd *Command) bool {
	switch cmd.Type {
	case CmdQuit:
		return false

	case CmdNone:
		if state, ok := h.current(); ok && state.State == core.StateOngoing.String() &&
			nextPlayer(state).Type == core.PlayerComputer {
			h.executeComputerMove()
		}

	case CmdNew:
		h.handleNewGame("")

	case CmdResume:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: resume <FEN string>")
			return true
		}
		h.handleNewGame(strings.Join(cmd.Args, " "))

	case CmdMove:
		h.handleMove(cmd.Args[0])

	case CmdUndo:
		h.handleUndo(cmd.Args)

	case CmdMoves:
		if h.gameID == "" {
			h.view.ShowMessage("No active game.")
			return true
		}
		resp := h.proc.Execute(processor.NewGetLegalMovesCommand(h.gameID))
		if !resp.Success {
			h.view.ShowError(fmt.Errorf("%s", resp.Error.Error))
			return true
		}
		legal := resp.Data.(core.LegalMovesResponse)
		if len(legal.Moves) == 0 {
			h.view.ShowMessage("No legal moves.")
		} else {
			h.view.ShowMessage(strings.Join(legal.Moves, " "))
		}

	case CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		h.showBoard()

	case CmdVerbose:
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", h.view.ToggleVerbose()))

	case CmdHistory:
		state, ok := h.current()
		if !ok {
			h.view.ShowMessage("No active game.")
			return true
		}
		var initialFEN string
		_ = h.svc.View(h.gameID, func(g *game.Game) error {
			initialFEN = g.InitialFEN()
			return nil
		})
		h.view.ShowGameHistory(state, initialFEN)

	case CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *Handler) handleMove(move string) {
	state, ok := h.current()
	if !ok {
		h.view.ShowMessage("No active game. Use 'new' or 'resume <FEN>'.")
		return
	}
	if nextPlayer(state).Type != core.PlayerHuman {
		h.view.ShowMessage("It's not a human player's turn. Press ENTER to execute computer move.")
		return
	}

	resp := h.proc.Execute(processor.NewMakeMoveCommand(h.gameID, core.MoveRequest{Move: move}))
	if !resp.Success {
		h.view.ShowError(fmt.Errorf("invalid move: %s", resp.Error.Error))
		return
	}

	after := resp.Data.(core.GameResponse)
	if after.LastMove != nil {
		h.view.ShowHumanMove(after.LastMove)
	}
	h.afterMove(after)
}

func (h *Handler) handleUndo(args []string) {
	if h.gameID == "" {
		h.view.ShowMessage("No active game.")
		return
	}

	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			h.view.ShowMessage("Invalid undo count. Usage: undo [count]")
			return
		}
		count = n
	}

	resp := h.proc.Execute(processor.NewUndoMoveCommand(h.gameID, core.UndoRequest{Count: count}))
	if !resp.Success {
		h.view.ShowError(fmt.Errorf("%s", resp.Error.Error))
		return
	}
	if count == 1 {
		h.view.ShowMessage("Move undone")
	} else {
		h.view.ShowMessage(fmt.Sprintf("%d moves undone", count))
	}
	h.showBoard()
}

// executeComputerMove starts the engine and blocks until its move is committed
func (h *Handler) executeComputerMove() {
	resp := h.proc.Execute(processor.NewMakeMoveCommand(h.gameID, core.MoveRequest{Move: core.ComputerMoveToken}))
	if !resp.Success {
		h.view.ShowError(fmt.Errorf("engine error: %s", resp.Error.Error))
		return
	}
	moveCount := len(resp.Data.(core.GameResponse).Moves)

	ctx, cancel := context.WithTimeout(context.Background(), computerMoveTimeout)
	defer cancel()

	for {
		state, ok := h.current()
		if !ok {
			h.view.ShowMessage("Game no longer exists.")
			h.gameID = ""
			return
		}
		if state.State != core.StatePending.String() {
			h.reportComputerMove(state)
			return
		}

		notify, err := h.svc.RegisterWait(ctx, h.gameID, moveCount)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		select {
		case <-notify:
		case <-ctx.Done():
			h.view.ShowError(fmt.Errorf("engine timed out"))
			return
		}
	}
}

func (h *Handler) reportComputerMove(state core.GameResponse) {
	if state.State == core.StateStuck.String() {
		h.view.ShowError(fmt.Errorf("engine failed, game cannot continue"))
		h.gameID = ""
		return
	}
	if state.LastMove != nil && state.LastMove.Move != "" {
		h.view.ShowComputerMove(state.LastMove)
	}
	h.afterMove(state)
}

// afterMove redraws the board and reports check or the end of the game
func (h *Handler) afterMove(state core.GameResponse) {
	h.showBoard()
	switch state.State {
	case core.StateOngoing.String():
		if state.Check {
			h.view.ShowCheck()
		}
	case core.StateWhiteWins.String(), core.StateBlackWins.String(), core.StateStalemate.String():
		h.view.ShowGameOver(state.State)
		h.gameID = ""
	}
}

func (h *Handler) showBoard() {
	if h.gameID == "" {
		return
	}
	var b board.Board
	if err := h.svc.View(h.gameID, func(g *game.Game) error {
		b = g.Board()
		return nil
	}); err == nil {
		h.view.DisplayBoard(b)
	}
}

// askPlayer reads a human/computer choice, defaulting to human
func (h *Handler) askPlayer(color core.Color) core.PlayerConfig {
	answer := strings.ToLower(h.view.Ask(fmt.Sprintf("Select %s player (h/c): ", color.Name())))
	if answer == "c" || answer == "computer" {
		return core.PlayerConfig{Type: core.PlayerComputer, Depth: h.depth}
	}
	return core.PlayerConfig{Type: core.PlayerHuman}
}

// handleNewGame starts a game, from fen when given, after player type selection
func (h *Handler) handleNewGame(fen string) {
	req := core.CreateGameRequest{
		White: h.askPlayer(core.ColorWhite),
		Black: h.askPlayer(core.ColorBlack),
		FEN:   fen,
	}

	if h.gameID != "" {
		h.proc.Execute(processor.NewDeleteGameCommand(h.gameID))
		h.gameID = ""
	}

	resp := h.proc.Execute(processor.NewCreateGameCommand(req))
	if !resp.Success {
		h.view.ShowError(fmt.Errorf("could not start the game: %s", resp.Error.Error))
		return
	}

	state := resp.Data.(core.GameResponse)
	h.gameID = state.GameID
	h.view.ShowMessage("Game started.")
	h.afterMove(state)
}
