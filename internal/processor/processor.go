// FILE: internal/processor/processor.go
package processor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/game"
	"chessbot/internal/rules"
	"chessbot/internal/service"
)

// commandError carries the API error code for a rejected command
type commandError struct {
	message string
	code    string
}

func (e *commandError) Error() string {
	return e.message
}

func reject(code, format string, args ...any) error {
	return &commandError{message: fmt.Sprintf(format, args...), code: code}
}

// Processor handles command execution and coordinates between service and engine layers
type Processor struct {
	svc   *service.Service
	queue *EngineQueue
}

// New creates a processor with an engine worker pool of the given size
func New(svc *service.Service, workers int) *Processor {
	return &Processor{
		svc:   svc,
		queue: NewEngineQueue(workers),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdConfigurePlayers:
		return p.handleConfigurePlayers(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetLegalMoves:
		return p.handleGetLegalMoves(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// handleCreateGame creates a new game, optionally from a FEN setup
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	pos := board.NewPosition()
	if fen := strings.TrimSpace(args.FEN); fen != "" {
		parsed, err := board.ParseFEN(fen)
		if err != nil {
			return p.errorResponse(fmt.Sprintf("invalid FEN: %v", err), core.ErrInvalidFEN)
		}
		pos = parsed
	}

	gameID := p.svc.GenerateGameID()
	whitePlayer := core.NewPlayer(args.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(args.Black, core.ColorBlack)

	if err := p.svc.CreateGame(gameID, whitePlayer, blackPlayer, pos); err != nil {
		return p.fromError(err)
	}

	return p.gameResponse(gameID)
}

// handleConfigurePlayers updates player configuration mid-game
func (p *Processor) handleConfigurePlayers(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ConfigurePlayersRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	whitePlayer := core.NewPlayer(args.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(args.Black, core.ColorBlack)

	err := p.svc.Update(cmd.GameID, func(g *game.Game) error {
		if g.State() == core.StatePending {
			return reject(core.ErrInvalidRequest, "cannot change players while computer is calculating")
		}
		g.UpdatePlayers(whitePlayer, blackPlayer)
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}

	return p.gameResponse(cmd.GameID)
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.gameResponse(cmd.GameID)
}

// checkPlayable rejects moves in games that cannot currently accept one
func checkPlayable(g *game.Game) error {
	switch state := g.State(); {
	case state == core.StatePending:
		return reject(core.ErrInvalidRequest, "computer move in progress")
	case state == core.StateStuck:
		return reject(core.ErrGameOver, "game is stuck due to engine error")
	case state.IsOver():
		return reject(core.ErrGameOver, "game is over: %s", state)
	}
	return nil
}

// handleMakeMove plays a human move, or starts a computer move for the "cccc" token
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	move := strings.ToLower(strings.TrimSpace(args.Move))
	if move == core.ComputerMoveToken {
		return p.handleComputerMove(cmd.GameID)
	}

	err := p.svc.Update(cmd.GameID, func(g *game.Game) error {
		if err := checkPlayable(g); err != nil {
			return err
		}
		if g.NextPlayer().Type != core.PlayerHuman {
			return reject(core.ErrNotHumanTurn, "not human player's turn")
		}

		mover := g.NextTurnColor()
		eff, err := g.Play(move)
		if err != nil {
			return err
		}
		g.SetLastResult(&game.MoveResult{
			Move:        move,
			PlayerColor: mover,
			GameState:   g.State(),
			Effects:     eff,
		})
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}

	return p.gameResponse(cmd.GameID)
}

// handleComputerMove marks the game pending and queues a search for the side to move
func (p *Processor) handleComputerMove(gameID string) ProcessorResponse {
	var task EngineTask
	err := p.svc.Update(gameID, func(g *game.Game) error {
		if err := checkPlayable(g); err != nil {
			return err
		}
		player := g.NextPlayer()
		if player.Type != core.PlayerComputer {
			return reject(core.ErrNotHumanTurn, "not computer player's turn")
		}
		task = EngineTask{
			GameID: gameID,
			Board:  g.Board(),
			Color:  g.NextTurnColor(),
			Depth:  player.Depth,
		}
		g.SetState(core.StatePending)
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}

	err = p.queue.SubmitAsync(task.GameID, task.Board, task.Color, task.Depth, func(result EngineResult) {
		p.commitComputerMove(task, result)
	})
	if err != nil {
		log.Printf("Engine queue rejected game %s: %v", gameID, err)
		_ = p.svc.Update(gameID, func(g *game.Game) error {
			if g.State() == core.StatePending {
				g.SetState(core.StateOngoing)
			}
			return nil
		})
		return p.errorResponse(fmt.Sprintf("engine unavailable: %v", err), core.ErrResourceLimit)
	}

	resp := p.gameResponse(gameID)
	resp.Pending = true
	return resp
}

// commitComputerMove applies a finished search to the game if it is still waiting for it
func (p *Processor) commitComputerMove(task EngineTask, result EngineResult) {
	err := p.svc.Update(task.GameID, func(g *game.Game) error {
		if g.State() != core.StatePending {
			return reject(core.ErrInvalidRequest, "game no longer waiting for computer move")
		}

		if result.Error != nil {
			log.Printf("Engine error for game %s: %v", task.GameID, result.Error)
			g.SetState(core.StateStuck)
			return nil
		}

		if result.NoMove {
			state := rules.GameOver(task.Board, task.Color).State()
			if state == core.StateOngoing {
				state = core.StateStuck
			}
			g.SetState(state)
			return nil
		}

		// Clear pending so Play sees a live game
		g.SetState(core.StateOngoing)
		eff, err := g.Play(result.Move.String())
		if err != nil {
			log.Printf("Engine produced unplayable move %s for game %s: %v", result.Move, task.GameID, err)
			g.SetState(core.StateStuck)
			return nil
		}
		g.SetLastResult(&game.MoveResult{
			Move:        result.Move.String(),
			PlayerColor: task.Color,
			GameState:   g.State(),
			Effects:     eff,
			Score:       result.Score,
			Depth:       result.Depth,
			Nodes:       result.Nodes,
		})
		return nil
	})
	if err != nil && !errors.Is(err, service.ErrGameNotFound) {
		log.Printf("Discarding computer move for game %s: %v", task.GameID, err)
	}
}

// handleUndoMove reverts game state
func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	err := p.svc.Update(cmd.GameID, func(g *game.Game) error {
		switch g.State() {
		case core.StatePending:
			return reject(core.ErrInvalidRequest, "cannot undo while computer move is in progress")
		case core.StateStuck:
			return reject(core.ErrInvalidRequest, "cannot undo in stuck game")
		}
		return g.UndoMoves(args.Count)
	})
	if err != nil {
		return p.fromError(err)
	}

	return p.gameResponse(cmd.GameID)
}

// handleDeleteGame removes a game
func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	err := p.svc.View(cmd.GameID, func(g *game.Game) error {
		if g.State() == core.StatePending {
			return reject(core.ErrInvalidRequest, "cannot delete game while computer move is in progress")
		}
		return nil
	})
	if err == nil {
		err = p.svc.DeleteGame(cmd.GameID)
	}
	if err != nil {
		return p.fromError(err)
	}

	return ProcessorResponse{Success: true}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	err := p.svc.View(cmd.GameID, func(g *game.Game) error {
		resp = core.BoardResponse{
			FEN:   g.CurrentFEN(),
			Board: g.Board().ToASCII(),
		}
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}

	return ProcessorResponse{Success: true, Data: resp}
}

// handleGetLegalMoves lists the moves available to the side to move
func (p *Processor) handleGetLegalMoves(cmd Command) ProcessorResponse {
	var resp core.LegalMovesResponse
	err := p.svc.View(cmd.GameID, func(g *game.Game) error {
		resp.Turn = g.NextTurnColor().String()
		resp.Moves = []string{}
		for _, m := range g.LegalMoves() {
			resp.Moves = append(resp.Moves, m.String())
		}
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}

	return ProcessorResponse{Success: true, Data: resp}
}

// gameResponse reads a game and wraps it in a successful response
func (p *Processor) gameResponse(gameID string) ProcessorResponse {
	var resp core.GameResponse
	err := p.svc.View(gameID, func(g *game.Game) error {
		resp = BuildGameResponse(gameID, g)
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}

	return ProcessorResponse{Success: true, Data: resp}
}

// BuildGameResponse constructs the standard game response. The caller must hold the game.
func BuildGameResponse(gameID string, g *game.Game) core.GameResponse {
	resp := core.GameResponse{
		GameID: gameID,
		FEN:    g.CurrentFEN(),
		Turn:   g.NextTurnColor().String(),
		State:  g.State().String(),
		Check:  g.InCheck(),
		Moves:  g.Moves(),
		Players: core.PlayersResponse{
			White: g.GetPlayer(core.ColorWhite),
			Black: g.GetPlayer(core.ColorBlack),
		},
	}

	if result := g.LastResult(); result != nil {
		info := &core.MoveInfo{
			Move:        result.Move,
			PlayerColor: result.PlayerColor.String(),
			EnPassant:   result.Effects.EnPassant,
			Score:       result.Score,
			Depth:       result.Depth,
			Nodes:       result.Nodes,
		}
		if !result.Effects.Captured.IsEmpty() {
			info.Captured = result.Effects.Captured.Kind.String()
		}
		if result.Effects.Castle {
			info.Castle = result.Effects.RookMove.String()
		}
		resp.LastMove = info
	}

	return resp
}

// fromError maps service, game and command errors to an error response
func (p *Processor) fromError(err error) ProcessorResponse {
	var cmdErr *commandError
	switch {
	case errors.As(err, &cmdErr):
		return p.errorResponse(cmdErr.message, cmdErr.code)
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, service.ErrTooManyGames):
		return p.errorResponse(err.Error(), core.ErrResourceLimit)
	case errors.Is(err, game.ErrGameOver):
		return p.errorResponse(err.Error(), core.ErrGameOver)
	case errors.Is(err, game.ErrMalformedMove),
		errors.Is(err, game.ErrNoPiece),
		errors.Is(err, game.ErrWrongTurn),
		errors.Is(err, game.ErrIllegalMove):
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	case errors.Is(err, game.ErrNothingToUndo):
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	default:
		log.Printf("Unexpected processor error: %v", err)
		return p.errorResponse("internal error", core.ErrInternalError)
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the engine workers
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
