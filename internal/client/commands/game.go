// FILE: internal/client/commands/game.go
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessbot/internal/client/display"
	"chessbot/internal/core"
)

// computerWait bounds how long the client follows a computer move
const computerWait = 2 * time.Minute

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a new game",
		Usage:       "new [white] [black] [FEN], players are h or c<depth>, e.g. new h c3",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Join/set current game ID",
		Usage:       "join <gameId>",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "players",
		ShortName:   "y",
		Description: "Change player types",
		Usage:       "players <white> <black>",
		Handler:     playersHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <e2e4>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "computer",
		ShortName:   "c",
		Description: "Trigger computer move",
		Usage:       "computer",
		Handler:     computerMoveHandler,
	})

	r.Register(&Command{
		Name:        "moves",
		ShortName:   "l",
		Description: "List legal moves",
		Usage:       "moves",
		Handler:     legalMovesHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Undo moves",
		Usage:       "undo [count]",
		Handler:     undoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw game JSON",
		Usage:       "state",
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a game",
		Usage:       "delete [gameId]",
		Handler:     deleteGameHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll for game updates",
		Usage:       "poll",
		Handler:     pollHandler,
	})
}

// parsePlayer reads "h" as a human and "c" or "c<depth>" as a computer
func parsePlayer(arg string) (core.PlayerConfig, error) {
	arg = strings.ToLower(arg)
	switch {
	case arg == "h":
		return core.PlayerConfig{Type: core.PlayerHuman}, nil
	case strings.HasPrefix(arg, "c"):
		cfg := core.PlayerConfig{Type: core.PlayerComputer}
		if rest := arg[1:]; rest != "" {
			depth, err := strconv.Atoi(rest)
			if err != nil {
				return cfg, fmt.Errorf("invalid depth in %q", arg)
			}
			cfg.Depth = depth
		}
		return cfg, nil
	default:
		return core.PlayerConfig{}, fmt.Errorf("invalid player %q, use h or c<depth>", arg)
	}
}

func parsePlayers(args []string) (white, black core.PlayerConfig, err error) {
	white = core.PlayerConfig{Type: core.PlayerHuman}
	black = core.PlayerConfig{Type: core.PlayerHuman}
	if len(args) > 0 {
		if white, err = parsePlayer(args[0]); err != nil {
			return
		}
	}
	if len(args) > 1 {
		black, err = parsePlayer(args[1])
	}
	return
}

func sideToMove(resp *core.GameResponse) *core.Player {
	if resp.Turn == core.ColorBlack.String() {
		return resp.Players.Black
	}
	return resp.Players.White
}

func newGameHandler(s *Session, args []string) error {
	white, black, err := parsePlayers(args)
	if err != nil {
		return err
	}
	var fen string
	if len(args) > 2 {
		fen = strings.Join(args[2:], " ")
	}

	resp, err := s.Client.CreateGame(core.CreateGameRequest{White: white, Black: black, FEN: fen})
	if err != nil {
		return err
	}

	s.CurrentGame = resp.GameID
	s.track(resp)
	s.printf("%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)

	if resp.State == core.StateOngoing.String() && sideToMove(resp).Type == core.PlayerComputer {
		return runComputerMove(s)
	}
	return nil
}

func joinGameHandler(s *Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <gameId>")
	}

	resp, err := s.Client.GetGame(args[0])
	if err != nil {
		return err
	}

	s.CurrentGame = args[0]
	s.track(resp)

	s.printf("%sJoined game: %s%s\n", display.Green, args[0], display.Reset)
	s.printf("Turn: %s | State: %s | Moves: %d\n", display.ColorForTurn(resp.Turn), resp.State, len(resp.Moves))
	return nil
}

func playersHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: players <white> <black>")
	}
	white, black, err := parsePlayers(args)
	if err != nil {
		return err
	}

	resp, err := s.Client.ConfigurePlayers(gameID, core.ConfigurePlayersRequest{White: white, Black: black})
	if err != nil {
		return err
	}
	s.track(resp)
	s.printf("%sPlayers updated%s\n", display.Green, display.Reset)
	return nil
}

func moveHandler(s *Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: move <e2e4>")
	}
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	resp, err := s.Client.MakeMove(gameID, args[0])
	if err != nil {
		return err
	}
	s.track(resp)
	s.printf("%sMove accepted%s\n", display.Green, display.Reset)

	if resp.State != core.StateOngoing.String() {
		s.printf("%sGame over: %s%s\n", display.Yellow, resp.State, display.Reset)
		return nil
	}
	if sideToMove(resp).Type == core.PlayerComputer {
		s.printf("\n%sComputer's turn, triggering move...%s\n", display.Magenta, display.Reset)
		return runComputerMove(s)
	}
	return nil
}

func computerMoveHandler(s *Session, args []string) error {
	if _, err := s.requireGame(); err != nil {
		return err
	}
	return runComputerMove(s)
}

// runComputerMove asks the server for the computer's move and long-polls until it lands
func runComputerMove(s *Session) error {
	gameID := s.CurrentGame
	resp, err := s.Client.MakeMove(gameID, core.ComputerMoveToken)
	if err != nil {
		return err
	}
	moveCount := len(resp.Moves)
	s.printf("%sComputer is thinking...%s\n", display.Magenta, display.Reset)

	deadline := time.Now().Add(computerWait)
	for time.Now().Before(deadline) {
		resp, err = s.Client.GetGameWithPoll(gameID, moveCount)
		if err != nil {
			return err
		}
		if resp.State == core.StatePending.String() {
			continue
		}

		s.track(resp)
		if resp.State == core.StateStuck.String() {
			return fmt.Errorf("engine failed, game cannot continue")
		}
		if resp.LastMove != nil && len(resp.Moves) > moveCount {
			s.printf("%sComputer played: %s%s", display.Magenta, resp.LastMove.Move, display.Reset)
			if resp.LastMove.Depth > 0 {
				s.printf(" (depth %d, score %d, nodes %d)", resp.LastMove.Depth, resp.LastMove.Score, resp.LastMove.Nodes)
			}
			s.printf("\n")
		}
		if resp.State != core.StateOngoing.String() {
			s.printf("%sGame over: %s%s\n", display.Yellow, resp.State, display.Reset)
		}
		return nil
	}
	return fmt.Errorf("timeout waiting for computer move")
}

func legalMovesHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	resp, err := s.Client.LegalMoves(gameID)
	if err != nil {
		return err
	}
	if len(resp.Moves) == 0 {
		s.printf("No legal moves\n")
		return nil
	}
	s.printf("%s to move: %s\n", display.ColorForTurn(resp.Turn), strings.Join(resp.Moves, " "))
	return nil
}

func undoHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	count := 1
	if len(args) > 0 {
		count, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count: %s", args[0])
		}
	}

	resp, err := s.Client.UndoMoves(gameID, count)
	if err != nil {
		return err
	}

	s.track(resp)
	s.printf("%sUndid %d move(s)%s\n", display.Green, count, display.Reset)
	return nil
}

func showBoardHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	game, err := s.Client.GetGame(gameID)
	if err != nil {
		return err
	}
	board, err := s.Client.GetBoard(gameID)
	if err != nil {
		return err
	}
	s.track(game)

	s.printf("\n")
	display.RenderBoard(s.Out, board.Board)

	s.printf("\nFEN: %s\n", game.FEN)
	s.printf("Turn: %s | State: %s | Moves: %d\n", display.ColorForTurn(game.Turn), game.State, len(game.Moves))
	if game.Check {
		s.printf("%sCheck!%s\n", display.Red, display.Reset)
	}

	if len(game.Moves) > 0 {
		var history strings.Builder
		for i, move := range game.Moves {
			if i%2 == 0 {
				if i > 0 {
					history.WriteString(" ")
				}
				fmt.Fprintf(&history, "%d.%s", i/2+1, move)
			} else {
				history.WriteString(" " + move)
			}
		}
		s.printf("\nHistory: %s\n", history.String())
	}

	if game.LastMove != nil {
		color := "White"
		if game.LastMove.PlayerColor == core.ColorBlack.String() {
			color = "Black"
		}
		s.printf("Last move: %s by %s", game.LastMove.Move, color)
		if game.LastMove.Depth > 0 {
			s.printf(" (depth %d, score %d)", game.LastMove.Depth, game.LastMove.Score)
		}
		s.printf("\n")
	}

	return nil
}

func gameStateHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	resp, err := s.Client.GetGame(gameID)
	if err != nil {
		return err
	}
	s.track(resp)

	s.printf("%sGame State:%s\n", display.Cyan, display.Reset)
	display.PrettyPrintJSON(s.Out, resp)
	return nil
}

func deleteGameHandler(s *Session, args []string) error {
	gameID := s.CurrentGame
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("specify game ID or set current game")
	}

	if err := s.Client.DeleteGame(gameID); err != nil {
		return err
	}

	if gameID == s.CurrentGame {
		s.CurrentGame = ""
		s.LastMoveCount = 0
		s.GameState = nil
	}

	s.printf("%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	return nil
}

func pollHandler(s *Session, args []string) error {
	gameID, err := s.requireGame()
	if err != nil {
		return err
	}

	moveCount := s.LastMoveCount
	s.printf("%sLong-polling for updates (move count: %d)...%s\n", display.Cyan, moveCount, display.Reset)

	resp, err := s.Client.GetGameWithPoll(gameID, moveCount)
	if err != nil {
		return err
	}
	s.track(resp)

	if len(resp.Moves) != moveCount {
		s.printf("%sGame updated!%s\n", display.Green, display.Reset)
		if resp.LastMove != nil {
			s.printf("Last move: %s\n", resp.LastMove.Move)
		}
	} else {
		s.printf("%sNo new moves (state: %s)%s\n", display.Yellow, resp.State, display.Reset)
	}
	return nil
}
