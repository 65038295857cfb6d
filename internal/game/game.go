// FILE: internal/game/game.go
package game

import (
	"errors"
	"fmt"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/rules"
)

var (
	ErrMalformedMove = errors.New("malformed move")
	ErrNoPiece       = errors.New("no piece on origin square")
	ErrWrongTurn     = errors.New("piece belongs to the side not on move")
	ErrIllegalMove   = errors.New("illegal move")
	ErrGameOver      = errors.New("game is over")
	ErrNothingToUndo = errors.New("not enough moves to undo")
)

type Snapshot struct {
	Position     board.Position
	PreviousMove string // Move that created this position (empty for initial)
	PlayerID     string // ID of the player whose turn it is
}

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move        string
	PlayerColor core.Color
	GameState   core.State
	Effects     rules.Effects
	Score       int
	Depth       int
	Nodes       int
}

type Game struct {
	snapshots  []Snapshot
	players    map[core.Color]*core.Player
	state      core.State
	lastResult *MoveResult
}

// New starts a game from pos. The state reflects pos, so a game set up in a
// finished position starts over.
func New(pos board.Position, whitePlayer, blackPlayer *core.Player) *Game {
	g := &Game{
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
	}
	g.snapshots = []Snapshot{{
		Position: pos,
		PlayerID: g.players[pos.Turn].ID,
	}}
	g.state = rules.GameOver(pos.Board, pos.Turn).State()
	return g
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

// CurrentSnapshot returns the latest game snapshot
func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

func (g *Game) Position() board.Position {
	return g.CurrentSnapshot().Position
}

func (g *Game) Board() board.Board {
	return g.CurrentSnapshot().Position.Board
}

// CurrentFEN returns the current position in FEN notation
func (g *Game) CurrentFEN() string {
	return g.Position().FEN()
}

func (g *Game) InitialFEN() string {
	return g.snapshots[0].Position.FEN()
}

func (g *Game) NextTurnColor() core.Color {
	return g.Position().Turn
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurnColor()]
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	return g.players[color]
}

// InCheck reports whether the side to move is in check
func (g *Game) InCheck() bool {
	pos := g.Position()
	return rules.InCheck(pos.Board, pos.Turn)
}

// LegalMoves lists the moves the side to move may play. Castling and en passant
// captures are included alongside the generated moves.
func (g *Game) LegalMoves() []core.Move {
	if g.state.IsOver() {
		return nil
	}
	pos := g.Position()
	moves := rules.LegalMoves(pos.Board, pos.Turn)
	moves = append(moves, specialMoves(pos)...)
	return moves
}

// specialMoves returns the legal castling and en passant moves of the side to move
func specialMoves(pos board.Position) []core.Move {
	var moves []core.Move
	king, ok := rules.FindKing(pos.Board, pos.Turn)
	if ok && king == core.KingHome(pos.Turn) {
		for _, col := range [2]int{king.Col + 2, king.Col - 2} {
			m := core.NewMove(king, core.Sq(king.Row, col))
			if err := validate(pos, m); err == nil {
				moves = append(moves, m)
			}
		}
	}
	if pos.EnPassant.OnBoard() {
		for _, dc := range [2]int{-1, 1} {
			from := core.Sq(pos.EnPassant.Row+pawnBackStep(pos.Turn), pos.EnPassant.Col+dc)
			if pos.Board.At(from) != core.NewPiece(pos.Turn, core.Pawn) {
				continue
			}
			m := core.NewMove(from, pos.EnPassant)
			if err := validate(pos, m); err == nil {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// pawnBackStep is the row offset from an en passant target back to the capturing pawns
func pawnBackStep(c core.Color) int {
	if c == core.ColorWhite {
		return 1
	}
	return -1
}

// validate reports why m cannot be played from pos, or nil
func validate(pos board.Position, m core.Move) error {
	_, _, err := try(pos, m)
	return err
}

func try(pos board.Position, m core.Move) (board.Position, rules.Effects, error) {
	piece := pos.Board.At(m.From)
	if piece.IsEmpty() {
		return pos, rules.Effects{}, fmt.Errorf("%s: %w", m, ErrNoPiece)
	}
	if piece.Color != pos.Turn {
		return pos, rules.Effects{}, fmt.Errorf("%s: %w: %s to move", m, ErrWrongTurn, pos.Turn.Name())
	}
	if !rules.IsLegal(pos.Board, m.From, m.To, pos.EnPassant, pos.Castling) {
		return pos, rules.Effects{}, fmt.Errorf("%s: %w", m, ErrIllegalMove)
	}
	next, eff := rules.Commit(pos, m)
	if rules.InCheck(next.Board, pos.Turn) {
		return pos, rules.Effects{}, fmt.Errorf("%s: %w: king would be in check", m, ErrIllegalMove)
	}
	return next, eff, nil
}

// Play validates and commits a move given in long algebraic notation, then
// updates the game state for the side now on move
func (g *Game) Play(move string) (rules.Effects, error) {
	if g.state.IsOver() {
		return rules.Effects{}, fmt.Errorf("%w: %s", ErrGameOver, g.state)
	}
	m, err := core.ParseMove(move)
	if err != nil {
		return rules.Effects{}, fmt.Errorf("%w: %v", ErrMalformedMove, err)
	}

	next, eff, err := try(g.Position(), m)
	if err != nil {
		return rules.Effects{}, err
	}

	g.snapshots = append(g.snapshots, Snapshot{
		Position:     next,
		PreviousMove: m.String(),
		PlayerID:     g.players[next.Turn].ID,
	})
	g.state = rules.GameOver(next.Board, next.Turn).State()
	return eff, nil
}

func (g *Game) UpdatePlayers(whitePlayer, blackPlayer *core.Player) {
	g.players[core.ColorWhite] = whitePlayer
	g.players[core.ColorBlack] = blackPlayer

	// Update current snapshot's PlayerID to reflect new player
	current := &g.snapshots[len(g.snapshots)-1]
	current.PlayerID = g.players[current.Position.Turn].ID
}

func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	available := len(g.snapshots) - 1
	if available < count {
		return fmt.Errorf("%w: cannot undo %d moves, only %d available", ErrNothingToUndo, count, available)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	pos := g.Position()
	g.state = rules.GameOver(pos.Board, pos.Turn).State()
	g.lastResult = nil
	return nil
}

func (g *Game) Moves() []string {
	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		moves = append(moves, g.snapshots[i].PreviousMove)
	}
	return moves
}

func (g *Game) MoveCount() int {
	return len(g.snapshots) - 1
}

func (g *Game) State() core.State {
	return g.state
}

func (g *Game) SetState(s core.State) {
	g.state = s
}
