// FILE: internal/board/position.go
package board

import (
	"chessbot/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Position is a board together with the auxiliary state needed to continue play
type Position struct {
	Board     Board
	Turn      core.Color
	EnPassant core.Square // core.NoSquare when no capture onto a passed square is available
	Castling  core.CastlingRights
	Halfmove  int
	Fullmove  int
}

// NewPosition returns the standard starting position with White to move
func NewPosition() Position {
	return Position{
		Board:     Starting(),
		Turn:      core.ColorWhite,
		EnPassant: core.NoSquare,
		Castling:  core.AllCastlingRights,
		Fullmove:  1,
	}
}
