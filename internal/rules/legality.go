// FILE: internal/rules/legality.go
// Package rules implements move legality, move generation, move application and
// check detection over board values. Nothing here mutates a board it did not create.
package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

// IsLegal decides whether moving the piece on from to to obeys that piece's movement
// rules. ep is the current en passant target (core.NoSquare when none). Whether the
// move leaves the mover's own king attacked is not considered.
func IsLegal(b board.Board, from, to core.Square, ep core.Square, castling core.CastlingRights) bool {
	if !from.OnBoard() || !to.OnBoard() || from == to {
		return false
	}
	piece := b.At(from)
	if piece.IsEmpty() {
		return false
	}
	if target := b.At(to); !target.IsEmpty() && target.Color == piece.Color {
		return false
	}

	switch piece.Kind {
	case core.Pawn:
		return isPawnMove(b, piece.Color, from, to, ep)
	case core.Knight:
		return isKnightMove(from, to)
	case core.Bishop:
		return isDiagonalMove(b, from, to)
	case core.Rook:
		return isStraightMove(b, from, to)
	case core.Queen:
		return isStraightMove(b, from, to) || isDiagonalMove(b, from, to)
	case core.King:
		return isKingMove(b, piece.Color, from, to, castling)
	}
	return false
}

// pawnDirection is the row step of a color's pawns
func pawnDirection(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

// pawnHomeRow is the row a color's pawns start on
func pawnHomeRow(c core.Color) int {
	if c == core.ColorWhite {
		return 6
	}
	return 1
}

func isPawnMove(b board.Board, c core.Color, from, to, ep core.Square) bool {
	dir := pawnDirection(c)
	target := b.At(to)

	if from.Col == to.Col {
		if !target.IsEmpty() {
			return false
		}
		if to.Row == from.Row+dir {
			return true
		}
		return from.Row == pawnHomeRow(c) &&
			to.Row == from.Row+2*dir &&
			b.At(core.Sq(from.Row+dir, from.Col)).IsEmpty()
	}

	if abs(from.Col-to.Col) == 1 && to.Row == from.Row+dir {
		return target.IsEnemyOf(c) || (to == ep && target.IsEmpty() && passedPawn(b, c, from, to))
	}
	return false
}

// passedPawn reports whether an enemy pawn stands beside from on the destination column,
// the pawn an en passant capture onto to would remove
func passedPawn(b board.Board, c core.Color, from, to core.Square) bool {
	return b.At(core.Sq(from.Row, to.Col)) == core.NewPiece(core.OppositeColor(c), core.Pawn)
}

func isKnightMove(from, to core.Square) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return (dr == 2 && dc == 1) || (dr == 1 && dc == 2)
}

func isDiagonalMove(b board.Board, from, to core.Square) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if dr != dc || dr == 0 {
		return false
	}
	return isClearPath(b, from, to)
}

func isStraightMove(b board.Board, from, to core.Square) bool {
	if from.Row != to.Row && from.Col != to.Col {
		return false
	}
	return isClearPath(b, from, to)
}

func isKingMove(b board.Board, c core.Color, from, to core.Square, castling core.CastlingRights) bool {
	if max(abs(to.Row-from.Row), abs(to.Col-from.Col)) == 1 {
		return true
	}

	if from != core.KingHome(c) || to.Row != from.Row || abs(to.Col-from.Col) != 2 {
		return false
	}
	side := core.KingSide
	if to.Col < from.Col {
		side = core.QueenSide
	}
	rook := core.RookHome(c, side)
	if !castling.Has(c, side) || b.At(rook) != core.NewPiece(c, core.Rook) {
		return false
	}
	return isClearPath(b, from, rook)
}

// isClearPath reports whether every square strictly between from and to is empty.
// from and to must share a row, column or diagonal.
func isClearPath(b board.Board, from, to core.Square) bool {
	stepRow, stepCol := sign(to.Row-from.Row), sign(to.Col-from.Col)
	sq := core.Sq(from.Row+stepRow, from.Col+stepCol)
	for sq != to {
		if !b.At(sq).IsEmpty() {
			return false
		}
		sq = core.Sq(sq.Row+stepRow, sq.Col+stepCol)
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
