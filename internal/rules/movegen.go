// FILE: internal/rules/movegen.go
package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

// Direction offsets for piece movement, in generation order
var (
	rookDirs     = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirs   = [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirs    = append(append([][2]int{}, rookDirs...), bishopDirs...)
	knightOffset = [][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffset   = [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// GenerateMoves enumerates the pseudo-legal moves of side, scanning the board
// row by row. Castling and en passant captures are not produced.
func GenerateMoves(b board.Board, side core.Color) []core.Move {
	moves := make([]core.Move, 0, 48)
	for _, sq := range b.Squares(side) {
		moves = appendPieceMoves(moves, b, sq)
	}
	return moves
}

// GeneratePieceMoves enumerates the pseudo-legal moves of the piece on sq
func GeneratePieceMoves(b board.Board, sq core.Square) []core.Move {
	return appendPieceMoves(nil, b, sq)
}

func appendPieceMoves(moves []core.Move, b board.Board, sq core.Square) []core.Move {
	piece := b.At(sq)
	switch piece.Kind {
	case core.Pawn:
		return appendPawnMoves(moves, b, sq, piece.Color)
	case core.Knight:
		return appendStepMoves(moves, b, sq, piece.Color, knightOffset)
	case core.Bishop:
		return appendSlidingMoves(moves, b, sq, piece.Color, bishopDirs)
	case core.Rook:
		return appendSlidingMoves(moves, b, sq, piece.Color, rookDirs)
	case core.Queen:
		return appendSlidingMoves(moves, b, sq, piece.Color, queenDirs)
	case core.King:
		return appendStepMoves(moves, b, sq, piece.Color, kingOffset)
	}
	return moves
}

func appendSlidingMoves(moves []core.Move, b board.Board, from core.Square, c core.Color, dirs [][2]int) []core.Move {
	for _, d := range dirs {
		to := core.Sq(from.Row+d[0], from.Col+d[1])
		for to.OnBoard() {
			target := b.At(to)
			if target.IsEmpty() {
				moves = append(moves, core.NewMove(from, to))
			} else {
				if target.Color != c {
					moves = append(moves, core.NewMove(from, to))
				}
				break
			}
			to = core.Sq(to.Row+d[0], to.Col+d[1])
		}
	}
	return moves
}

func appendStepMoves(moves []core.Move, b board.Board, from core.Square, c core.Color, offsets [][2]int) []core.Move {
	for _, d := range offsets {
		to := core.Sq(from.Row+d[0], from.Col+d[1])
		if !to.OnBoard() {
			continue
		}
		if target := b.At(to); target.IsEmpty() || target.Color != c {
			moves = append(moves, core.NewMove(from, to))
		}
	}
	return moves
}

func appendPawnMoves(moves []core.Move, b board.Board, from core.Square, c core.Color) []core.Move {
	dir := pawnDirection(c)

	one := core.Sq(from.Row+dir, from.Col)
	if one.OnBoard() && b.At(one).IsEmpty() {
		moves = append(moves, core.NewMove(from, one))
		two := core.Sq(from.Row+2*dir, from.Col)
		if from.Row == pawnHomeRow(c) && b.At(two).IsEmpty() {
			moves = append(moves, core.NewMove(from, two))
		}
	}

	for _, dc := range [2]int{-1, 1} {
		to := core.Sq(from.Row+dir, from.Col+dc)
		if to.OnBoard() && b.At(to).IsEnemyOf(c) {
			moves = append(moves, core.NewMove(from, to))
		}
	}
	return moves
}
