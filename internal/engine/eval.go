// FILE: internal/engine/eval.go
package engine

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

var pieceValues = map[core.PieceKind]int{
	core.Pawn:   1,
	core.Knight: 3,
	core.Bishop: 3,
	core.Rook:   5,
	core.Queen:  9,
	core.King:   100,
}

// PieceValue returns the material value of a piece kind, 0 for empty
func PieceValue(k core.PieceKind) int {
	return pieceValues[k]
}

// Evaluate scores material from Black's point of view: Black pieces add, White pieces subtract
func Evaluate(b board.Board) int {
	score := 0
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.At(core.Sq(r, f))
			switch p.Color {
			case core.ColorBlack:
				score += pieceValues[p.Kind]
			case core.ColorWhite:
				score -= pieceValues[p.Kind]
			}
		}
	}
	return score
}
