// FILE: internal/board/board.go
package board

import (
	"fmt"
	"strings"

	"chessbot/internal/core"
)

// Board is an 8x8 grid of squares. It is a value: assignment copies every square,
// so a Board handed out by any function is never changed behind the holder's back.
type Board struct {
	squares [8][8]core.Piece
}

var backRank = [8]core.PieceKind{
	core.Rook, core.Knight, core.Bishop, core.Queen,
	core.King, core.Bishop, core.Knight, core.Rook,
}

// Starting returns the standard initial arrangement
func Starting() Board {
	var b Board
	for c := 0; c < 8; c++ {
		b.squares[0][c] = core.NewPiece(core.ColorBlack, backRank[c])
		b.squares[1][c] = core.NewPiece(core.ColorBlack, core.Pawn)
		b.squares[6][c] = core.NewPiece(core.ColorWhite, core.Pawn)
		b.squares[7][c] = core.NewPiece(core.ColorWhite, backRank[c])
	}
	return b
}

// At returns the piece on sq, or core.NoPiece for empty or off-board squares
func (b Board) At(sq core.Square) core.Piece {
	if !sq.OnBoard() {
		return core.NoPiece
	}
	return b.squares[sq.Row][sq.Col]
}

// Put places p on sq in place. Off-board squares are ignored.
func (b *Board) Put(sq core.Square, p core.Piece) {
	if !sq.OnBoard() {
		return
	}
	b.squares[sq.Row][sq.Col] = p
}

// With returns a copy of b with p placed on sq
func (b Board) With(sq core.Square, p core.Piece) Board {
	b.Put(sq, p)
	return b
}

// Squares returns the occupied squares of a color in row-major order
func (b Board) Squares(c core.Color) []core.Square {
	var out []core.Square
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if p := b.squares[r][f]; !p.IsEmpty() && p.Color == c {
				out = append(out, core.Sq(r, f))
			}
		}
	}
	return out
}

// ToASCII creates an ASCII representation of the board
func (b Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := b.squares[r][f]

			if piece.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece.Letter()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
