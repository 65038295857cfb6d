// FILE: internal/rules/apply.go
package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

// Apply returns a copy of b with the piece on m.From moved to m.To and the origin cleared.
// It performs none of the secondary edits of castling or en passant; see Commit.
func Apply(b board.Board, m core.Move) board.Board {
	piece := b.At(m.From)
	b.Put(m.To, piece)
	b.Put(m.From, core.NoPiece)
	return b
}

// Effects describes what committing a move did beyond relocating the moving piece
type Effects struct {
	Piece      core.Piece  // the piece that moved
	Captured   core.Piece  // core.NoPiece when nothing was taken
	CapturedAt core.Square // differs from the destination for en passant
	EnPassant  bool
	Castle     bool
	RookMove   core.Move // valid only when Castle is set
}

// Commit plays m on pos and returns the successor position with all bookkeeping done:
// en passant pawn removal, castling rook relocation, en passant target, castling
// rights, move counters and turn. Legality is the caller's concern.
func Commit(pos board.Position, m core.Move) (board.Position, Effects) {
	piece := pos.Board.At(m.From)
	eff := Effects{
		Piece:      piece,
		Captured:   pos.Board.At(m.To),
		CapturedAt: core.NoSquare,
	}
	if !eff.Captured.IsEmpty() {
		eff.CapturedAt = m.To
	}

	next := pos
	next.Board = Apply(pos.Board, m)

	if piece.Kind == core.Pawn && m.To == pos.EnPassant && m.From.Col != m.To.Col && eff.Captured.IsEmpty() &&
		passedPawn(pos.Board, piece.Color, m.From, m.To) {
		passed := core.Sq(m.From.Row, m.To.Col)
		eff.EnPassant = true
		eff.Captured = next.Board.At(passed)
		eff.CapturedAt = passed
		next.Board.Put(passed, core.NoPiece)
	}

	if piece.Kind == core.King && m.From.Row == m.To.Row && abs(m.To.Col-m.From.Col) == 2 {
		side := core.KingSide
		rookTo := core.Sq(m.To.Row, m.To.Col-1)
		if m.To.Col < m.From.Col {
			side = core.QueenSide
			rookTo = core.Sq(m.To.Row, m.To.Col+1)
		}
		eff.Castle = true
		eff.RookMove = core.NewMove(core.RookHome(piece.Color, side), rookTo)
		next.Board = Apply(next.Board, eff.RookMove)
	}

	next.EnPassant = core.NoSquare
	if piece.Kind == core.Pawn && abs(m.To.Row-m.From.Row) == 2 {
		next.EnPassant = core.Sq((m.From.Row+m.To.Row)/2, m.From.Col)
	}

	next.Castling = revokeCastling(pos.Castling, piece, m)

	if piece.Kind == core.Pawn || !eff.Captured.IsEmpty() {
		next.Halfmove = 0
	} else {
		next.Halfmove++
	}
	if pos.Turn == core.ColorBlack {
		next.Fullmove++
	}
	next.Turn = core.OppositeColor(pos.Turn)

	return next, eff
}

// revokeCastling clears the rights lost by a king move, a rook leaving its corner,
// or a rook being captured on its corner
func revokeCastling(rights core.CastlingRights, piece core.Piece, m core.Move) core.CastlingRights {
	if piece.Kind == core.King {
		rights = rights.RevokeAll(piece.Color)
	}
	for _, c := range [2]core.Color{core.ColorWhite, core.ColorBlack} {
		for _, side := range [2]core.CastlingSide{core.KingSide, core.QueenSide} {
			home := core.RookHome(c, side)
			if m.From == home || m.To == home {
				rights = rights.Revoke(c, side)
			}
		}
	}
	return rights
}
