// FILE: internal/rules/check.go
package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

// Reason explains why a game ended
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonCheckmate Reason = "checkmate"
	ReasonStalemate Reason = "stalemate"
)

// Result is the outcome of GameOver. Winner is core.NoColor unless Reason is checkmate.
type Result struct {
	Over   bool
	Winner core.Color
	Reason Reason
}

// State converts the result to a game state
func (r Result) State() core.State {
	switch r.Reason {
	case ReasonCheckmate:
		return core.WinState(r.Winner)
	case ReasonStalemate:
		return core.StateStalemate
	}
	return core.StateOngoing
}

// IsAttacked reports whether any piece of color by could move onto target.
// En passant and castling play no part in attacks.
func IsAttacked(b board.Board, target core.Square, by core.Color) bool {
	for _, sq := range b.Squares(by) {
		if IsLegal(b, sq, target, core.NoSquare, core.CastlingRights{}) {
			return true
		}
	}
	return false
}

// FindKing returns the square of the king of color c
func FindKing(b board.Board, c core.Color) (core.Square, bool) {
	king := core.NewPiece(c, core.King)
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b.At(core.Sq(r, f)) == king {
				return core.Sq(r, f), true
			}
		}
	}
	return core.NoSquare, false
}

// InCheck reports whether the king of color c is attacked. A side without a king is never in check.
func InCheck(b board.Board, c core.Color) bool {
	king, ok := FindKing(b, c)
	if !ok {
		return false
	}
	return IsAttacked(b, king, core.OppositeColor(c))
}

// KeepsKingSafe reports whether playing m leaves the mover's king unattacked
func KeepsKingSafe(b board.Board, m core.Move) bool {
	mover := b.At(m.From).Color
	return !InCheck(Apply(b, m), mover)
}

// LegalMoves returns the pseudo-legal moves of c that do not leave its own king attacked
func LegalMoves(b board.Board, c core.Color) []core.Move {
	pseudo := GenerateMoves(b, c)
	legal := pseudo[:0]
	for _, m := range pseudo {
		if KeepsKingSafe(b, m) {
			legal = append(legal, m)
		}
	}
	return legal
}

func hasLegalMove(b board.Board, c core.Color) bool {
	for _, m := range GenerateMoves(b, c) {
		if KeepsKingSafe(b, m) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the king of color c on kingSq is attacked and no move
// of c removes the attack. When the king itself moves, its new square is tested.
func IsCheckmate(b board.Board, kingSq core.Square, c core.Color) bool {
	enemy := core.OppositeColor(c)
	if !IsAttacked(b, kingSq, enemy) {
		return false
	}
	for _, sq := range b.Squares(c) {
		for _, m := range GeneratePieceMoves(b, sq) {
			king := kingSq
			if m.From == kingSq {
				king = m.To
			}
			if !IsAttacked(Apply(b, m), king, enemy) {
				return false
			}
		}
	}
	return true
}

// IsStalemate reports whether c is not in check and has no legal move
func IsStalemate(b board.Board, c core.Color) bool {
	return !InCheck(b, c) && !hasLegalMove(b, c)
}

// GameOver reports whether sideToMove is checkmated or stalemated
func GameOver(b board.Board, sideToMove core.Color) Result {
	king, hasKing := FindKing(b, sideToMove)
	if hasKing && IsCheckmate(b, king, sideToMove) {
		return Result{Over: true, Winner: core.OppositeColor(sideToMove), Reason: ReasonCheckmate}
	}
	if IsStalemate(b, sideToMove) {
		return Result{Over: true, Winner: core.NoColor, Reason: ReasonStalemate}
	}
	return Result{}
}
