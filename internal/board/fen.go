// FILE: internal/board/fen.go
package board

import (
	"fmt"
	"strings"

	"chessbot/internal/core"
)

// ParseFEN reads a position from Forsyth-Edwards notation. The move counters
// may be omitted, in which case they default to "0 1".
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) == 4 {
		parts = append(parts, "0", "1")
	}
	if len(parts) != 6 {
		return Position{}, fmt.Errorf("invalid FEN: expected 6 parts, got %d", len(parts))
	}

	var p Position

	// Parse board
	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return Position{}, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	for r := 0; r < 8; r++ {
		file := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= 8 {
				return Position{}, fmt.Errorf("invalid FEN: too many pieces in rank %d", 8-r)
			}
			piece, ok := core.PieceFromLetter(ch)
			if !ok {
				return Position{}, fmt.Errorf("invalid FEN: unknown piece %q in rank %d", ch, 8-r)
			}
			p.Board.Put(core.Sq(r, file), piece)
			file++
		}
		if file != 8 {
			return Position{}, fmt.Errorf("invalid FEN: rank %d has %d files", 8-r, file)
		}
	}

	switch parts[1] {
	case "w":
		p.Turn = core.ColorWhite
	case "b":
		p.Turn = core.ColorBlack
	default:
		return Position{}, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	if parts[2] != "-" {
		for _, ch := range parts[2] {
			switch ch {
			case 'K':
				p.Castling.WhiteKingSide = true
			case 'Q':
				p.Castling.WhiteQueenSide = true
			case 'k':
				p.Castling.BlackKingSide = true
			case 'q':
				p.Castling.BlackQueenSide = true
			default:
				return Position{}, fmt.Errorf("invalid FEN: castling field %q", parts[2])
			}
		}
	}

	p.EnPassant = core.NoSquare
	if parts[3] != "-" {
		sq, err := core.ParseSquare(parts[3])
		if err != nil {
			return Position{}, fmt.Errorf("invalid FEN: en passant field: %w", err)
		}
		if sq.Row != enPassantRow(p.Turn) {
			return Position{}, fmt.Errorf("invalid FEN: en passant square %s not on rank %d", parts[3], 8-enPassantRow(p.Turn))
		}
		p.EnPassant = sq
	}

	if _, err := fmt.Sscanf(parts[4], "%d", &p.Halfmove); err != nil {
		return Position{}, fmt.Errorf("invalid FEN: halfmove counter")
	}
	if _, err := fmt.Sscanf(parts[5], "%d", &p.Fullmove); err != nil {
		return Position{}, fmt.Errorf("invalid FEN: fullmove counter")
	}

	return p, nil
}

// enPassantRow is the row a double step by the opponent of turn passes over
func enPassantRow(turn core.Color) int {
	if turn == core.ColorWhite {
		return 2
	}
	return 5
}

// FEN writes the position in Forsyth-Edwards notation
func (p Position) FEN() string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		empty := 0
		for f := 0; f < 8; f++ {
			piece := p.Board.At(core.Sq(r, f))
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r < 7 {
			sb.WriteByte('/')
		}
	}

	fmt.Fprintf(&sb, " %s %s %s %d %d",
		p.Turn, p.Castling, p.EnPassant, p.Halfmove, p.Fullmove)
	return sb.String()
}
