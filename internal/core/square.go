// FILE: internal/core/square.go
package core

import "fmt"

// Square is a board coordinate. Row 0 is Black's home rank (rank 8), row 7 is White's (rank 1).
type Square struct {
	Row int
	Col int
}

// NoSquare marks an unset optional square, such as the absence of an en passant target
var NoSquare = Square{Row: -1, Col: -1}

func Sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// String returns algebraic notation ("e2"), or "-" for off-board squares
func (s Square) String() string {
	if !s.OnBoard() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.Col, '8'-s.Row)
}

// ParseSquare parses algebraic notation such as "e2"
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return Square{Row: int('8' - s[1]), Col: int(s[0] - 'a')}, nil
}

// Move is an ordered (from, to) pair. Castling and en passant are inferred from geometry.
type Move struct {
	From Square
	To   Square
}

func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// String returns long algebraic notation ("e2e4")
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// ParseMove parses long algebraic notation. Promotion suffixes are rejected.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return Move{}, fmt.Errorf("invalid move %q: expected 4 characters", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return Move{From: from, To: to}, nil
}

// CastlingSide selects the king side (toward column 7) or queen side (toward column 0)
type CastlingSide int

const (
	KingSide CastlingSide = iota
	QueenSide
)

// CastlingRights tracks which castling moves remain available per color and side
type CastlingRights struct {
	WhiteKingSide  bool
	WhiteQueenSide bool
	BlackKingSide  bool
	BlackQueenSide bool
}

// AllCastlingRights is the initial state of a standard game
var AllCastlingRights = CastlingRights{true, true, true, true}

func (r CastlingRights) Has(c Color, side CastlingSide) bool {
	switch {
	case c == ColorWhite && side == KingSide:
		return r.WhiteKingSide
	case c == ColorWhite && side == QueenSide:
		return r.WhiteQueenSide
	case c == ColorBlack && side == KingSide:
		return r.BlackKingSide
	case c == ColorBlack && side == QueenSide:
		return r.BlackQueenSide
	}
	return false
}

// Revoke returns a copy with the given right cleared
func (r CastlingRights) Revoke(c Color, side CastlingSide) CastlingRights {
	switch {
	case c == ColorWhite && side == KingSide:
		r.WhiteKingSide = false
	case c == ColorWhite && side == QueenSide:
		r.WhiteQueenSide = false
	case c == ColorBlack && side == KingSide:
		r.BlackKingSide = false
	case c == ColorBlack && side == QueenSide:
		r.BlackQueenSide = false
	}
	return r
}

// RevokeAll returns a copy with both rights of a color cleared
func (r CastlingRights) RevokeAll(c Color) CastlingRights {
	return r.Revoke(c, KingSide).Revoke(c, QueenSide)
}

// String returns the FEN castling field ("KQkq", "-" when empty)
func (r CastlingRights) String() string {
	s := ""
	if r.WhiteKingSide {
		s += "K"
	}
	if r.WhiteQueenSide {
		s += "Q"
	}
	if r.BlackKingSide {
		s += "k"
	}
	if r.BlackQueenSide {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

// HomeRow returns the back rank row of a color
func HomeRow(c Color) int {
	if c == ColorWhite {
		return 7
	}
	return 0
}

// KingHome returns the square the king must occupy for castling rights to apply
func KingHome(c Color) Square {
	return Square{Row: HomeRow(c), Col: 4}
}

// RookHome returns the corner square of the rook for a castling side
func RookHome(c Color, side CastlingSide) Square {
	if side == KingSide {
		return Square{Row: HomeRow(c), Col: 7}
	}
	return Square{Row: HomeRow(c), Col: 0}
}
