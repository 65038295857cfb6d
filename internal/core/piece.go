// FILE: internal/core/piece.go
package core

type PieceKind byte

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece is the content of one square. The zero value is an empty square.
type Piece struct {
	Color Color
	Kind  PieceKind
}

var NoPiece = Piece{}

func NewPiece(c Color, k PieceKind) Piece {
	return Piece{Color: c, Kind: k}
}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// IsEnemyOf reports whether p holds a piece of the color opposing c
func (p Piece) IsEnemyOf(c Color) bool {
	return !p.IsEmpty() && p.Color != c
}

var kindLetters = map[PieceKind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

// Letter returns the FEN letter: upper case for White, lower case for Black, 0 for empty
func (p Piece) Letter() byte {
	l, ok := kindLetters[p.Kind]
	if !ok {
		return 0
	}
	if p.Color == ColorWhite {
		return l - 'a' + 'A'
	}
	return l
}

// PieceFromLetter parses a FEN piece letter
func PieceFromLetter(ch byte) (Piece, bool) {
	color := ColorBlack
	lower := ch
	if ch >= 'A' && ch <= 'Z' {
		color = ColorWhite
		lower = ch - 'A' + 'a'
	}
	for kind, l := range kindLetters {
		if l == lower {
			return Piece{Color: color, Kind: kind}, true
		}
	}
	return NoPiece, false
}

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}
