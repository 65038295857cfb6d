package board

import (
	"strings"
	"testing"

	"chessbot/internal/core"
)

func TestStartingPositionFEN(t *testing.T) {
	if got := NewPosition().FEN(); got != StartingFEN {
		t.Errorf("NewPosition().FEN() = %q, want %q", got, StartingFEN)
	}

	pos, err := ParseFEN(StartingFEN)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos != NewPosition() {
		t.Error("parsed starting FEN differs from NewPosition")
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"r3k2r/8/8/8/8/8/8/R3K2R b Kq - 12 40",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("round trip:\n got %q\nwant %q", got, fen)
		}
	}
}

func TestParseFENShortForm(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K2R w K -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.Halfmove != 0 || pos.Fullmove != 1 {
		t.Errorf("counters = %d %d, want 0 1", pos.Halfmove, pos.Fullmove)
	}
	if !pos.Castling.WhiteKingSide || pos.Castling.WhiteQueenSide {
		t.Errorf("castling = %s, want K", pos.Castling)
	}
	if pos.EnPassant != core.NoSquare {
		t.Errorf("en passant = %v, want none", pos.EnPassant)
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQz - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) succeeded, want error", fen)
		}
	}
}

func TestParseFENEnPassantRank(t *testing.T) {
	tests := []struct {
		fen string
		ok  bool
	}{
		{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", true},
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", true},
		{"4k3/8/8/8/8/8/3PK3/8 w - e3 0 1", false},
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e3 0 1", false},
		{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR b KQkq f6 0 3", false},
		{"4k3/8/8/8/8/8/8/4K3 w - e5 0 1", false},
	}
	for _, tt := range tests {
		_, err := ParseFEN(tt.fen)
		if (err == nil) != tt.ok {
			t.Errorf("ParseFEN(%q) error = %v, want ok=%v", tt.fen, err, tt.ok)
		}
	}
}

func TestBoardIsValue(t *testing.T) {
	b := Starting()
	e2 := core.Sq(6, 4)
	moved := b.With(e2, core.NoPiece)

	if b.At(e2) != core.NewPiece(core.ColorWhite, core.Pawn) {
		t.Error("With modified the original board")
	}
	if !moved.At(e2).IsEmpty() {
		t.Error("With did not clear the square")
	}
	if !b.At(core.NoSquare).IsEmpty() {
		t.Error("off-board square is not empty")
	}
}

func TestSquaresByColor(t *testing.T) {
	b := Starting()
	white := b.Squares(core.ColorWhite)
	if len(white) != 16 {
		t.Fatalf("white squares = %d, want 16", len(white))
	}
	if white[0] != core.Sq(6, 0) {
		t.Errorf("first white square = %v, want a2", white[0])
	}
	if got := len(b.Squares(core.ColorBlack)); got != 16 {
		t.Errorf("black squares = %d, want 16", got)
	}
}

func TestToASCII(t *testing.T) {
	lines := strings.Split(Starting().ToASCII(), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if lines[1] != "8 r n b q k b n r  8" {
		t.Errorf("rank 8 = %q", lines[1])
	}
	if lines[4] != "5 . . . . . . . .  5" {
		t.Errorf("rank 5 = %q", lines[4])
	}
	if lines[8] != "1 R N B Q K B N R  1" {
		t.Errorf("rank 1 = %q", lines[8])
	}
}
