// FILE: internal/engine/search.go
package engine

import (
	"context"
	"errors"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/rules"
)

const (
	// Infinity bounds the alpha-beta window
	Infinity = 1 << 30

	DefaultDepth = 3

	// How many nodes are visited between cancellation checks
	cancelCheckInterval = 1024
)

// ErrNoMoves is returned when the side to move has no legal move
var ErrNoMoves = errors.New("no legal moves")

type SearchResult struct {
	Move  core.Move
	Score int // from the mover's point of view
	Depth int
	Nodes int
}

// Searcher runs a fixed-depth alpha-beta search. The zero value searches at DefaultDepth.
type Searcher struct {
	Depth int
}

type search struct {
	ctx   context.Context
	nodes int
	err   error
}

// Minimax scores b for the side turn with alpha-beta pruning. Scores are Black-positive;
// maximizing is true when Black is to move. Terminal positions and depth 0 return the
// static material evaluation.
func Minimax(b board.Board, depth, alpha, beta int, maximizing bool, turn core.Color) int {
	s := &search{ctx: context.Background()}
	return s.minimax(b, depth, alpha, beta, maximizing, turn)
}

func (s *search) minimax(b board.Board, depth, alpha, beta int, maximizing bool, turn core.Color) int {
	s.nodes++
	if s.nodes%cancelCheckInterval == 0 && s.err == nil {
		s.err = s.ctx.Err()
	}
	if s.err != nil {
		return 0
	}

	if depth == 0 || rules.GameOver(b, turn).Over {
		return Evaluate(b)
	}

	moves := rules.GenerateMoves(b, turn)
	if len(moves) == 0 {
		return Evaluate(b)
	}

	next := core.OppositeColor(turn)
	if maximizing {
		best := -Infinity
		for _, m := range moves {
			v := s.minimax(rules.Apply(b, m), depth-1, alpha, beta, false, next)
			best = max(best, v)
			alpha = max(alpha, v)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := Infinity
	for _, m := range moves {
		v := s.minimax(rules.Apply(b, m), depth-1, alpha, beta, true, next)
		best = min(best, v)
		beta = min(beta, v)
		if beta <= alpha {
			break
		}
	}
	return best
}

// Search picks the best legal move for turn. Each legal root move is scored by a
// minimax search of Depth plies below it; the first move with the strictly highest
// score wins.
func (s Searcher) Search(ctx context.Context, b board.Board, turn core.Color) (SearchResult, error) {
	depth := s.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	moves := rules.LegalMoves(b, turn)
	if len(moves) == 0 {
		return SearchResult{}, ErrNoMoves
	}

	st := &search{ctx: ctx}
	opponent := core.OppositeColor(turn)
	result := SearchResult{Score: -Infinity, Depth: depth}
	for _, m := range moves {
		v := st.minimax(rules.Apply(b, m), depth, -Infinity, Infinity, opponent == core.ColorBlack, opponent)
		if st.err != nil {
			return SearchResult{}, st.err
		}
		if turn == core.ColorWhite {
			v = -v
		}
		if v > result.Score {
			result.Score = v
			result.Move = m
		}
	}
	result.Nodes = st.nodes
	return result, nil
}

// BestMove returns the computer's move for turn at the default depth, or false when
// turn has no legal move
func BestMove(b board.Board, turn core.Color) (core.Move, bool) {
	res, err := Searcher{Depth: DefaultDepth}.Search(context.Background(), b, turn)
	if err != nil {
		return core.Move{}, false
	}
	return res.Move, true
}
