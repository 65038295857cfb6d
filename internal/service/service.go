// FILE: internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/game"

	"github.com/google/uuid"
)

// MaxGames caps the number of games held in memory
const MaxGames = 1000

var (
	ErrGameNotFound = errors.New("game not found")
	ErrTooManyGames = errors.New("game limit reached")
)

// Service is an in-memory state manager for chess games. All access to a
// game goes through the service lock.
type Service struct {
	games  map[string]*game.Game
	mu     sync.RWMutex
	waiter *WaitRegistry
}

func New() *Service {
	return &Service{
		games:  make(map[string]*game.Game),
		waiter: NewWaitRegistry(),
	}
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// CreateGame registers a new game starting from pos
func (s *Service) CreateGame(id string, whitePlayer, blackPlayer *core.Player, pos board.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("game %s already exists", id)
	}
	if len(s.games) >= MaxGames {
		return ErrTooManyGames
	}

	s.games[id] = game.New(pos, whitePlayer, blackPlayer)
	return nil
}

// View runs fn with read access to a game. fn must not retain g.
func (s *Service) View(gameID string, fn func(g *game.Game) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return fn(g)
}

// Update runs fn with write access to a game and wakes waiting clients if fn succeeds
func (s *Service) Update(gameID string, fn func(g *game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err := fn(g); err != nil {
		return err
	}
	s.waiter.NotifyGame(gameID)
	return nil
}

// DeleteGame removes a game from memory
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	// Wake all waiters before deletion so they observe the missing game
	s.waiter.RemoveGame(gameID)

	delete(s.games, gameID)
	return nil
}

// GameCount returns the number of games in memory
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// RegisterWait returns a channel that is closed when the game changes, the wait
// times out, or ctx ends. If the game's move count already differs from
// moveCount the channel is returned closed.
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) (<-chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if g.MoveCount() != moveCount {
		done := make(chan struct{})
		close(done)
		return done, nil
	}
	return s.waiter.RegisterWait(ctx, gameID), nil
}

// Shutdown releases all waiting clients and drops every game
func (s *Service) Shutdown() {
	s.waiter.Shutdown()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = make(map[string]*game.Game)
}
