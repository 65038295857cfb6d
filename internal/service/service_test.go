package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/game"
)

func newTestGame(t *testing.T, s *Service) string {
	t.Helper()
	id := s.GenerateGameID()
	white := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, core.ColorWhite)
	black := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, core.ColorBlack)
	if err := s.CreateGame(id, white, black, board.NewPosition()); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return id
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("wait channel not released")
	}
}

// waiting counts the clients registered on a game
func waiting(w *WaitRegistry, gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

func TestCreateAndLookup(t *testing.T) {
	s := New()
	id := newTestGame(t, s)

	if s.GameCount() != 1 {
		t.Errorf("GameCount() = %d", s.GameCount())
	}
	if err := s.CreateGame(id, nil, nil, board.NewPosition()); err == nil {
		t.Error("duplicate id accepted")
	}

	err := s.View("missing", func(*game.Game) error { return nil })
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("View(missing) = %v", err)
	}
	err = s.Update("missing", func(*game.Game) error { return nil })
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Update(missing) = %v", err)
	}
}

func TestUpdateErrorLeavesWaiters(t *testing.T) {
	s := New()
	id := newTestGame(t, s)

	ch, err := s.RegisterWait(context.Background(), id, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := errors.New("rejected")
	if err := s.Update(id, func(*game.Game) error { return want }); err != want {
		t.Errorf("Update error = %v", err)
	}
	if closed(ch) {
		t.Error("failed update woke waiter")
	}
	if n := waiting(s.waiter, id); n != 1 {
		t.Errorf("waiting = %d, want 1", n)
	}

	err = s.Update(id, func(g *game.Game) error {
		_, err := g.Play("e2e4")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	waitClosed(t, ch)
	if n := waiting(s.waiter, id); n != 0 {
		t.Errorf("waiting after notify = %d", n)
	}
}

func TestRegisterWaitStaleMoveCount(t *testing.T) {
	s := New()
	id := newTestGame(t, s)

	ch, err := s.RegisterWait(context.Background(), id, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !closed(ch) {
		t.Error("stale move count did not return a closed channel")
	}

	if _, err := s.RegisterWait(context.Background(), "missing", 0); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("RegisterWait(missing) = %v", err)
	}
}

func TestRegisterWaitContextCancel(t *testing.T) {
	s := New()
	id := newTestGame(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.RegisterWait(ctx, id, 0)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	waitClosed(t, ch)

	deadline := time.Now().Add(time.Second)
	for waiting(s.waiter, id) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := waiting(s.waiter, id); n != 0 {
		t.Errorf("cancelled waiter still registered: %d", n)
	}
}

func TestWaitTimeout(t *testing.T) {
	w := NewWaitRegistry()
	w.timeout = 10 * time.Millisecond

	ch := w.RegisterWait(context.Background(), "g")
	waitClosed(t, ch)
	if waiting(w, "g") != 0 {
		t.Error("timed out waiter still registered")
	}
}

func TestDeleteGameWakesWaiters(t *testing.T) {
	s := New()
	id := newTestGame(t, s)

	ch, err := s.RegisterWait(context.Background(), id, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteGame(id); err != nil {
		t.Fatal(err)
	}
	waitClosed(t, ch)

	if err := s.DeleteGame(id); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestShutdown(t *testing.T) {
	s := New()
	id := newTestGame(t, s)

	ch, err := s.RegisterWait(context.Background(), id, 0)
	if err != nil {
		t.Fatal(err)
	}
	s.Shutdown()
	waitClosed(t, ch)

	if s.GameCount() != 0 {
		t.Errorf("GameCount() after shutdown = %d", s.GameCount())
	}
	if ch := s.waiter.RegisterWait(context.Background(), id); !closed(ch) {
		t.Error("registration after shutdown blocks")
	}
}
