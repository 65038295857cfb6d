// FILE: internal/service/waiter.go
package service

import (
	"context"
	"sync"
	"time"
)

// WaitTimeout is the maximum time a client can wait for notifications
const WaitTimeout = 25 * time.Second

// WaitRegistry manages long-polling and websocket clients waiting for game state changes
type WaitRegistry struct {
	mu      sync.Mutex
	waiters map[string]map[*waitRequest]struct{} // gameID → waiting clients
	closed  bool
	timeout time.Duration
}

// waitRequest is a single client waiting for game updates. notify is closed exactly once.
type waitRequest struct {
	notify    chan struct{}
	once      sync.Once
	timer     *time.Timer
	stopCtxFn func() bool
}

func (r *waitRequest) fire() {
	r.once.Do(func() {
		close(r.notify)
		r.timer.Stop()
		if r.stopCtxFn != nil {
			r.stopCtxFn()
		}
	})
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters: make(map[string]map[*waitRequest]struct{}),
		timeout: WaitTimeout,
	}
}

// RegisterWait registers a client to wait for the next change of a game
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &waitRequest{notify: make(chan struct{})}
	if w.closed {
		close(req.notify)
		return req.notify
	}

	req.timer = time.AfterFunc(w.timeout, func() {
		w.release(gameID, req)
	})
	req.stopCtxFn = context.AfterFunc(ctx, func() {
		w.release(gameID, req)
	})

	if w.waiters[gameID] == nil {
		w.waiters[gameID] = make(map[*waitRequest]struct{})
	}
	w.waiters[gameID][req] = struct{}{}

	return req.notify
}

// NotifyGame wakes all clients waiting on a game
func (w *WaitRegistry) NotifyGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for req := range waitList {
		req.fire()
	}
}

// RemoveGame wakes and forgets all waiters for a game (called before game deletion)
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.NotifyGame(gameID)
}

// Shutdown wakes every waiting client and rejects new registrations
func (w *WaitRegistry) Shutdown() {
	w.mu.Lock()
	all := w.waiters
	w.waiters = make(map[string]map[*waitRequest]struct{})
	w.closed = true
	w.mu.Unlock()

	for _, waitList := range all {
		for req := range waitList {
			req.fire()
		}
	}
}

// release removes a single waiter after a timeout or client disconnect
func (w *WaitRegistry) release(gameID string, req *waitRequest) {
	w.mu.Lock()
	if waitList, ok := w.waiters[gameID]; ok {
		delete(waitList, req)
		if len(waitList) == 0 {
			delete(w.waiters, gameID)
		}
	}
	w.mu.Unlock()

	req.fire()
}
