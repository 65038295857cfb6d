// FILE: internal/processor/queue.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/engine"
)

const (
	// EngineTimeout bounds a single computer move search
	EngineTimeout = 30 * time.Second

	defaultWorkers = 2
	queueCapacity  = 100
)

var ErrQueueFull = errors.New("engine queue is full")

// EngineTask contains computer move calculation request and response channel
type EngineTask struct {
	GameID   string
	Board    board.Board
	Color    core.Color
	Depth    int
	Response chan<- EngineResult
}

// EngineResult contains the outcome of an engine calculation. NoMove is set
// when the side to move had no legal move.
type EngineResult struct {
	GameID string
	Move   core.Move
	NoMove bool
	Score  int
	Depth  int
	Nodes  int
	Error  error
}

// EngineQueue manages async engine computations
type EngineQueue struct {
	tasks   chan EngineTask
	workers int
	timeout time.Duration
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

// NewEngineQueue creates a queue with specified worker count
func NewEngineQueue(workerCount int) *EngineQueue {
	if workerCount < 1 {
		workerCount = defaultWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:   make(chan EngineTask, queueCapacity),
		workers: workerCount,
		timeout: EngineTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}

	q.start()
	return q
}

// start initializes the worker pool
func (q *EngineQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// worker processes engine tasks
func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return
			}

			result := q.processTask(id, task)

			// Response channels are buffered, a gone receiver never blocks the worker
			select {
			case task.Response <- result:
			default:
			}

		case <-q.ctx.Done():
			return
		}
	}
}

// processTask executes a single search. A panic inside the search is reported as an error.
func (q *EngineQueue) processTask(id int, task EngineTask) (result EngineResult) {
	result.GameID = task.GameID

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d: search panicked for game %s: %v", id, task.GameID, r)
			result = EngineResult{GameID: task.GameID, Error: fmt.Errorf("engine failure: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()

	search, err := engine.Searcher{Depth: task.Depth}.Search(ctx, task.Board, task.Color)
	if errors.Is(err, engine.ErrNoMoves) {
		result.NoMove = true
		return result
	}
	if err != nil {
		result.Error = fmt.Errorf("engine search failed: %w", err)
		return result
	}

	result.Move = search.Move
	result.Score = search.Score
	result.Depth = search.Depth
	result.Nodes = search.Nodes
	return result
}

// Submit adds a task to the queue
func (q *EngineQueue) Submit(task EngineTask) error {
	if q.ctx.Err() != nil {
		return fmt.Errorf("queue is shutting down")
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitAsync submits a task and invokes callback with its result from another goroutine
func (q *EngineQueue) SubmitAsync(gameID string, b board.Board, color core.Color, depth int, callback func(EngineResult)) error {
	respChan := make(chan EngineResult, 1)

	task := EngineTask{
		GameID:   gameID,
		Board:    b,
		Color:    color,
		Depth:    depth,
		Response: respChan,
	}

	if err := q.Submit(task); err != nil {
		return err
	}

	go func() {
		select {
		case result := <-respChan:
			callback(result)
		case <-q.ctx.Done():
			callback(EngineResult{
				GameID: gameID,
				Error:  fmt.Errorf("engine queue shut down"),
			})
		}
	}()

	return nil
}

// Shutdown stops the workers, cancelling searches in progress
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.once.Do(q.cancel)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
