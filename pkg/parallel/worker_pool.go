package parallel

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
)

// WorkerPool runs submitted tasks on a fixed number of goroutines. Wait is a
// barrier for everything submitted so far and can be called repeatedly, so a
// single pool serves every stage of a computation without exceeding its
// worker bound.
type WorkerPool struct {
	workers   int
	taskQueue chan func() error
	wg        sync.WaitGroup // running workers
	pending   sync.WaitGroup // submitted, unfinished tasks
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu

	errMu    sync.Mutex
	firstErr error
}

var (
	// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
	ErrTooManyWorkers = errors.New("worker count exceeds maximum")
	// ErrPoolClosed is returned when submitting to a closed pool.
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrTaskPanic wraps a panic recovered from a task.
	ErrTaskPanic = errors.New("task panicked")
)

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// DefaultWorkers is the worker count used when none is configured
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// NewWorkerPool creates a new worker pool with specified number of workers.
// Non-positive counts use one worker.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func() error, workers*2), // Buffer for 2x workers
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// start initializes the worker goroutines
func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(task)
	}
}

// run executes one task, converting a panic into a recorded error
func (wp *WorkerPool) run(task func() error) {
	defer wp.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			wp.record(fmt.Errorf("%w: %v", ErrTaskPanic, r))
		}
	}()

	if err := task(); err != nil {
		wp.record(err)
	}
}

func (wp *WorkerPool) record(err error) {
	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	if wp.firstErr == nil {
		wp.firstErr = err
	}
}

// Submit adds a task to the worker pool.
// Returns ErrPoolClosed if the pool is closed.
func (wp *WorkerPool) Submit(task func() error) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	// Check if pool is closed while holding read lock
	if wp.closed {
		return ErrPoolClosed
	}

	wp.pending.Add(1)
	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return nil
}

// Wait blocks until every submitted task has finished and returns the first
// error (or recovered panic) reported since the previous Wait.
func (wp *WorkerPool) Wait() error {
	wp.pending.Wait()

	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	err := wp.firstErr
	wp.firstErr = nil
	return err
}

// Close shuts down the worker pool after queued tasks complete
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		// Acquire write lock before closing
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
