package parallel

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// WorkerPool manages a fixed set of worker goroutines draining a task queue.
// Task errors and recovered panics are collected and returned by Wait.
type WorkerPool struct {
	workers   int
	taskQueue chan func() error
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu

	errMu sync.Mutex
	errs  []error
}

var (
	// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
	ErrTooManyWorkers = errors.New("worker count exceeds maximum")
	// ErrTaskPanicked wraps a panic recovered from a task.
	ErrTaskPanicked = errors.New("task panicked")
)

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with specified number of workers.
// Returns an error if the worker count exceeds MaxWorkers.
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
		taskQueue: make(chan func() error, workers*2),
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := wp.run(task); err != nil {
			wp.errMu.Lock()
			wp.errs = append(wp.errs, err)
			wp.errMu.Unlock()
		}
	}
}

// run executes a task, converting a panic into an error so one bad task
// does not take the worker down
func (wp *WorkerPool) run(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task()
}

// Submit adds a task to the worker pool.
// Returns false if the pool is closed, true if task was submitted
func (wp *WorkerPool) Submit(task func() error) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for queued ones to finish
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait closes the pool and returns the joined task errors, if any
func (wp *WorkerPool) Wait() error {
	wp.Close()

	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	return errors.Join(wp.errs...)
}

// ForEachChunk splits [0, n) into contiguous chunks and runs fn on each
// from a pool of the given size. Each index is handled by exactly one call.
func ForEachChunk(n, workers, chunkSize int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}

	pool, err := NewWorkerPool(workers)
	if err != nil {
		return err
	}

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		s, e := start, end
		pool.Submit(func() error {
			return fn(s, e)
		})
	}

	return pool.Wait()
}
