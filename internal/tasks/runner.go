// Package tasks runs best-effort side effects (catalog upserts, post-save
// stock deduction) off the caller's path. Failures are logged, never returned:
// this is the tier below user-triggered actions, which must report errors.
package tasks

import (
	"context"
	"log/slog"
	"sync"
)

// Task is one unit of best-effort work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes submitted tasks on a fixed worker pool.
type Runner struct {
	queue       chan Task
	stopWorkers chan struct{}
	workersWG   sync.WaitGroup
	workerCount int

	mu        sync.Mutex
	completed int
	failed    int
	dropped   int
}

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	WorkerCount     int
	QueueBufferSize int
}

// NewRunner creates and starts a task runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueBufferSize < 1 {
		cfg.QueueBufferSize = 100
	}

	r := &Runner{
		queue:       make(chan Task, cfg.QueueBufferSize),
		stopWorkers: make(chan struct{}),
		workerCount: cfg.WorkerCount,
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		r.workersWG.Add(1)
		go r.worker(i + 1)
	}

	slog.Info("Task runner started",
		"worker_count", cfg.WorkerCount,
		"queue_buffer_size", cfg.QueueBufferSize)

	return r
}

// Submit queues a task without blocking. When the queue is full the task is
// dropped and logged; best-effort work is never allowed to stall a caller.
func (r *Runner) Submit(name string, run func(ctx context.Context) error) {
	select {
	case r.queue <- Task{Name: name, Run: run}:
		slog.Debug("Task queued", "task", name)
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		slog.Error("Task queue full, dropping task", "task", name)
	}
}

// Close stops the workers after draining queued tasks.
func (r *Runner) Close() {
	close(r.stopWorkers)
	r.workersWG.Wait()
	close(r.queue)

	r.mu.Lock()
	defer r.mu.Unlock()
	slog.Info("Task runner stopped",
		"completed", r.completed,
		"failed", r.failed,
		"dropped", r.dropped)
}

// Stats reports completed, failed and dropped task counts.
func (r *Runner) Stats() (completed, failed, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed, r.failed, r.dropped
}

func (r *Runner) worker(workerID int) {
	defer r.workersWG.Done()

	for {
		select {
		case task := <-r.queue:
			r.runTask(workerID, task)
		case <-r.stopWorkers:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case task := <-r.queue:
					r.runTask(workerID, task)
				default:
					slog.Debug("Task worker stopping", "worker_id", workerID)
					return
				}
			}
		}
	}
}

func (r *Runner) runTask(workerID int, task Task) {
	err := task.Run(context.Background())

	r.mu.Lock()
	if err != nil {
		r.failed++
	} else {
		r.completed++
	}
	r.mu.Unlock()

	if err != nil {
		slog.Error("Best-effort task failed", "task", task.Name, "worker_id", workerID, "error", err)
		return
	}
	slog.Debug("Task completed", "task", task.Name, "worker_id", workerID)
}
