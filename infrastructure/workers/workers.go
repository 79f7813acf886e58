// Package workers runs a pool of goroutines that claim, process and settle
// tasks through a Processor.
package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrazmi/artplanner/sdk/environment"
	"github.com/jrazmi/artplanner/sdk/logger"
)

var (
	ErrWorkerShutdown  = errors.New("worker should shutdown")
	ErrPoolShutdown    = errors.New("pool should shutdown")
	ErrNoWorkAvailable = errors.New("no work available")
	ErrPoolRunning     = errors.New("pool already running")
)

// Options is read from PREFIX_WORKER_* variables by NewFromEnv.
type Options struct {
	Name         string        `env:"WORKER_NAME" default:"worker"`
	WorkerCount  int           `env:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" default:"2s"`
	IdleInterval time.Duration `env:"WORKER_IDLE_INTERVAL" default:"30s"`
	MaxRetries   int           `env:"WORKER_MAX_RETRIES" default:"3"`
	RetryDelay   time.Duration `env:"WORKER_RETRY_DELAY" default:"1s"`
}

type options struct {
	Options
	middlewares []Middleware
	metrics     WorkerPoolMetrics
	log         *logger.Logger
}

type Option func(*options)

func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		o.PollInterval = interval
	}
}

// WithIdleInterval sets how long a worker waits after finding no work.
// Wake cuts the wait short.
func WithIdleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.IdleInterval = interval
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxRetries sets the number of Process attempts per checkout.
func WithMaxRetries(maxRetries int) Option {
	return func(o *options) {
		o.MaxRetries = maxRetries
	}
}

// WithRetryDelay sets the first backoff. It doubles on every further attempt.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *options) {
		o.RetryDelay = delay
	}
}

func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

func WithMetrics(metrics WorkerPoolMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WorkerPool runs WorkerCount goroutines against one Processor.
type WorkerPool[T Task] struct {
	processor Processor[T]
	cfg       Options
	log       *logger.Logger

	workFunc         WorkFunc
	middlewares      []Middleware
	preProcessHooks  []PreProcessHook[T]
	postProcessHooks []PostProcessHook[T]
	metrics          WorkerPoolMetrics

	cancel  context.CancelFunc
	workers sync.WaitGroup
	mu      sync.Mutex
	running bool

	wake   chan struct{}
	errors chan error
}

// NewFromEnv builds a pool from PREFIX_WORKER_* variables.
func NewFromEnv[T Task](prefix string, processor Processor[T], opts ...Option) (*WorkerPool[T], error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config: %w", err)
	}

	return newWorkerPool(processor, cfg, opts...), nil
}

func NewWorkerPool[T Task](name string, workerCount int, processor Processor[T], opts ...Option) *WorkerPool[T] {
	cfg := Options{
		Name:         name,
		WorkerCount:  workerCount,
		PollInterval: time.Second,
		IdleInterval: 30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}

	return newWorkerPool(processor, cfg, opts...)
}

func newWorkerPool[T Task](processor Processor[T], cfg Options, opts ...Option) *WorkerPool[T] {
	o := &options{Options: cfg, metrics: NewNoOpMetrics()}
	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logger.NewDefault()
	}
	if o.WorkerCount <= 0 {
		o.WorkerCount = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = 30 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 1
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}

	pool := &WorkerPool[T]{
		processor:   processor,
		cfg:         o.Options,
		log:         o.log,
		middlewares: o.middlewares,
		metrics:     o.metrics,
		wake:        make(chan struct{}, o.WorkerCount),
		errors:      make(chan error, o.WorkerCount),
	}
	pool.buildMiddlewareChain()

	return pool
}

// Errors reports ErrPoolShutdown from workers. It is closed when Start
// returns.
func (wp *WorkerPool[T]) Errors() <-chan error {
	return wp.errors
}

// Start runs the workers and blocks until ctx is cancelled, Stop is called
// or every worker has exited.
func (wp *WorkerPool[T]) Start(ctx context.Context) error {
	wp.mu.Lock()
	if wp.running {
		wp.mu.Unlock()
		return ErrPoolRunning
	}
	started := time.Now()
	ctx, wp.cancel = context.WithCancel(ctx)
	wp.running = true
	wp.mu.Unlock()

	wp.log.InfoContext(ctx, "starting worker pool",
		"name", wp.cfg.Name,
		"worker_count", wp.cfg.WorkerCount,
		"poll_interval", wp.cfg.PollInterval,
		"idle_interval", wp.cfg.IdleInterval,
		"max_retries", wp.cfg.MaxRetries)
	wp.metrics.Start(ctx, wp.cfg.Name)

	for i := range wp.cfg.WorkerCount {
		wp.workers.Add(1)
		go wp.worker(ctx, fmt.Sprintf("%s-worker-%d", wp.cfg.Name, i+1))
	}
	wp.workers.Wait()

	close(wp.errors)
	wp.metrics.Stop(context.Background())

	wp.mu.Lock()
	wp.running = false
	wp.cancel()
	wp.mu.Unlock()

	wp.log.InfoContext(context.Background(), "worker pool stopped", "name", wp.cfg.Name, "total_runtime", time.Since(started))
	return nil
}

// Running reports whether the pool has been started and not yet stopped.
func (wp *WorkerPool[T]) Running() bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.running
}

// Stop signals the workers to finish their current task and exit.
func (wp *WorkerPool[T]) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return
	}

	wp.log.InfoContext(context.Background(), "stopping worker pool", "name", wp.cfg.Name)
	wp.cancel()
}

// Wake asks idle workers to poll now instead of waiting out their interval.
// It never blocks.
func (wp *WorkerPool[T]) Wake() {
	select {
	case wp.wake <- struct{}{}:
	default:
	}
}

func (wp *WorkerPool[T]) GetMetrics() MetricsSnapshot {
	return wp.metrics.GetSnapshot()
}

func (wp *WorkerPool[T]) worker(ctx context.Context, workerID string) {
	defer wp.workers.Done()
	defer wp.metrics.RecordWorkerStopped()
	wp.metrics.RecordWorkerStarted()

	log := wp.log.With("worker_id", workerID)
	log.DebugContext(ctx, "worker started")
	defer log.DebugContext(context.Background(), "worker stopped")

	// First poll is immediate.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-wp.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}

		err := wp.safeWork(ctx, workerID)

		next := wp.cfg.PollInterval
		switch {
		case err == nil:
		case errors.Is(err, ErrNoWorkAvailable):
			next = wp.cfg.IdleInterval
		case errors.Is(err, ErrWorkerShutdown):
			log.InfoContext(ctx, "worker shutting down as requested")
			return
		case errors.Is(err, ErrPoolShutdown):
			log.ErrorContext(ctx, "worker requesting pool shutdown", "error", err)
			select {
			case wp.errors <- fmt.Errorf("worker %s: %w", workerID, err):
			default:
				log.ErrorContext(ctx, "error channel full, critical error not sent")
			}
			return
		case ctx.Err() != nil:
			return
		default:
			log.ErrorContext(ctx, "task processing error", "error", err)
		}

		timer.Reset(next)
	}
}

// safeWork keeps a panic in checkout or a middleware from killing the worker.
func (wp *WorkerPool[T]) safeWork(ctx context.Context, workerID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in worker",
				"worker_id", workerID,
				"panic", r,
				"stack_trace", string(debug.Stack()))

			wp.metrics.RecordWorkerPanic()
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	return wp.workFunc(ctx, workerID)
}

// work runs Checkout -> Process -> Complete/Fail. A panic inside Process is
// recovered here so the task is still settled through Fail.
func (wp *WorkerPool[T]) work(ctx context.Context, workerID string) (err error) {
	task, err := wp.processor.Checkout(ctx, workerID)
	if err != nil {
		if errors.Is(err, ErrNoWorkAvailable) {
			return err
		}
		wp.metrics.RecordCheckoutError()
		return fmt.Errorf("checkout failed: %w", err)
	}
	wp.metrics.RecordTaskCheckedOut()

	var (
		processErr error
		processed  T
		started    = time.Now()
	)

	// Settling uses a context detached from shutdown so a task checked out
	// before Stop is not left claimed.
	settleCtx := context.WithoutCancel(ctx)

	defer func() {
		took := time.Since(started)

		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in task",
				"worker_id", workerID,
				"task_id", task.GetID(),
				"panic", r,
				"stack_trace", string(debug.Stack()))

			wp.metrics.RecordWorkerPanic()
			processErr = fmt.Errorf("panic: %v", r)
			err = fmt.Errorf("task processing error: %w", processErr)
		}

		// Hooks see the original task on failure and the processed one on success.
		hookTask := processed
		if processErr != nil {
			hookTask = task
		}
		for _, hook := range wp.postProcessHooks {
			if err := hook(settleCtx, hookTask, processErr); err != nil {
				wp.log.ErrorContext(ctx, "post-process hook failed", "task_id", task.GetID(), "error", err)
			}
		}

		if processErr != nil {
			wp.metrics.RecordTaskFailed(took)
			if failErr := wp.processor.Fail(settleCtx, task, processErr); failErr != nil {
				wp.log.ErrorContext(ctx, "failed to mark task as failed", "task_id", task.GetID(), "error", failErr)
			}
			return
		}

		wp.metrics.RecordTaskCompleted(took)
		if completeErr := wp.processor.Complete(settleCtx, processed, int(took.Milliseconds())); completeErr != nil {
			wp.log.ErrorContext(ctx, "failed to mark task as complete", "task_id", task.GetID(), "error", completeErr)
		}
	}()

	for _, hook := range wp.preProcessHooks {
		if err := hook(ctx, task); err != nil {
			wp.log.ErrorContext(ctx, "pre-process hook failed", "task_id", task.GetID(), "error", err)
		}
	}

	processed, processErr = wp.processWithRetry(ctx, task)
	if processErr != nil {
		return fmt.Errorf("task processing error: %w", processErr)
	}

	return nil
}

// processWithRetry retries Process with exponential backoff. Errors marked
// with Permanent are not retried.
func (wp *WorkerPool[T]) processWithRetry(ctx context.Context, task T) (T, error) {
	var (
		lastErr   error
		processed T
		attempt   int
	)

	for attempt = 1; attempt <= wp.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			wp.metrics.RecordRetryAttempt()
			delay := wp.cfg.RetryDelay * time.Duration(1<<(attempt-2))
			wp.log.InfoContext(ctx, "retrying task",
				"task_id", task.GetID(),
				"attempt", attempt,
				"max_attempts", wp.cfg.MaxRetries,
				"delay", delay)

			select {
			case <-ctx.Done():
				return processed, ctx.Err()
			case <-time.After(delay):
			}
		}

		processed, lastErr = wp.processor.Process(ctx, task)
		if lastErr == nil {
			if attempt > 1 {
				wp.metrics.RecordRetrySuccess()
			}
			return processed, nil
		}
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		if IsPermanent(lastErr) {
			wp.log.WarnContext(ctx, "task failed permanently", "task_id", task.GetID(), "error", lastErr)
			return processed, lastErr
		}

		wp.log.WarnContext(ctx, "task processing attempt failed",
			"task_id", task.GetID(),
			"attempt", attempt,
			"error", lastErr)
	}

	if wp.cfg.MaxRetries > 1 {
		wp.metrics.RecordRetryExhausted()
	}

	return processed, fmt.Errorf("failed after %d attempts: %w", wp.cfg.MaxRetries, lastErr)
}
