package workers

import (
	"context"
	"errors"
	"sync"
	"time"
)

// buildMiddlewareChain wraps work so the first middleware added is outermost.
func (wp *WorkerPool[T]) buildMiddlewareChain() {
	wp.workFunc = wp.work

	for i := len(wp.middlewares) - 1; i >= 0; i-- {
		wp.workFunc = wp.middlewares[i](wp.workFunc)
	}
}

// ConsecutiveErrorShutdown stops a worker after count consecutive failures.
func ConsecutiveErrorShutdown(count int) Middleware {
	errorCounts := make(map[string]int)
	var mu sync.Mutex

	return func(next WorkFunc) WorkFunc {
		return func(ctx context.Context, workerID string) error {
			err := next(ctx, workerID)
			mu.Lock()
			defer mu.Unlock()

			if err != nil && !errors.Is(err, ErrNoWorkAvailable) {
				errorCounts[workerID]++
				if errorCounts[workerID] > count {
					return ErrWorkerShutdown
				}
			} else if err == nil {
				errorCounts[workerID] = 0
			}

			return err
		}
	}
}

// ConsecutiveErrorPause makes a worker sit out pause after count consecutive
// failures, then resets its counter. It keeps a pool from hammering a
// downstream service that is failing every request.
func ConsecutiveErrorPause(count int, pause time.Duration) Middleware {
	errorCounts := make(map[string]int)
	var mu sync.Mutex

	return func(next WorkFunc) WorkFunc {
		return func(ctx context.Context, workerID string) error {
			err := next(ctx, workerID)

			mu.Lock()
			tripped := false
			switch {
			case err == nil:
				errorCounts[workerID] = 0
			case !errors.Is(err, ErrNoWorkAvailable):
				errorCounts[workerID]++
				if errorCounts[workerID] >= count {
					errorCounts[workerID] = 0
					tripped = true
				}
			}
			mu.Unlock()

			if tripped {
				select {
				case <-ctx.Done():
				case <-time.After(pause):
				}
			}

			return err
		}
	}
}
