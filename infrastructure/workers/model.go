package workers

import (
	"context"
	"errors"
)

// Task is a unit of work with a stable identifier.
type Task interface {
	GetID() string
}

// Processor is the queue a pool drains.
type Processor[T Task] interface {
	// Checkout claims the next available task. It must be atomic across
	// concurrent workers and return ErrNoWorkAvailable when the queue is empty.
	Checkout(ctx context.Context, workerID string) (T, error)

	Process(ctx context.Context, task T) (T, error)

	// Complete receives the processed task after Process succeeds.
	Complete(ctx context.Context, task T, processingTimeMS int) error

	// Fail receives the checked out task once retries are exhausted, or at
	// once for a Permanent error.
	Fail(ctx context.Context, task T, err error) error
}

type WorkFunc func(ctx context.Context, workerID string) error

// Middleware wraps every Checkout -> Process -> settle cycle.
type Middleware func(WorkFunc) WorkFunc

type PreProcessHook[T Task] func(ctx context.Context, task T) error

// PostProcessHook gets the Process error, nil on success.
type PostProcessHook[T Task] func(ctx context.Context, task T, err error) error

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
