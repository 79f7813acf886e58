package workers

import (
	"context"

	"github.com/jrazmi/artplanner/sdk/logger"
)

// AddPreProcessHooks adds functions that run after processor.Checkout and
// before processor.Process.
func (wp *WorkerPool[T]) AddPreProcessHooks(hooks ...PreProcessHook[T]) {
	wp.preProcessHooks = append(wp.preProcessHooks, hooks...)
}

// AddPostProcessHooks adds functions that run after processor.Process and
// before processor.Complete or processor.Fail.
func (wp *WorkerPool[T]) AddPostProcessHooks(hooks ...PostProcessHook[T]) {
	wp.postProcessHooks = append(wp.postProcessHooks, hooks...)
}

// LogStartHook logs every task the pool begins processing.
func LogStartHook[T Task](log *logger.Logger) PreProcessHook[T] {
	return func(ctx context.Context, task T) error {
		log.InfoContext(ctx, "processing task", "task_id", task.GetID())
		return nil
	}
}

// LogEndHook logs the outcome of every processed task.
func LogEndHook[T Task](log *logger.Logger) PostProcessHook[T] {
	return func(ctx context.Context, task T, err error) error {
		if err != nil {
			log.ErrorContext(ctx, "task failed", "task_id", task.GetID(), "error", err)
			return nil
		}
		log.InfoContext(ctx, "task completed", "task_id", task.GetID())
		return nil
	}
}
