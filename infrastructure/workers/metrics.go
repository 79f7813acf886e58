package workers

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrazmi/artplanner/sdk/logger"
)

// WorkerPoolMetrics receives lifecycle and job events from a pool.
type WorkerPoolMetrics interface {
	RecordWorkerStarted()
	RecordWorkerStopped()
	RecordWorkerPanic()

	RecordTaskCheckedOut()
	RecordTaskCompleted(duration time.Duration)
	RecordTaskFailed(duration time.Duration)
	RecordCheckoutError()

	RecordRetryAttempt()
	RecordRetrySuccess()
	RecordRetryExhausted()

	GetSnapshot() MetricsSnapshot

	Start(ctx context.Context, poolName string)
	Stop(ctx context.Context)
}

// MetricsSnapshot is what /ops/workers reports.
type MetricsSnapshot struct {
	Pool          string `json:"pool"`
	WorkersActive int64  `json:"workersActive"`
	WorkerPanics  int64  `json:"workerPanics"`

	TasksCheckedOut int64 `json:"tasksCheckedOut"`
	TasksCompleted  int64 `json:"tasksCompleted"`
	TasksFailed     int64 `json:"tasksFailed"`
	TasksInProgress int64 `json:"tasksInProgress"`
	CheckoutErrors  int64 `json:"checkoutErrors"`

	RetryAttempts    int64 `json:"retryAttempts"`
	RetrySuccesses   int64 `json:"retrySuccesses"`
	RetriesExhausted int64 `json:"retriesExhausted"`

	AverageDuration time.Duration `json:"averageDurationNs"`
	MaxDuration     time.Duration `json:"maxDurationNs"`
	ErrorRate       float64       `json:"errorRatePct"`

	LastCompletedAt *time.Time    `json:"lastCompletedAt,omitempty"`
	LastFailedAt    *time.Time    `json:"lastFailedAt,omitempty"`
	Uptime          time.Duration `json:"uptimeNs"`
}

type noopMetrics struct{}

// NewNoOpMetrics is the pool default.
func NewNoOpMetrics() WorkerPoolMetrics { return noopMetrics{} }

func (noopMetrics) RecordWorkerStarted()                   {}
func (noopMetrics) RecordWorkerStopped()                   {}
func (noopMetrics) RecordWorkerPanic()                     {}
func (noopMetrics) RecordTaskCheckedOut()                  {}
func (noopMetrics) RecordTaskCompleted(time.Duration)      {}
func (noopMetrics) RecordTaskFailed(time.Duration)         {}
func (noopMetrics) RecordCheckoutError()                   {}
func (noopMetrics) RecordRetryAttempt()                    {}
func (noopMetrics) RecordRetrySuccess()                    {}
func (noopMetrics) RecordRetryExhausted()                  {}
func (noopMetrics) GetSnapshot() MetricsSnapshot           { return MetricsSnapshot{} }
func (noopMetrics) Start(context.Context, string)          {}
func (noopMetrics) Stop(context.Context)                   {}

// InMemoryMetrics counts pool events in process.
type InMemoryMetrics struct {
	poolName  string
	startTime time.Time

	workersStarted atomic.Int64
	workersStopped atomic.Int64
	workerPanics   atomic.Int64

	checkedOut     atomic.Int64
	completed      atomic.Int64
	failed         atomic.Int64
	checkoutErrors atomic.Int64

	retryAttempts    atomic.Int64
	retrySuccesses   atomic.Int64
	retriesExhausted atomic.Int64

	totalNs atomic.Int64

	mu            sync.Mutex
	maxDuration   time.Duration
	lastCompleted time.Time
	lastFailed    time.Time
}

func NewInMemoryMetrics() WorkerPoolMetrics {
	return &InMemoryMetrics{}
}

func (m *InMemoryMetrics) Start(ctx context.Context, poolName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poolName = poolName
	m.startTime = time.Now()
}

func (m *InMemoryMetrics) Stop(ctx context.Context) {}

func (m *InMemoryMetrics) RecordWorkerStarted()  { m.workersStarted.Add(1) }
func (m *InMemoryMetrics) RecordWorkerStopped()  { m.workersStopped.Add(1) }
func (m *InMemoryMetrics) RecordWorkerPanic()    { m.workerPanics.Add(1) }
func (m *InMemoryMetrics) RecordTaskCheckedOut() { m.checkedOut.Add(1) }
func (m *InMemoryMetrics) RecordCheckoutError()  { m.checkoutErrors.Add(1) }
func (m *InMemoryMetrics) RecordRetryAttempt()   { m.retryAttempts.Add(1) }
func (m *InMemoryMetrics) RecordRetrySuccess()   { m.retrySuccesses.Add(1) }
func (m *InMemoryMetrics) RecordRetryExhausted() { m.retriesExhausted.Add(1) }

func (m *InMemoryMetrics) RecordTaskCompleted(duration time.Duration) {
	m.completed.Add(1)
	m.finish(duration, &m.lastCompleted)
}

func (m *InMemoryMetrics) RecordTaskFailed(duration time.Duration) {
	m.failed.Add(1)
	m.finish(duration, &m.lastFailed)
}

func (m *InMemoryMetrics) finish(duration time.Duration, last *time.Time) {
	m.totalNs.Add(int64(duration))

	m.mu.Lock()
	defer m.mu.Unlock()
	if duration > m.maxDuration {
		m.maxDuration = duration
	}
	*last = time.Now()
}

func (m *InMemoryMetrics) GetSnapshot() MetricsSnapshot {
	completed := m.completed.Load()
	failed := m.failed.Load()
	checkedOut := m.checkedOut.Load()
	finished := completed + failed

	snap := MetricsSnapshot{
		WorkersActive:    m.workersStarted.Load() - m.workersStopped.Load(),
		WorkerPanics:     m.workerPanics.Load(),
		TasksCheckedOut:  checkedOut,
		TasksCompleted:   completed,
		TasksFailed:      failed,
		TasksInProgress:  checkedOut - finished,
		CheckoutErrors:   m.checkoutErrors.Load(),
		RetryAttempts:    m.retryAttempts.Load(),
		RetrySuccesses:   m.retrySuccesses.Load(),
		RetriesExhausted: m.retriesExhausted.Load(),
	}
	if finished > 0 {
		snap.AverageDuration = time.Duration(m.totalNs.Load() / finished)
		snap.ErrorRate = float64(failed) / float64(finished) * 100
	}

	m.mu.Lock()
	snap.Pool = m.poolName
	if !m.startTime.IsZero() {
		snap.Uptime = time.Since(m.startTime)
	}
	snap.MaxDuration = m.maxDuration
	if !m.lastCompleted.IsZero() {
		t := m.lastCompleted
		snap.LastCompletedAt = &t
	}
	if !m.lastFailed.IsZero() {
		t := m.lastFailed
		snap.LastFailedAt = &t
	}
	m.mu.Unlock()

	return snap
}

// LoggerMetrics is InMemoryMetrics plus a structured log line on an interval
// and once on stop.
type LoggerMetrics struct {
	*InMemoryMetrics
	interval time.Duration
	log      *logger.Logger

	done chan struct{}
}

// NewLoggerMetrics logs a snapshot every interval. Zero disables the ticker.
func NewLoggerMetrics(log *logger.Logger, interval time.Duration) WorkerPoolMetrics {
	return &LoggerMetrics{
		InMemoryMetrics: &InMemoryMetrics{},
		interval:        interval,
		log:             log,
		done:            make(chan struct{}),
	}
}

func (l *LoggerMetrics) Start(ctx context.Context, poolName string) {
	l.InMemoryMetrics.Start(ctx, poolName)
	if l.interval > 0 {
		go l.tick(ctx)
	}
}

func (l *LoggerMetrics) Stop(ctx context.Context) {
	close(l.done)
	l.emit(ctx, "shutdown")
}

func (l *LoggerMetrics) tick(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-ticker.C:
			l.emit(ctx, "periodic")
		}
	}
}

func (l *LoggerMetrics) emit(ctx context.Context, trigger string) {
	snap := l.GetSnapshot()
	attrs := []slog.Attr{
		slog.String("pool", snap.Pool),
		slog.String("trigger", trigger),
		slog.Duration("uptime", snap.Uptime.Round(time.Second)),
		slog.Int64("workers_active", snap.WorkersActive),
		slog.Group("jobs",
			slog.Int64("completed", snap.TasksCompleted),
			slog.Int64("failed", snap.TasksFailed),
			slog.Int64("in_progress", snap.TasksInProgress),
			slog.Duration("avg", snap.AverageDuration),
			slog.Duration("max", snap.MaxDuration),
		),
	}
	if snap.WorkerPanics > 0 {
		attrs = append(attrs, slog.Int64("panics", snap.WorkerPanics))
	}
	if snap.RetryAttempts > 0 {
		attrs = append(attrs, slog.Group("retries",
			slog.Int64("attempts", snap.RetryAttempts),
			slog.Int64("successes", snap.RetrySuccesses),
			slog.Int64("exhausted", snap.RetriesExhausted),
		))
	}

	l.log.LogAttrs(ctx, slog.LevelInfo, "worker_pool_metrics", attrs...)
}
