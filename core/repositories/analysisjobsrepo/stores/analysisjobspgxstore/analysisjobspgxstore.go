package analysisjobspgxstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/infrastructure/postgresdb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

const jobColumns = `job_id, art_id, user_id, prompt, status, attempts, error_message, worker_id, created_at, updated_at`

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Create(ctx context.Context, job analysisjobsrepo.Job) error {
	query := `INSERT INTO analysis_jobs (job_id, art_id, user_id, prompt, status, attempts, created_at, updated_at)
		VALUES (@job_id, @art_id, @user_id, @prompt, @status, @attempts, @created_at, @updated_at)`

	args := pgx.NamedArgs{
		"job_id":     job.JobID,
		"art_id":     job.ArtID,
		"user_id":    job.UserID,
		"prompt":     job.Prompt,
		"status":     string(job.Status),
		"attempts":   job.Attempts,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}

	if _, err := s.pool.Exec(ctx, query, args); err != nil {
		if errors.Is(postgresdb.HandlePgError(err), postgresdb.ErrDBDuplicatedEntry) {
			return analysisjobsrepo.ErrActiveJob
		}
		return fmt.Errorf("insert analysis job: %w", postgresdb.HandlePgError(err))
	}
	return nil
}

// Checkout claims the oldest queued job. SKIP LOCKED lets concurrent workers
// pass over a row another transaction is already claiming.
func (s *Store) Checkout(ctx context.Context, workerID string, now time.Time) (analysisjobsrepo.Job, error) {
	query := `UPDATE analysis_jobs
		SET status = 'processing', worker_id = @worker_id, attempts = attempts + 1, updated_at = @now
		WHERE job_id = (
			SELECT job_id FROM analysis_jobs
			WHERE status = 'queued'
			ORDER BY created_at, job_id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"worker_id": workerID, "now": now})
	if err != nil {
		return analysisjobsrepo.Job{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	job, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[analysisjobsrepo.Job])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return analysisjobsrepo.Job{}, analysisjobsrepo.ErrNoJobs
		}
		return analysisjobsrepo.Job{}, postgresdb.HandlePgError(err)
	}

	return job, nil
}

func (s *Store) MarkCompleted(ctx context.Context, jobID string, now time.Time) error {
	query := `UPDATE analysis_jobs SET status = 'completed', error_message = NULL, updated_at = @now
		WHERE job_id = @job_id`
	return s.exec(ctx, query, pgx.NamedArgs{"job_id": jobID, "now": now})
}

func (s *Store) MarkFailed(ctx context.Context, jobID, message string, now time.Time) error {
	query := `UPDATE analysis_jobs SET status = 'failed', error_message = @message, updated_at = @now
		WHERE job_id = @job_id`
	return s.exec(ctx, query, pgx.NamedArgs{"job_id": jobID, "message": message, "now": now})
}

func (s *Store) Requeue(ctx context.Context, jobID string, now time.Time) error {
	query := `UPDATE analysis_jobs SET status = 'queued', worker_id = NULL, updated_at = @now
		WHERE job_id = @job_id AND status = 'processing'`
	return s.exec(ctx, query, pgx.NamedArgs{"job_id": jobID, "now": now})
}

func (s *Store) ListByArt(ctx context.Context, artID, userID string) ([]analysisjobsrepo.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM analysis_jobs
		WHERE art_id = @art_id AND user_id = @user_id
		ORDER BY created_at DESC, job_id`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"art_id": artID, "user_id": userID})
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[analysisjobsrepo.Job])
}

func (s *Store) RecoverStale(ctx context.Context, before, now time.Time) (int64, error) {
	query := `UPDATE analysis_jobs SET status = 'queued', worker_id = NULL, updated_at = @now
		WHERE status = 'processing' AND updated_at < @before`

	tag, err := s.pool.Exec(ctx, query, pgx.NamedArgs{"before": before, "now": now})
	if err != nil {
		return 0, postgresdb.HandlePgError(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) exec(ctx context.Context, query string, args pgx.NamedArgs) error {
	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return postgresdb.HandlePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return analysisjobsrepo.ErrNotFound
	}
	return nil
}
