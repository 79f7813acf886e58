package analysisjobssqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

const jobColumns = `job_id, art_id, user_id, prompt, status, attempts, error_message, worker_id, created_at, updated_at`

type Store struct {
	log *logger.Logger
	db  *sql.DB
}

func NewStore(log *logger.Logger, db *sql.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, job analysisjobsrepo.Job) error {
	query := `INSERT INTO analysis_jobs (job_id, art_id, user_id, prompt, status, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, job.JobID, job.ArtID, job.UserID, job.Prompt, string(job.Status), job.Attempts,
		sqlitedb.FormatTime(job.CreatedAt), sqlitedb.FormatTime(job.UpdatedAt))
	if err != nil {
		if errors.Is(sqlitedb.HandleError(err), sqlitedb.ErrDBDuplicatedEntry) {
			return analysisjobsrepo.ErrActiveJob
		}
		return fmt.Errorf("insert analysis job: %w", sqlitedb.HandleError(err))
	}
	return nil
}

// Checkout claims the oldest queued job in one statement. The database is
// opened with a single connection, so the select and update cannot interleave
// with another checkout.
func (s *Store) Checkout(ctx context.Context, workerID string, now time.Time) (analysisjobsrepo.Job, error) {
	query := `UPDATE analysis_jobs
		SET status = 'processing', worker_id = ?, attempts = attempts + 1, updated_at = ?
		WHERE job_id = (
			SELECT job_id FROM analysis_jobs
			WHERE status = 'queued'
			ORDER BY created_at, job_id
			LIMIT 1
		)
		RETURNING ` + jobColumns

	job, err := scanJob(s.db.QueryRowContext(ctx, query, workerID, sqlitedb.FormatTime(now)))
	if errors.Is(err, analysisjobsrepo.ErrNotFound) {
		return analysisjobsrepo.Job{}, analysisjobsrepo.ErrNoJobs
	}
	return job, err
}

func (s *Store) MarkCompleted(ctx context.Context, jobID string, now time.Time) error {
	query := `UPDATE analysis_jobs SET status = 'completed', error_message = NULL, updated_at = ? WHERE job_id = ?`
	return s.exec(ctx, query, sqlitedb.FormatTime(now), jobID)
}

func (s *Store) MarkFailed(ctx context.Context, jobID, message string, now time.Time) error {
	query := `UPDATE analysis_jobs SET status = 'failed', error_message = ?, updated_at = ? WHERE job_id = ?`
	return s.exec(ctx, query, message, sqlitedb.FormatTime(now), jobID)
}

func (s *Store) Requeue(ctx context.Context, jobID string, now time.Time) error {
	query := `UPDATE analysis_jobs SET status = 'queued', worker_id = NULL, updated_at = ?
		WHERE job_id = ? AND status = 'processing'`
	return s.exec(ctx, query, sqlitedb.FormatTime(now), jobID)
}

func (s *Store) ListByArt(ctx context.Context, artID, userID string) ([]analysisjobsrepo.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM analysis_jobs
		WHERE art_id = ? AND user_id = ?
		ORDER BY created_at DESC, job_id`

	rows, err := s.db.QueryContext(ctx, query, artID, userID)
	if err != nil {
		return nil, sqlitedb.HandleError(err)
	}
	defer rows.Close()

	var jobs []analysisjobsrepo.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func (s *Store) RecoverStale(ctx context.Context, before, now time.Time) (int64, error) {
	query := `UPDATE analysis_jobs SET status = 'queued', worker_id = NULL, updated_at = ?
		WHERE status = 'processing' AND updated_at < ?`

	res, err := s.db.ExecContext(ctx, query, sqlitedb.FormatTime(now), sqlitedb.FormatTime(before))
	if err != nil {
		return 0, sqlitedb.HandleError(err)
	}
	return res.RowsAffected()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return sqlitedb.HandleError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return analysisjobsrepo.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (analysisjobsrepo.Job, error) {
	var (
		job                  analysisjobsrepo.Job
		status               string
		errMsg, workerID     sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(&job.JobID, &job.ArtID, &job.UserID, &job.Prompt, &status, &job.Attempts,
		&errMsg, &workerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return analysisjobsrepo.Job{}, analysisjobsrepo.ErrNotFound
		}
		return analysisjobsrepo.Job{}, sqlitedb.HandleError(err)
	}

	job.Status = analysisjobsrepo.Status(status)
	job.ErrorMessage = sqlitedb.StringPtr(errMsg)
	job.WorkerID = sqlitedb.StringPtr(workerID)

	if job.CreatedAt, err = sqlitedb.ParseTime(createdAt); err != nil {
		return analysisjobsrepo.Job{}, fmt.Errorf("parse created_at: %w", err)
	}
	if job.UpdatedAt, err = sqlitedb.ParseTime(updatedAt); err != nil {
		return analysisjobsrepo.Job{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return job, nil
}
