package artssqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

const artColumns = `art_id, user_id, original_path, processed_path, feedback_text, status, created_at, completed_at`

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

func (s *Store) Create(ctx context.Context, art artsrepo.Art) error {
	query := `INSERT INTO arts (art_id, user_id, original_path, status, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, art.ArtID, art.UserID, art.OriginalPath, string(art.Status), sqlitedb.FormatTime(art.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert art: %w", sqlitedb.HandleError(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, artID, userID string) (artsrepo.Art, error) {
	query := `SELECT ` + artColumns + ` FROM arts WHERE art_id = ? AND user_id = ?`
	return scanArt(s.db.QueryRowContext(ctx, query, artID, userID))
}

func (s *Store) ListByUser(ctx context.Context, userID string, status *artsrepo.Status) ([]artsrepo.Art, error) {
	query := `SELECT ` + artColumns + ` FROM arts WHERE user_id = ?`
	args := []any{userID}

	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, art_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlitedb.HandleError(err)
	}
	defer rows.Close()

	var arts []artsrepo.Art
	for rows.Next() {
		art, err := scanArt(rows)
		if err != nil {
			return nil, err
		}
		arts = append(arts, art)
	}

	return arts, rows.Err()
}

func (s *Store) Complete(ctx context.Context, artID, userID string, result artsrepo.Result) (artsrepo.Art, error) {
	query := `UPDATE arts
		SET processed_path = ?, feedback_text = ?, status = 'completed', completed_at = ?
		WHERE art_id = ? AND user_id = ? AND status = 'pending'
		RETURNING ` + artColumns

	art, err := scanArt(s.db.QueryRowContext(ctx, query,
		result.ProcessedPath, result.FeedbackText, sqlitedb.FormatTime(result.CompletedAt), artID, userID))
	if errors.Is(err, artsrepo.ErrNotFound) {
		if _, getErr := s.Get(ctx, artID, userID); getErr == nil {
			return artsrepo.Art{}, artsrepo.ErrAlreadyCompleted
		}
	}
	return art, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArt(row scanner) (artsrepo.Art, error) {
	var (
		art                 artsrepo.Art
		processed, feedback sql.NullString
		status, createdAt   string
		completedAt         sql.NullString
	)

	err := row.Scan(&art.ArtID, &art.UserID, &art.OriginalPath, &processed, &feedback, &status, &createdAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return artsrepo.Art{}, artsrepo.ErrNotFound
		}
		return artsrepo.Art{}, sqlitedb.HandleError(err)
	}

	art.ProcessedPath = sqlitedb.StringPtr(processed)
	art.FeedbackText = sqlitedb.StringPtr(feedback)
	art.Status = artsrepo.Status(status)

	if art.CreatedAt, err = sqlitedb.ParseTime(createdAt); err != nil {
		return artsrepo.Art{}, fmt.Errorf("parse created_at: %w", err)
	}
	if completedAt.Valid {
		t, err := sqlitedb.ParseTime(completedAt.String)
		if err != nil {
			return artsrepo.Art{}, fmt.Errorf("parse completed_at: %w", err)
		}
		art.CompletedAt = &t
	}

	return art, nil
}
