package artspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/infrastructure/postgresdb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

const artColumns = `art_id, user_id, original_path, processed_path, feedback_text, status, created_at, completed_at`

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

func (s *Store) Create(ctx context.Context, art artsrepo.Art) error {
	query := `INSERT INTO arts (art_id, user_id, original_path, status, created_at)
		VALUES (@art_id, @user_id, @original_path, @status, @created_at)`

	args := pgx.NamedArgs{
		"art_id":        art.ArtID,
		"user_id":       art.UserID,
		"original_path": art.OriginalPath,
		"status":        string(art.Status),
		"created_at":    art.CreatedAt,
	}

	if _, err := s.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert art: %w", postgresdb.HandlePgError(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, artID, userID string) (artsrepo.Art, error) {
	query := `SELECT ` + artColumns + ` FROM arts WHERE art_id = @art_id AND user_id = @user_id`
	return s.one(ctx, query, pgx.NamedArgs{"art_id": artID, "user_id": userID})
}

func (s *Store) ListByUser(ctx context.Context, userID string, status *artsrepo.Status) ([]artsrepo.Art, error) {
	query := `SELECT ` + artColumns + ` FROM arts WHERE user_id = @user_id`
	args := pgx.NamedArgs{"user_id": userID}

	if status != nil {
		query += ` AND status = @status`
		args["status"] = string(*status)
	}
	query += ` ORDER BY created_at DESC, art_id`

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[artsrepo.Art])
}

func (s *Store) Complete(ctx context.Context, artID, userID string, result artsrepo.Result) (artsrepo.Art, error) {
	query := `UPDATE arts
		SET processed_path = @processed_path, feedback_text = @feedback_text,
			status = 'completed', completed_at = @completed_at
		WHERE art_id = @art_id AND user_id = @user_id AND status = 'pending'
		RETURNING ` + artColumns

	art, err := s.one(ctx, query, pgx.NamedArgs{
		"art_id":         artID,
		"user_id":        userID,
		"processed_path": result.ProcessedPath,
		"feedback_text":  result.FeedbackText,
		"completed_at":   result.CompletedAt,
	})
	if errors.Is(err, artsrepo.ErrNotFound) {
		if _, getErr := s.Get(ctx, artID, userID); getErr == nil {
			return artsrepo.Art{}, artsrepo.ErrAlreadyCompleted
		}
	}
	return art, err
}

func (s *Store) one(ctx context.Context, query string, args pgx.NamedArgs) (artsrepo.Art, error) {
	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return artsrepo.Art{}, notFound(err)
	}
	defer rows.Close()

	art, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[artsrepo.Art])
	if err != nil {
		return artsrepo.Art{}, notFound(err)
	}

	return art, nil
}

// notFound reports a missing row or a malformed id as artsrepo.ErrNotFound.
func notFound(err error) error {
	err = postgresdb.HandlePgError(err)
	if errors.Is(err, postgresdb.ErrDBNotFound) {
		return artsrepo.ErrNotFound
	}
	return err
}
