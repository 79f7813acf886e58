package userspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/artplanner/core/repositories/usersrepo"
	"github.com/jrazmi/artplanner/infrastructure/postgresdb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

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

func (s *Store) Create(ctx context.Context, user usersrepo.User) error {
	query := `INSERT INTO users (user_id, username, email, password_hash, created_at)
		VALUES (@user_id, @username, @email, @password_hash, @created_at)`

	args := pgx.NamedArgs{
		"user_id":       user.UserID,
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
	}

	if _, err := s.pool.Exec(ctx, query, args); err != nil {
		if errors.Is(postgresdb.HandlePgError(err), postgresdb.ErrDBDuplicatedEntry) {
			return usersrepo.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", postgresdb.HandlePgError(err))
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, userID string) (usersrepo.User, error) {
	query := `SELECT user_id, username, email, password_hash, created_at
		FROM users
		WHERE user_id = @user_id`

	return s.getOne(ctx, query, pgx.NamedArgs{"user_id": userID})
}

func (s *Store) GetByEmail(ctx context.Context, email string) (usersrepo.User, error) {
	query := `SELECT user_id, username, email, password_hash, created_at
		FROM users
		WHERE email = @email`

	return s.getOne(ctx, query, pgx.NamedArgs{"email": email})
}

func (s *Store) getOne(ctx context.Context, query string, args pgx.NamedArgs) (usersrepo.User, error) {
	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return usersrepo.User{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[usersrepo.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return usersrepo.User{}, usersrepo.ErrNotFound
		}
		return usersrepo.User{}, postgresdb.HandlePgError(err)
	}

	return user, nil
}
