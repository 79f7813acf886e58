package userssqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrazmi/artplanner/core/repositories/usersrepo"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

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

func (s *Store) Create(ctx context.Context, user usersrepo.User) error {
	const query = `INSERT INTO users (user_id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, user.Username, user.Email, user.PasswordHash, sqlitedb.FormatTime(user.CreatedAt))
	if err != nil {
		if errors.Is(sqlitedb.HandleError(err), sqlitedb.ErrDBDuplicatedEntry) {
			return usersrepo.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", sqlitedb.HandleError(err))
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, userID string) (usersrepo.User, error) {
	const query = `SELECT user_id, username, email, password_hash, created_at FROM users WHERE user_id = ?`
	return s.getOne(ctx, query, userID)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (usersrepo.User, error) {
	const query = `SELECT user_id, username, email, password_hash, created_at FROM users WHERE email = ?`
	return s.getOne(ctx, query, email)
}

func (s *Store) getOne(ctx context.Context, query string, arg string) (usersrepo.User, error) {
	var (
		user      usersrepo.User
		createdAt string
	)

	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.UserID, &user.Username, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return usersrepo.User{}, usersrepo.ErrNotFound
		}
		return usersrepo.User{}, sqlitedb.HandleError(err)
	}

	if user.CreatedAt, err = sqlitedb.ParseTime(createdAt); err != nil {
		return usersrepo.User{}, fmt.Errorf("parse created_at: %w", err)
	}

	return user, nil
}
