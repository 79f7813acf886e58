package usersmongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jrazmi/artplanner/core/repositories/usersrepo"
	"github.com/jrazmi/artplanner/infrastructure/mongodb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

type Store struct {
	log  *logger.Logger
	coll *mongo.Collection
}

func NewStore(log *logger.Logger, db *mongo.Database) *Store {
	return &Store{
		log:  log,
		coll: db.Collection(mongodb.UsersCollection),
	}
}

func (s *Store) Create(ctx context.Context, user usersrepo.User) error {
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if errors.Is(mongodb.HandleError(err), mongodb.ErrDBDuplicatedEntry) {
			return usersrepo.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, userID string) (usersrepo.User, error) {
	return s.findOne(ctx, bson.M{"_id": userID})
}

func (s *Store) GetByEmail(ctx context.Context, email string) (usersrepo.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (usersrepo.User, error) {
	var user usersrepo.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(mongodb.HandleError(err), mongodb.ErrDBNotFound) {
			return usersrepo.User{}, usersrepo.ErrNotFound
		}
		return usersrepo.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
