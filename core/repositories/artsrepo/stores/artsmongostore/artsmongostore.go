package artsmongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
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
		coll: db.Collection(mongodb.ArtsCollection),
	}
}

func (s *Store) Create(ctx context.Context, art artsrepo.Art) error {
	if _, err := s.coll.InsertOne(ctx, art); err != nil {
		return fmt.Errorf("insert art: %w", mongodb.HandleError(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, artID, userID string) (artsrepo.Art, error) {
	var art artsrepo.Art
	err := s.coll.FindOne(ctx, bson.M{"_id": artID, "user_id": userID}).Decode(&art)
	return art, mapErr(err)
}

func (s *Store) ListByUser(ctx context.Context, userID string, status *artsrepo.Status) ([]artsrepo.Art, error) {
	filter := bson.M{"user_id": userID}
	if status != nil {
		filter["status"] = string(*status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find arts: %w", err)
	}

	var arts []artsrepo.Art
	if err := cur.All(ctx, &arts); err != nil {
		return nil, fmt.Errorf("decode arts: %w", err)
	}
	return arts, nil
}

func (s *Store) Complete(ctx context.Context, artID, userID string, result artsrepo.Result) (artsrepo.Art, error) {
	filter := bson.M{"_id": artID, "user_id": userID, "status": string(artsrepo.StatusPending)}
	update := bson.M{"$set": bson.M{
		"processed_path": result.ProcessedPath,
		"feedback_text":  result.FeedbackText,
		"status":         string(artsrepo.StatusCompleted),
		"completed_at":   result.CompletedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var art artsrepo.Art
	err := mapErr(s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&art))
	if errors.Is(err, artsrepo.ErrNotFound) {
		if _, getErr := s.Get(ctx, artID, userID); getErr == nil {
			return artsrepo.Art{}, artsrepo.ErrAlreadyCompleted
		}
	}
	return art, err
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(mongodb.HandleError(err), mongodb.ErrDBNotFound) {
		return artsrepo.ErrNotFound
	}
	return fmt.Errorf("art document: %w", err)
}
