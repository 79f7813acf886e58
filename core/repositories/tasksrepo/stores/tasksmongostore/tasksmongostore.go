package tasksmongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
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
		coll: db.Collection(mongodb.TasksCollection),
	}
}

func (s *Store) Create(ctx context.Context, task tasksrepo.Task) error {
	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", mongodb.HandleError(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, taskID, userID string) (tasksrepo.Task, error) {
	var task tasksrepo.Task
	err := s.coll.FindOne(ctx, ownedBy(taskID, userID)).Decode(&task)
	return task, mapErr(err)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]tasksrepo.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	var tasks []tasksrepo.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) SetCompleted(ctx context.Context, taskID, userID string, completed bool) (tasksrepo.Task, error) {
	update := bson.M{"$set": bson.M{"is_completed": completed}}
	return s.findAndUpdate(ctx, ownedBy(taskID, userID), update)
}

func (s *Store) Toggle(ctx context.Context, taskID, userID string) (tasksrepo.Task, error) {
	// Pipeline update so the flip reads and writes the document atomically.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"is_completed": bson.M{"$not": bson.A{"$is_completed"}}}}},
	}
	return s.findAndUpdate(ctx, ownedBy(taskID, userID), update)
}

func (s *Store) findAndUpdate(ctx context.Context, filter bson.M, update any) (tasksrepo.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task tasksrepo.Task
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	return task, mapErr(err)
}

func ownedBy(taskID, userID string) bson.M {
	return bson.M{"_id": taskID, "user_id": userID}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(mongodb.HandleError(err), mongodb.ErrDBNotFound) {
		return tasksrepo.ErrNotFound
	}
	return fmt.Errorf("task document: %w", err)
}
