package analysisjobsmongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
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
		coll: db.Collection(mongodb.AnalysisJobsCollection),
	}
}

func (s *Store) Create(ctx context.Context, job analysisjobsrepo.Job) error {
	if _, err := s.coll.InsertOne(ctx, job); err != nil {
		if errors.Is(mongodb.HandleError(err), mongodb.ErrDBDuplicatedEntry) {
			return analysisjobsrepo.ErrActiveJob
		}
		return fmt.Errorf("insert analysis job: %w", mongodb.HandleError(err))
	}
	return nil
}

// Checkout claims the oldest queued job; FindOneAndUpdate is atomic per
// document so two workers never receive the same job.
func (s *Store) Checkout(ctx context.Context, workerID string, now time.Time) (analysisjobsrepo.Job, error) {
	filter := bson.M{"status": string(analysisjobsrepo.StatusQueued)}
	update := bson.M{
		"$set": bson.M{
			"status":     string(analysisjobsrepo.StatusProcessing),
			"worker_id":  workerID,
			"updated_at": now,
		},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetReturnDocument(options.After)

	var job analysisjobsrepo.Job
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&job)
	if err != nil {
		if errors.Is(mongodb.HandleError(err), mongodb.ErrDBNotFound) {
			return analysisjobsrepo.Job{}, analysisjobsrepo.ErrNoJobs
		}
		return analysisjobsrepo.Job{}, fmt.Errorf("checkout analysis job: %w", err)
	}
	return job, nil
}

func (s *Store) MarkCompleted(ctx context.Context, jobID string, now time.Time) error {
	return s.update(ctx, bson.M{"_id": jobID}, bson.M{"$set": bson.M{
		"status":        string(analysisjobsrepo.StatusCompleted),
		"error_message": nil,
		"updated_at":    now,
	}})
}

func (s *Store) MarkFailed(ctx context.Context, jobID, message string, now time.Time) error {
	return s.update(ctx, bson.M{"_id": jobID}, bson.M{"$set": bson.M{
		"status":        string(analysisjobsrepo.StatusFailed),
		"error_message": message,
		"updated_at":    now,
	}})
}

func (s *Store) Requeue(ctx context.Context, jobID string, now time.Time) error {
	filter := bson.M{"_id": jobID, "status": string(analysisjobsrepo.StatusProcessing)}
	return s.update(ctx, filter, bson.M{"$set": bson.M{
		"status":     string(analysisjobsrepo.StatusQueued),
		"worker_id":  nil,
		"updated_at": now,
	}})
}

func (s *Store) ListByArt(ctx context.Context, artID, userID string) ([]analysisjobsrepo.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.M{"art_id": artID, "user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find analysis jobs: %w", err)
	}

	var jobs []analysisjobsrepo.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("decode analysis jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) RecoverStale(ctx context.Context, before, now time.Time) (int64, error) {
	filter := bson.M{
		"status":     string(analysisjobsrepo.StatusProcessing),
		"updated_at": bson.M{"$lt": before},
	}
	update := bson.M{"$set": bson.M{
		"status":     string(analysisjobsrepo.StatusQueued),
		"worker_id":  nil,
		"updated_at": now,
	}}

	res, err := s.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("recover analysis jobs: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *Store) update(ctx context.Context, filter, update bson.M) error {
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update analysis job: %w", mongodb.HandleError(err))
	}
	if res.MatchedCount == 0 {
		return analysisjobsrepo.ErrNotFound
	}
	return nil
}
