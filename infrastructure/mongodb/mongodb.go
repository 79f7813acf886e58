// Package mongodb connects to the document database used by the mongo stores.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jrazmi/artplanner/sdk/environment"
)

// Collection names.
const (
	UsersCollection        = "users"
	TasksCollection        = "tasks"
	ArtsCollection         = "arts"
	AnalysisJobsCollection = "analysis_jobs"
)

// Set of error variables for CRUD operations.
var (
	ErrDBNotFound        = mongo.ErrNoDocuments
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
)

// Options represents the exportable database configuration
type Options struct {
	URI            string        `env:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DATABASE" default:"artplanner"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

// NewFromEnv connects using environment variables and returns the
// configured database handle.
func NewFromEnv(ctx context.Context, prefix string) (*mongo.Database, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing mongo config: %w", err)
	}
	return Open(ctx, cfg)
}

// Open connects, pings the primary and ensures the indexes the stores rely on.
func Open(ctx context.Context, cfg Options) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return db, nil
}

// Close disconnects the client behind db.
func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// ActiveJobFilter matches analysis jobs that are queued or processing. The
// $in form of a partial filter needs MongoDB 6.0 or later.
func ActiveJobFilter() bson.M {
	return bson.M{"status": bson.M{"$in": bson.A{"queued", "processing"}}}
}

// EnsureIndexes creates the unique and query indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		TasksCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		ArtsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		AnalysisJobsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "art_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{
				Keys: bson.D{{Key: "art_id", Value: 1}},
				Options: options.Index().
					SetName("analysis_jobs_one_active_idx").
					SetUnique(true).
					SetPartialFilterExpression(ActiveJobFilter()),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", coll, err)
		}
	}

	return nil
}

// StatusCheck returns nil if it can successfully talk to the database
func StatusCheck(ctx context.Context, db *mongo.Database) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}

	return db.Client().Ping(ctx, readpref.Primary())
}

// HandleError converts driver errors to application errors
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrDBNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrDBDuplicatedEntry
	}

	return err
}
