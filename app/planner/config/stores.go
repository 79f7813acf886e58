package config

import (
	"context"
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo/stores/analysisjobsmongostore"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo/stores/analysisjobspgxstore"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo/stores/analysisjobssqlitestore"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo/stores/artsmongostore"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo/stores/artspgxstore"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo/stores/artssqlitestore"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo/stores/tasksmongostore"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo/stores/taskssqlitestore"
	"github.com/jrazmi/artplanner/core/repositories/usersrepo"
	"github.com/jrazmi/artplanner/core/repositories/usersrepo/stores/usersmongostore"
	"github.com/jrazmi/artplanner/core/repositories/usersrepo/stores/userspgxstore"
	"github.com/jrazmi/artplanner/core/repositories/usersrepo/stores/userssqlitestore"
	"github.com/jrazmi/artplanner/infrastructure/mongodb"
	"github.com/jrazmi/artplanner/infrastructure/postgresdb"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Datastore is an opened backend and the repositories built on it.
type Datastore struct {
	Repositories Repositories
	StatusCheck  func(ctx context.Context) error
	// Migrate brings the schema up to date. Mongo only ensures indexes.
	Migrate func(ctx context.Context) error
	Close   func(ctx context.Context)
}

// OpenStore opens the backend cfg.Driver names, reading its connection
// settings under prefix, and migrates it when cfg.AutoMigrate is set.
func OpenStore(ctx context.Context, log *logger.Logger, prefix string, cfg Store) (Datastore, error) {
	var (
		ds  Datastore
		err error
	)
	switch cfg.Driver {
	case "postgres":
		ds, err = openPostgres(log, prefix)
	case "sqlite":
		ds, err = openSQLite(log, prefix)
	case "mongo":
		ds, err = openMongo(ctx, log, prefix)
	default:
		return Datastore{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return Datastore{}, err
	}

	if cfg.AutoMigrate {
		if err := ds.Migrate(ctx); err != nil {
			ds.Close(ctx)
			return Datastore{}, fmt.Errorf("migrating %s: %w", cfg.Driver, err)
		}
	}

	return ds, nil
}

func openPostgres(log *logger.Logger, prefix string) (Datastore, error) {
	pool, err := postgresdb.NewFromEnv(prefix, postgresdb.WithLogger(log))
	if err != nil {
		return Datastore{}, fmt.Errorf("configuring postgres support: %w", err)
	}

	return Datastore{
		Repositories: Repositories{
			Users: usersrepo.NewRepository(log, userspgxstore.NewStore(log, pool)),
			Tasks: tasksrepo.NewRepository(log, taskspgxstore.NewStore(log, pool)),
			Arts:  artsrepo.NewRepository(log, artspgxstore.NewStore(log, pool)),
			Jobs:  analysisjobsrepo.NewRepository(log, analysisjobspgxstore.NewStore(log, pool)),
		},
		StatusCheck: func(ctx context.Context) error { return postgresdb.StatusCheck(ctx, pool) },
		Migrate:     func(ctx context.Context) error { return postgresdb.Migrate(ctx, log, pool) },
		Close: func(ctx context.Context) {
			log.InfoContext(ctx, "shutdown", "status", "closing postgres pool")
			pool.Close()
		},
	}, nil
}

func openSQLite(log *logger.Logger, prefix string) (Datastore, error) {
	db, err := sqlitedb.NewFromEnv(prefix)
	if err != nil {
		return Datastore{}, fmt.Errorf("configuring sqlite support: %w", err)
	}
	return sqliteDatastore(log, db), nil
}

func sqliteDatastore(log *logger.Logger, db *sql.DB) Datastore {
	return Datastore{
		Repositories: Repositories{
			Users: usersrepo.NewRepository(log, userssqlitestore.NewStore(log, db)),
			Tasks: tasksrepo.NewRepository(log, taskssqlitestore.NewStore(log, db)),
			Arts:  artsrepo.NewRepository(log, artssqlitestore.NewStore(log, db)),
			Jobs:  analysisjobsrepo.NewRepository(log, analysisjobssqlitestore.NewStore(log, db)),
		},
		StatusCheck: func(ctx context.Context) error { return sqlitedb.StatusCheck(ctx, db) },
		Migrate:     func(ctx context.Context) error { return sqlitedb.Migrate(ctx, log, db) },
		Close: func(ctx context.Context) {
			log.InfoContext(ctx, "shutdown", "status", "closing sqlite database")
			if err := db.Close(); err != nil {
				log.ErrorContext(ctx, "shutdown", "status", "closing sqlite database", "error", err)
			}
		},
	}
}

func openMongo(ctx context.Context, log *logger.Logger, prefix string) (Datastore, error) {
	db, err := mongodb.NewFromEnv(ctx, prefix)
	if err != nil {
		return Datastore{}, fmt.Errorf("configuring mongo support: %w", err)
	}
	return mongoDatastore(log, db), nil
}

func mongoDatastore(log *logger.Logger, db *mongo.Database) Datastore {
	return Datastore{
		Repositories: Repositories{
			Users: usersrepo.NewRepository(log, usersmongostore.NewStore(log, db)),
			Tasks: tasksrepo.NewRepository(log, tasksmongostore.NewStore(log, db)),
			Arts:  artsrepo.NewRepository(log, artsmongostore.NewStore(log, db)),
			Jobs:  analysisjobsrepo.NewRepository(log, analysisjobsmongostore.NewStore(log, db)),
		},
		StatusCheck: func(ctx context.Context) error { return mongodb.StatusCheck(ctx, db) },
		Migrate:     func(ctx context.Context) error { return mongodb.EnsureIndexes(ctx, db) },
		Close: func(ctx context.Context) {
			log.InfoContext(ctx, "shutdown", "status", "disconnecting mongo")
			if err := mongodb.Close(ctx, db); err != nil {
				log.ErrorContext(ctx, "shutdown", "status", "disconnecting mongo", "error", err)
			}
		},
	}
}
