// Package storage opens the lead store selected by configuration and exposes
// it to the binaries as a leads.Repository plus its lifecycle hooks.
package storage

import (
	"context"
	"fmt"

	leads "github.com/phbpx/leads-api"
	"github.com/phbpx/leads-api/mongodb"
	"github.com/phbpx/leads-api/pkg/database"
	"github.com/phbpx/leads-api/postgres"
)

// Supported drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config selects and configures the backend.
type Config struct {
	Driver   string
	Mongo    mongodb.Config
	Postgres database.Config
}

// Store is an opened backend.
type Store struct {
	Driver     string
	Repository leads.Repository

	statusCheck func(ctx context.Context) error
	prepare     func(ctx context.Context) error
	close       func(ctx context.Context) error
}

// Open connects to the configured backend. Call Prepare before serving and
// Close on shutdown.
func Open(cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverMongo, "":
		client, db, err := mongodb.Open(cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		return &Store{
			Driver:     DriverMongo,
			Repository: mongodb.NewLeadRepository(db),
			statusCheck: func(ctx context.Context) error {
				return mongodb.StatusCheck(ctx, client)
			},
			prepare: func(ctx context.Context) error {
				if err := mongodb.StatusCheck(ctx, client); err != nil {
					return fmt.Errorf("db status check: %w", err)
				}
				return mongodb.EnsureIndexes(ctx, db)
			},
			close: client.Disconnect,
		}, nil

	case DriverPostgres:
		db, err := database.Open(cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return &Store{
			Driver:     DriverPostgres,
			Repository: postgres.NewLeadRepository(db),
			statusCheck: func(ctx context.Context) error {
				return database.StatusCheck(ctx, db)
			},
			prepare: func(ctx context.Context) error {
				return postgres.Migrate(ctx, db)
			},
			close: func(context.Context) error {
				return db.Close()
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
}

// StatusCheck returns nil if the backend answers.
func (s *Store) StatusCheck(ctx context.Context) error {
	return s.statusCheck(ctx)
}

// Prepare brings the backend schema up to date: the unique email index for
// mongo, the migrations for postgres.
func (s *Store) Prepare(ctx context.Context) error {
	return s.prepare(ctx)
}

// Close releases the backend connections.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
