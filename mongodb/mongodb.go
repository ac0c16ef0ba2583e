// Package mongodb stores leads in a MongoDB collection.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// LeadCollection is the collection holding lead documents.
const LeadCollection = "leads"

// Config is the required properties to use the database.
type Config struct {
	URL                    string
	Name                   string
	ServerSelectionTimeout time.Duration
}

// Open knows how to open a database connection based on the configuration.
// The returned database shares the client's connection pool; disconnect the
// client on shutdown.
func Open(cfg Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, err
	}

	return client, client.Database(cfg.Name), nil
}

// StatusCheck pings the primary until it answers or ctx is done. Each ping
// is itself bounded by the client's server selection timeout.
func StatusCheck(ctx context.Context, client *mongo.Client) error {
	for attempts := 1; ; attempts++ {
		err := client.Ping(ctx, readpref.Primary())
		if err == nil {
			return nil
		}

		wait := time.NewTimer(time.Duration(attempts) * 100 * time.Millisecond)
		select {
		case <-ctx.Done():
			wait.Stop()
			return fmt.Errorf("%w: %v", ctx.Err(), err)
		case <-wait.C:
		}
	}
}

// EnsureIndexes creates the unique email index. It is a no-op when the index
// already exists.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}

	if _, err := db.Collection(LeadCollection).Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("creating email index: %w", err)
	}
	return nil
}
