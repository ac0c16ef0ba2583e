package storage

import (
	"context"
	"testing"
	"time"

	"github.com/phbpx/leads-api/mongodb"
	"github.com/phbpx/leads-api/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "cassandra"})
	assert.ErrorContains(t, err, `unknown db driver "cassandra"`)
}

// TestOpenSelectsDriver opens both backends. Neither dials until first use,
// so no server is needed.
func TestOpenSelectsDriver(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := Open(Config{Mongo: mongodb.Config{URL: "mongodb://localhost:27017", Name: "leads"}})
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, store.Driver)
	assert.IsType(t, &mongodb.LeadRepository{}, store.Repository)
	assert.NoError(t, store.Close(ctx))

	store, err = Open(Config{Driver: DriverPostgres, Postgres: database.Config{Host: "localhost:5432", Name: "leads", DisableTLS: true}})
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, store.Driver)
	assert.NoError(t, store.Close(ctx))
}
