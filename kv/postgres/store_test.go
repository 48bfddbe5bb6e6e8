package postgres_test

import (
	"os"
	"testing"

	"github.com/mwantia/agentfs/kv"
	"github.com/mwantia/agentfs/kv/kvtest"
	"github.com/mwantia/agentfs/kv/postgres"
)

// TestPostgresStore requires a reachable database in AGENTFS_TEST_POSTGRES.
func TestPostgresStore(t *testing.T) {
	connString := os.Getenv("AGENTFS_TEST_POSTGRES")
	if connString == "" {
		t.Skip("AGENTFS_TEST_POSTGRES not set")
	}

	kvtest.RunStoreTests(t, func(tst *testing.T) kv.Store {
		ctx := tst.Context()
		store, err := postgres.NewPostgresStore(ctx, connString)
		if err != nil {
			tst.Fatalf("Failed to connect: %v", err)
		}

		if err := store.Truncate(ctx); err != nil {
			tst.Fatalf("Failed to truncate: %v", err)
		}
		return store
	})
}
