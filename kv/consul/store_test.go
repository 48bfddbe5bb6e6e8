package consul_test

import (
	"os"
	"testing"

	"github.com/mwantia/agentfs/kv"
	"github.com/mwantia/agentfs/kv/consul"
	"github.com/mwantia/agentfs/kv/kvtest"
)

// TestConsulStore requires a reachable agent address in AGENTFS_TEST_CONSUL.
func TestConsulStore(t *testing.T) {
	address := os.Getenv("AGENTFS_TEST_CONSUL")
	if address == "" {
		t.Skip("AGENTFS_TEST_CONSUL not set")
	}

	kvtest.RunStoreTests(t, func(tst *testing.T) kv.Store {
		store, err := consul.NewConsulStore(&consul.ConsulStoreConfig{
			Address: address,
			Prefix:  "agentfs-test",
		})
		if err != nil {
			tst.Fatalf("Failed to create client: %v", err)
		}

		if err := store.Truncate(tst.Context()); err != nil {
			tst.Fatalf("Failed to truncate: %v", err)
		}
		return store
	})
}
