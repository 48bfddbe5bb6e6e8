package badger_test

import (
	"testing"

	"github.com/mwantia/agentfs/kv"
	"github.com/mwantia/agentfs/kv/badger"
	"github.com/mwantia/agentfs/kv/kvtest"
)

func TestBadgerStore_InMemory(t *testing.T) {
	kvtest.RunStoreTests(t, func(tst *testing.T) kv.Store {
		store, err := badger.NewBadgerStore(&badger.BadgerStoreConfig{InMemory: true})
		if err != nil {
			tst.Fatalf("Failed to open badger: %v", err)
		}
		return store
	})
}

func TestBadgerStore_OnDisk(t *testing.T) {
	kvtest.RunStoreTests(t, func(tst *testing.T) kv.Store {
		store, err := badger.NewBadgerStore(&badger.BadgerStoreConfig{Dir: tst.TempDir()})
		if err != nil {
			tst.Fatalf("Failed to open badger: %v", err)
		}
		return store
	})
}

func TestBadgerStore_Reopen(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()

	store, err := badger.NewBadgerStore(&badger.BadgerStoreConfig{Dir: dir})
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	if err := store.Put(ctx, []string{"filesystem"}, "/keep.txt", map[string]any{"v": "1"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = badger.NewBadgerStore(&badger.BadgerStoreConfig{Dir: dir})
	if err != nil {
		t.Fatalf("Failed to reopen badger: %v", err)
	}
	defer store.Close()

	item, err := store.Get(ctx, []string{"filesystem"}, "/keep.txt")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if item.Value["v"] != "1" {
		t.Errorf("Expected persisted value, got %v", item.Value["v"])
	}
}
