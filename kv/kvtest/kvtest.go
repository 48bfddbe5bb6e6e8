// Package kvtest provides a conformance suite for kv.Store implementations.
package kvtest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mwantia/agentfs/kv"
)

// StoreFactory creates a fresh, empty store for a single subtest.
type StoreFactory func(tst *testing.T) kv.Store

// RunStoreTests runs the shared behaviour checks against the store produced by factory.
func RunStoreTests(t *testing.T, factory StoreFactory) {
	t.Run("GetMissing", func(tst *testing.T) {
		store := factory(tst)
		defer store.Close()

		if _, err := store.Get(tst.Context(), []string{"filesystem"}, "/missing.txt"); !errors.Is(err, kv.ErrNotFound) {
			tst.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutGet", func(tst *testing.T) {
		ctx := tst.Context()
		store := factory(tst)
		defer store.Close()

		ns := []string{"filesystem"}
		value := map[string]any{"content": []any{"hello", "world"}, "kind": "file"}
		if err := store.Put(ctx, ns, "/a.txt", value); err != nil {
			tst.Fatalf("Put failed: %v", err)
		}

		item, err := store.Get(ctx, ns, "/a.txt")
		if err != nil {
			tst.Fatalf("Get failed: %v", err)
		}

		if item.Key != "/a.txt" || len(item.Namespace) != 1 || item.Namespace[0] != "filesystem" {
			tst.Errorf("Unexpected identity %q %v", item.Key, item.Namespace)
		}
		if item.Value["kind"] != "file" {
			tst.Errorf("Expected kind=file, got %v", item.Value["kind"])
		}

		lines, ok := item.Value["content"].([]any)
		if !ok || len(lines) != 2 || lines[1] != "world" {
			tst.Errorf("Unexpected content %#v", item.Value["content"])
		}
	})

	t.Run("PutPreservesCreatedAt", func(tst *testing.T) {
		ctx := tst.Context()
		store := factory(tst)
		defer store.Close()

		ns := []string{"filesystem"}
		if err := store.Put(ctx, ns, "/a.txt", map[string]any{"v": "1"}); err != nil {
			tst.Fatalf("Put failed: %v", err)
		}
		first, err := store.Get(ctx, ns, "/a.txt")
		if err != nil {
			tst.Fatalf("Get failed: %v", err)
		}

		if err := store.Put(ctx, ns, "/a.txt", map[string]any{"v": "2"}); err != nil {
			tst.Fatalf("Put failed: %v", err)
		}
		second, err := store.Get(ctx, ns, "/a.txt")
		if err != nil {
			tst.Fatalf("Get failed: %v", err)
		}

		if second.Value["v"] != "2" {
			tst.Errorf("Expected updated value, got %v", second.Value["v"])
		}
		if !second.CreatedAt.Equal(first.CreatedAt) {
			tst.Errorf("Expected CreatedAt %v to be preserved, got %v", first.CreatedAt, second.CreatedAt)
		}
		if second.UpdatedAt.Before(second.CreatedAt) {
			tst.Errorf("Expected UpdatedAt >= CreatedAt")
		}
	})

	t.Run("SearchNamespaceIsolation", func(tst *testing.T) {
		ctx := tst.Context()
		store := factory(tst)
		defer store.Close()

		for _, ns := range [][]string{{"tenant", "a"}, {"tenant", "ab"}, {"other"}} {
			if err := store.Put(ctx, ns, "/f.txt", map[string]any{"owner": ns[len(ns)-1]}); err != nil {
				tst.Fatalf("Put failed: %v", err)
			}
		}

		items, err := store.Search(ctx, []string{"tenant", "a"}, nil, 100, 0)
		if err != nil {
			tst.Fatalf("Search failed: %v", err)
		}
		if len(items) != 1 || items[0].Value["owner"] != "a" {
			tst.Errorf("Expected only tenant/a, got %d items", len(items))
		}

		items, err = store.Search(ctx, []string{"tenant"}, nil, 100, 0)
		if err != nil {
			tst.Fatalf("Search failed: %v", err)
		}
		if len(items) != 2 {
			tst.Errorf("Expected 2 items below tenant, got %d", len(items))
		}
	})

	t.Run("SearchFilter", func(tst *testing.T) {
		ctx := tst.Context()
		store := factory(tst)
		defer store.Close()

		ns := []string{"filesystem"}
		store.Put(ctx, ns, "/a.txt", map[string]any{"kind": "file"})
		store.Put(ctx, ns, "/b.txt", map[string]any{"kind": "note"})

		items, err := store.Search(ctx, ns, map[string]any{"kind": "note"}, 10, 0)
		if err != nil {
			tst.Fatalf("Search failed: %v", err)
		}
		if len(items) != 1 || items[0].Key != "/b.txt" {
			tst.Errorf("Expected only /b.txt, got %d items", len(items))
		}
	})

	t.Run("SearchPagination", func(tst *testing.T) {
		ctx := tst.Context()
		store := factory(tst)
		defer store.Close()

		ns := []string{"filesystem"}
		for i := range 25 {
			if err := store.Put(ctx, ns, fmt.Sprintf("/file%02d.txt", i), map[string]any{"i": "x"}); err != nil {
				tst.Fatalf("Put failed: %v", err)
			}
		}

		var keys []string
		for offset := 0; ; offset += 10 {
			page, err := store.Search(ctx, ns, nil, 10, offset)
			if err != nil {
				tst.Fatalf("Search failed: %v", err)
			}
			for _, item := range page {
				keys = append(keys, item.Key)
			}
			if len(page) < 10 {
				break
			}
		}

		if len(keys) != 25 {
			tst.Fatalf("Expected 25 keys over all pages, got %d", len(keys))
		}
		for i, key := range keys {
			if want := fmt.Sprintf("/file%02d.txt", i); key != want {
				tst.Errorf("Expected key %d to be %s, got %s", i, want, key)
			}
		}
	})
}
