package mount

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/mount/backend"
	"github.com/mwantia/agentfs/mount/backend/ephemeral"
)

func newTestRouter(t *testing.T) (*Router, *ephemeral.EphemeralBackend) {
	router := NewRouter(ephemeral.NewEphemeralBackend())
	if err := router.Open(t.Context()); err != nil {
		t.Fatalf("Failed to open router: %v", err)
	}
	t.Cleanup(func() {
		router.Close(context.Background())
	})

	memory := ephemeral.NewEphemeralBackend()
	if err := router.Mount(t.Context(), "/memory/", memory); err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}

	return router, memory
}

func write(t *testing.T, be backend.Backend, path, content string) {
	t.Helper()
	if _, err := be.Write(t.Context(), path, content); err != nil {
		t.Fatalf("Failed to write '%s': %v", path, err)
	}
}

func paths(infos []data.FileInfo) string {
	result := make([]string, 0, len(infos))
	for _, info := range infos {
		result = append(result, info.Path)
	}
	return strings.Join(result, ",")
}

func TestRouter_Routing(t *testing.T) {
	router, memory := newTestRouter(t)
	ctx := t.Context()

	res, err := router.Write(ctx, "/memory/notes.txt", "hello")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if res.Path != "/memory/notes.txt" {
		t.Errorf("Expected result path '/memory/notes.txt', got '%s'", res.Path)
	}

	if _, err := memory.Read(ctx, "/notes.txt", 0, 0); err != nil {
		t.Errorf("Expected file stored as '/notes.txt' in mounted backend: %v", err)
	}
	if _, err := router.Default().Read(ctx, "/memory/notes.txt", 0, 0); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected default backend to be untouched, got %v", err)
	}

	content, err := router.Read(ctx, "/memory/notes.txt", 0, 0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if content != "     1\thello" {
		t.Errorf("Unexpected content: %q", content)
	}

	edit, err := router.Edit(ctx, "/memory/notes.txt", "hello", "bye", false)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if edit.Path != "/memory/notes.txt" || edit.Occurrences != 1 {
		t.Errorf("Unexpected edit result: %+v", edit)
	}

	// Prefix without trailing slash addresses the mount root
	infos, err := router.LsInfo(ctx, "/memory")
	if err != nil {
		t.Fatalf("LsInfo failed: %v", err)
	}
	if got := paths(infos); got != "/memory/notes.txt" {
		t.Errorf("Expected '/memory/notes.txt', got '%s'", got)
	}
}

func TestRouter_LsInfoListsMounts(t *testing.T) {
	router, _ := newTestRouter(t)
	ctx := t.Context()

	write(t, router, "/readme.md", "root")
	write(t, router, "/docs/guide.md", "guide")

	infos, err := router.LsInfo(ctx, "/")
	if err != nil {
		t.Fatalf("LsInfo failed: %v", err)
	}

	if got := paths(infos); got != "/docs/,/memory/,/readme.md" {
		t.Errorf("Unexpected listing: %s", got)
	}
	for _, info := range infos {
		if info.Path == "/memory/" && !info.IsDir {
			t.Errorf("Expected '/memory/' to be reported as directory")
		}
	}
}

func TestRouter_GrepAndGlobAggregate(t *testing.T) {
	router, memory := newTestRouter(t)
	ctx := t.Context()

	// Written before it gets shadowed by the mount
	write(t, router.Default(), "/memory/ghost.txt", "needle")
	write(t, router, "/a.txt", "needle in root")
	write(t, memory, "/b.txt", "needle in memory")
	write(t, memory, "/sub/c.py", "no match")

	matches, err := router.Grep(ctx, "needle", "/", "")
	if err != nil {
		t.Fatalf("Grep failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %+v", matches)
	}
	if matches[0].Path != "/a.txt" || matches[1].Path != "/memory/b.txt" {
		t.Errorf("Unexpected match order: %+v", matches)
	}

	tests := []struct {
		pattern string
		path    string
		expect  string
	}{
		{"*.txt", "/", "/a.txt,/memory/b.txt"},
		{"**/*.txt", "/", "/a.txt,/memory/b.txt"},
		{"**/*.py", "/", "/memory/sub/c.py"},
		{"*.txt", "/memory/", "/memory/b.txt"},
		{"sub/*", "/memory", "/memory/sub/c.py"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"@"+tt.path, func(tst *testing.T) {
			infos, err := router.Glob(tst.Context(), tt.pattern, tt.path)
			if err != nil {
				tst.Fatalf("Glob failed: %v", err)
			}
			if got := paths(infos); got != tt.expect {
				tst.Errorf("Expected '%s', got '%s'", tt.expect, got)
			}
		})
	}
}

func TestRouter_GlobAcrossMounts(t *testing.T) {
	router, memory := newTestRouter(t)

	write(t, router, "/test.txt", "default")
	write(t, memory, "/test.txt", "memory")

	infos, err := router.Glob(t.Context(), "*.txt", "/")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if got := paths(infos); got != "/memory/test.txt,/test.txt" {
		t.Errorf("Expected files of both backends, got '%s'", got)
	}
}

func TestRouter_GrepInvalidPattern(t *testing.T) {
	router, _ := newTestRouter(t)

	_, err := router.Grep(t.Context(), "[", "/memory/", "")
	if !errors.Is(err, data.ErrInvalidPattern) {
		t.Fatalf("Expected ErrInvalidPattern, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Invalid regex pattern: ") {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestRouter_ErrorsCarryCallerPath(t *testing.T) {
	router, _ := newTestRouter(t)
	ctx := t.Context()

	_, err := router.Read(ctx, "/memory/missing.txt", 0, 0)
	if !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("Expected ErrNotExist, got %v", err)
	}
	if err.Error() != "Error: File '/memory/missing.txt' not found" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	write(t, router, "/memory/dup.txt", "x")
	_, err = router.Write(ctx, "/memory/dup.txt", "y")
	if !errors.Is(err, data.ErrExist) {
		t.Fatalf("Expected ErrExist, got %v", err)
	}
	if !strings.Contains(err.Error(), "/memory/dup.txt") {
		t.Errorf("Expected caller path in message: %s", err.Error())
	}
}

func TestRouter_ReadOnlyMount(t *testing.T) {
	router, _ := newTestRouter(t)
	ctx := t.Context()

	archive := ephemeral.NewEphemeralBackend()
	write(t, archive, "/old.txt", "history")

	if err := router.Mount(ctx, "/archive", archive, AsReadOnly()); err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}

	if _, err := router.Read(ctx, "/archive/old.txt", 0, 0); err != nil {
		t.Errorf("Expected read to succeed: %v", err)
	}
	if _, err := router.Write(ctx, "/archive/new.txt", "x"); !errors.Is(err, data.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly on write, got %v", err)
	}
	if _, err := router.Edit(ctx, "/archive/old.txt", "history", "x", false); !errors.Is(err, data.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly on edit, got %v", err)
	}
}

func TestRouter_MountTable(t *testing.T) {
	router, _ := newTestRouter(t)
	ctx := t.Context()

	if err := router.Mount(ctx, "/memory", ephemeral.NewEphemeralBackend()); !errors.Is(err, data.ErrAlreadyMounted) {
		t.Errorf("Expected ErrAlreadyMounted, got %v", err)
	}

	if err := router.Mount(ctx, "/sealed/", ephemeral.NewEphemeralBackend(), DisableNesting()); err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}
	if err := router.Mount(ctx, "/sealed/inner/", ephemeral.NewEphemeralBackend()); !errors.Is(err, data.ErrNestingDenied) {
		t.Errorf("Expected ErrNestingDenied below sealed mount, got %v", err)
	}
	if err := router.Mount(ctx, "/memory/inner/", ephemeral.NewEphemeralBackend()); err != nil {
		t.Fatalf("Failed to mount nested: %v", err)
	}
	if err := router.Mount(ctx, "/", ephemeral.NewEphemeralBackend(), DisableNesting()); !errors.Is(err, data.ErrNestingDenied) {
		t.Errorf("Expected ErrNestingDenied above existing mounts, got %v", err)
	}

	mounts := router.Mounts()
	if len(mounts) != 3 || mounts[0].Prefix != "/memory/inner/" {
		t.Errorf("Expected longest prefix first, got %d mounts", len(mounts))
	}

	if err := router.Unmount(ctx, "/sealed"); err != nil {
		t.Errorf("Unmount failed: %v", err)
	}
	if err := router.Unmount(ctx, "/sealed"); !errors.Is(err, data.ErrNotMounted) {
		t.Errorf("Expected ErrNotMounted, got %v", err)
	}
}

func TestRouter_NestedMounts(t *testing.T) {
	router, memory := newTestRouter(t)
	ctx := t.Context()

	inner := ephemeral.NewEphemeralBackend()
	if err := router.Mount(ctx, "/memory/deep/nested/", inner); err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}

	write(t, router, "/memory/top.txt", "top")
	write(t, router, "/memory/deep/nested/leaf.txt", "leaf")

	if _, err := inner.Read(ctx, "/leaf.txt", 0, 0); err != nil {
		t.Errorf("Expected longest prefix to win: %v", err)
	}
	if memory.Len() != 1 {
		t.Errorf("Expected single file in outer mount, got %d", memory.Len())
	}

	infos, err := router.LsInfo(ctx, "/memory/")
	if err != nil {
		t.Fatalf("LsInfo failed: %v", err)
	}
	if got := paths(infos); got != "/memory/deep/,/memory/top.txt" {
		t.Errorf("Unexpected listing: %s", got)
	}

	infos, err = router.Glob(ctx, "**/*.txt", "/memory")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if got := paths(infos); got != "/memory/deep/nested/leaf.txt,/memory/top.txt" {
		t.Errorf("Unexpected glob: %s", got)
	}
}

func TestRouter_CompositeOfComposites(t *testing.T) {
	ctx := t.Context()

	leaf := ephemeral.NewEphemeralBackend()
	inner := NewRouter(ephemeral.NewEphemeralBackend())
	if err := inner.Mount(ctx, "/b/", leaf); err != nil {
		t.Fatalf("Failed to mount leaf: %v", err)
	}

	outer := NewRouter(ephemeral.NewEphemeralBackend())
	if err := outer.Mount(ctx, "/a/", inner); err != nil {
		t.Fatalf("Failed to mount inner router: %v", err)
	}
	defer outer.Close(ctx)

	res, err := outer.Write(ctx, "/a/b/file.txt", "deep")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if res.Path != "/a/b/file.txt" {
		t.Errorf("Expected '/a/b/file.txt', got '%s'", res.Path)
	}
	if _, err := leaf.Read(ctx, "/file.txt", 0, 0); err != nil {
		t.Errorf("Expected file in leaf backend: %v", err)
	}

	_, err = outer.Read(ctx, "/a/b/missing.txt", 0, 0)
	if err == nil || err.Error() != "Error: File '/a/b/missing.txt' not found" {
		t.Errorf("Unexpected error: %v", err)
	}

	matches, err := outer.Grep(ctx, "deep", "/", "*.txt")
	if err != nil {
		t.Fatalf("Grep failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Path != "/a/b/file.txt" || matches[0].Line != 1 {
		t.Errorf("Unexpected matches: %+v", matches)
	}
}
