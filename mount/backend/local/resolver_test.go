package local

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/agentfs/data"
)

func TestResolver_Virtual(t *testing.T) {
	root := t.TempDir()
	resolver, err := NewResolver(root, true)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	full, err := resolver.Resolve("/dir/file.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if want := filepath.Join(resolver.Root(), "dir", "file.txt"); full != want {
		t.Errorf("Expected %q, got %q", want, full)
	}

	if got := resolver.ToVirtual(full); got != "/dir/file.txt" {
		t.Errorf("Expected virtual path /dir/file.txt, got %q", got)
	}
	if got := resolver.ToVirtual(resolver.Root()); got != "/" {
		t.Errorf("Expected root to map to /, got %q", got)
	}

	for _, path := range []string{"/../etc/passwd", "../x", "/a/../../b", "~/secret"} {
		if _, err := resolver.Resolve(path); !errors.Is(err, data.ErrPathTraversal) {
			t.Errorf("Expected ErrPathTraversal for %q, got %v", path, err)
		}
	}
}

func TestResolver_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	resolver, err := NewResolver(root, true)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	if _, err := resolver.Resolve("/escape/file.txt"); !errors.Is(err, data.ErrOutsideRoot) {
		t.Errorf("Expected ErrOutsideRoot, got %v", err)
	}
}

func TestResolver_Normal(t *testing.T) {
	root := t.TempDir()
	resolver, err := NewResolver(root, false)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	abs := filepath.Join(t.TempDir(), "elsewhere.txt")
	full, err := resolver.Resolve(abs)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if full != abs {
		t.Errorf("Expected absolute path to pass through, got %q", full)
	}

	full, err = resolver.Resolve("rel/file.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if want := filepath.Join(resolver.Root(), "rel", "file.txt"); full != want {
		t.Errorf("Expected %q, got %q", want, full)
	}
}
