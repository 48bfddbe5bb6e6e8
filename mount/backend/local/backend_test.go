package local_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/mount/backend/local"
)

func newVirtualBackend(t *testing.T, opts ...local.LocalOption) (*local.LocalBackend, string) {
	t.Helper()

	root := t.TempDir()
	be, err := local.NewLocalBackend(root, append([]local.LocalOption{local.WithVirtualMode()}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create local backend: %v", err)
	}

	if err := be.Open(t.Context()); err != nil {
		t.Fatalf("Failed to open local backend: %v", err)
	}

	return be, root
}

func TestLocalBackend_OpenMissingRoot(t *testing.T) {
	be, err := local.NewLocalBackend(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Failed to create local backend: %v", err)
	}

	if err := be.Open(t.Context()); !errors.Is(err, data.ErrMountFailed) {
		t.Errorf("Expected ErrMountFailed, got %v", err)
	}
}

func TestLocalBackend_WriteCreatesParents(t *testing.T) {
	be, root := newVirtualBackend(t)

	if _, err := be.Write(t.Context(), "/deep/nested/file.txt", "content"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "deep", "nested", "file.txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "content" {
		t.Errorf("Expected content on disk, got %q", got)
	}
}

func TestLocalBackend_WriteBelowFile(t *testing.T) {
	be, root := newVirtualBackend(t)
	ctx := t.Context()

	if _, err := be.Write(ctx, "/a", "file"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, err := be.Write(ctx, "/a/b.txt", "nested")
	if !errors.Is(err, data.ErrInvalid) {
		t.Fatalf("Expected ErrInvalid, got %v", err)
	}
	if strings.Contains(err.Error(), root) || !strings.Contains(err.Error(), "/a/b.txt") {
		t.Errorf("Expected error naming the virtual path only, got %q", err.Error())
	}
}

func TestLocalBackend_PathTraversal(t *testing.T) {
	be, _ := newVirtualBackend(t)
	ctx := t.Context()

	if _, err := be.Read(ctx, "/../etc/passwd", 0, 10); !errors.Is(err, data.ErrPathTraversal) {
		t.Errorf("Expected ErrPathTraversal on read, got %v", err)
	}
	if _, err := be.Write(ctx, "/../malicious.txt", "bad"); !errors.Is(err, data.ErrPathTraversal) {
		t.Errorf("Expected ErrPathTraversal on write, got %v", err)
	}
	if _, err := be.Edit(ctx, "/../test.txt", "old", "new", false); !errors.Is(err, data.ErrPathTraversal) {
		t.Errorf("Expected ErrPathTraversal on edit, got %v", err)
	}
}

func TestLocalBackend_EditPreservesMode(t *testing.T) {
	be, root := newVirtualBackend(t)
	file := filepath.Join(root, "script.sh")

	if err := os.WriteFile(file, []byte("echo old"), 0o750); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := be.Edit(t.Context(), "/script.sh", "old", "new", false); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o750 {
		t.Errorf("Expected mode 0750, got %v", info.Mode().Perm())
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected no leftover temporary files, got %d entries", len(entries))
	}
}

func TestLocalBackend_Symlink(t *testing.T) {
	be, root := newVirtualBackend(t)

	if err := os.WriteFile(filepath.Join(root, "real.txt"), []byte("Real content"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	infos, err := be.LsInfo(t.Context(), "/")
	if err != nil {
		t.Fatalf("LsInfo failed: %v", err)
	}
	if len(infos) != 2 || infos[0].Path != "/link.txt" || infos[1].Path != "/real.txt" {
		t.Errorf("Unexpected listing %+v", infos)
	}

	got, err := be.Read(t.Context(), "/link.txt", 0, 0)
	if err != nil {
		t.Fatalf("Read through symlink failed: %v", err)
	}
	if !strings.Contains(got, "Real content") {
		t.Errorf("Expected symlink target content, got %q", got)
	}
}

func TestLocalBackend_GrepSkipsBinaryAndLarge(t *testing.T) {
	be, root := newVirtualBackend(t, local.WithMaxFileSizeMB(1))

	if err := os.WriteFile(filepath.Join(root, "binary.bin"), []byte("\x00\x01needle\x02\xff\xfe"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	large := bytes.Repeat([]byte("needle\n"), (1024*1024)/7+1)
	if err := os.WriteFile(filepath.Join(root, "large.txt"), large, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := be.Write(t.Context(), "/small.txt", "a needle here"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	matches, err := be.Grep(t.Context(), "needle", "/", "")
	if err != nil {
		t.Fatalf("Grep failed: %v", err)
	}

	if len(matches) != 1 || matches[0].Path != "/small.txt" || matches[0].Line != 1 {
		t.Errorf("Expected a single match in /small.txt, got %+v", matches)
	}
}

func TestLocalBackend_NormalMode(t *testing.T) {
	root := t.TempDir()
	be, err := local.NewLocalBackend(root)
	if err != nil {
		t.Fatalf("Failed to create local backend: %v", err)
	}

	abs := filepath.Join(root, "abs.txt")
	res, err := be.Write(t.Context(), abs, "absolute")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if res.Path != abs {
		t.Errorf("Expected result path %q, got %q", abs, res.Path)
	}

	infos, err := be.LsInfo(t.Context(), root)
	if err != nil {
		t.Fatalf("LsInfo failed: %v", err)
	}
	if len(infos) != 1 || infos[0].Path != filepath.ToSlash(filepath.Join(be.Root(), "abs.txt")) {
		t.Errorf("Expected absolute listing paths, got %+v", infos)
	}
}
