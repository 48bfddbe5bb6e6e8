package local

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mwantia/agentfs/data"
)

// Resolver maps caller paths onto the host filesystem.
//
// In virtual mode every path is rooted at the backend's root directory and
// may not leave it, neither lexically nor through symlinks. In normal mode
// absolute paths pass through and relative paths resolve against the root.
type Resolver struct {
	root     string
	realRoot string
	virtual  bool
}

func NewResolver(root string, virtual bool) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	return &Resolver{
		root:     abs,
		realRoot: evalExisting(abs),
		virtual:  virtual,
	}, nil
}

// Root returns the absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

func (r *Resolver) Virtual() bool {
	return r.virtual
}

// Resolve returns the absolute host path for path.
func (r *Resolver) Resolve(path string) (string, error) {
	if !r.virtual {
		if filepath.IsAbs(path) {
			return filepath.Clean(path), nil
		}
		return filepath.Join(r.root, path), nil
	}

	vpath := data.NormalizePath(path)
	if strings.Contains(vpath, "..") || strings.HasPrefix(path, "~") {
		return "", data.PathTraversal(path)
	}

	full := filepath.Join(r.root, filepath.FromSlash(strings.TrimPrefix(vpath, "/")))
	if !within(r.root, full) {
		return "", data.OutsideRoot(full, r.root)
	}

	if real := evalExisting(full); !within(r.realRoot, real) {
		return "", data.OutsideRoot(real, r.root)
	}

	return full, nil
}

// ToVirtual converts a host path below the root back into the caller's path.
func (r *Resolver) ToVirtual(full string) string {
	if !r.virtual {
		return filepath.ToSlash(full)
	}

	rel, err := filepath.Rel(r.root, full)
	if err != nil || rel == "." {
		return "/"
	}

	return "/" + filepath.ToSlash(rel)
}

func within(root, path string) bool {
	if path == root {
		return true
	}

	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}

// evalExisting resolves symlinks of the deepest existing ancestor of path
// and re-attaches the components that do not exist yet.
func evalExisting(path string) string {
	var missing []string
	current := path

	for {
		real, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{real}, missing...)...)
		}

		parent := filepath.Dir(current)
		if parent == current || !(errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)) {
			return path
		}

		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}
