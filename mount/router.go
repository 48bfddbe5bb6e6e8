package mount

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/log"
	"github.com/mwantia/agentfs/match"
	"github.com/mwantia/agentfs/mount/backend"
)

// Router dispatches every operation to the mount with the longest prefix
// matching the path, or to the default backend if none matches.
type Router struct {
	mu  sync.RWMutex
	log *log.Logger

	fallback backend.Backend
	mounts   []*Mount // Sorted by prefix length, longest first.
}

type RouterOption func(*Router)

func WithLogger(logger *log.Logger) RouterOption {
	return func(r *Router) {
		r.log = logger.Named("router")
	}
}

func NewRouter(fallback backend.Backend, opts ...RouterOption) *Router {
	r := &Router{
		log:      log.Discard(),
		fallback: fallback,
		mounts:   make([]*Mount, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Returns the identifier name defined for this backend
func (*Router) Name() string {
	return "router"
}

// Default returns the backend serving every path outside of a mount.
func (r *Router) Default() backend.Backend {
	return r.fallback
}

// Open opens the default backend. Mounted backends are opened by Mount.
func (r *Router) Open(ctx context.Context) error {
	return r.fallback.Open(ctx)
}

// Close closes the default backend and every mounted backend.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs data.Errors
	for _, m := range r.mounts {
		if err := m.Backend.Close(ctx); err != nil {
			errs.Add(fmt.Errorf("failed to close mount '%s': %w", m.Prefix, err))
		}
	}
	errs.Add(r.fallback.Close(ctx))

	r.mounts = make([]*Mount, 0)
	return errs.Errors()
}

// Mount opens be and routes every path below prefix to it.
func (r *Router) Mount(ctx context.Context, prefix string, be backend.Backend, opts ...MountOption) error {
	mnt, err := NewMount(prefix, be, opts...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.mounts {
		if m.Prefix == mnt.Prefix {
			return fmt.Errorf("%w: %s", data.ErrAlreadyMounted, mnt.Prefix)
		}

		// Parent mount denies nesting below itself
		if strings.HasPrefix(mnt.Prefix, m.Prefix) && !m.Options.Nesting {
			return fmt.Errorf("%w: %s below %s", data.ErrNestingDenied, mnt.Prefix, m.Prefix)
		}

		// New mount denies nesting but already has children
		if strings.HasPrefix(m.Prefix, mnt.Prefix) && !mnt.Options.Nesting {
			return fmt.Errorf("%w: %s already mounted below %s", data.ErrNestingDenied, m.Prefix, mnt.Prefix)
		}
	}

	if err := mnt.Backend.Open(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", data.ErrMountFailed, mnt.Prefix, err)
	}

	r.mounts = append(r.mounts, mnt)
	sort.SliceStable(r.mounts, func(i, j int) bool {
		return len(r.mounts[i].Prefix) > len(r.mounts[j].Prefix)
	})

	r.log.Info("mounted '%s' at '%s'", mnt.Backend.Name(), mnt.Prefix)
	return nil
}

// Unmount closes and removes the mount at prefix.
func (r *Router) Unmount(ctx context.Context, prefix string) error {
	prefix = data.NormalizeDir(prefix)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.mounts {
		if m.Prefix != prefix {
			continue
		}

		r.mounts = append(r.mounts[:i], r.mounts[i+1:]...)
		r.log.Info("unmounted '%s'", prefix)

		return m.Backend.Close(ctx)
	}

	return fmt.Errorf("%w: %s", data.ErrNotMounted, prefix)
}

// Mounts returns a snapshot of all mounts, longest prefix first.
func (r *Router) Mounts() []*Mount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mounts := make([]*Mount, len(r.mounts))
	copy(mounts, r.mounts)
	return mounts
}

func (r *Router) LsInfo(ctx context.Context, path string) ([]data.FileInfo, error) {
	path = data.NormalizePath(path)
	dir := data.NormalizeDir(path)
	target, nested := r.route(path)

	infos, err := r.delegate(target).LsInfo(ctx, r.strip(target, path))
	if err != nil {
		return nil, r.rebase(target, err)
	}

	seen := make(map[string]struct{}, len(infos))
	result := make([]data.FileInfo, 0, len(infos)+len(nested))
	for _, info := range infos {
		info.Path = r.join(target, info.Path)
		if shadowed(nested, info.Path) {
			continue
		}

		seen[info.Path] = struct{}{}
		result = append(result, info)
	}

	for _, m := range nested {
		remainder := m.Prefix[len(dir):]
		sub := dir + remainder[:strings.Index(remainder, "/")+1]

		if _, exists := seen[sub]; !exists {
			seen[sub] = struct{}{}
			result = append(result, data.DirInfo(sub))
		}
	}

	backend.SortByPath(result)
	return result, nil
}

func (r *Router) Read(ctx context.Context, path string, offset, limit int) (string, error) {
	path = data.NormalizePath(path)
	target, _ := r.route(path)

	content, err := r.delegate(target).Read(ctx, r.strip(target, path), offset, limit)
	if err != nil {
		return "", r.rebase(target, err)
	}

	return content, nil
}

func (r *Router) Write(ctx context.Context, path, content string) (*data.WriteResult, error) {
	path = data.NormalizePath(path)
	target, _ := r.route(path)

	res, err := r.delegate(target).Write(ctx, r.strip(target, path), content)
	if err != nil {
		return nil, r.rebase(target, err)
	}

	return &data.WriteResult{Path: r.join(target, res.Path)}, nil
}

func (r *Router) Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) (*data.EditResult, error) {
	path = data.NormalizePath(path)
	target, _ := r.route(path)

	res, err := r.delegate(target).Edit(ctx, r.strip(target, path), oldString, newString, replaceAll)
	if err != nil {
		return nil, r.rebase(target, err)
	}

	return &data.EditResult{Path: r.join(target, res.Path), Occurrences: res.Occurrences}, nil
}

func (r *Router) Grep(ctx context.Context, pattern, path, glob string) ([]data.GrepMatch, error) {
	// Fail once up front instead of once per backend
	if _, err := match.CompileRegex(pattern); err != nil {
		return nil, err
	}

	path = data.NormalizePath(path)
	target, nested := r.route(path)

	found, err := r.delegate(target).Grep(ctx, pattern, r.strip(target, path), glob)
	if err != nil {
		return nil, r.rebase(target, err)
	}

	matches := make([]data.GrepMatch, 0, len(found))
	for _, m := range found {
		m.Path = r.join(target, m.Path)
		if !shadowed(nested, m.Path) {
			matches = append(matches, m)
		}
	}

	for _, mnt := range nested {
		found, err := mnt.Backend.Grep(ctx, pattern, "/", glob)
		if err != nil {
			return nil, data.RebaseError(err, mnt.Prefix)
		}

		for _, m := range found {
			if m.Path = mnt.Join(m.Path); owner(nested, m.Path) == mnt {
				matches = append(matches, m)
			}
		}
	}

	backend.SortMatches(matches)
	return matches, nil
}

func (r *Router) Glob(ctx context.Context, pattern, path string) ([]data.FileInfo, error) {
	path = data.NormalizePath(path)
	target, nested := r.route(path)

	found, err := r.delegate(target).Glob(ctx, pattern, r.strip(target, path))
	if err != nil {
		return nil, r.rebase(target, err)
	}

	entries := make([]data.FileInfo, 0, len(found))
	for _, info := range found {
		info.Path = r.join(target, info.Path)
		if !shadowed(nested, info.Path) {
			entries = append(entries, info)
		}
	}

	// Each nested mount evaluates the pattern from its own root
	for _, mnt := range nested {
		found, err := mnt.Backend.Glob(ctx, pattern, "/")
		if err != nil {
			return nil, data.RebaseError(err, mnt.Prefix)
		}

		for _, info := range found {
			if info.Path = mnt.Join(info.Path); owner(nested, info.Path) == mnt {
				entries = append(entries, info)
			}
		}
	}

	backend.SortByPath(entries)
	return entries, nil
}

// route returns the mount serving path, or nil for the default backend,
// together with every other mount located strictly below the directory path.
func (r *Router) route(path string) (*Mount, []*Mount) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var target *Mount
	for _, m := range r.mounts {
		if m.Matches(path) {
			target = m
			break
		}
	}

	dir := data.NormalizeDir(path)
	nested := make([]*Mount, 0)
	for _, m := range r.mounts {
		if m != target && len(m.Prefix) > len(dir) && strings.HasPrefix(m.Prefix, dir) {
			nested = append(nested, m)
		}
	}

	return target, nested
}

func (r *Router) delegate(target *Mount) backend.Backend {
	if target == nil {
		return r.fallback
	}

	return target.Backend
}

func (r *Router) strip(target *Mount, path string) string {
	if target == nil {
		return path
	}

	return target.Strip(path)
}

func (r *Router) join(target *Mount, path string) string {
	if target == nil {
		return path
	}

	return target.Join(path)
}

func (r *Router) rebase(target *Mount, err error) error {
	if target == nil {
		return err
	}

	return data.RebaseError(err, target.Prefix)
}

// owner returns the mount with the longest prefix among mounts that serves path.
func owner(mounts []*Mount, path string) *Mount {
	for _, m := range mounts {
		if m.Matches(path) {
			return m
		}
	}

	return nil
}

// shadowed reports whether path is hidden by one of mounts.
func shadowed(mounts []*Mount, path string) bool {
	return owner(mounts, path) != nil
}
