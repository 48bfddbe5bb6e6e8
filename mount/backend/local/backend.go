package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/log"
	"github.com/mwantia/agentfs/match"
	"github.com/mwantia/agentfs/mount/backend"
)

// LocalBackend reads and writes real files below a root directory.
type LocalBackend struct {
	log      *log.Logger
	resolver *Resolver
	options  *LocalOptions

	// Per-path locks held during edit
	locksMu sync.Mutex
	locks   map[string]*pathLock
}

// pathLock is removed from the lock table once no editor references it.
type pathLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocalBackend(root string, opts ...LocalOption) (*LocalBackend, error) {
	options := newDefaultLocalOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	resolver, err := NewResolver(root, options.Virtual)
	if err != nil {
		return nil, err
	}

	return &LocalBackend{
		log:      options.Logger.Named("local"),
		resolver: resolver,
		options:  options,
		locks:    make(map[string]*pathLock),
	}, nil
}

// Returns the identifier name defined for this backend
func (*LocalBackend) Name() string {
	return "local"
}

// Root returns the absolute root directory of this backend.
func (lb *LocalBackend) Root() string {
	return lb.resolver.Root()
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (lb *LocalBackend) Open(ctx context.Context) error {
	info, err := os.Stat(lb.resolver.Root())
	if err != nil {
		return fmt.Errorf("%w: %v", data.ErrMountFailed, err)
	}

	// Ensure the root is a directory
	if !info.IsDir() {
		return fmt.Errorf("%w: '%s' is not a directory", data.ErrMountFailed, lb.resolver.Root())
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (lb *LocalBackend) Close(ctx context.Context) error {
	// The underlying filesystem persists independently
	return nil
}

func (lb *LocalBackend) LsInfo(ctx context.Context, path string) ([]data.FileInfo, error) {
	full, err := lb.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || isNotDir(full) {
			return []data.FileInfo{}, nil
		}
		return nil, err
	}

	infos := make([]data.FileInfo, 0, len(entries))
	for _, entry := range entries {
		child := filepath.Join(full, entry.Name())

		info, err := statEntry(child, entry)
		if err != nil {
			lb.log.Debug("skipping '%s': %v", child, err)
			continue
		}

		if info.IsDir() {
			infos = append(infos, data.FileInfo{
				Path:       lb.resolver.ToVirtual(child) + "/",
				IsDir:      true,
				ModifiedAt: info.ModTime(),
			})
			continue
		}

		infos = append(infos, data.FileInfo{
			Path:       lb.resolver.ToVirtual(child),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	backend.SortByPath(infos)
	return infos, nil
}

func (lb *LocalBackend) Read(ctx context.Context, path string, offset, limit int) (string, error) {
	full, err := lb.resolver.Resolve(path)
	if err != nil {
		return "", err
	}
	path = lb.caller(path)

	content, err := readRegular(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", data.NotFound(path)
		}
		return "", err
	}

	return data.FormatRead(path, string(content), offset, limit)
}

func (lb *LocalBackend) Write(ctx context.Context, path, content string) (*data.WriteResult, error) {
	if err := backend.ValidateFilePath(lb.caller(path)); err != nil {
		return nil, err
	}

	full, err := lb.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	path = lb.caller(path)

	if _, err := os.Lstat(full); err == nil {
		return nil, data.AlreadyExists(path)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, data.ParentNotDir(path)
		}
		return nil, err
	}

	file, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, data.AlreadyExists(path)
		}
		return nil, err
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return nil, err
	}

	if err := file.Close(); err != nil {
		return nil, err
	}

	lb.log.Debug("created '%s'", full)
	return &data.WriteResult{Path: path}, nil
}

func (lb *LocalBackend) Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) (*data.EditResult, error) {
	full, err := lb.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	path = lb.caller(path)

	unlock := lb.lock(full)
	defer unlock()

	content, err := readRegular(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, data.NotFound(path)
		}
		return nil, err
	}

	updated, occurrences, err := data.ReplaceOccurrences(path, string(content), oldString, newString, replaceAll)
	if err != nil {
		return nil, err
	}

	if err := replaceFile(full, []byte(updated)); err != nil {
		return nil, err
	}

	lb.log.Debug("edited '%s' (%d occurrences)", full, occurrences)
	return &data.EditResult{Path: path, Occurrences: occurrences}, nil
}

func (lb *LocalBackend) Grep(ctx context.Context, pattern, path, glob string) ([]data.GrepMatch, error) {
	re, err := match.CompileRegex(pattern)
	if err != nil {
		return nil, err
	}

	full, err := lb.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	maxSize := lb.options.MaxFileSizeMB * 1024 * 1024

	var mu sync.Mutex
	matches := make([]data.GrepMatch, 0)

	err = walkFiles(ctx, full, func(file string, info fs.FileInfo) error {
		if !match.FilterName(glob, file) || info.Size() > maxSize {
			return nil
		}

		content, err := os.ReadFile(file)
		if err != nil {
			lb.log.Debug("skipping '%s': %v", file, err)
			return nil
		}

		if !isText(content) {
			return nil
		}

		found := match.GrepLines(re, lb.resolver.ToVirtual(file), data.SplitLines(string(content)))

		mu.Lock()
		matches = append(matches, found...)
		mu.Unlock()

		return nil
	})
	if err != nil {
		return nil, err
	}

	backend.SortMatches(matches)
	return matches, nil
}

func (lb *LocalBackend) Glob(ctx context.Context, pattern, path string) ([]data.FileInfo, error) {
	full, err := lb.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	if isNotDir(full) {
		return []data.FileInfo{}, nil
	}

	var mu sync.Mutex
	entries := make([]data.FileInfo, 0)

	err = walkFiles(ctx, full, func(file string, info fs.FileInfo) error {
		rel, err := filepath.Rel(full, file)
		if err != nil || !match.Match(pattern, filepath.ToSlash(rel)) {
			return nil
		}

		mu.Lock()
		entries = append(entries, data.FileInfo{
			Path:       lb.resolver.ToVirtual(file),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
		mu.Unlock()

		return nil
	})
	if err != nil {
		return nil, err
	}

	backend.SortByPath(entries)
	return entries, nil
}

// caller returns the path as reported back in results and errors.
func (lb *LocalBackend) caller(path string) string {
	if lb.resolver.Virtual() {
		return data.NormalizePath(path)
	}

	return path
}

// lock acquires the edit lock for full and returns its release function.
func (lb *LocalBackend) lock(full string) func() {
	lb.locksMu.Lock()
	l, exists := lb.locks[full]
	if !exists {
		l = &pathLock{}
		lb.locks[full] = l
	}
	l.refs++
	lb.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		lb.locksMu.Lock()
		if l.refs--; l.refs == 0 {
			delete(lb.locks, full)
		}
		lb.locksMu.Unlock()
	}
}

// readRegular reads a regular file; directories count as missing.
func readRegular(full string) ([]byte, error) {
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}

	if !info.Mode().IsRegular() {
		return nil, fs.ErrNotExist
	}

	return os.ReadFile(full)
}

// replaceFile atomically swaps the content of full, keeping its permissions.
func replaceFile(full string, content []byte) error {
	info, err := os.Stat(full)
	if err != nil {
		return err
	}

	tmp := filepath.Join(filepath.Dir(full), fmt.Sprintf(".%s.%s.tmp", filepath.Base(full), uuid.Must(uuid.NewV7()).String()))
	if err := os.WriteFile(tmp, content, info.Mode().Perm()); err != nil {
		return err
	}

	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}

func statEntry(full string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		if info, err := os.Stat(full); err == nil {
			return info, nil
		}
	}

	return entry.Info()
}

func isNotDir(full string) bool {
	info, err := os.Stat(full)
	return err != nil || !info.IsDir()
}
