package ephemeral

import (
	"context"
	"sync"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/log"
	"github.com/mwantia/agentfs/match"
	"github.com/mwantia/agentfs/mount/backend"
	"github.com/tidwall/btree"
)

// EphemeralBackend keeps every file in process memory, ordered by path.
// Nothing survives Close.
type EphemeralBackend struct {
	mu  sync.RWMutex
	log *log.Logger

	files *btree.Map[string, *data.FileRecord]
}

type EphemeralOption func(*EphemeralBackend)

func WithLogger(logger *log.Logger) EphemeralOption {
	return func(eb *EphemeralBackend) {
		eb.log = logger.Named("ephemeral")
	}
}

func NewEphemeralBackend(opts ...EphemeralOption) *EphemeralBackend {
	eb := &EphemeralBackend{
		log:   log.Discard(),
		files: btree.NewMap[string, *data.FileRecord](0),
	}

	for _, opt := range opts {
		opt(eb)
	}

	return eb
}

// Returns the identifier name defined for this backend
func (*EphemeralBackend) Name() string {
	return "ephemeral"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (eb *EphemeralBackend) Open(ctx context.Context) error {
	// No initialization needed - backend is ready to use
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (eb *EphemeralBackend) Close(ctx context.Context) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.files.Clear()
	return nil
}

// Len returns the number of stored files.
func (eb *EphemeralBackend) Len() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return eb.files.Len()
}

// Delete removes the file at path.
func (eb *EphemeralBackend) Delete(ctx context.Context, path string) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	path = data.NormalizePath(path)
	if _, deleted := eb.files.Delete(path); !deleted {
		return data.NotFound(path)
	}

	return nil
}

func (eb *EphemeralBackend) LsInfo(ctx context.Context, path string) ([]data.FileInfo, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	dir := data.NormalizeDir(path)
	return backend.ListEntries(dir, eb.scanUnsafe(dir)), nil
}

func (eb *EphemeralBackend) Read(ctx context.Context, path string, offset, limit int) (string, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	path = data.NormalizePath(path)
	record, exists := eb.files.Get(path)
	if !exists {
		return "", data.NotFound(path)
	}

	return data.FormatRead(path, record.String(), offset, limit)
}

func (eb *EphemeralBackend) Write(ctx context.Context, path, content string) (*data.WriteResult, error) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	path = data.NormalizePath(path)
	if err := backend.ValidateFilePath(path); err != nil {
		return nil, err
	}

	if _, exists := eb.files.Get(path); exists {
		return nil, data.AlreadyExists(path)
	}

	if err := eb.conflictUnsafe(path); err != nil {
		return nil, err
	}

	eb.files.Set(path, data.NewFileRecord(content))
	eb.log.Debug("created '%s'", path)

	return &data.WriteResult{Path: path}, nil
}

func (eb *EphemeralBackend) Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) (*data.EditResult, error) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	path = data.NormalizePath(path)
	record, exists := eb.files.Get(path)
	if !exists {
		return nil, data.NotFound(path)
	}

	content, occurrences, err := data.ReplaceOccurrences(path, record.String(), oldString, newString, replaceAll)
	if err != nil {
		return nil, err
	}

	eb.files.Set(path, record.Update(content))
	eb.log.Debug("edited '%s' (%d occurrences)", path, occurrences)

	return &data.EditResult{Path: path, Occurrences: occurrences}, nil
}

func (eb *EphemeralBackend) Grep(ctx context.Context, pattern, path, glob string) ([]data.GrepMatch, error) {
	re, err := match.CompileRegex(pattern)
	if err != nil {
		return nil, err
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	matches := make([]data.GrepMatch, 0)
	eb.ascendUnsafe(data.NormalizeDir(path), func(key string, record *data.FileRecord) bool {
		if match.FilterName(glob, key) {
			matches = append(matches, match.GrepLines(re, key, record.Content)...)
		}
		return ctx.Err() == nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

func (eb *EphemeralBackend) Glob(ctx context.Context, pattern, path string) ([]data.FileInfo, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	dir := data.NormalizeDir(path)
	entries := make([]data.FileInfo, 0)
	for _, info := range eb.scanUnsafe(dir) {
		if match.Match(pattern, info.Path[len(dir):]) {
			entries = append(entries, info)
		}
	}

	backend.SortByModified(entries)
	return entries, nil
}
