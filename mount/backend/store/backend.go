package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/kv"
	"github.com/mwantia/agentfs/log"
	"github.com/mwantia/agentfs/match"
	"github.com/mwantia/agentfs/mount/backend"
)

const DefaultPageSize = 100

// StoreBackend persists file records as items of a namespaced kv.Store,
// keyed by path.
type StoreBackend struct {
	mu  sync.Mutex
	log *log.Logger

	store   kv.Store
	options *StoreOptions
}

func NewStoreBackend(store kv.Store, opts ...StoreOption) (*StoreBackend, error) {
	options := newDefaultStoreOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return &StoreBackend{
		log:     options.Logger.Named("store"),
		store:   store,
		options: options,
	}, nil
}

// Returns the identifier name defined for this backend
func (*StoreBackend) Name() string {
	return "store"
}

// Namespace returns the namespace all records are stored in.
func (sb *StoreBackend) Namespace() []string {
	return slices.Clone(sb.options.Namespace)
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (sb *StoreBackend) Open(ctx context.Context) error {
	_, err := sb.store.Search(ctx, sb.options.Namespace, nil, 1, 0)
	return err
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *StoreBackend) Close(ctx context.Context) error {
	if sb.options.CloseStore {
		return sb.store.Close()
	}

	return nil
}

func (sb *StoreBackend) LsInfo(ctx context.Context, path string) ([]data.FileInfo, error) {
	dir := data.NormalizeDir(path)

	infos := make([]data.FileInfo, 0)
	err := sb.scan(ctx, func(key string, record *data.FileRecord) {
		infos = append(infos, record.Info(key))
	})
	if err != nil {
		return nil, err
	}

	return backend.ListEntries(dir, infos), nil
}

func (sb *StoreBackend) Read(ctx context.Context, path string, offset, limit int) (string, error) {
	path = data.NormalizePath(path)

	record, err := sb.get(ctx, path)
	if err != nil {
		return "", err
	}

	return data.FormatRead(path, record.String(), offset, limit)
}

func (sb *StoreBackend) Write(ctx context.Context, path, content string) (*data.WriteResult, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	path = data.NormalizePath(path)
	if err := backend.ValidateFilePath(path); err != nil {
		return nil, err
	}

	if _, err := sb.get(ctx, path); err == nil {
		return nil, data.AlreadyExists(path)
	} else if !errors.Is(err, data.ErrNotExist) {
		return nil, err
	}

	if err := sb.conflict(ctx, path); err != nil {
		return nil, err
	}

	if err := sb.store.Put(ctx, sb.options.Namespace, path, toValue(data.NewFileRecord(content))); err != nil {
		return nil, err
	}

	sb.log.Debug("created '%s' in %v", path, sb.options.Namespace)
	return &data.WriteResult{Path: path}, nil
}

func (sb *StoreBackend) Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) (*data.EditResult, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	path = data.NormalizePath(path)
	record, err := sb.get(ctx, path)
	if err != nil {
		return nil, err
	}

	content, occurrences, err := data.ReplaceOccurrences(path, record.String(), oldString, newString, replaceAll)
	if err != nil {
		return nil, err
	}

	if err := sb.store.Put(ctx, sb.options.Namespace, path, toValue(record.Update(content))); err != nil {
		return nil, err
	}

	sb.log.Debug("edited '%s' (%d occurrences)", path, occurrences)
	return &data.EditResult{Path: path, Occurrences: occurrences}, nil
}

func (sb *StoreBackend) Grep(ctx context.Context, pattern, path, glob string) ([]data.GrepMatch, error) {
	re, err := match.CompileRegex(pattern)
	if err != nil {
		return nil, err
	}

	dir := data.NormalizeDir(path)
	matches := make([]data.GrepMatch, 0)
	err = sb.scan(ctx, func(key string, record *data.FileRecord) {
		if strings.HasPrefix(key, dir) && match.FilterName(glob, key) {
			matches = append(matches, match.GrepLines(re, key, record.Content)...)
		}
	})
	if err != nil {
		return nil, err
	}

	backend.SortMatches(matches)
	return matches, nil
}

func (sb *StoreBackend) Glob(ctx context.Context, pattern, path string) ([]data.FileInfo, error) {
	dir := data.NormalizeDir(path)

	entries := make([]data.FileInfo, 0)
	err := sb.scan(ctx, func(key string, record *data.FileRecord) {
		if strings.HasPrefix(key, dir) && match.Match(pattern, key[len(dir):]) {
			entries = append(entries, record.Info(key))
		}
	})
	if err != nil {
		return nil, err
	}

	backend.SortByModified(entries)
	return entries, nil
}

func (sb *StoreBackend) get(ctx context.Context, path string) (*data.FileRecord, error) {
	item, err := sb.store.Get(ctx, sb.options.Namespace, path)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, data.NotFound(path)
	}
	if err != nil {
		return nil, err
	}

	record, err := fromValue(item.Value)
	if err != nil {
		return nil, &data.Error{Kind: data.ErrInvalid, Path: path, Detail: err.Error()}
	}

	return record, nil
}

// conflict checks that no stored file is a parent of path or lies below it.
func (sb *StoreBackend) conflict(ctx context.Context, path string) error {
	var conflict error
	err := sb.scan(ctx, func(key string, _ *data.FileRecord) {
		if conflict == nil {
			conflict = backend.FileConflict(path, key)
		}
	})
	if err != nil {
		return err
	}

	return conflict
}

// scan pages through every item of the namespace and hands each valid record
// to fn. Items of nested namespaces and malformed items are skipped.
func (sb *StoreBackend) scan(ctx context.Context, fn func(key string, record *data.FileRecord)) error {
	pageSize := sb.options.PageSize

	for offset := 0; ; offset += pageSize {
		items, err := sb.store.Search(ctx, sb.options.Namespace, nil, pageSize, offset)
		if err != nil {
			return err
		}

		for _, item := range items {
			if !slices.Equal(item.Namespace, sb.options.Namespace) {
				continue
			}

			record, err := fromValue(item.Value)
			if err != nil {
				sb.log.Warn("skipping item '%s': %v", item.Key, err)
				continue
			}

			fn(item.Key, record)
		}

		if len(items) < pageSize {
			return nil
		}
	}
}
