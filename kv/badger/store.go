// Package badger implements kv.Store on top of BadgerDB.
package badger

import (
	"context"
	"errors"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/mwantia/agentfs/kv"
	"github.com/mwantia/agentfs/log"
)

type BadgerStore struct {
	db *badgerdb.DB
}

type BadgerStoreConfig struct {
	// Dir holds the data files. Required unless InMemory is set.
	Dir string

	// InMemory runs badger without any disk persistence.
	InMemory bool

	Logger *log.Logger
}

func NewBadgerStore(config *BadgerStoreConfig) (*BadgerStore, error) {
	if config == nil {
		config = &BadgerStoreConfig{InMemory: true}
	}

	if !config.InMemory && config.Dir == "" {
		return nil, errors.New("kv: badger directory is required for on-disk mode")
	}

	opts := badgerdb.DefaultOptions(config.Dir)
	if config.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}
	opts = opts.WithLogger(&badgerLogger{log: logger.Named("badger")})

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{db: db}, nil
}

func (bs *BadgerStore) Get(ctx context.Context, namespace []string, key string) (*kv.Item, error) {
	var item *kv.Item
	err := bs.db.View(func(txn *badgerdb.Txn) error {
		var err error
		item, err = getItem(txn, kv.EncodeKey(namespace, key))
		return err
	})

	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, kv.ErrNotFound
	}

	return item, err
}

func (bs *BadgerStore) Put(ctx context.Context, namespace []string, key string, value map[string]any) error {
	encoded := kv.EncodeKey(namespace, key)

	return bs.db.Update(func(txn *badgerdb.Txn) error {
		previous, err := getItem(txn, encoded)
		if err != nil && !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}

		buf, err := kv.Marshal(kv.NewItem(namespace, key, value, previous))
		if err != nil {
			return err
		}

		return txn.Set([]byte(encoded), buf)
	})
}

func (bs *BadgerStore) Search(ctx context.Context, prefix []string, filter map[string]any, limit, offset int) ([]*kv.Item, error) {
	pivot := []byte(kv.EncodeNamespace(prefix))
	items := make([]*kv.Item, 0)

	err := bs.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = pivot

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(pivot); it.ValidForPrefix(pivot); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			buf, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			item, err := kv.Unmarshal(buf)
			if err != nil {
				return err
			}

			if kv.MatchesFilter(item.Value, filter) {
				items = append(items, item)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	kv.SortItems(items)
	return kv.Paginate(items, limit, offset), nil
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func getItem(txn *badgerdb.Txn, encoded string) (*kv.Item, error) {
	entry, err := txn.Get([]byte(encoded))
	if err != nil {
		return nil, err
	}

	buf, err := entry.ValueCopy(nil)
	if err != nil {
		return nil, err
	}

	return kv.Unmarshal(buf)
}

// badgerLogger forwards badger's internal logging to our logger.
type badgerLogger struct {
	log *log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(strings.TrimSuffix(format, "\n"), args...)
}
