package store

import (
	"errors"
	"slices"

	"github.com/mwantia/agentfs/log"
)

type StoreOptions struct {
	Namespace  []string
	PageSize   int
	CloseStore bool // Whether closing the backend closes the underlying store.
	Logger     *log.Logger
}

type StoreOption func(*StoreOptions) error

func newDefaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		Namespace:  []string{"filesystem"},
		PageSize:   DefaultPageSize,
		CloseStore: true,
		Logger:     log.Discard(),
	}
}

// WithNamespace isolates this backend's records from other tenants of the same store.
func WithNamespace(namespace ...string) StoreOption {
	return func(so *StoreOptions) error {
		if len(namespace) == 0 {
			return errors.New("store: namespace must not be empty")
		}
		so.Namespace = slices.Clone(namespace)
		return nil
	}
}

// WithPageSize sets the batch size used while paging through the store.
func WithPageSize(size int) StoreOption {
	return func(so *StoreOptions) error {
		if size <= 0 {
			return errors.New("store: page size must be positive")
		}
		so.PageSize = size
		return nil
	}
}

// WithSharedStore keeps the underlying store open when the backend is closed.
func WithSharedStore() StoreOption {
	return func(so *StoreOptions) error {
		so.CloseStore = false
		return nil
	}
}

func WithLogger(logger *log.Logger) StoreOption {
	return func(so *StoreOptions) error {
		so.Logger = logger
		return nil
	}
}
