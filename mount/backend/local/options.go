package local

import (
	"errors"

	"github.com/mwantia/agentfs/log"
)

const DefaultMaxFileSizeMB = 10

type LocalOptions struct {
	Virtual       bool  // Whether paths are sandboxed below the root directory.
	MaxFileSizeMB int64 // Files above this size are skipped by grep.
	Logger        *log.Logger
}

type LocalOption func(*LocalOptions) error

func newDefaultLocalOptions() *LocalOptions {
	return &LocalOptions{
		Virtual:       false,
		MaxFileSizeMB: DefaultMaxFileSizeMB,
		Logger:        log.Discard(),
	}
}

// WithVirtualMode roots every path at the backend's directory.
func WithVirtualMode() LocalOption {
	return func(lo *LocalOptions) error {
		lo.Virtual = true
		return nil
	}
}

// WithMaxFileSizeMB sets the size ceiling used to skip large files in grep.
func WithMaxFileSizeMB(size int64) LocalOption {
	return func(lo *LocalOptions) error {
		if size <= 0 {
			return errors.New("local: max file size must be positive")
		}
		lo.MaxFileSizeMB = size
		return nil
	}
}

func WithLogger(logger *log.Logger) LocalOption {
	return func(lo *LocalOptions) error {
		lo.Logger = logger
		return nil
	}
}
