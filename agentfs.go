package agentfs

import (
	"context"
	"fmt"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/log"
	"github.com/mwantia/agentfs/mount"
)

// FileSystem is the assembled virtual filesystem: a router with a default
// backend and every configured mount already opened.
type FileSystem struct {
	*mount.Router

	log     *log.Logger
	ownsLog bool
}

// New creates a filesystem backed only by the ephemeral default backend.
func New(ctx context.Context, opts ...FileSystemOption) (*FileSystem, error) {
	return NewFromConfig(ctx, DefaultConfig(), opts...)
}

// NewFromConfig creates the default backend and all mounts described by cfg.
// Options take precedence over the log section of cfg.
func NewFromConfig(ctx context.Context, cfg *Config, opts ...FileSystemOption) (*FileSystem, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	options := newDefaultFileSystemOptions()
	if err := options.applyLogConfig(cfg.Log); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.logger()

	address := cfg.Default
	if address == "" {
		address = DefaultAddress
	}

	fallback, err := ParseBackendAddress(ctx, address, logger)
	if err != nil {
		if options.Logger == nil {
			logger.Close()
		}
		return nil, fmt.Errorf("failed to create default backend: %w", err)
	}

	fs := &FileSystem{
		Router:  mount.NewRouter(fallback, mount.WithLogger(logger)),
		log:     logger,
		ownsLog: options.Logger == nil,
	}

	if err := fs.Router.Open(ctx); err != nil {
		fs.Close(ctx)
		return nil, fmt.Errorf("failed to open default backend: %w", err)
	}

	for _, mc := range cfg.Mounts {
		if err := fs.MountAddress(ctx, mc.Path, mc.Address, mountOptions(mc)...); err != nil {
			fs.Close(ctx)
			return nil, err
		}
	}

	logger.Debug("filesystem ready with %d mounts", len(cfg.Mounts))
	return fs, nil
}

// Close closes every mount, the default backend and the log file opened by New.
func (fs *FileSystem) Close(ctx context.Context) error {
	var errs data.Errors
	errs.Add(fs.Router.Close(ctx))

	if fs.ownsLog {
		errs.Add(fs.log.Close())
	}

	return errs.Errors()
}

// Logger returns the logger shared by the router and every backend.
func (fs *FileSystem) Logger() *log.Logger {
	return fs.log
}

// MountAddress creates the backend described by address and mounts it at prefix.
func (fs *FileSystem) MountAddress(ctx context.Context, prefix, address string, opts ...mount.MountOption) error {
	be, err := ParseBackendAddress(ctx, address, fs.log)
	if err != nil {
		return fmt.Errorf("failed to create backend for '%s': %w", prefix, err)
	}

	if err := fs.Mount(ctx, prefix, be, opts...); err != nil {
		be.Close(ctx)
		return err
	}

	return nil
}

func mountOptions(mc MountConfig) []mount.MountOption {
	opts := make([]mount.MountOption, 0, 2)
	if mc.ReadOnly {
		opts = append(opts, mount.AsReadOnly())
	}
	if mc.DisableNesting {
		opts = append(opts, mount.DisableNesting())
	}

	return opts
}
