package backend

import (
	"context"

	"github.com/mwantia/agentfs/data"
)

// Backend is the contract every file store and the router implement.
type Backend interface {
	// Name returns the identifier name defined for this backend
	Name() string
	// Open is part of the lifecycle behaviour and gets called when opening this backend.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and gets called when closing this backend.
	Close(ctx context.Context) error

	// LsInfo lists the immediate children of the directory at path.
	LsInfo(ctx context.Context, path string) ([]data.FileInfo, error)
	// Read returns up to limit numbered lines starting at the 0-based line offset.
	Read(ctx context.Context, path string, offset, limit int) (string, error)
	// Write creates a new file. Existing files are never overwritten.
	Write(ctx context.Context, path, content string) (*data.WriteResult, error)
	// Edit replaces oldString with newString in an existing file.
	Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) (*data.EditResult, error)
	// Grep returns every line matching the regex pattern below path,
	// optionally limited to files whose name matches glob.
	Grep(ctx context.Context, pattern, path, glob string) ([]data.GrepMatch, error)
	// Glob returns every file below path whose relative path matches pattern.
	Glob(ctx context.Context, pattern, path string) ([]data.FileInfo, error)
}
