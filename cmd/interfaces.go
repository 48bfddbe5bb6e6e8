package cmd

import (
	"context"
	"io"

	"github.com/mwantia/agentfs/data"
)

// API is the subset of a backend that commands operate on.
// Both a single backend and the mount router satisfy it.
type API interface {
	// LsInfo lists the direct children of the directory at path.
	LsInfo(ctx context.Context, path string) ([]data.FileInfo, error)

	// Read returns up to limit numbered lines of the file at path, starting at offset.
	Read(ctx context.Context, path string, offset, limit int) (string, error)

	// Write creates a new file at path; existing files are never overwritten.
	Write(ctx context.Context, path, content string) (*data.WriteResult, error)

	// Edit replaces oldString with newString in the file at path.
	Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) (*data.EditResult, error)

	// Grep searches every file below path for lines matching the regex pattern.
	Grep(ctx context.Context, pattern, path, glob string) ([]data.GrepMatch, error)

	// Glob returns all files below path whose relative path matches pattern.
	Glob(ctx context.Context, pattern, path string) ([]data.FileInfo, error)
}

// Command represents an executable command within the virtual filesystem.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls -l [path]")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}
