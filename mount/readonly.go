package mount

import (
	"context"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/mount/backend"
)

// ReadOnlyBackend wraps a backend and rejects every mutation.
type ReadOnlyBackend struct {
	backend.Backend
}

func NewReadOnlyBackend(be backend.Backend) *ReadOnlyBackend {
	return &ReadOnlyBackend{Backend: be}
}

func (rb *ReadOnlyBackend) Name() string {
	return "readonly(" + rb.Backend.Name() + ")"
}

func (rb *ReadOnlyBackend) Write(ctx context.Context, path, content string) (*data.WriteResult, error) {
	return nil, data.ReadOnly(data.NormalizePath(path))
}

func (rb *ReadOnlyBackend) Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) (*data.EditResult, error) {
	return nil, data.ReadOnly(data.NormalizePath(path))
}
