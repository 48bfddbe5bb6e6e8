package mount

import (
	"strings"
	"time"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/mount/backend"
)

// Mount holds configuration and metadata towards the specified mount
type Mount struct {
	Prefix    string // Always starts and ends with a slash.
	Options   *MountOptions
	MountTime time.Time // When the mount was created.

	Backend backend.Backend
}

func NewMount(prefix string, be backend.Backend, opts ...MountOption) (*Mount, error) {
	options := newDefaultMountOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if options.ReadOnly {
		be = NewReadOnlyBackend(be)
	}

	return &Mount{
		Prefix:    data.NormalizeDir(prefix),
		Options:   options,
		MountTime: time.Now(),
		Backend:   be,
	}, nil
}

// Matches reports whether path is routed to this mount. The prefix without
// its trailing slash addresses the mount's root.
func (m *Mount) Matches(path string) bool {
	return strings.HasPrefix(path, m.Prefix) || path == strings.TrimSuffix(m.Prefix, "/")
}

// Strip converts a caller path into the backend-local path.
func (m *Mount) Strip(path string) string {
	if !strings.HasPrefix(path, m.Prefix) {
		return "/"
	}

	return "/" + path[len(m.Prefix):]
}

// Join converts a backend-local path back into a caller path.
func (m *Mount) Join(path string) string {
	return data.JoinPrefix(m.Prefix, path)
}
