package ephemeral

import (
	"strings"

	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/mount/backend"
)

// This file contains internal "unsafe" methods that perform operations without acquiring locks.
// These methods MUST only be called when the caller already holds the appropriate lock.

// ascendUnsafe visits every record stored below dir in path order.
// MUST be called while holding at least a read lock.
func (eb *EphemeralBackend) ascendUnsafe(dir string, iter func(key string, record *data.FileRecord) bool) {
	eb.files.Ascend(dir, func(key string, record *data.FileRecord) bool {
		if !strings.HasPrefix(key, dir) {
			return false
		}
		return iter(key, record)
	})
}

// scanUnsafe projects every record stored below dir onto a FileInfo.
// MUST be called while holding at least a read lock.
func (eb *EphemeralBackend) scanUnsafe(dir string) []data.FileInfo {
	infos := make([]data.FileInfo, 0)
	eb.ascendUnsafe(dir, func(key string, record *data.FileRecord) bool {
		infos = append(infos, record.Info(key))
		return true
	})

	return infos
}

// conflictUnsafe checks that no stored file is a parent of path or lies below it.
// MUST be called while holding at least a read lock.
func (eb *EphemeralBackend) conflictUnsafe(path string) error {
	for _, parent := range backend.Parents(path) {
		if _, exists := eb.files.Get(parent); exists {
			return backend.FileConflict(path, parent)
		}
	}

	var err error
	eb.ascendUnsafe(path+"/", func(key string, _ *data.FileRecord) bool {
		err = backend.FileConflict(path, key)
		return false
	})

	return err
}
