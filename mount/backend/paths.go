package backend

import (
	"strings"

	"github.com/mwantia/agentfs/data"
)

// ValidateFilePath rejects paths that can only name a directory.
func ValidateFilePath(path string) error {
	if strings.HasSuffix(path, "/") {
		return data.Invalid(path, "file path must not end with '/'")
	}

	return nil
}

// FileConflict reports whether an existing file at key prevents creating a
// file at path. That is the case when key lies below path, which makes path
// a directory, or when key is one of the parent directories of path.
func FileConflict(path, key string) error {
	switch {
	case strings.HasPrefix(key, path+"/"):
		return data.AlreadyExists(path)
	case strings.HasPrefix(path, key+"/"):
		return data.ParentNotDir(path)
	}

	return nil
}

// Parents returns the parent directories of path, nearest first.
// The root itself is not included.
func Parents(path string) []string {
	parents := make([]string, 0)
	for {
		idx := strings.LastIndex(path, "/")
		if idx <= 0 {
			return parents
		}

		path = path[:idx]
		parents = append(parents, path)
	}
}
