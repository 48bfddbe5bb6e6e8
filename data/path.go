package data

import (
	"path"
	"strings"
)

// NormalizePath ensures the path always starts with a leading slash.
// An empty path resolves to the root.
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return p
}

// NormalizeDir ensures the path starts and ends with a slash.
func NormalizeDir(p string) string {
	p = NormalizePath(p)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}

	return p
}

// JoinPrefix re-attaches a mount prefix to a backend-local path.
// The trailing slash of the prefix is dropped before joining.
func JoinPrefix(prefix, p string) string {
	return strings.TrimSuffix(prefix, "/") + NormalizePath(p)
}

// BaseName returns the last segment of a slash separated path.
func BaseName(p string) string {
	return path.Base(strings.TrimSuffix(p, "/"))
}
