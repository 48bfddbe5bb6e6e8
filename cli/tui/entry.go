package tui

import (
	"fmt"
	"path"
	"time"

	"github.com/mwantia/agentfs/data"
)

// Entry represents a file or directory entry in the TUI
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	IsMount bool
}

func newEntry(info data.FileInfo, mounts map[string]bool) *Entry {
	return &Entry{
		Name:    data.BaseName(info.Path),
		Path:    info.Path,
		Size:    info.Size,
		ModTime: info.ModifiedAt,
		IsDir:   info.IsDir,
		IsMount: mounts[info.Path],
	}
}

// DisplayName returns the name with appropriate indicator
func (e *Entry) DisplayName() string {
	if e.IsDir {
		return e.Name + "/"
	}
	return e.Name
}

// DisplaySize returns human-readable size
func (e *Entry) DisplaySize() string {
	if e.IsMount {
		return "<MNT>"
	}

	if e.IsDir {
		return "<DIR>"
	}

	const unit = 1024
	if e.Size < unit {
		return fmt.Sprintf("%d B", e.Size)
	}

	div, exp := int64(unit), 0
	for n := e.Size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(e.Size)/float64(div), "KMGTPE"[exp])
}

func (e *Entry) DisplayModTime() string {
	if e.ModTime.IsZero() {
		return "-"
	}
	return e.ModTime.Format(time.DateTime)
}

// Icon returns a marker based on the entry type
func (e *Entry) Icon() string {
	switch {
	case e.IsMount:
		return "💾"
	case e.IsDir:
		return "📁"
	}

	switch path.Ext(e.Name) {
	case ".go", ".js", ".ts", ".py", ".java", ".c", ".cpp", ".h", ".rs", ".rb", ".php":
		return "💻"
	case ".zip", ".tar", ".gz", ".bz2", ".7z", ".rar":
		return "📦"
	default:
		return "📄"
	}
}
