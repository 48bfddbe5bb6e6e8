package data

import (
	"strings"
	"time"
)

// FileRecord is the content and timestamps of a single stored file.
// Records are replaced wholesale on edit, never mutated in place.
type FileRecord struct {
	Content    []string  `json:"content" msgpack:"content"`
	CreatedAt  time.Time `json:"created_at" msgpack:"created_at"`
	ModifiedAt time.Time `json:"modified_at" msgpack:"modified_at"`
}

// NewFileRecord creates a record with both timestamps set to now.
func NewFileRecord(content string) *FileRecord {
	now := time.Now().UTC()
	return &FileRecord{
		Content:    SplitLines(content),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// String joins the lines back into the original content.
func (r *FileRecord) String() string {
	return strings.Join(r.Content, "\n")
}

// Size returns the byte length of the joined content.
func (r *FileRecord) Size() int64 {
	return int64(len(r.String()))
}

// Update returns a new record holding content. CreatedAt is kept and
// ModifiedAt never moves before it.
func (r *FileRecord) Update(content string) *FileRecord {
	modified := time.Now().UTC()
	if modified.Before(r.CreatedAt) {
		modified = r.CreatedAt
	}

	return &FileRecord{
		Content:    SplitLines(content),
		CreatedAt:  r.CreatedAt,
		ModifiedAt: modified,
	}
}

// Info projects the record onto a FileInfo for path.
func (r *FileRecord) Info(path string) FileInfo {
	return FileInfo{
		Path:       path,
		Size:       r.Size(),
		ModifiedAt: r.ModifiedAt,
	}
}

// FileInfo describes a listing entry. Directory paths end with a slash.
type FileInfo struct {
	Path       string    `json:"path"`
	IsDir      bool      `json:"is_dir"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DirInfo creates the synthesized entry of an implied directory.
func DirInfo(path string) FileInfo {
	return FileInfo{
		Path:  NormalizeDir(path),
		IsDir: true,
	}
}

// GrepMatch is a single line matched by grep. Line is 1-based.
type GrepMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

type WriteResult struct {
	Path string `json:"path"`
}

type EditResult struct {
	Path        string `json:"path"`
	Occurrences int    `json:"occurrences"`
}
