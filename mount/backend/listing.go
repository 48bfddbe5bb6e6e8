package backend

import (
	"sort"
	"strings"

	"github.com/mwantia/agentfs/data"
)

// ListEntries aggregates stored file entries into the direct children of dir.
// Files deeper than one level collapse into a single synthesized directory
// entry named after their first remaining segment. Results are sorted by path.
func ListEntries(dir string, files []data.FileInfo) []data.FileInfo {
	dir = data.NormalizeDir(dir)

	seen := make(map[string]struct{})
	entries := make([]data.FileInfo, 0)

	for _, file := range files {
		if !strings.HasPrefix(file.Path, dir) {
			continue
		}

		remainder := file.Path[len(dir):]
		if remainder == "" {
			continue
		}

		if idx := strings.Index(remainder, "/"); idx >= 0 {
			sub := dir + remainder[:idx+1]
			if _, exists := seen[sub]; !exists {
				seen[sub] = struct{}{}
				entries = append(entries, data.DirInfo(sub))
			}
			continue
		}

		entries = append(entries, file)
	}

	SortByPath(entries)
	return entries
}

func SortByPath(entries []data.FileInfo) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}

// SortByModified orders entries by descending modification time,
// falling back to the path for equal timestamps.
func SortByModified(entries []data.FileInfo) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].ModifiedAt.Equal(entries[j].ModifiedAt) {
			return entries[i].ModifiedAt.After(entries[j].ModifiedAt)
		}
		return entries[i].Path < entries[j].Path
	})
}

func SortMatches(matches []data.GrepMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Path != matches[j].Path {
			return matches[i].Path < matches[j].Path
		}
		return matches[i].Line < matches[j].Line
	})
}
