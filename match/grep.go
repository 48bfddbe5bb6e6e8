package match

import (
	"regexp"

	"github.com/mwantia/agentfs/data"
)

// CompileRegex compiles a grep pattern. Failures carry the compiler message.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, data.InvalidPattern(pattern, err)
	}

	return re, nil
}

// FilterName reports whether the filename of path matches glob.
// An empty glob accepts every file.
func FilterName(glob, path string) bool {
	if glob == "" {
		return true
	}

	return Simple(glob, data.BaseName(path))
}

// GrepLines scans lines top to bottom and returns one match per line that
// contains at least one hit of re.
func GrepLines(re *regexp.Regexp, path string, lines []string) []data.GrepMatch {
	var matches []data.GrepMatch
	for i, line := range lines {
		if re.MatchString(line) {
			matches = append(matches, data.GrepMatch{
				Path: path,
				Line: i + 1,
				Text: line,
			})
		}
	}

	return matches
}
