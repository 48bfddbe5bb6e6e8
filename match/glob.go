// Package match implements the glob and grep matchers shared by every backend.
package match

import (
	"regexp"
	"strings"
	"sync"
)

// maxCachedGlobs bounds the compiled glob cache; it is reset once full.
const maxCachedGlobs = 512

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*regexp.Regexp)
)

// Translate converts a glob into an anchored regular expression.
// '*' matches any run of characters within one segment, '?' exactly one
// character other than '/', everything else is taken literally.
func Translate(glob string) string {
	var sb strings.Builder
	sb.WriteString("^")

	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteString("[^/]*")
		case '?':
			sb.WriteString("[^/]")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	sb.WriteString("$")
	return sb.String()
}

func compileGlob(glob string) *regexp.Regexp {
	cacheMu.RLock()
	re, ok := cache[glob]
	cacheMu.RUnlock()
	if ok {
		return re
	}

	// Every metacharacter is quoted by Translate, so compilation cannot fail.
	re = regexp.MustCompile(Translate(glob))

	cacheMu.Lock()
	if len(cache) >= maxCachedGlobs {
		clear(cache)
	}
	cache[glob] = re
	cacheMu.Unlock()

	return re
}

// Simple matches name against a glob without any recursive segments.
func Simple(glob, name string) bool {
	return compileGlob(glob).MatchString(name)
}

// Recursive matches a relative path against a pattern that may contain '**'
// segments. A '**' consumes zero or more path segments.
func Recursive(pattern, relPath string) bool {
	patterns := collapse(strings.Split(pattern, "/"))
	segments := strings.Split(relPath, "/")

	return matchSegments(patterns, segments)
}

// Match dispatches to Recursive when pattern contains '**' and to Simple otherwise.
// A leading slash on the pattern is ignored.
func Match(pattern, relPath string) bool {
	pattern = strings.TrimPrefix(pattern, "/")
	relPath = strings.TrimPrefix(relPath, "/")

	if strings.Contains(pattern, "**") {
		return Recursive(pattern, relPath)
	}

	return Simple(pattern, relPath)
}

// collapse merges adjacent '**' segments; they match the same paths and
// would otherwise multiply the backtracking work.
func collapse(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "**" && len(out) > 0 && out[len(out)-1] == "**" {
			continue
		}
		out = append(out, p)
	}

	return out
}

func matchSegments(patterns, segments []string) bool {
	if len(patterns) == 0 {
		return len(segments) == 0
	}

	if len(segments) == 0 {
		for _, p := range patterns {
			if p != "**" {
				return false
			}
		}
		return true
	}

	if patterns[0] == "**" {
		if len(patterns) == 1 {
			return true
		}

		for i := 0; i <= len(segments); i++ {
			if matchSegments(patterns[1:], segments[i:]) {
				return true
			}
		}
		return false
	}

	if !Simple(patterns[0], segments[0]) {
		return false
	}

	return matchSegments(patterns[1:], segments[1:])
}
